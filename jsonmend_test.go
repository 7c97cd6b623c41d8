package jsonmend

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRepair_NumberAnomalies(t *testing.T) {
	input := `{"fraction": 1/3, "range": 10-20, "decimal": .5, "version": 1.0.0}`
	v, _, err := Repair(input, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	if obj["fraction"] != "1/3" {
		t.Errorf("fraction = %#v, want \"1/3\"", obj["fraction"])
	}
	if obj["range"] != "10-20" {
		t.Errorf("range = %#v, want \"10-20\"", obj["range"])
	}
	if obj["decimal"] != 0.5 {
		t.Errorf("decimal = %#v, want 0.5", obj["decimal"])
	}
	if obj["version"] != "1.0.0" {
		t.Errorf("version = %#v, want \"1.0.0\"", obj["version"])
	}
}

func TestRepair_UnquotedHTML(t *testing.T) {
	input := `{"body":<!DOCTYPE html><html></html>}`
	v, _, err := Repair(input, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	if obj["body"] != "<!DOCTYPE html><html></html>" {
		t.Errorf("body = %#v", obj["body"])
	}
}

func TestRepair_AlreadyValidHasNoRepairs(t *testing.T) {
	opts := DefaultOptions()
	opts.Logging = true
	for _, input := range []string{`{"a":1,"b":[1,2,3],"c":null}`, `[]`, `{}`, `"hi"`, `42`} {
		v, repairs, err := Repair(input, opts)
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", input, err)
		}
		if len(repairs) != 0 {
			t.Errorf("input %q: expected no repairs, got %v", input, repairs)
		}
		if v == nil && input != `null` {
			t.Errorf("input %q: expected non-nil value", input)
		}
	}
}

func TestRepair_LoneOpenerBoundary(t *testing.T) {
	opts := DefaultOptions()
	opts.Logging = true
	for in, want := range map[string]string{"{": "object", "[": "array"} {
		v, repairs, err := Repair(in, opts)
		if err != nil {
			t.Fatalf("input %q: unexpected error: %v", in, err)
		}
		switch want {
		case "object":
			if _, ok := v.(map[string]any); !ok {
				t.Errorf("input %q: expected object, got %T", in, v)
			}
		case "array":
			if _, ok := v.([]any); !ok {
				t.Errorf("input %q: expected array, got %T", in, v)
			}
		}
		if len(repairs) == 0 {
			t.Errorf("input %q: expected at least one structural-repair action", in)
		}
	}
}

func TestRepairToString_IsIdempotent(t *testing.T) {
	input := `{name: 'Alice', age: 30, active: True,}`
	first, _, err := RepairToString(input, DefaultOptions())
	if err != nil {
		t.Fatalf("first repair failed: %v", err)
	}

	opts := DefaultOptions()
	opts.Logging = true
	second, repairs, err := RepairToString(first, opts)
	if err != nil {
		t.Fatalf("second repair failed: %v", err)
	}
	if second != first {
		t.Errorf("not idempotent: first=%q second=%q", first, second)
	}
	if len(repairs) != 0 {
		t.Errorf("expected no repairs re-running on already-valid output, got %v", repairs)
	}
}

func TestFromFile_ReadsAndRepairs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte(`{a: 1,}`), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	v, _, err := FromFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok || obj["a"] != int64(1) {
		t.Fatalf("unexpected result: %#v", v)
	}
}

func TestFromFile_MissingFileIsIOError(t *testing.T) {
	_, _, err := FromFile(filepath.Join(t.TempDir(), "does-not-exist.json"), DefaultOptions())
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestFromFiles_FansOutIndependently(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 0, 3)
	for i, body := range []string{`{a: 1}`, `[1, 2,]`, `{b: True}`} {
		p := filepath.Join(dir, string(rune('a'+i))+".json")
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		paths = append(paths, p)
	}

	results, err := FromFiles(paths, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: unexpected error: %v", r.Path, r.Err)
		}
	}
}

func TestRepair_StrictModeIsSubsetOfDefault(t *testing.T) {
	input := `{"a":1,"b":2}`
	strictOpts := DefaultOptions()
	strictOpts.StrictMode = true
	v1, repairs1, err := Repair(input, strictOpts)
	if err != nil {
		t.Fatalf("strict mode failed on valid input: %v", err)
	}
	if len(repairs1) != 0 {
		t.Errorf("expected empty repair log under strict mode, got %v", repairs1)
	}

	v2, _, err := Repair(input, DefaultOptions())
	if err != nil {
		t.Fatalf("default mode failed: %v", err)
	}

	o1, _ := v1.(map[string]any)
	o2, _ := v2.(map[string]any)
	if len(o1) != len(o2) || o1["a"] != o2["a"] || o1["b"] != o2["b"] {
		t.Errorf("strict and default results diverge: %#v vs %#v", v1, v2)
	}
}
