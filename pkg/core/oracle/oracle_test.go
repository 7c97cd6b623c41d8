package oracle

import "testing"

func TestRepair_FixesTrailingComma(t *testing.T) {
	out, err := Repair(`{"a":1,}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty repaired JSON")
	}
}

func TestMustRepair_NeverPanics(t *testing.T) {
	out := MustRepair(`{{{`)
	if out == "" {
		t.Fatal("expected a non-empty fallback result")
	}
}

func TestParseHjson_RoundTripsPlainJSON(t *testing.T) {
	out, err := ParseHjson(`{"a": 1, "b": [1,2,3]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty re-encoded JSON")
	}
}
