package validate

import (
	"testing"

	"jsonmend/pkg/core/repair"
)

func TestDecode_AcceptsValidSingleValue(t *testing.T) {
	v, err := Decode(`{"a":1,"b":[1,2,3]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok || obj["a"] != int64(1) {
		t.Fatalf("unexpected decode result: %#v", v)
	}
}

func TestDecode_RejectsTrailingData(t *testing.T) {
	if _, err := Decode(`{"a":1} garbage`); err == nil {
		t.Fatal("expected an error for trailing data after the top-level value")
	}
}

func TestDecode_IntegerVsFloat(t *testing.T) {
	v, err := Decode(`{"i": 3, "f": 3.5}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(map[string]any)
	if _, ok := obj["i"].(int64); !ok {
		t.Errorf("integer field decoded as %T, want int64", obj["i"])
	}
	if _, ok := obj["f"].(float64); !ok {
		t.Errorf("fractional field decoded as %T, want float64", obj["f"])
	}
}

func TestStrictDecode_RejectsDuplicateKeys(t *testing.T) {
	if _, err := StrictDecode(`{"a":1,"a":2}`); err == nil {
		t.Fatal("expected duplicate-key rejection")
	}
}

func TestStrictDecode_RejectsEmptyKey(t *testing.T) {
	if _, err := StrictDecode(`{"":1}`); err == nil {
		t.Fatal("expected empty-key rejection")
	}
}

func TestStrictDecode_RejectsMultipleTopLevelValues(t *testing.T) {
	if _, err := StrictDecode(`{"a":1}{"b":2}`); err == nil {
		t.Fatal("expected multiple-top-level-value rejection")
	}
}

func TestStrictDecode_RejectsNestedDuplicateKeys(t *testing.T) {
	if _, err := StrictDecode(`{"a":{"x":1,"x":2}}`); err == nil {
		t.Fatal("expected rejection of a duplicate key at any nesting level")
	}
}

func TestValidate_StrictModeBypassesRepair(t *testing.T) {
	ctx := repair.NewContext(repair.Options{StrictMode: true})
	_, outcome := Validate(`{name: 'x'}`, ctx)
	if outcome != repair.Err {
		t.Errorf("outcome = %v, want Err for malformed input under strict mode", outcome)
	}
}

func TestValidate_NonStrictContinuesOnFailure(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	_, outcome := Validate(`not json at all {{{`, ctx)
	if outcome != repair.Continue {
		t.Errorf("outcome = %v, want Continue so later layers/fallbacks can run", outcome)
	}
}

func TestFastPath_SkipsAlreadyValidInput(t *testing.T) {
	opts := repair.DefaultOptions()
	v, ok := FastPath(`{"x":1}`, opts)
	if !ok {
		t.Fatal("expected fast path to accept already-valid input")
	}
	obj := v.(map[string]any)
	if obj["x"] != int64(1) {
		t.Errorf("unexpected fast-path result: %#v", v)
	}
}

func TestFastPath_DisabledByOption(t *testing.T) {
	opts := repair.DefaultOptions()
	opts.FastPathOptimization = false
	if _, ok := FastPath(`{"x":1}`, opts); ok {
		t.Error("expected fast path to be skipped when disabled")
	}
}

func TestValidate_HjsonFallbackOnlyWhenEnabled(t *testing.T) {
	// Hjson accepts unquoted keys and bare strings that our plain Decode
	// rejects outright; EnableHjsonFallback is the opt-in last resort.
	input := "{\n  key: unquoted value\n}"

	opts := repair.DefaultOptions()
	ctx := repair.NewContext(opts)
	if _, outcome := Validate(input, ctx); outcome != repair.Continue {
		t.Errorf("without EnableHjsonFallback, outcome = %v, want Continue", outcome)
	}

	opts.EnableHjsonFallback = true
	ctx2 := repair.NewContext(opts)
	v, outcome := Validate(input, ctx2)
	if outcome != repair.Ok {
		t.Fatalf("with EnableHjsonFallback, outcome = %v, want Ok", outcome)
	}
	obj, ok := v.(map[string]any)
	if !ok || obj["key"] != "unquoted value" {
		t.Errorf("unexpected hjson-fallback result: %#v", v)
	}
}
