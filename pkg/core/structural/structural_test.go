package structural

import (
	"testing"

	"jsonmend/pkg/core/repair"
)

func TestRepair_AddsMissingClosingDelimitersAtEOF(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	out, outcome := Repair(`{"a": [1, 2`, ctx)
	if outcome != repair.Ok {
		t.Fatalf("outcome = %v, want Ok", outcome)
	}
	if out != `{"a": [1, 2]}` {
		t.Errorf("Repair() = %q, want %q", out, `{"a": [1, 2]}`)
	}
	if len(ctx.Repairs) != 2 {
		t.Errorf("expected 2 synthesized closes, got %d: %v", len(ctx.Repairs), ctx.Repairs)
	}
}

func TestRepair_FixesArrayObjectMismatch(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	out, _ := Repair(`[1, 2, 3}`, ctx)
	if out != `[1, 2, 3]` {
		t.Errorf("Repair() = %q, want %q", out, `[1, 2, 3]`)
	}
}

func TestRepair_DropsExtraClosingDelimiter(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	out, _ := Repair(`{"a": 1}}`, ctx)
	if out != `{"a": 1}` {
		t.Errorf("Repair() = %q, want %q", out, `{"a": 1}`)
	}
}

func TestRepair_DoesNotTouchDelimitersInsideStrings(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	input := `{"a": "has } and ] inside"}`
	out, _ := Repair(input, ctx)
	if out != input {
		t.Errorf("Repair() altered string contents: %q", out)
	}
}

func TestRepair_RedundantOpenerWithoutSeparatorIsDropped(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	out, _ := Repair(`{{"a": 1}`, ctx)
	if out != `{"a": 1}` {
		t.Errorf("Repair() = %q, want the redundant '{' dropped", out)
	}
}

func TestRepair_RedundantOpenerWithSeparatorIsKept(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	out, _ := Repair(`[[1,2], [3,4]]`, ctx)
	if out != `[[1,2], [3,4]]` {
		t.Errorf("Repair() = %q, want input unchanged (two distinct array elements)", out)
	}
}
