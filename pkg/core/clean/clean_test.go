package clean

import (
	"strings"
	"testing"

	"jsonmend/pkg/core/repair"
)

func TestClean_RemovesCodeFenceWithLanguageTag(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	out, outcome := Clean("```json\n{\"x\":1}\n```", ctx)
	if outcome != repair.Ok {
		t.Fatalf("outcome = %v, want Ok", outcome)
	}
	if out != `{"x":1}` {
		t.Errorf("Clean() = %q, want %q", out, `{"x":1}`)
	}
	if len(ctx.Repairs) == 0 {
		t.Errorf("expected at least one repair action for the code fence")
	}
}

func TestClean_PreservesFenceInsideString(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	input := "{\"x\":\"```not a fence```\"}"
	out, _ := Clean(input, ctx)
	if !strings.Contains(out, "```not a fence```") {
		t.Errorf("fence markers inside a string literal must survive, got %q", out)
	}
}

func TestClean_StripsLineAndBlockComments(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	input := "{\n// a comment\n\"x\": 1, /* inline */ \"y\": 2\n}"
	out, _ := Clean(input, ctx)
	if strings.Contains(out, "comment") || strings.Contains(out, "inline") {
		t.Errorf("comments were not stripped: %q", out)
	}
}

func TestClean_DoesNotStripCommentMarkersInsideStrings(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	input := `{"url": "http://example.com"}`
	out, _ := Clean(input, ctx)
	if !strings.Contains(out, "http://example.com") {
		t.Errorf("// inside a string must not be treated as a comment, got %q", out)
	}
}

func TestClean_TrimsWrapperProse(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	input := `Sure, here is the JSON you asked for: {"x": 1} Hope that helps!`
	out, _ := Clean(input, ctx)
	if out != `{"x": 1}` {
		t.Errorf("Clean() = %q, want trimmed JSON extent", out)
	}
}

func TestClean_PlainTextGateReturnsContinueOnProse(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	out, outcome := Clean("just some prose with no JSON at all", ctx)
	if outcome != repair.Continue {
		t.Errorf("outcome = %v, want Continue for non-JSON text", outcome)
	}
	_ = out
}

func TestClean_BareLiteralPassesThroughUnbounded(t *testing.T) {
	ctx := repair.NewContext(repair.DefaultOptions())
	out, outcome := Clean("true", ctx)
	if outcome != repair.Ok {
		t.Errorf("outcome = %v, want Ok for a bare literal", outcome)
	}
	if out != "true" {
		t.Errorf("Clean(\"true\") = %q", out)
	}
}
