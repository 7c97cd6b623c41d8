// Package structural implements L2: a single-pass state machine that
// balances {} and [], inserting, removing, or substituting delimiters as
// needed while leaving string-literal interiors untouched.
package structural

import (
	"strings"

	"jsonmend/pkg/core/parsectx"
	"jsonmend/pkg/core/repair"
)

// Repair is the L2 entry point.
func Repair(input string, ctx *repair.Context) (string, repair.Outcome) {
	var out strings.Builder
	out.Grow(len(input) + 8)

	var stack parsectx.Stack
	inString := false
	var closer byte
	lastSignificant := byte(0)

	runes := []byte(input)
	n := len(runes)

	for i := 0; i < n; i++ {
		c := runes[i]

		if inString {
			out.WriteByte(c)
			if c == '\\' && i+1 < n {
				out.WriteByte(runes[i+1])
				i++
				continue
			}
			if c == closer {
				inString = false
			}
			continue
		}

		switch c {
		case '"', '\'':
			inString = true
			closer = c
			out.WriteByte(c)
			lastSignificant = c

		case '{':
			if lastSignificant == '{' && !hasTopLevelSeparatorAhead(runes[i:], "},{") {
				ctx.Add(repair.LayerStructuralRepair, "removed extra opening brace", i, "{", "")
				continue
			}
			stack.Push(parsectx.Frame{Kind: parsectx.Brace, OpenPosition: i})
			out.WriteByte(c)
			lastSignificant = c

		case '[':
			if lastSignificant == '[' && !hasTopLevelSeparatorAhead(runes[i:], "],[") {
				ctx.Add(repair.LayerStructuralRepair, "removed extra opening bracket", i, "[", "")
				continue
			}
			stack.Push(parsectx.Frame{Kind: parsectx.Bracket, OpenPosition: i})
			out.WriteByte(c)
			lastSignificant = c

		case '}':
			top, ok := stack.Peek()
			switch {
			case !ok:
				ctx.Add(repair.LayerStructuralRepair, "removed extra closing brace", i, "}", "")
				continue
			case top.Kind == parsectx.Brace:
				stack.Pop()
				out.WriteByte('}')
			default: // top is Bracket: array closed with }
				stack.Pop()
				ctx.Add(repair.LayerStructuralRepair, "fixed array-object mismatch", i, "}", "]")
				out.WriteByte(']')
			}
			lastSignificant = '}'

		case ']':
			top, ok := stack.Peek()
			switch {
			case !ok:
				ctx.Add(repair.LayerStructuralRepair, "removed extra closing bracket", i, "]", "")
				continue
			case top.Kind == parsectx.Bracket:
				stack.Pop()
				out.WriteByte(']')
			default: // top is Brace: object closed with ]
				stack.Pop()
				if isEmptySpan(out.String(), top.OpenPosition) {
					rewriteEmptyObjectToArrayMarker(&out)
					if outer, ok := stack.Peek(); ok && outer.Kind == parsectx.Bracket {
						stack.Pop()
						out.WriteByte(']')
					}
					ctx.Add(repair.LayerStructuralRepair, "collapsed empty object into array close", i, "}]", "]")
				} else {
					ctx.Add(repair.LayerStructuralRepair, "fixed array-object mismatch", i, "]", "}")
					out.WriteByte('}')
				}
			}
			lastSignificant = ']'

		case ',':
			if shouldInsertImplicitClose(runes, i, &stack) {
				stack.Pop()
				out.WriteByte('}')
				ctx.Add(repair.LayerStructuralRepair, "inserted implicit closing brace before comma", i, "", "}")
			}
			out.WriteByte(',')
			lastSignificant = ','

		default:
			out.WriteByte(c)
			if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
				lastSignificant = c
			}
		}
	}

	for stack.Len() > 0 {
		f, _ := stack.Pop()
		close := byte(']')
		if f.Kind == parsectx.Brace {
			close = '}'
		}
		out.WriteByte(close)
		ctx.Add(repair.LayerStructuralRepair, "added missing closing delimiter", out.Len(), "", string(close))
	}

	return out.String(), repair.Ok
}

// hasTopLevelSeparatorAhead performs a bounded lookahead scan: within a
// fixed-size window, does the whitespace-stripped text contain the
// separator pattern ("},{" or "],[") before we'd conclude the repeated
// opener is redundant?
func hasTopLevelSeparatorAhead(tail []byte, sep string) bool {
	const window = 4096
	end := len(tail)
	if end > window {
		end = window
	}
	var b strings.Builder
	for _, c := range tail[:end] {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			b.WriteByte(c)
		}
	}
	return strings.Contains(b.String(), sep)
}

// shouldInsertImplicitClose looks ahead from a comma to see whether the
// next significant token suggests we've exited an inner object while still
// inside an enclosing array — in which case the inner object's close was
// dropped and must be synthesized before the comma.
func shouldInsertImplicitClose(buf []byte, commaPos int, stack *parsectx.Stack) bool {
	top, ok := stack.Peek()
	if !ok || top.Kind != parsectx.Brace {
		return false
	}
	if stack.Len() < 2 {
		return false
	}
	// Heuristic: only fire when the immediately preceding significant
	// character was itself a closer for a nested value (}, ], ", or a
	// bare literal/number), i.e. the object's last value just ended and
	// what follows the comma is clearly a new array element rather than
	// another key.
	j := commaPos - 1
	for j >= 0 && isSpace(buf[j]) {
		j--
	}
	if j < 0 {
		return false
	}
	prev := buf[j]
	if prev != '}' && prev != ']' && prev != '"' && !isDigitByte(prev) && prev != 'e' && prev != 'l' {
		return false
	}
	k := commaPos + 1
	for k < len(buf) && isSpace(buf[k]) {
		k++
	}
	if k >= len(buf) {
		return false
	}
	next := buf[k]
	// A following quote that opens a *key* (followed eventually by ':')
	// means we're still inside the object; a following '{', '[', number,
	// or literal with no colon means a sibling array element.
	return next == '{' || next == '[' || next == '-' || isDigitByte(next)
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }
func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

// isEmptySpan reports whether the brace opened at openPos encloses nothing
// but whitespace, by checking the tail of out already written.
func isEmptySpan(written string, openPos int) bool {
	if openPos >= len(written) {
		return true
	}
	return strings.TrimSpace(written[openPos+1:]) == ""
}

// rewriteEmptyObjectToArrayMarker removes a trailing empty "{" (plus any
// whitespace) so that the caller's subsequent "]" write collapses "{]"
// style leftovers into a clean "]".
func rewriteEmptyObjectToArrayMarker(out *strings.Builder) {
	s := out.String()
	trimmed := strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(trimmed, "{") {
		out.Reset()
		out.WriteString(trimmed[:len(trimmed)-1])
	}
}
