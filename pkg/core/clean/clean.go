// Package clean implements L1, the content cleaner: strip code fences,
// comments, and prose wrapping, leaving just the JSON-like extent.
package clean

import (
	"strings"
	"unicode/utf8"

	"jsonmend/pkg/core/repair"
)

// quoteCloser reports the rune that closes a string opened by r, covering
// ASCII quotes and common smart-quote variants.
func quoteCloser(r rune) (rune, bool) {
	switch r {
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	case '“': // “
		return '”', true
	case '‘': // ‘
		return '’', true
	case '«': // «
		return '»', true
	}
	return 0, false
}

// Clean is the L1 entry point. It removes code fences, strips comments
// outside string literals, and trims non-JSON prose wrapping around a
// bounded JSON extent. It never fails hard: on anything it cannot make
// sense of it returns repair.Continue so downstream layers can try.
func Clean(input string, ctx *repair.Context) (string, repair.Outcome) {
	s := removeCodeFences(input, ctx)
	s = stripComments(s, ctx)
	s, bounded := trimWrapperText(s, ctx)

	if !bounded && plainTextGate(s) {
		ctx.Note("l1_plain_text_gate", true)
		return s, repair.Continue
	}
	return s, repair.Ok
}

// removeCodeFences strips ``` fence markers (with an optional language tag
// on the opening fence) and any whitespace-only trailing lines, but never
// touches a ``` sequence found inside a string literal.
func removeCodeFences(s string, ctx *repair.Context) string {
	var out strings.Builder
	inString := false
	var closer rune
	fenceOpen := false
	i := 0
	n := len(s)
	removed := 0

	for i < n {
		if !inString && strings.HasPrefix(s[i:], "```") {
			if !fenceOpen {
				fenceOpen = true
				j := i + 3
				for j < n && s[j] != '\n' {
					j++ // skip optional language tag
				}
				if j < n {
					j++ // consume the newline too
				}
				i = j
				removed++
				continue
			}
			fenceOpen = false
			i += 3
			// trailing whitespace-only rest of line after a closing fence
			for i < n && (s[i] == ' ' || s[i] == '\t') {
				i++
			}
			if i < n && s[i] == '\n' {
				i++
			}
			removed++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			size = 1
		}

		if inString {
			out.WriteString(s[i : i+size])
			if r == '\\' && i+size < n {
				_, esc := utf8.DecodeRuneInString(s[i+size:])
				if esc == 0 {
					esc = 1
				}
				out.WriteString(s[i+size : i+size+esc])
				i += size + esc
				continue
			}
			if r == closer {
				inString = false
			}
			i += size
			continue
		}

		if c, ok := quoteCloser(r); ok {
			inString = true
			closer = c
		}
		out.WriteString(s[i : i+size])
		i += size
	}

	if removed > 0 {
		ctx.Add(repair.LayerContentCleaning, "removed code fence", 0, "```", "")
	}
	return out.String()
}

// stripComments removes //-to-EOL, #-to-EOL, and /* ... */ comments that
// appear outside string literals.
func stripComments(s string, ctx *repair.Context) string {
	var out strings.Builder
	inString := false
	var closer rune
	i := 0
	n := len(s)
	removedAny := false

	for i < n {
		if inString {
			r, size := utf8.DecodeRuneInString(s[i:])
			if size == 0 {
				size = 1
			}
			out.WriteString(s[i : i+size])
			if r == '\\' && i+size < n {
				_, esc := utf8.DecodeRuneInString(s[i+size:])
				if esc == 0 {
					esc = 1
				}
				out.WriteString(s[i+size : i+size+esc])
				i += size + esc
				continue
			}
			if r == closer {
				inString = false
			}
			i += size
			continue
		}

		switch {
		case strings.HasPrefix(s[i:], "//"):
			j := strings.IndexByte(s[i:], '\n')
			if j == -1 {
				i = n
			} else {
				i += j
			}
			removedAny = true
			continue
		case s[i] == '#':
			j := strings.IndexByte(s[i:], '\n')
			if j == -1 {
				i = n
			} else {
				i += j
			}
			removedAny = true
			continue
		case strings.HasPrefix(s[i:], "/*"):
			j := strings.Index(s[i+2:], "*/")
			if j == -1 {
				i = n
			} else {
				i += j + 2 + 2
			}
			removedAny = true
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if size == 0 {
			size = 1
		}
		if c, ok := quoteCloser(r); ok {
			inString = true
			closer = c
		}
		out.WriteString(s[i : i+size])
		i += size
	}

	if removedAny {
		ctx.Add(repair.LayerContentCleaning, "stripped comment", 0, "", "")
	}
	return out.String()
}

// trimWrapperText bounds the JSON extent when the text is wrapped in prose:
// it finds the first JSON-opening character and a balanced-delimiter scan
// that closes it, discarding anything outside that span. Returns the
// trimmed text and whether a bounded extent was actually found.
func trimWrapperText(s string, ctx *repair.Context) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return trimmed, false
	}

	start := findJSONStart(trimmed)
	if start == -1 {
		return trimmed, false
	}

	end := boundExtent(trimmed, start)
	if end == -1 || (start == 0 && end == len(trimmed)) {
		return trimmed, start == 0 && end == len(trimmed)
	}

	extent := trimmed[start:end]
	if strings.TrimSpace(trimmed[:start]) != "" || strings.TrimSpace(trimmed[end:]) != "" {
		ctx.Add(repair.LayerContentCleaning, "trimmed wrapper prose", start, trimmed, extent)
	}
	return extent, true
}

// findJSONStart locates the first character that could begin a JSON value:
// an opening brace/bracket/quote, or the start of a literal/number token.
func findJSONStart(s string) int {
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '{' || s[i] == '[' || s[i] == '"':
			return i
		case strings.HasPrefix(s[i:], "true"), strings.HasPrefix(s[i:], "false"), strings.HasPrefix(s[i:], "null"):
			return i
		case s[i] == '-' || (s[i] >= '0' && s[i] <= '9'):
			return i
		}
	}
	return -1
}

// boundExtent finds the end of the JSON value starting at start via a
// balanced-delimiter scan (honoring string literals), or the end of a
// bare literal/number/string token.
func boundExtent(s string, start int) int {
	switch s[start] {
	case '{', '[':
		return scanBalanced(s, start)
	case '"':
		return scanString(s, start)
	default:
		return scanBareToken(s, start)
	}
}

func scanBalanced(s string, start int) int {
	var stack []byte
	inString := false
	var closer byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
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
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return i + 1
				}
			}
		}
	}
	return len(s)
}

func scanString(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '"' {
			return i + 1
		}
	}
	return len(s)
}

func scanBareToken(s string, start int) int {
	i := start
	for i < len(s) {
		c := s[i]
		if c == ',' || c == '}' || c == ']' || c == '\n' {
			break
		}
		i++
	}
	return i
}

// plainTextGate reports whether s contains no JSON-like structural
// characters at all, short-circuiting the pipeline to an empty result.
func plainTextGate(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return true
	}
	for _, c := range []byte{'{', '}', '[', ']', '"', ':'} {
		if strings.IndexByte(trimmed, c) != -1 {
			return false
		}
	}
	if isLiteralOrNumber(trimmed) {
		return false
	}
	return true
}

func isLiteralOrNumber(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	sawDigit := false
	for ; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			sawDigit = true
			continue
		}
		if c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			continue
		}
		return false
	}
	return sawDigit
}
