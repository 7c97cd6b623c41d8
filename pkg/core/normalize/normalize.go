// Package normalize implements L3: a single forward walk that keeps a
// ParseContext (current grammatical role) and rewrites non-standard tokens
// into strict-JSON-acceptable ones — unquoted keys, smart quotes, Python
// literals, trailing/missing commas, bare numbers that aren't really
// numbers, and so on.
package normalize

import (
	"strings"

	"jsonmend/pkg/core/parsectx"
	"jsonmend/pkg/core/repair"
	"jsonmend/pkg/core/scanner"
)

// Normalize is the L3 entry point.
func Normalize(input string, ctx *repair.Context) (string, repair.Outcome) {
	sc := scanner.New(input)
	pc := parsectx.New()
	var out strings.Builder
	out.Grow(len(input) + 16)

	for !sc.Eof() {
		if pc.InString {
			stepString(sc, pc, &out, ctx)
			continue
		}

		r, size := sc.Rune()
		if size == 0 {
			break
		}

		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			out.WriteRune(r)
			sc.AdvanceRune()

		case r == '{':
			out.WriteRune(r)
			sc.AdvanceRune()
			pc.Push(parsectx.ObjectKey)

		case r == '[':
			out.WriteRune(r)
			sc.AdvanceRune()
			pc.Push(parsectx.Array)

		case r == '}' || r == ']':
			stepTrailingComma(&out)
			out.WriteRune(r)
			sc.AdvanceRune()
			pc.Pop()

		case r == ':':
			out.WriteRune(r)
			sc.AdvanceRune()
			if pc.CurrentRole == parsectx.ObjectKey {
				pc.CurrentRole = parsectx.ObjectValue
			}

		case r == ',':
			out.WriteRune(r)
			sc.AdvanceRune()
			if pc.CurrentRole == parsectx.ObjectValue {
				pc.CurrentRole = parsectx.ObjectKey
			}

		case r == '<' && (pc.CurrentRole == parsectx.ObjectValue || pc.CurrentRole == parsectx.Array):
			stepHTML(sc, &out, ctx)

		default:
			if closer, ok := openerCloser(r); ok {
				stepOpenString(sc, pc, &out, ctx, r, closer)
				continue
			}
			if isBareTokenStart(r) {
				stepBareToken(sc, pc, &out, ctx)
				continue
			}
			out.WriteRune(r)
			sc.AdvanceRune()
		}

		stepMissingColon(sc, pc, &out, ctx)
		stepMissingComma(sc, pc, &out, ctx)
	}

	if pc.InString {
		closeUnterminatedStringAtEOF(sc, pc, &out, ctx)
	}

	return out.String(), repair.Ok
}

// closeUnterminatedStringAtEOF handles a string literal left open all the
// way to the true end of input — no closing quote, comma, colon, or
// bracket ever showed up. The content is everything scanned so far,
// stripped of one trailing newline, with a closing quote synthesized.
func closeUnterminatedStringAtEOF(sc *scanner.Scanner, pc *parsectx.ParseContext, out *strings.Builder, ctx *repair.Context) {
	trimmed := stripOneTrailingNewline(out.String())
	out.Reset()
	out.WriteString(trimmed)
	ctx.Add(repair.LayerSyntaxNormalization, "inserted missing closing quote", sc.CharPos(), "", "\"")
	out.WriteByte('"')
	pc.ExitString()
}

func stripOneTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	if strings.HasSuffix(s, "\n") || strings.HasSuffix(s, "\r") {
		return s[:len(s)-1]
	}
	return s
}

// openerCloser reports the rune that closes a string opened by r, and
// whether r opens a string at all (ASCII or smart quote; both always
// normalize to ").
func openerCloser(r rune) (rune, bool) {
	switch r {
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	case '“':
		return '”', true
	case '‘':
		return '’', true
	case '«':
		return '»', true
	}
	return 0, false
}

func stepOpenString(sc *scanner.Scanner, pc *parsectx.ParseContext, out *strings.Builder, ctx *repair.Context, opener, closer rune) {
	pos := sc.CharPos()
	if opener != '"' {
		label := "normalized quote delimiter"
		if opener != '\'' {
			label = "normalized smart quote"
		}
		ctx.Add(repair.LayerSyntaxNormalization, label, pos, string(opener), "\"")
	}
	out.WriteByte('"')
	sc.AdvanceRune()
	pc.EnterString(closer)
}

// stepString is only ever called while the outer scan loop still has input
// left (pc.InString at true EOF is handled separately by
// closeUnterminatedStringAtEOF), so r is always a real rune here.
func stepString(sc *scanner.Scanner, pc *parsectx.ParseContext, out *strings.Builder, ctx *repair.Context) {
	r, _ := sc.Rune()

	if r == '\\' {
		out.WriteRune(r)
		sc.AdvanceRune()
		if !sc.Eof() {
			esc, _ := sc.Rune()
			out.WriteRune(esc)
			sc.AdvanceRune()
		}
		return
	}

	if r == pc.StringDelimiter {
		out.WriteByte('"')
		sc.AdvanceRune()
		pc.ExitString()
		return
	}

	if isUnterminatedBoundary(r) {
		ctx.Add(repair.LayerSyntaxNormalization, "inserted missing closing quote", sc.CharPos(), "", "\"")
		out.WriteByte('"')
		pc.ExitString()
		return // re-dispatch r in non-string mode next iteration
	}

	if r == '"' && pc.StringDelimiter != '"' {
		out.WriteString("\\\"")
		sc.AdvanceRune()
		return
	}

	out.WriteRune(r)
	sc.AdvanceRune()
}

// isUnterminatedBoundary reports the characters that signal a string was
// never closed: a structural delimiter, key/value separator, or newline.
func isUnterminatedBoundary(r rune) bool {
	switch r {
	case ',', ':', '}', ']', '\n':
		return true
	}
	return false
}

// stepTrailingComma drops a comma (plus intervening whitespace) that was
// just written immediately before a closing delimiter.
func stepTrailingComma(out *strings.Builder) {
	s := out.String()
	trimmed := strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(trimmed, ",") {
		out.Reset()
		out.WriteString(trimmed[:len(trimmed)-1])
	}
}

func stepMissingColon(sc *scanner.Scanner, pc *parsectx.ParseContext, out *strings.Builder, ctx *repair.Context) {
	if pc.CurrentRole != parsectx.ObjectKey {
		return
	}
	if !strings.HasSuffix(strings.TrimRight(out.String(), " \t\r\n"), "\"") {
		return
	}
	// only fires right after a key's closing quote: peek past whitespace
	save := *sc
	for {
		r, size := sc.Rune()
		if size == 0 {
			*sc = save
			return
		}
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			sc.AdvanceRune()
			continue
		}
		if r != ':' {
			ctx.Add(repair.LayerSyntaxNormalization, "inserted missing colon", sc.CharPos(), "", ":")
			written := out.String()
			key := strings.TrimRight(written, " \t\r\n")
			out.Reset()
			out.WriteString(key)
			out.WriteByte(':')
			out.WriteString(written[len(key):])
			pc.CurrentRole = parsectx.ObjectValue
		}
		*sc = save
		return
	}
}

func stepMissingComma(sc *scanner.Scanner, pc *parsectx.ParseContext, out *strings.Builder, ctx *repair.Context) {
	if pc.CurrentRole != parsectx.Array && pc.CurrentRole != parsectx.ObjectKey {
		return
	}
	trimmed := strings.TrimRight(out.String(), " \t\r\n")
	if trimmed == "" {
		return
	}
	last := trimmed[len(trimmed)-1]
	if last != '"' && last != '}' && last != ']' && !isDigitByte(last) {
		return
	}
	r, size := sc.Rune()
	if size == 0 {
		return
	}
	if r == ',' || r == '}' || r == ']' || r == ' ' || r == '\t' || r == '\r' || r == '\n' {
		return
	}
	ctx.Add(repair.LayerSyntaxNormalization, "inserted missing comma", sc.CharPos(), "", ",")
	out.WriteByte(',')
	if pc.CurrentRole == parsectx.ObjectValue {
		pc.CurrentRole = parsectx.ObjectKey
	}
}

func isBareTokenStart(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	return r == '-' || r == '.' || r == '_' || r == '$'
}

func stepBareToken(sc *scanner.Scanner, pc *parsectx.ParseContext, out *strings.Builder, ctx *repair.Context) {
	pos := sc.CharPos()
	token := readBareToken(sc)
	role := pc.CurrentRole
	normalizeBareToken(token, role, pos, out, ctx)

	if token == "..." && role == parsectx.Array {
		stepTrailingComma(out)
	}
}

func readBareToken(sc *scanner.Scanner) string {
	var b strings.Builder
	for !sc.Eof() {
		r, size := sc.Rune()
		if size == 0 {
			break
		}
		if isBareTokenStart(r) || r == '/' {
			b.WriteRune(r)
			sc.AdvanceRune()
			continue
		}
		if r == ',' && isThousandsGroupAhead(sc) {
			b.WriteRune(r)
			sc.AdvanceRune()
			continue
		}
		break
	}
	return b.String()
}

func isThousandsGroupAhead(sc *scanner.Scanner) bool {
	d1, ok1 := sc.PeekByteAt(1)
	d2, ok2 := sc.PeekByteAt(2)
	d3, ok3 := sc.PeekByteAt(3)
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	return scanner.IsDigit(d1) && scanner.IsDigit(d2) && scanner.IsDigit(d3)
}

func normalizeBareToken(token string, role parsectx.Role, pos int, out *strings.Builder, ctx *repair.Context) {
	switch token {
	case "true", "false", "null":
		out.WriteString(token)
		return
	case "True":
		ctx.Add(repair.LayerSyntaxNormalization, "normalized python literal", pos, token, "true")
		out.WriteString("true")
		return
	case "False":
		ctx.Add(repair.LayerSyntaxNormalization, "normalized python literal", pos, token, "false")
		out.WriteString("false")
		return
	case "None", "NULL", "Null":
		ctx.Add(repair.LayerSyntaxNormalization, "normalized python literal", pos, token, "null")
		out.WriteString("null")
		return
	case "...":
		ctx.Add(repair.LayerSyntaxNormalization, "dropped ellipsis element", pos, token, "")
		return
	case "":
		return
	}

	if isAllCapsKeyword(token) {
		ctx.Add(repair.LayerSyntaxNormalization, "dropped stray keyword", pos, token, "")
		return
	}

	if looksLikeThousandsNumber(token) {
		stripped := strings.ReplaceAll(token, ",", "")
		ctx.Add(repair.LayerSyntaxNormalization, "stripped thousands separator", pos, token, stripped)
		out.WriteString(stripped)
		return
	}

	if strings.HasPrefix(token, ".") && looksLikePlainNumber("0"+token) {
		ctx.Add(repair.LayerSyntaxNormalization, "prefixed leading decimal", pos, token, "0"+token)
		out.WriteString("0" + token)
		return
	}

	if looksLikePlainNumber(token) {
		out.WriteString(token)
		return
	}

	if looksLikeNumberHybrid(token) {
		quoted := `"` + token + `"`
		ctx.Add(repair.LayerSyntaxNormalization, "quoted malformed number", pos, token, quoted)
		out.WriteString(quoted)
		return
	}

	quoted := `"` + token + `"`
	if role == parsectx.ObjectKey {
		ctx.Add(repair.LayerSyntaxNormalization, "quoted unquoted key", pos, token, quoted)
	} else {
		ctx.Add(repair.LayerSyntaxNormalization, "quoted unquoted value", pos, token, quoted)
	}
	out.WriteString(quoted)
}

func isAllCapsKeyword(s string) bool {
	if len(s) < 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func looksLikeThousandsNumber(s string) bool {
	if !strings.Contains(s, ",") {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != ',' && !isDigitByte(c) && c != '.' && c != '-' {
			return false
		}
	}
	return true
}

func looksLikePlainNumber(s string) bool {
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
	sawDigit, sawDot, sawExp := false, false, false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigitByte(c):
			sawDigit = true
		case c == '.' && !sawDot && !sawExp:
			sawDot = true
		case (c == 'e' || c == 'E') && !sawExp && sawDigit:
			sawExp = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
		default:
			return false
		}
	}
	return sawDigit
}

// looksLikeNumberHybrid covers fractions (1/3), ranges (10-20), multi-dot
// versions (1.1.1), and text-hybrids (1x) — numeric-looking tokens that
// are not valid JSON numbers and must be quoted rather than emitted bare.
func looksLikeNumberHybrid(s string) bool {
	if s == "" || !isDigitByte(s[0]) {
		return false
	}
	return strings.Contains(s, "/") ||
		strings.Count(s, ".") >= 2 ||
		(strings.Contains(s[1:], "-") && !strings.Contains(s, "e-") && !strings.Contains(s, "E-")) ||
		containsLetterAfterDigit(s)
}

func containsLetterAfterDigit(s string) bool {
	sawDigit := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isDigitByte(c) {
			sawDigit = true
			continue
		}
		if sawDigit && ((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) && c != 'e' && c != 'E' {
			return true
		}
	}
	return false
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

// stepHTML extracts a tag-balanced fragment starting at '<' and quotes it
// as a single string value, escaping any embedded " along the way. depth
// only moves on tags that actually open or close a pair: declaration tags
// (<!DOCTYPE ...>) and self-closing tags (<br/>) leave it unchanged, so a
// run like <!DOCTYPE html><html></html> is captured whole instead of
// breaking after the declaration, which never has a matching close.
func stepHTML(sc *scanner.Scanner, out *strings.Builder, ctx *repair.Context) {
	pos := sc.CharPos()
	depth := 0
	var raw strings.Builder

	for !sc.Eof() {
		r, size := sc.Rune()
		if size == 0 {
			break
		}
		if r != '<' {
			if depth <= 0 && (r == ',' || r == '}' || r == ']') {
				break
			}
			raw.WriteRune(r)
			sc.AdvanceRune()
			continue
		}

		tag, kind := scanTag(sc)
		raw.WriteString(tag)
		switch kind {
		case tagOpen:
			depth++
		case tagClose:
			depth--
		}

		if depth <= 0 && !nextIsTagOpen(sc) {
			break
		}
	}

	fragment := raw.String()
	escaped := strings.ReplaceAll(fragment, `"`, `\"`)
	quoted := `"` + escaped + `"`
	ctx.Add(repair.LayerSyntaxNormalization, "extracted unquoted HTML", pos, fragment, quoted)
	out.WriteString(quoted)
}

// tagKind classifies one scanned "<...>" tag for stepHTML's depth count.
type tagKind int

const (
	tagOpen tagKind = iota
	tagClose
	tagNeutral // declaration or self-closing: doesn't affect depth
)

// scanTag consumes one "<...>" tag starting at the current '<' and
// classifies it. It doesn't parse attribute values that themselves embed
// '>' — not a shape an unquoted-HTML value in malformed JSON needs.
func scanTag(sc *scanner.Scanner) (string, tagKind) {
	var b strings.Builder
	r, _ := sc.AdvanceRune() // consume '<'
	b.WriteRune(r)

	closing := false
	declaration := false
	if c, ok := sc.PeekByteAt(0); ok {
		closing = c == '/'
		declaration = c == '!'
	}

	for !sc.Eof() {
		r, size := sc.Rune()
		if size == 0 {
			break
		}
		b.WriteRune(r)
		sc.AdvanceRune()
		if r == '>' {
			break
		}
	}

	tag := b.String()
	switch {
	case declaration:
		return tag, tagNeutral
	case closing:
		return tag, tagClose
	case strings.HasSuffix(strings.TrimSpace(tag), "/>"):
		return tag, tagNeutral
	default:
		return tag, tagOpen
	}
}

// nextIsTagOpen peeks past whitespace to see whether another tag follows,
// without consuming anything.
func nextIsTagOpen(sc *scanner.Scanner) bool {
	save := *sc
	defer func() { *sc = save }()
	sc.SkipWhitespace()
	r, _ := sc.Rune()
	return r == '<'
}
