// Package preprocess implements the ten hardcoded-pattern preprocessors
// that run once, ahead of the L1-L4 pipeline proper: multiple-value
// detection runs unconditionally (a structural fact about the input, not
// stylistic cleanup), object-boundary merging runs when
// Options.EnableObjectMerging is set, and the rest are gated by
// Options.EnableEarlyHardcodedPatterns.
package preprocess

import (
	"encoding/json"
	"strconv"
	"strings"

	"jsonmend/pkg/core/repair"
	"jsonmend/pkg/core/validate"
)

// Result is the outcome of the preprocessing pass: either a single text to
// feed into L1, or (when multiple-value detection fired) a list of
// independently-repairable texts.
type Result struct {
	Multi  bool
	Text   string
	Values []string
}

// Run executes the fixed preprocessor sequence ahead of the A-H layers.
func Run(input string, ctx *repair.Context) Result {
	s := input
	if ctx.Options.EnableObjectMerging {
		s = mergeObjectBoundary(input, ctx)
	}

	if vals, ok := detectMultipleValues(s); ok {
		outs := make([]string, 0, len(vals))
		for _, v := range vals {
			outs = append(outs, applyHardcodedPatterns(v, ctx))
		}
		ctx.Note("multi_value_count", len(outs))
		return Result{Multi: true, Values: outs}
	}

	return Result{Text: applyHardcodedPatterns(s, ctx)}
}

func applyHardcodedPatterns(s string, ctx *repair.Context) string {
	if !ctx.Options.EnableEarlyHardcodedPatterns {
		return s
	}
	s = normalizeSmartQuotesGlobal(s, ctx)
	s = fixDoubledQuotes(s, ctx)
	s = extractEmbeddedCodeFence(s, ctx)
	s = stripTrailingCodeFence(s, ctx)
	s = fixMissingOpeningQuote(s, ctx)
	s = fixEmbeddedQuotes(s, ctx)
	s = fixUnclosedStringBeforeNewline(s, ctx)
	s = splitTruncatedTrailingElement(s, ctx)
	s = coerceSequentialObjectToArray(s, ctx)
	return s
}

// --- 1. multiple-value detection & object-boundary merging ---

// mergeObjectBoundary recognizes "{...},\"k\":v}" as one object plus stray
// pairs rather than two separate top-level values, and folds the pairs
// back into the preceding object.
func mergeObjectBoundary(s string, ctx *repair.Context) string {
	trimmed := strings.TrimSpace(s)
	start := findFirstOpen(trimmed)
	if start == -1 {
		return s
	}
	end := scanBalancedFrom(trimmed, start)
	if end == -1 || end >= len(trimmed) {
		return s
	}
	rest := strings.TrimSpace(trimmed[end:])
	if rest == "" || rest[0] != ',' || !strings.HasSuffix(rest, "}") || trimmed[start] != '{' {
		return s
	}

	object := strings.TrimRight(trimmed[:end], " \t\r\n")
	if !strings.HasSuffix(object, "}") {
		return s
	}
	object = strings.TrimSuffix(object, "}")
	strayPairs := strings.TrimSuffix(rest, "}")
	merged := trimmed[:start] + object + strayPairs + "}"
	if merged != s {
		ctx.AddUnpositioned(repair.LayerContentCleaning, "merged stray object-boundary pairs", s, merged)
	}
	return merged
}

// detectMultipleValues splits s into independently-balanced top-level JSON
// values when more than one is found back-to-back. Trailing bare
// primitives after at least one structure are dropped; structurally
// identical successive object values collapse to the last (update
// semantics).
func detectMultipleValues(s string) ([]string, bool) {
	trimmed := strings.TrimSpace(s)
	var vals []string
	i := 0
	n := len(trimmed)

	for i < n {
		for i < n && isSpaceByte(trimmed[i]) {
			i++
		}
		if i >= n {
			break
		}
		c := trimmed[i]
		if c != '{' && c != '[' {
			if len(vals) > 0 {
				break // trailing primitive after a structure: drop it
			}
			return nil, false
		}
		end := scanBalancedFrom(trimmed, i)
		if end == -1 {
			break
		}
		vals = append(vals, trimmed[i:end])
		i = end
	}

	if len(vals) < 2 {
		return nil, false
	}
	return dedupeLastWins(vals), true
}

// dedupeLastWins drops an earlier object value when the one immediately
// following it has the same top-level key set — a later "update" replacing
// an earlier, now-stale one.
func dedupeLastWins(vals []string) []string {
	out := make([]string, 0, len(vals))
	for i, v := range vals {
		if i+1 < len(vals) && sameTopLevelKeys(v, vals[i+1]) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func sameTopLevelKeys(a, b string) bool {
	if len(a) == 0 || a[0] != '{' || len(b) == 0 || b[0] != '{' {
		return false
	}
	ka, ok1 := topLevelKeys(a)
	kb, ok2 := topLevelKeys(b)
	if !ok1 || !ok2 || len(ka) == 0 || len(ka) != len(kb) {
		return false
	}
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}

// topLevelKeys extracts "key": occurrences at depth 1 of an object literal,
// a shallow scan (no value parsing) good enough to compare key identity.
func topLevelKeys(s string) ([]string, bool) {
	if len(s) == 0 || s[0] != '{' {
		return nil, false
	}
	var keys []string
	depth := 0
	inString := false
	var keyStart = -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
				continue
			}
			if c == '"' {
				if keyStart != -1 && depth == 1 {
					keys = append(keys, s[keyStart:i])
					keyStart = -1
				}
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
			if depth == 1 && keyStart == -1 {
				keyStart = i + 1
			}
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		}
	}
	return keys, true
}

// --- 2. smart-quote normalizer (blunt, whole-text) ---

func normalizeSmartQuotesGlobal(s string, ctx *repair.Context) string {
	replacer := strings.NewReplacer(
		"“", "\"", "”", "\"",
		"‘", "\"", "’", "\"",
		"«", "\"", "»", "\"",
	)
	out := replacer.Replace(s)
	if out != s {
		ctx.AddUnpositioned(repair.LayerContentCleaning, "normalized smart quotes", s, out)
	}
	return out
}

// --- 3. doubled-quote fixer ---

func fixDoubledQuotes(s string, ctx *repair.Context) string {
	var out strings.Builder
	i, n := 0, len(s)
	changed := false
	for i < n {
		if i+1 < n && s[i] == '"' && s[i+1] == '"' {
			prevIsDelim := i == 0 || isStructDelim(s[i-1])
			nextIsDelim := i+2 >= n || isStructDelim(s[i+2])
			if !(prevIsDelim && nextIsDelim) {
				out.WriteByte('"')
				i += 2
				changed = true
				continue
			}
		}
		out.WriteByte(s[i])
		i++
	}
	res := out.String()
	if changed {
		ctx.AddUnpositioned(repair.LayerContentCleaning, "collapsed doubled quotes", s, res)
	}
	return res
}

func isStructDelim(c byte) bool {
	switch c {
	case ':', ',', '{', '}', '[', ']', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// --- 4. embedded-code-fence extractor ---

func extractEmbeddedCodeFence(s string, ctx *repair.Context) string {
	start := strings.Index(s, "```")
	if start == -1 {
		return s
	}
	afterStart := start + 3
	if nl := strings.IndexByte(s[afterStart:], '\n'); nl != -1 {
		afterStart += nl + 1
	}
	rel := strings.Index(s[afterStart:], "```")
	if rel == -1 {
		return s
	}
	content := s[afterStart : afterStart+rel]
	if strings.ContainsAny(content, "{[") {
		ctx.AddUnpositioned(repair.LayerContentCleaning, "extracted embedded code fence", s, content)
		return content
	}
	return s
}

// --- 5. trailing-code-fence stripper ---

func stripTrailingCodeFence(s string, ctx *repair.Context) string {
	trimmed := strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(trimmed, "```") && strings.Count(trimmed, "```")%2 == 1 {
		out := strings.TrimSuffix(trimmed, "```")
		ctx.AddUnpositioned(repair.LayerContentCleaning, "stripped dangling trailing code fence", s, out)
		return out
	}
	return s
}

// --- 6. missing-opening-quote fixer ---

func fixMissingOpeningQuote(s string, ctx *repair.Context) string {
	var out strings.Builder
	i, n := 0, len(s)
	changed := false
	for i < n {
		c := s[i]
		if c == '{' || c == ',' {
			out.WriteByte(c)
			i++
			j := i
			for j < n && isSpaceByte(s[j]) {
				out.WriteByte(s[j])
				j++
			}
			k := j
			for k < n && isWordByte(s[k]) {
				k++
			}
			if k > j && k < n && s[k] == '"' {
				m := k + 1
				for m < n && s[m] != ':' && s[m] != '"' && s[m] != '\n' {
					m++
				}
				if m < n && s[m] == ':' {
					out.WriteByte('"')
					out.WriteString(s[j : k+1])
					i = k + 1
					changed = true
					continue
				}
			}
			i = j
			continue
		}
		out.WriteByte(c)
		i++
	}
	res := out.String()
	if changed {
		ctx.AddUnpositioned(repair.LayerContentCleaning, "inserted missing opening quote on key", s, res)
	}
	return res
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }

// --- 7. embedded-quote fixer ---

func fixEmbeddedQuotes(s string, ctx *repair.Context) string {
	var out strings.Builder
	inString := false
	i, n := 0, len(s)
	changed := false
	for i < n {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			out.WriteByte(c)
			i++
			continue
		}
		if c == '\\' && i+1 < n {
			out.WriteByte(c)
			out.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			j := i + 1
			for j < n && isSpaceByte(s[j]) {
				j++
			}
			if j >= n || s[j] == ',' || s[j] == ':' || s[j] == '}' || s[j] == ']' {
				inString = false
				out.WriteByte('"')
				i++
				continue
			}
			out.WriteString("\\\"")
			i++
			changed = true
			continue
		}
		out.WriteByte(c)
		i++
	}
	res := out.String()
	if changed {
		ctx.AddUnpositioned(repair.LayerContentCleaning, "escaped embedded quote", s, res)
	}
	return res
}

// --- 8. unclosed-string-before-delimiter fixer ---

func fixUnclosedStringBeforeNewline(s string, ctx *repair.Context) string {
	var out strings.Builder
	inString := false
	i, n := 0, len(s)
	changed := false
	for i < n {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			out.WriteByte(c)
			i++
			continue
		}
		if c == '\\' && i+1 < n {
			out.WriteByte(c)
			out.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			inString = false
			out.WriteByte(c)
			i++
			continue
		}
		if c == '\n' {
			out.WriteByte('"')
			inString = false
			changed = true
		}
		out.WriteByte(c)
		i++
	}
	res := out.String()
	if changed {
		ctx.AddUnpositioned(repair.LayerContentCleaning, "closed unterminated string before line end", s, res)
	}
	return res
}

// --- 9. truncated-key-in-array splitter ---

func splitTruncatedTrailingElement(s string, ctx *repair.Context) string {
	if !strings.HasPrefix(strings.TrimSpace(s), "[") {
		return s
	}
	trimmed := strings.TrimRight(s, " \t\r\n")
	if strings.HasSuffix(trimmed, "]") || strings.HasSuffix(trimmed, "}") {
		return s
	}
	if strings.Count(trimmed, "\"")%2 != 1 {
		return s
	}
	lastComma := strings.LastIndexByte(trimmed, ',')
	lastQuote := strings.LastIndexByte(trimmed, '"')
	if lastComma == -1 || lastQuote < lastComma {
		return s
	}
	out := trimmed[:lastComma]
	ctx.AddUnpositioned(repair.LayerContentCleaning, "split off truncated trailing array element", trimmed[lastComma:], "")
	return out
}

// --- 10. object-to-array coercion ---

// coerceSequentialObjectToArray rewrites an already-valid object whose keys
// are exactly the strings "0".."n-1" into an array, the shape an upstream
// producer most likely intended.
func coerceSequentialObjectToArray(s string, ctx *repair.Context) string {
	v, err := validate.Decode(s)
	if err != nil {
		return s
	}
	obj, ok := v.(map[string]any)
	if !ok || len(obj) == 0 {
		return s
	}
	arr := make([]any, len(obj))
	for i := range arr {
		val, present := obj[strconv.Itoa(i)]
		if !present {
			return s
		}
		arr[i] = val
	}
	encoded, err := json.Marshal(arr)
	if err != nil {
		return s
	}
	out := string(encoded)
	ctx.AddUnpositioned(repair.LayerContentCleaning, "coerced sequential-key object into array", s, out)
	return out
}

// --- shared balanced-scan helpers ---

func findFirstOpen(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			return i
		}
		if !isSpaceByte(s[i]) {
			return -1
		}
	}
	return -1
}

func scanBalancedFrom(s string, start int) int {
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
	return -1
}
