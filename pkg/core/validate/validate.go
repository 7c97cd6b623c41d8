// Package validate implements L4: the strict decode boundary every repaired
// text must pass before the pipeline calls it done.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"jsonmend/pkg/core/repair"
)

// Decode runs a plain strict JSON decode: exactly one top-level value, no
// trailing garbage. It does not enforce the stricter duplicate/empty-key
// rules that strict_mode adds — those only apply to StrictDecode.
func Decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if strings.Trim(text[dec.InputOffset():], " \t\r\n") != "" {
		return nil, fmt.Errorf("decode: trailing data after top-level value")
	}
	return convertNumbers(v), nil
}

// StrictDecode additionally rejects duplicate object keys (at any nesting
// level), empty keys, and multiple top-level values, per the strict_mode
// contract.
func StrictDecode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	v, err := strictDecodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repair.ErrStrictViolation, err)
	}
	if strings.Trim(text[dec.InputOffset():], " \t\r\n") != "" {
		return nil, fmt.Errorf("%w: multiple top-level values", repair.ErrStrictViolation)
	}
	return v, nil
}

// Validate is the L4 entry point. strict_mode bypasses repair entirely and
// goes straight through StrictDecode; otherwise a plain Decode is attempted,
// falling back to a lenient Hjson parse if Options.EnableHjsonFallback is
// set and everything else has failed.
func Validate(input string, ctx *repair.Context) (any, repair.Outcome) {
	if ctx.Options.StrictMode {
		v, err := StrictDecode(input)
		if err != nil {
			ctx.Note("strict_violation", err.Error())
			return nil, repair.Err
		}
		return v, repair.Ok
	}

	v, err := Decode(input)
	if err == nil {
		return v, repair.Ok
	}

	if ctx.Options.EnableHjsonFallback {
		if hv, herr := decodeHjson(input); herr == nil {
			ctx.Add(repair.LayerValidation, "decoded via hjson fallback", 0, "", "")
			return hv, repair.Ok
		}
	}

	ctx.Note("validation_error", err.Error())
	return nil, repair.Continue
}

// FastPath attempts a direct decode of the original, unrepaired input. When
// it succeeds the orchestrator can skip L1-L3 entirely (spec's
// fast_path_optimization).
func FastPath(input string, opts repair.Options) (any, bool) {
	if !opts.FastPathOptimization {
		return nil, false
	}
	v, err := Decode(input)
	if err != nil {
		return nil, false
	}
	return v, true
}

func strictDecodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return strictDecodeObject(dec)
		case '[':
			return strictDecodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		return numberFromJSONNumber(t), nil
	default:
		return tok, nil
	}
}

func strictDecodeObject(dec *json.Decoder) (map[string]any, error) {
	obj := make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("non-string object key %v", keyTok)
		}
		if key == "" {
			return nil, fmt.Errorf("empty object key")
		}
		if _, dup := obj[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		val, err := strictDecodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj[key] = val
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, err
	}
	return obj, nil
}

func strictDecodeArray(dec *json.Decoder) ([]any, error) {
	var arr []any
	for dec.More() {
		val, err := strictDecodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil { // consume closing ']'
		return nil, err
	}
	if arr == nil {
		arr = []any{}
	}
	return arr, nil
}

// convertNumbers walks a Decode result converting each json.Number into an
// int64 when it is exactly representable, otherwise a float64, matching
// "Numbers are integers where representable, otherwise finite
// floating-point" (spec's value representation).
func convertNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		return numberFromJSONNumber(t)
	case map[string]any:
		for k, val := range t {
			t[k] = convertNumbers(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = convertNumbers(val)
		}
		return t
	default:
		return v
	}
}

func numberFromJSONNumber(n json.Number) any {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	f, _ := n.Float64()
	return f
}
