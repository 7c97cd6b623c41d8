// Package pipeline folds the preprocessor block and the ordered layer
// registry into the single entry point the public API calls.
package pipeline

import (
	"fmt"
	"os"
	"strings"

	"jsonmend/pkg/core/preprocess"
	"jsonmend/pkg/core/repair"
	"jsonmend/pkg/core/validate"
)

// Repair runs the full pipeline: strict-mode bypass, fast-path short
// circuit, preprocessors, A->H layer folding, and final validation. Text
// that L1's plain-text gate flags yields an empty string result. It
// returns the parsed value (or, when multiple-value detection fired, a
// []any of values), the accumulated repair log when Options.Logging is
// set, and an error on any unrecoverable outcome.
func Repair(text string, opts repair.Options) (any, []repair.Action, error) {
	ctx := repair.NewContext(opts)

	if strings.TrimSpace(text) == "" {
		return "", logOf(ctx), nil
	}

	if opts.StrictMode {
		v, outcome := validate.Validate(text, ctx)
		if outcome != repair.Ok {
			return nil, nil, fmt.Errorf("%w", repair.ErrStrictViolation)
		}
		return v, logOf(ctx), nil
	}

	if v, ok := validate.FastPath(text, opts); ok {
		verbosef(opts, "fast path accepted input unchanged")
		return v, logOf(ctx), nil
	}

	pre := preprocess.Run(text, ctx)

	if pre.Multi {
		var results []any
		for idx, val := range pre.Values {
			repaired := RunLayers(val, ctx)
			v, outcome := validate.Validate(repaired, ctx)
			if outcome != repair.Ok {
				ctx.Note(fmt.Sprintf("skipped: value %d failed", idx), true)
				verbosef(opts, "value %d of %d failed validation, dropping", idx, len(pre.Values))
				continue
			}
			results = append(results, v)
		}
		if len(results) == 0 {
			return nil, nil, fmt.Errorf("%w: all values failed", repair.ErrUnrepairable)
		}
		return results, logOf(ctx), nil
	}

	repaired := RunLayers(pre.Text, ctx)
	if gated, _ := ctx.Metadata["l1_plain_text_gate"].(bool); gated {
		return "", logOf(ctx), nil
	}
	v, outcome := validate.Validate(repaired, ctx)
	if outcome != repair.Ok {
		return nil, nil, fmt.Errorf("%w", repair.ErrUnrepairable)
	}
	return v, logOf(ctx), nil
}

// RunLayers folds the ordered C->E layers over text, mutating ctx as it
// goes. Validation (F) is not in this list: it produces a value rather
// than text and is always the orchestrator's final step.
func RunLayers(text string, ctx *repair.Context) string {
	s := text
	for _, l := range orderedLayers {
		if !l.Supports(s, ctx) {
			continue
		}
		out, outcome := l.Process(s, ctx)
		s = out
		if ctx.Options.Verbose {
			fmt.Fprintf(os.Stderr, "[jsonmend] %s: %s\n", l.Name(), outcome)
		}
		if outcome == repair.Err {
			break
		}
	}
	return s
}

func logOf(ctx *repair.Context) []repair.Action {
	if !ctx.Options.Logging {
		return nil
	}
	return ctx.Repairs
}

func verbosef(opts repair.Options, format string, args ...any) {
	if !opts.Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, "[jsonmend] "+format+"\n", args...)
}
