// Package jsonmend turns malformed JSON-like text into a value tree or
// well-formed JSON text. It never panics and never raises: every entry
// point returns a tagged result, the repair log is opt-in via
// Options.Logging, and strict_mode is a provable subset of the default
// repair behavior.
package jsonmend

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"jsonmend/pkg/core/pipeline"
	"jsonmend/pkg/core/repair"
)

// Value is the loosely-typed representation every repaired document
// decodes into: map[string]any, []any, string, int64/float64, bool, or nil.
type Value = any

// Options configures a single repair call. See repair.DefaultOptions for
// the defaults a bare Repair call uses.
type Options = repair.Options

// RepairAction is one entry in the audit log a call returns when
// Options.Logging is set.
type RepairAction = repair.Action

// DefaultOptions returns the options a bare call to Repair uses.
func DefaultOptions() Options { return repair.DefaultOptions() }

// Repair parses text into a value tree, repairing it along the way.
func Repair(text string, opts Options) (Value, []RepairAction, error) {
	return pipeline.Repair(text, opts)
}

// RepairToString parses text, repairs it, and re-serializes the result as
// canonical JSON.
func RepairToString(text string, opts Options) (string, []RepairAction, error) {
	var traceID string
	if opts.Verbose {
		traceID = uuid.NewString()
		fmt.Fprintf(os.Stderr, "[jsonmend %s] repairing %d bytes\n", traceID, len(text))
	}

	v, repairs, err := pipeline.Repair(text, opts)
	if err != nil {
		return "", repairs, err
	}

	encoded, encErr := json.Marshal(v)
	if encErr != nil {
		return "", repairs, fmt.Errorf("jsonmend: encode result: %w", encErr)
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "[jsonmend %s] produced %d bytes, %d repairs\n", traceID, len(encoded), len(repairs))
	}
	return string(encoded), repairs, nil
}

// FromFile reads a UTF-8 file and applies Repair to its contents.
func FromFile(path string, opts Options) (Value, []RepairAction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", repair.ErrIO, err)
	}
	return Repair(string(data), opts)
}

// FileResult is one file's outcome from FromFiles.
type FileResult struct {
	Path    string
	Value   Value
	Repairs []RepairAction
	Err     error
}

// FromFiles repairs every path independently, fanning out across a worker
// pool bounded by GOMAXPROCS. Each file gets its own repair.Context; there
// is no shared mutable state between goroutines.
func FromFiles(paths []string, opts Options) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			v, repairs, err := FromFile(path, opts)
			results[i] = FileResult{Path: path, Value: v, Repairs: repairs, Err: err}
		}(i, path)
	}
	wg.Wait()

	return results, nil
}
