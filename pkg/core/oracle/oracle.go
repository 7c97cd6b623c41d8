// Package oracle wraps third-party JSON repair/parse libraries for use as a
// differential cross-check, never as the repair engine itself: the rest of
// this repository implements its own layered repair pipeline, and this
// package exists so tests can compare its output against an independent
// implementation on the same fixtures.
package oracle

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Repair runs the third-party repair library over malformed JSON.
func Repair(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("oracle repair failed: %w", err)
	}
	return repaired, nil
}

// MustRepair is like Repair but returns an empty object on failure, for
// call sites that need a guaranteed (if degenerate) JSON string back.
func MustRepair(malformedJSON string) string {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "{}"
	}
	return repaired
}

// ParseHjson decodes Hjson (a strict superset of JSON's grammar) and
// re-encodes it as standard JSON text.
func ParseHjson(hjsonData string) (string, error) {
	var result any
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("oracle hjson parse failed: %w", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("oracle hjson re-encode failed: %w", err)
	}
	return string(out), nil
}
