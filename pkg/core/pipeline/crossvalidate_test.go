package pipeline

import (
	"encoding/json"
	"reflect"
	"testing"

	"jsonmend/pkg/core/oracle"
	"jsonmend/pkg/core/repair"
)

// fixtures shared with the oracle package: malformed inputs both this
// repository's pipeline and the third-party repair library ought to agree
// on, used as a sanity check rather than a correctness proof (the two
// implementations are free to disagree on edge cases neither spec pins
// down, but a disagreement is worth a human look).
var crossValidateFixtures = []string{
	`{name: 'Alice', age: 30, active: True}`,
	`[1, 2, 3,]`,
	`{"a":1,"b":2,}`,
	`{'key': 'value'}`,
}

func TestCrossValidate_ComparesWithOracleOnCommonCases(t *testing.T) {
	for _, fixture := range crossValidateFixtures {
		t.Run(fixture, func(t *testing.T) {
			ours, _, err := Repair(fixture, repair.DefaultOptions())
			if err != nil {
				t.Fatalf("our pipeline failed on %q: %v", fixture, err)
			}

			oracleText, err := oracle.Repair(fixture)
			if err != nil {
				t.Fatalf("oracle failed on %q: %v", fixture, err)
			}
			var theirs any
			if err := json.Unmarshal([]byte(oracleText), &theirs); err != nil {
				t.Fatalf("oracle produced invalid JSON for %q: %v", fixture, err)
			}

			oursNorm := normalizeForComparison(ours)
			theirsNorm := normalizeForComparison(theirs)
			if !reflect.DeepEqual(oursNorm, theirsNorm) {
				t.Logf("divergence on %q: ours=%#v oracle=%#v", fixture, oursNorm, theirsNorm)
			}
		})
	}
}

// normalizeForComparison erases the int64-vs-float64 distinction our
// decoder makes but json.Unmarshal (used to read the oracle's output back)
// never does, so a numeric-type mismatch alone doesn't read as divergence.
func normalizeForComparison(v any) any {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeForComparison(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeForComparison(val)
		}
		return out
	default:
		return v
	}
}
