package validate

import (
	hjson "github.com/hjson/hjson-go/v4"
)

// decodeHjson is the last-resort decode path (Options.EnableHjsonFallback):
// Hjson's grammar is a strict superset of JSON's, so anything our own
// layers couldn't make sense of but which still reads as a human-relaxed
// config file has one more chance here.
func decodeHjson(text string) (any, error) {
	var v any
	if err := hjson.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return convertNumbers(v), nil
}
