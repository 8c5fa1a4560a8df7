package graph

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Float converts a loosely typed attribute value into a float64.
// Providers hand over JSON, YAML and driver values, so several numeric
// representations are accepted.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool converts a loosely typed attribute value into a bool.
// Anything unrecognised is false.
func Bool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil && b
	default:
		return false
	}
}

// String returns v if it is a string, or "" otherwise
func String(v any) string {
	s, _ := v.(string)
	return s
}
