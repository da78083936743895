package urlstate

import (
	"math"

	"github.com/vango-dev/querystate/pkg/schema"
)

// State maps field names to typed values: string, float64, bool, []string or
// []float64. A missing key means the field is not set.
type State map[string]any

// Has reports whether key is set.
func (s State) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// String returns the string value of key, or "".
func (s State) String(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Number returns the numeric value of key. ok is false when the key is not
// set, not numeric, or NaN.
func (s State) Number(key string) (float64, bool) {
	switch v := s[key].(type) {
	case float64:
		return v, !math.IsNaN(v)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Int returns the numeric value of key truncated to an int.
func (s State) Int(key string) (int, bool) {
	f, ok := s.Number(key)
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Bool returns the boolean value of key, false when unset.
func (s State) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Strings returns the value of key as a string slice. A scalar string is
// returned as a one-element slice.
func (s State) Strings(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	}
	return nil
}

// Numbers returns the value of key as a float64 slice.
func (s State) Numbers(key string) []float64 {
	switch v := s[key].(type) {
	case []float64:
		return v
	case float64:
		return []float64{v}
	}
	return nil
}

// Clone returns a shallow copy.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// keepConverted reports whether a converted value belongs in typed state.
func keepConverted(v any) bool {
	return !schema.IsEmpty(v)
}
