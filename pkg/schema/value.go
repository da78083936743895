package schema

import (
	"math"
	"strconv"
	"strings"
)

// Truthy reports whether v counts as set. Empty strings, zero and NaN numbers,
// false and nil are falsy. Slices are always truthy regardless of length.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0 && !math.IsNaN(val)
	case float32:
		return val != 0 && !math.IsNaN(float64(val))
	case int:
		return val != 0
	case int64:
		return val != 0
	case int32:
		return val != 0
	case uint:
		return val != 0
	case uint64:
		return val != 0
	default:
		return true
	}
}

// IsEmpty reports whether a converted value carries no information.
// Collections are empty when they have no elements; scalars when they are
// falsy.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case []string:
		return len(val) == 0
	case []float64:
		return len(val) == 0
	case []any:
		return len(val) == 0
	case []int:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return !Truthy(v)
	}
}

// Stringify coerces a scalar to its textual form. nil becomes "", numbers
// use the shortest decimal representation and arrays are joined with commas.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	default:
		if items, ok := Elements(v); ok {
			return strings.Join(items, ",")
		}
		return ""
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Elements returns the string form of each element when v is a slice.
func Elements(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []float64:
		out := make([]string, len(val))
		for i, f := range val {
			out[i] = formatFloat(f)
		}
		return out, true
	case []int:
		out := make([]string, len(val))
		for i, n := range val {
			out[i] = strconv.Itoa(n)
		}
		return out, true
	case []any:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = Stringify(item)
		}
		return out, true
	default:
		return nil, false
	}
}

// ParseInt reads the leading integer of s the way a lenient form parser
// does: leading whitespace and one sign are accepted, digits are consumed
// until the first non-digit and the rest is discarded. Without any digit the
// result is NaN.
func ParseInt(s string) float64 {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		// Only digits reach here, so the sole failure is overflow.
		n = math.Inf(1)
	}
	if neg {
		n = -n
	}
	return n
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
