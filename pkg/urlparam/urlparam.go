// Package urlparam implements the query-string wire format: decoding a
// location's search into an ordered set of parameters and encoding it back.
//
// Decoding follows conventional form rules: pairs are separated by "&", the
// first "=" splits key from value, "+" is a space and percent escapes are
// decoded. Repeated keys collect their values in order. Malformed escapes are
// kept verbatim unless strict decoding is requested.
//
// Example:
//
//	vals := urlparam.Parse("name=Alice&tag=a&tag=b")
//	vals.Value("name") // "Alice"
//	vals.Value("tag")  // []string{"a", "b"}
//	vals.Encode()      // "name=Alice&tag=a&tag=b"
package urlparam

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/vango-dev/querystate/pkg/location"
)

// Values is an insertion-ordered multimap of query parameters.
// The zero value is an empty set ready to use.
type Values struct {
	keys []string
	m    map[string][]string
}

// New returns an empty Values.
func New() *Values {
	return &Values{m: make(map[string][]string)}
}

func (v *Values) init() {
	if v.m == nil {
		v.m = make(map[string][]string)
	}
}

// Add appends val to the values of key.
func (v *Values) Add(key, val string) {
	v.init()
	if _, ok := v.m[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.m[key] = append(v.m[key], val)
}

// Set replaces the values of key. An existing key keeps its position; a new
// key is appended.
func (v *Values) Set(key string, vals ...string) {
	v.init()
	if _, ok := v.m[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.m[key] = append([]string(nil), vals...)
}

// SetValue stores a string or []string under key. Other types are ignored.
func (v *Values) SetValue(key string, val any) {
	switch x := val.(type) {
	case string:
		v.Set(key, x)
	case []string:
		v.Set(key, x...)
	}
}

// Del removes key.
func (v *Values) Del(key string) {
	if _, ok := v.m[key]; !ok {
		return
	}
	delete(v.m, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
}

// Has reports whether key is present.
func (v *Values) Has(key string) bool {
	_, ok := v.m[key]
	return ok
}

// Get returns the first value of key, or "".
func (v *Values) Get(key string) string {
	if vals := v.m[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// All returns every value of key.
func (v *Values) All(key string) []string {
	return v.m[key]
}

// Value returns the wire value of key: a string when the key occurred once,
// a []string when it repeated, nil when absent.
func (v *Values) Value(key string) any {
	vals, ok := v.m[key]
	if !ok {
		return nil
	}
	if len(vals) == 1 {
		return vals[0]
	}
	return append([]string(nil), vals...)
}

// Keys returns the keys in insertion order.
func (v *Values) Keys() []string {
	return append([]string(nil), v.keys...)
}

// Len returns the number of distinct keys.
func (v *Values) Len() int {
	return len(v.keys)
}

// Map returns the values as a plain map of string or []string.
func (v *Values) Map() map[string]any {
	out := make(map[string]any, len(v.keys))
	for _, k := range v.keys {
		out[k] = v.Value(k)
	}
	return out
}

// Clone returns a deep copy.
func (v *Values) Clone() *Values {
	out := New()
	for _, k := range v.keys {
		out.Set(k, v.m[k]...)
	}
	return out
}

// Filter removes every key for which keep returns false.
func (v *Values) Filter(keep func(key string, vals []string) bool) {
	kept := v.keys[:0]
	for _, k := range v.keys {
		if keep(k, v.m[k]) {
			kept = append(kept, k)
			continue
		}
		delete(v.m, k)
	}
	v.keys = kept
}

// Encode serializes the values as "k=v&k2=v2" in insertion order.
// A repeated key is written once per value; a key without values is
// omitted.
func (v *Values) Encode() string {
	var b strings.Builder
	for _, k := range v.keys {
		ek := url.QueryEscape(k)
		for _, val := range v.m[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(ek)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}
	return b.String()
}

// String implements fmt.Stringer.
func (v *Values) String() string {
	return v.Encode()
}

// Options configures parsing.
type Options struct {
	// Separators split pairs. Defaults to '&'.
	Separators []rune

	// StrictDecode returns an error for malformed percent escapes instead of
	// keeping them verbatim.
	StrictDecode bool
}

// DefaultOptions is used by Parse.
var DefaultOptions = Options{
	Separators:   []rune{'&'},
	StrictDecode: false,
}

// Parse decodes a query string (without its leading "?") leniently.
func Parse(query string) *Values {
	vals, _ := ParseWith(query, DefaultOptions)
	return vals
}

// ParseWith decodes a query string using opts. With StrictDecode unset the
// returned error is always nil.
func ParseWith(query string, opts Options) (*Values, error) {
	seps := opts.Separators
	if len(seps) == 0 {
		seps = DefaultOptions.Separators
	}
	out := New()
	pairs := strings.FieldsFunc(query, func(r rune) bool {
		for _, s := range seps {
			if r == s {
				return true
			}
		}
		return false
	})
	for _, pair := range pairs {
		rawKey, rawVal, _ := strings.Cut(pair, "=")
		key, err := unescape(rawKey, opts.StrictDecode)
		if err != nil {
			return out, err
		}
		val, err := unescape(rawVal, opts.StrictDecode)
		if err != nil {
			return out, err
		}
		out.Add(key, val)
	}
	return out, nil
}

// FromLocation parses the search component of loc, ignoring its pathname.
func FromLocation(loc location.Location) *Values {
	return Parse(loc.Query())
}

// unescape decodes "+" and percent escapes. Invalid escapes are copied
// through unless strict is set.
func unescape(s string, strict bool) (string, error) {
	if !strings.ContainsAny(s, "+%") {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		case c == '%':
			if strict {
				return "", fmt.Errorf("urlparam: invalid escape at offset %d in %q", i, s)
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
