package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a codec variant.
type Kind int

const (
	// KindIdentity stores values unchanged and writes their string form.
	KindIdentity Kind = iota

	// KindBoolean maps "true" to true and everything else to false.
	KindBoolean

	// KindString keeps text as text.
	KindString

	// KindNumber parses the leading integer of a value.
	KindNumber

	// KindCustom delegates to caller-supplied functions.
	KindCustom
)

var kindNames = map[Kind]string{
	KindIdentity: "identity",
	KindBoolean:  "boolean",
	KindString:   "string",
	KindNumber:   "number",
	KindCustom:   "custom",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a kind by name. Custom kinds cannot be named since they
// need functions.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity", "any":
		return KindIdentity, nil
	case "boolean", "bool":
		return KindBoolean, nil
	case "string", "str":
		return KindString, nil
	case "number", "int", "integer":
		return KindNumber, nil
	}
	return KindIdentity, fmt.Errorf("schema: unknown codec kind %q", name)
}

// Codec converts one field between its stored and location forms.
// The zero Codec is the identity codec.
type Codec struct {
	Kind Kind

	store    func(any) any
	location func(any) any
}

// Built-in codecs.
var (
	Identity = Codec{Kind: KindIdentity}
	Boolean  = Codec{Kind: KindBoolean}
	String   = Codec{Kind: KindString}
	Number   = Codec{Kind: KindNumber}
)

// Custom returns a codec backed by the given functions. A nil function falls
// back to the identity behavior for that direction. The location function
// should return a string or []string; anything else is stringified.
func Custom(store func(any) any, location func(any) any) Codec {
	return Codec{Kind: KindCustom, store: store, location: location}
}

// ForKind returns the built-in codec of kind k.
func ForKind(k Kind) Codec {
	return Codec{Kind: k}
}

// ParseForStore converts a raw value (usually a string or []string read from
// the query, or an initial state value) into its stored form.
func (c Codec) ParseForStore(v any) any {
	switch c.Kind {
	case KindBoolean:
		return Stringify(v) == "true" && !isSlice(v)
	case KindString:
		if items, ok := Elements(v); ok {
			return items
		}
		return Stringify(v)
	case KindNumber:
		if items, ok := Elements(v); ok {
			out := make([]float64, len(items))
			for i, item := range items {
				out[i] = ParseInt(item)
			}
			return out
		}
		return ParseInt(Stringify(v))
	case KindCustom:
		if c.store != nil {
			return c.store(v)
		}
	}
	return v
}

// ParseForLocation converts a stored value into a string or []string.
func (c Codec) ParseForLocation(v any) any {
	switch c.Kind {
	case KindBoolean:
		if Truthy(v) {
			return "true"
		}
		return "false"
	case KindNumber:
		if items, ok := Elements(v); ok {
			return items
		}
		if !Truthy(v) {
			return ""
		}
		return Stringify(v)
	case KindCustom:
		if c.location != nil {
			return normalizeLocation(c.location(v))
		}
	}
	if items, ok := Elements(v); ok {
		return items
	}
	return Stringify(v)
}

func normalizeLocation(v any) any {
	switch val := v.(type) {
	case string, []string:
		return val
	}
	if items, ok := Elements(v); ok {
		return items
	}
	return Stringify(v)
}

func isSlice(v any) bool {
	_, ok := Elements(v)
	return ok
}

// Schema maps field names to codecs.
type Schema map[string]Codec

// Lookup returns the codec for field and whether one is defined.
func (s Schema) Lookup(field string) (Codec, bool) {
	c, ok := s[field]
	return c, ok
}

// Fields returns the schema's field names in sorted order.
func (s Schema) Fields() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge returns a schema with the fields of s overlaid by other.
func (s Schema) Merge(other Schema) Schema {
	out := make(Schema, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// FromKinds builds a schema from field name to kind name, as found in
// configuration files.
func FromKinds(kinds map[string]string) (Schema, error) {
	out := make(Schema, len(kinds))
	for field, name := range kinds {
		k, err := ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		out[field] = ForKind(k)
	}
	return out, nil
}
