// Package selector decides which fields of a state participate in
// synchronization, based on an inclusion list and an exclusion list.
package selector

import "slices"

// Selector filters field names. A nil list is absent and places no
// restriction; a non-nil empty Includes admits nothing.
type Selector struct {
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// New returns a selector with the given lists.
func New(includes, excludes []string) Selector {
	return Selector{Includes: includes, Excludes: excludes}
}

// Keep reports whether field passes both lists.
func (s Selector) Keep(field string) bool {
	if s.Includes != nil && !slices.Contains(s.Includes, field) {
		return false
	}
	if s.Excludes != nil && slices.Contains(s.Excludes, field) {
		return false
	}
	return true
}

// Select returns a new map holding the entries of fields that pass Keep.
func Select[V any](fields map[string]V, s Selector) map[string]V {
	out := make(map[string]V, len(fields))
	for name, v := range fields {
		if s.Keep(name) {
			out[name] = v
		}
	}
	return out
}

// Override returns s with each list replaced by the one in consumer when
// that list is non-nil.
func (s Selector) Override(consumer Selector) Selector {
	out := s
	if consumer.Includes != nil {
		out.Includes = consumer.Includes
	}
	if consumer.Excludes != nil {
		out.Excludes = consumer.Excludes
	}
	return out
}

// IsZero reports whether the selector places no restriction.
func (s Selector) IsZero() bool {
	return s.Includes == nil && s.Excludes == nil
}
