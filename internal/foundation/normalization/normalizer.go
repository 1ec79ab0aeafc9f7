// Package normalization maps free-form configuration strings onto typed
// enumeration values.
package normalization

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Enum normalizes user input for one enumeration. Keys are matched
// case-insensitively after trimming whitespace; several keys may map to the
// same value (aliases).
type Enum[T ~string] struct {
	name   string
	values map[string]T
	keys   []string
}

// NewEnum creates a normalizer. name is used in error messages.
func NewEnum[T ~string](name string, values map[string]T) *Enum[T] {
	normalized := make(map[string]T, len(values))
	for k, v := range values {
		normalized[clean(k)] = v
	}
	return &Enum[T]{
		name:   name,
		values: normalized,
		keys:   slices.Sorted(maps.Keys(normalized)),
	}
}

// Normalize returns the value for raw and whether it was recognized.
func (e *Enum[T]) Normalize(raw string) (T, bool) {
	v, ok := e.values[clean(raw)]
	return v, ok
}

// Parse returns def for empty input, the matching value for a known key, and
// an error naming the valid keys otherwise.
func (e *Enum[T]) Parse(raw string, def T) (T, error) {
	if clean(raw) == "" {
		return def, nil
	}
	if v, ok := e.Normalize(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q (expected %s)", e.name, raw, strings.Join(e.keys, "|"))
}

// Keys returns the accepted keys, sorted.
func (e *Enum[T]) Keys() []string {
	return slices.Clone(e.keys)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
