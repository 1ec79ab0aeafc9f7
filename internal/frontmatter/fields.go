package frontmatter

import (
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// TemplateKey is the front matter field naming the theme template for a page.
const TemplateKey = "template"

// FrontMatter is an ordered string-keyed mapping of JSON-like values. Key
// order follows the source document; keys added with Set are appended.
type FrontMatter struct {
	keys   []string
	values map[string]any
}

// New returns an empty FrontMatter.
func New() *FrontMatter {
	return &FrontMatter{values: map[string]any{}}
}

// FromPairs builds a FrontMatter from alternating key/value arguments.
func FromPairs(kv ...any) *FrontMatter {
	fm := New()
	for i := 0; i+1 < len(kv); i += 2 {
		fm.Set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return fm
}

// ParseYAML parses raw YAML front matter (without --- delimiters).
func ParseYAML(raw []byte) (*FrontMatter, error) {
	fm := New()
	if len(raw) == 0 {
		return fm, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return fm, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return fm, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		var key string
		if err := root.Content[i].Decode(&key); err != nil {
			return nil, fmt.Errorf("front matter key at line %d: %w", root.Content[i].Line, err)
		}
		var value any
		if err := root.Content[i+1].Decode(&value); err != nil {
			return nil, fmt.Errorf("front matter value %q: %w", key, err)
		}
		fm.Set(key, value)
	}
	return fm, nil
}

// Get returns the value stored under key.
func (f *FrontMatter) Get(key string) (any, bool) {
	if f == nil {
		return nil, false
	}
	v, ok := f.values[key]
	return v, ok
}

// String returns the value under key when it is a string.
func (f *FrontMatter) String(key string) string {
	v, _ := f.Get(key)
	s, _ := v.(string)
	return s
}

// Set stores value under key, keeping the original position of existing keys.
func (f *FrontMatter) Set(key string, value any) {
	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Delete removes key.
func (f *FrontMatter) Delete(key string) {
	if _, exists := f.values[key]; !exists {
		return
	}
	delete(f.values, key)
	f.keys = slices.DeleteFunc(f.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in document order.
func (f *FrontMatter) Keys() []string {
	if f == nil {
		return nil
	}
	return slices.Clone(f.keys)
}

// Len returns the number of keys.
func (f *FrontMatter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Map returns an unordered copy suitable for template data.
func (f *FrontMatter) Map() map[string]any {
	if f == nil {
		return map[string]any{}
	}
	return maps.Clone(f.values)
}

// Template returns the template name requested by the page, or "".
func (f *FrontMatter) Template() string {
	return f.String(TemplateKey)
}

// Clone returns a shallow copy.
func (f *FrontMatter) Clone() *FrontMatter {
	if f == nil {
		return New()
	}
	return &FrontMatter{keys: slices.Clone(f.keys), values: maps.Clone(f.values)}
}
