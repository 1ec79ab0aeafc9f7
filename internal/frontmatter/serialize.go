package frontmatter

import (
	"bytes"
	"maps"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SerializeYAML encodes front matter as a YAML document without delimiters.
// Top-level keys keep their document order and nested maps are emitted with
// sorted keys, so equal front matter always yields equal bytes. Empty front
// matter yields an empty slice.
func SerializeYAML(fm *FrontMatter) ([]byte, error) {
	if fm.Len() == 0 {
		return []byte{}, nil
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range fm.keys {
		if err := appendPair(doc, k, fm.values[k]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(doc)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func appendPair(mapping *yaml.Node, key string, value any) error {
	v, err := toNode(value)
	if err != nil {
		return err
	}
	mapping.Content = append(mapping.Content, scalar("!!str", key), v)
	return nil
}

func sortedMapping(m map[string]any) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if err := appendPair(n, k, m[k]); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func sequence[T any](items []T) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, item := range items {
		n, err := toNode(item)
		if err != nil {
			return nil, err
		}
		seq.Content = append(seq.Content, n)
	}
	return seq, nil
}

func toNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return scalar("!!null", "null"), nil
	case string:
		return scalar("!!str", t), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t)), nil
	case int:
		return scalar("!!int", strconv.Itoa(t)), nil
	case int64:
		return scalar("!!int", strconv.FormatInt(t, 10)), nil
	case float64:
		return scalar("!!float", strconv.FormatFloat(t, 'g', -1, 64)), nil
	case map[string]any:
		return sortedMapping(t)
	case *FrontMatter:
		return sortedMapping(t.Map())
	case []any:
		return sequence(t)
	case []string:
		return sequence(t)
	}
	// Remaining types (time.Time, uint, ...) use yaml's own encoding.
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}
