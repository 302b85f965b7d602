package metadata

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Fields is an ordered string-keyed map of Values. The zero value is an
// empty map ready to use.
type Fields struct {
	keys   []string
	values map[string]Value
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (f *Fields) Set(key string, v Value) {
	if f.values == nil {
		f.values = make(map[string]Value)
	}
	if _, exists := f.values[key]; !exists {
		f.keys = append(f.keys, key)
	}
	f.values[key] = v
}

// Get returns the value stored under key.
func (f Fields) Get(key string) (Value, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (f Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of keys.
func (f Fields) Len() int { return len(f.keys) }

// Map converts the fields into a plain map for templates.
func (f Fields) Map() map[string]any {
	out := make(map[string]any, len(f.keys))
	for _, k := range f.keys {
		out[k] = f.values[k].Interface()
	}
	return out
}

// FieldsFromNode converts a YAML mapping node into Fields, preserving
// document order. Keys for which skip returns true are left out. Merge keys
// (<<) are expanded in place.
func FieldsFromNode(n *yaml.Node, skip func(key string) bool) (Fields, error) {
	var fields Fields
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return fields, fmt.Errorf("line %d: expected a mapping", n.Line)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return fields, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		key := keyNode.Value

		if keyNode.ShortTag() == "!!merge" {
			sources := []*yaml.Node{valueNode}
			if valueNode.Kind == yaml.SequenceNode {
				sources = valueNode.Content
			}
			for _, source := range sources {
				merged, err := FieldsFromNode(source, skip)
				if err != nil {
					return fields, err
				}
				for _, k := range merged.keys {
					if _, exists := fields.values[k]; !exists {
						fields.Set(k, merged.values[k])
					}
				}
			}
			continue
		}
		if skip != nil && skip(key) {
			continue
		}

		v, err := ValueFromNode(valueNode)
		if err != nil {
			return fields, fmt.Errorf("%s: %w", key, err)
		}
		fields.Set(key, v)
	}
	return fields, nil
}
