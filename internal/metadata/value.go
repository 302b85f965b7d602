package metadata

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValueKind identifies which member of a Value is set.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindList
	KindMap
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a semi-structured sidecar value: null, string, number, bool,
// list, or ordered map. The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	f    float64
	b    bool
	list []Value
	m    Fields
}

func Null() Value                   { return Value{} }
func String(s string) Value         { return Value{kind: KindString, str: s} }
func Int(i int64) Value             { return Value{kind: KindInt, i: i} }
func Float(f float64) Value         { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value             { return Value{kind: KindBool, b: b} }
func List(items ...Value) Value     { return Value{kind: KindList, list: items} }
func Map(fields Fields) Value       { return Value{kind: KindMap, m: fields} }
func (v Value) Kind() ValueKind     { return v.kind }
func (v Value) IsNull() bool        { return v.kind == KindNull }
func (v Value) Str() string         { return v.str }
func (v Value) IntValue() int64     { return v.i }
func (v Value) FloatValue() float64 { return v.f }
func (v Value) BoolValue() bool     { return v.b }
func (v Value) Items() []Value      { return v.list }
func (v Value) Fields() Fields      { return v.m }

// Interface converts the value into plain Go values (string, int64, float64,
// bool, []any, map[string]any or nil) for use in templates.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		return v.m.Map()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	default:
		return fmt.Sprint(v.Interface())
	}
}

// ValueFromNode converts a decoded YAML node into a Value. Timestamps and
// other non-core scalar tags are kept as their literal text.
func ValueFromNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return ValueFromNode(n.Content[0])
	case yaml.AliasNode:
		return ValueFromNode(n.Alias)
	case yaml.ScalarNode:
		return scalarValue(n)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := ValueFromNode(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return List(items...), nil
	case yaml.MappingNode:
		fields, err := FieldsFromNode(n, nil)
		if err != nil {
			return Value{}, err
		}
		return Map(fields), nil
	default:
		return Value{}, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func scalarValue(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			var out bool
			if derr := n.Decode(&out); derr != nil {
				return Value{}, fmt.Errorf("line %d: %w", n.Line, derr)
			}
			b = out
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			// Out of int64 range; keep the literal.
			return String(n.Value), nil
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Float(f), nil
	default:
		return String(n.Value), nil
	}
}
