package ipprop

import (
	"fmt"
	"sort"
	"strings"
)

// Kind tells a scalar property value from a multi-valued one.
type Kind int

const (
	Scalar Kind = iota
	List
)

// Value is a single property value. Most properties are scalars; a few
// (for example exchange routes or hostmodel sets) hold a list.
type Value struct {
	kind   Kind
	scalar string
	items  []string
}

// ScalarValue returns a scalar Value.
func ScalarValue(s string) Value {
	return Value{kind: Scalar, scalar: s}
}

// ListValue returns a list Value holding a copy of items.
func ListValue(items ...string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: List, items: cp}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsList() bool { return v.kind == List }

// String renders the value the way providers print it: lists are joined
// with commas.
func (v Value) String() string {
	if v.kind == List {
		return strings.Join(v.items, ",")
	}
	return v.scalar
}

// Items returns the members of a list, or the scalar as a single member.
func (v Value) Items() []string {
	if v.kind == List {
		cp := make([]string, len(v.items))
		copy(cp, v.items)
		return cp
	}
	return []string{v.scalar}
}

// Map returns a copy of the value with fn applied to the scalar or to every
// list member.
func (v Value) Map(fn func(string) string) Value {
	if v.kind == List {
		items := make([]string, len(v.items))
		for i, item := range v.items {
			items[i] = fn(item)
		}
		return Value{kind: List, items: items}
	}
	return Value{kind: Scalar, scalar: fn(v.scalar)}
}

// Equal compares two values. Scalars compare exactly. As soon as one side is
// a list both sides are compared as sets, a scalar being split on commas.
func (v Value) Equal(other Value) bool {
	if v.kind == Scalar && other.kind == Scalar {
		return v.scalar == other.scalar
	}

	a, b := v.set(), other.set()
	if len(a) != len(b) {
		return false
	}
	for item := range a {
		if _, ok := b[item]; !ok {
			return false
		}
	}
	return true
}

func (v Value) set() map[string]struct{} {
	var items []string
	if v.kind == List {
		items = v.items
	} else if v.scalar != "" {
		items = strings.Split(v.scalar, ",")
	}

	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

// Raw converts the value back to the shape YAML decoding produces.
func (v Value) Raw() interface{} {
	if v.kind == List {
		out := make([]interface{}, len(v.items))
		for i, item := range v.items {
			out[i] = item
		}
		return out
	}
	return v.scalar
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (interface{}, error) {
	if v.kind == List {
		return v.items, nil
	}
	return v.scalar, nil
}

// ValueOf converts a decoded config value into a Value. Numbers and booleans
// are formatted as strings; sequences become lists.
func ValueOf(raw interface{}) (Value, error) {
	switch val := raw.(type) {
	case Value:
		return val, nil
	case string:
		return ScalarValue(val), nil
	case []string:
		return ListValue(val...), nil
	case []interface{}:
		items := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := scalarString(item)
			if !ok {
				return Value{}, fmt.Errorf("%w: list member %v (%T) is not a scalar", ErrInvalidValue, item, item)
			}
			items = append(items, s)
		}
		return ListValue(items...), nil
	}

	if s, ok := scalarString(raw); ok {
		return ScalarValue(s), nil
	}
	return Value{}, fmt.Errorf("%w: %v (%T)", ErrInvalidValue, raw, raw)
}

func scalarString(raw interface{}) (string, bool) {
	switch val := raw.(type) {
	case string:
		return val, true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(val), true
	default:
		return "", false
	}
}

// Properties maps a property name to its value within one protocol.
type Properties map[string]Value

// Names returns the property names in lexical order.
func (p Properties) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PropertyMap is the canonical protocol -> property -> value form.
type PropertyMap map[Protocol]Properties

// Protocols returns the protocols in lexical order.
func (m PropertyMap) Protocols() []Protocol {
	protos := make([]Protocol, 0, len(m))
	for proto := range m {
		protos = append(protos, proto)
	}
	sort.Slice(protos, func(i, j int) bool { return protos[i] < protos[j] })
	return protos
}

// Set stores a value, creating the protocol entry when needed.
func (m PropertyMap) Set(proto Protocol, name string, value Value) {
	props, ok := m[proto]
	if !ok {
		props = make(Properties)
		m[proto] = props
	}
	props[name] = value
}

// Len counts the properties across all protocols.
func (m PropertyMap) Len() int {
	n := 0
	for _, props := range m {
		n += len(props)
	}
	return n
}

// Params converts the map back into the nested shape config params use, so
// it can be fed to Normalize again.
func (m PropertyMap) Params() map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for proto, props := range m {
		inner := make(map[string]interface{}, len(props))
		for name, value := range props {
			inner[name] = value.Raw()
		}
		out[string(proto)] = inner
	}
	return out
}
