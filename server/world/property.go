package world

import (
	"fmt"
	"strconv"
)

// PropertyKind is the kind of value a Property holds.
type PropertyKind uint8

const (
	// KindBool is a property holding either false or true.
	KindBool PropertyKind = iota
	// KindInt is a property holding an integer in a closed range.
	KindInt
	// KindEnum is a property holding one of a fixed set of names.
	KindEnum
)

// Property describes a single named property of a Type together with its ordered domain of values and the default
// value used when a state is created without specifying it. Values are addressed by their index in the domain, so
// that the declaration order is also the order followed by StateTable.Cycle.
type Property struct {
	name   string
	kind   PropertyKind
	min    int
	max    int
	values []string
	def    int
}

// BoolProperty returns a property with the domain [false, true].
func BoolProperty(name string, def bool) Property {
	p := Property{name: name, kind: KindBool, max: 1}
	if def {
		p.def = 1
	}
	return p
}

// IntProperty returns a property with the domain [min, max]. def must lie within the domain.
func IntProperty(name string, min, max, def int) Property {
	return Property{name: name, kind: KindInt, min: min, max: max, def: def - min}
}

// EnumProperty returns a property that holds one of the values passed, in the order passed. def must be one of
// values.
func EnumProperty(name, def string, values ...string) Property {
	p := Property{name: name, kind: KindEnum, values: values, def: -1}
	for i, v := range values {
		if v == def {
			p.def = i
		}
	}
	return p
}

// Name returns the name of the property.
func (p Property) Name() string {
	return p.name
}

// Kind returns the kind of value held by the property.
func (p Property) Kind() PropertyKind {
	return p.kind
}

// Size returns the amount of values in the domain of the property.
func (p Property) Size() int {
	switch p.kind {
	case KindBool:
		return 2
	case KindInt:
		return p.max - p.min + 1
	default:
		return len(p.values)
	}
}

// Values returns every value in the domain of the property in declaration order.
func (p Property) Values() []any {
	vals := make([]any, p.Size())
	for i := range vals {
		vals[i] = p.value(i)
	}
	return vals
}

func (p Property) validate() error {
	if p.name == "" {
		return fmt.Errorf("property without name")
	}
	if p.Size() <= 0 {
		return fmt.Errorf("property %v has an empty domain", p.name)
	}
	if p.def < 0 || p.def >= p.Size() {
		return fmt.Errorf("property %v has a default outside of its domain", p.name)
	}
	if p.kind == KindEnum {
		seen := make(map[string]struct{}, len(p.values))
		for _, v := range p.values {
			if _, ok := seen[v]; ok {
				return fmt.Errorf("property %v declares value %v twice", p.name, v)
			}
			seen[v] = struct{}{}
		}
	}
	return nil
}

// index returns the domain index of the value v, reporting false if v has the wrong type or lies outside of the
// domain.
func (p Property) index(v any) (int, bool) {
	switch p.kind {
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return 0, false
		}
		if b {
			return 1, true
		}
		return 0, true
	case KindInt:
		n, ok := intValue(v)
		if !ok || n < p.min || n > p.max {
			return 0, false
		}
		return n - p.min, true
	default:
		s, ok := v.(string)
		if !ok {
			return 0, false
		}
		for i, val := range p.values {
			if val == s {
				return i, true
			}
		}
		return 0, false
	}
}

// value returns the value at domain index i.
func (p Property) value(i int) any {
	switch p.kind {
	case KindBool:
		return i == 1
	case KindInt:
		return p.min + i
	default:
		return p.values[i]
	}
}

// parse converts the textual form of a value, as found in block state strings, to a domain index.
func (p Property) parse(s string) (int, bool) {
	switch p.kind {
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return 0, false
		}
		return p.index(b)
	case KindInt:
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return p.index(n)
	default:
		return p.index(s)
	}
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	}
	return 0, false
}
