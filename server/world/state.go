package world

import (
	"strconv"
	"strings"

	"github.com/segmentio/fasthash/fnv1a"
)

// Type is a kind of cell in a Grid, such as stone or redstone wire. A Type declares an ordered list of properties
// and the Behaviour shared by all of its states. Types are registered on a StateTable and never change afterwards.
type Type struct {
	name      string
	id        int
	props     []Property
	index     map[string]int
	strides   []int
	behaviour Behaviour

	table *StateTable
	// states holds every interned state of the type, addressed by the mixed-radix index of its property values.
	// Entries are filled lazily on first use.
	states []*State
	def    *State
}

// Name returns the name the type was registered with.
func (t *Type) Name() string {
	return t.name
}

// Properties returns the properties declared by the type, in declaration order.
func (t *Type) Properties() []Property {
	return t.props
}

// Behaviour returns the Behaviour record of the type.
func (t *Type) Behaviour() *Behaviour {
	return &t.behaviour
}

// Default returns the state of the type with every property set to its default value.
func (t *Type) Default() *State {
	return t.def
}

// States interns and returns every state of the type, ordered by their index.
func (t *Type) States() []*State {
	states := make([]*State, len(t.states))
	for i := range states {
		states[i] = t.table.stateAt(t, i)
	}
	return states
}

// Is reports if the state passed is of this type.
func (t *Type) Is(s *State) bool {
	return s != nil && s.t == t
}

// State is an immutable, interned assignment of values to every property of a Type. Two states with the same type
// and the same values are always the same pointer, so states may be compared with ==.
type State struct {
	t    *Type
	idx  int
	vals []int
	rid  uint32
	hash uint64
}

// Type returns the type of the state.
func (s *State) Type() *Type {
	return s.t
}

// Name returns the name of the type of the state.
func (s *State) Name() string {
	return s.t.name
}

// Behaviour returns the Behaviour record of the type of the state.
func (s *State) Behaviour() *Behaviour {
	return &s.t.behaviour
}

// RuntimeID returns the ID of the state in the StateTable that interned it. IDs are assigned in interning order and
// are only stable within a single process.
func (s *State) RuntimeID() uint32 {
	return s.rid
}

// Hash returns a hash of the name and property values of the state. Unlike the runtime ID, the hash is stable
// across processes.
func (s *State) Hash() uint64 {
	return s.hash
}

// Empty reports if the state is the empty state of its StateTable.
func (s *State) Empty() bool {
	return s.t.id == 0
}

// Value returns the value of the property with the key passed. The bool returned is false if the type does not
// declare the property.
func (s *State) Value(key string) (any, bool) {
	i, ok := s.t.index[key]
	if !ok {
		return nil, false
	}
	return s.t.props[i].value(s.vals[i]), true
}

// Bool returns the value of a bool property, or false if the property does not exist.
func (s *State) Bool(key string) bool {
	v, _ := s.Value(key)
	b, _ := v.(bool)
	return b
}

// Int returns the value of an int property, or 0 if the property does not exist.
func (s *State) Int(key string) int {
	v, _ := s.Value(key)
	n, _ := v.(int)
	return n
}

// Enum returns the value of an enum property, or an empty string if the property does not exist.
func (s *State) Enum(key string) string {
	v, _ := s.Value(key)
	str, _ := v.(string)
	return str
}

// Properties returns a new map holding every property of the state and its value.
func (s *State) Properties() map[string]any {
	m := make(map[string]any, len(s.vals))
	for i, p := range s.t.props {
		m[p.name] = p.value(s.vals[i])
	}
	return m
}

// With returns the state with the property key set to v. It is a shorthand for StateTable.WithProperty meant for
// behaviour code that knows its own properties: If the property does not exist or v is outside its domain, With
// panics if the table is strict and otherwise logs the error and returns s unchanged.
func (s *State) With(key string, v any) *State {
	n, err := s.t.table.WithProperty(s, key, v)
	if err != nil {
		s.t.table.misuse(s, err)
		return s
	}
	return n
}

// Cycle returns the state with the property key advanced to its next value. Like With, it panics on misuse if the
// table is strict.
func (s *State) Cycle(key string) *State {
	n, err := s.t.table.Cycle(s, key)
	if err != nil {
		s.t.table.misuse(s, err)
		return s
	}
	return n
}

// String returns the state in the form name[key=value,...], with properties in declaration order.
func (s *State) String() string {
	if len(s.vals) == 0 {
		return s.t.name
	}
	var b strings.Builder
	b.WriteString(s.t.name)
	b.WriteByte('[')
	for i, p := range s.t.props {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.name)
		b.WriteByte('=')
		switch v := p.value(s.vals[i]).(type) {
		case bool:
			b.WriteString(strconv.FormatBool(v))
		case int:
			b.WriteString(strconv.Itoa(v))
		case string:
			b.WriteString(v)
		}
	}
	b.WriteByte(']')
	return b.String()
}

func stateHash(t *Type, vals []int) uint64 {
	h := fnv1a.HashString64(t.name)
	for i, p := range t.props {
		h = fnv1a.AddString64(h, p.name)
		h = fnv1a.AddUint64(h, uint64(vals[i]))
	}
	return h
}
