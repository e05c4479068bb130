package world

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrInvalidProperty is returned when a property value has the wrong type or lies outside the property's domain,
	// or when an assignment misses or adds properties.
	ErrInvalidProperty = errors.New("invalid property value")
	// ErrUnknownProperty is returned when a property is requested that the type does not declare.
	ErrUnknownProperty = errors.New("unknown property")
	// ErrUnknownType is returned when a type name is looked up that was never registered.
	ErrUnknownType = errors.New("unknown block type")
	// ErrDuplicateType is returned when a type is registered with a name that is already taken.
	ErrDuplicateType = errors.New("duplicate block type")
)

// maxStatesPerType bounds the product of the property domain sizes of a single type.
const maxStatesPerType = 1 << 16

// TableConfig holds options used to create a StateTable.
type TableConfig struct {
	// Log is the Logger used to report misuse of State.With and State.Cycle. If nil, Log is set to slog.Default().
	Log *slog.Logger
	// Strict makes State.With and State.Cycle panic on an unknown property or invalid value instead of logging it.
	// Tests generally want this enabled.
	Strict bool
	// EmptyName is the name of the type of the empty state. It defaults to "air".
	EmptyName string
}

// New creates a StateTable using the options in the TableConfig. The table starts with a single registered type,
// the empty type, whose only state is returned by StateTable.Empty.
func (conf TableConfig) New() *StateTable {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.EmptyName == "" {
		conf.EmptyName = "air"
	}
	t := &StateTable{conf: conf, byName: make(map[string]*Type)}
	t.empty = t.MustRegister(conf.EmptyName, Behaviour{Kind: KindAir}).Default()
	return t
}

// StateTable interns block states. For every registered Type and every combination of property values there is
// exactly one *State, so equality of states is pointer equality. The table is safe for concurrent use: Reading
// already interned states takes a read lock, interning a new combination takes the write lock.
type StateTable struct {
	conf TableConfig

	mu     sync.RWMutex
	types  []*Type
	byName map[string]*Type
	byRID  []*State

	empty *State
}

// Register registers a new type with the name, behaviour and properties passed. An error is returned if the name is
// already in use, if a property is declared twice or if a property declaration is invalid.
func (table *StateTable) Register(name string, b Behaviour, props ...Property) (*Type, error) {
	table.mu.Lock()
	defer table.mu.Unlock()

	if _, ok := table.byName[name]; ok {
		return nil, fmt.Errorf("register %v: %w", name, ErrDuplicateType)
	}
	t := &Type{
		name:      name,
		id:        len(table.types),
		props:     props,
		index:     make(map[string]int, len(props)),
		strides:   make([]int, len(props)),
		behaviour: b,
		table:     table,
	}
	total := 1
	for i := len(props) - 1; i >= 0; i-- {
		p := props[i]
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("register %v: %w", name, err)
		}
		if _, ok := t.index[p.name]; ok {
			return nil, fmt.Errorf("register %v: property %v declared twice", name, p.name)
		}
		t.index[p.name] = i
		t.strides[i] = total
		total *= p.Size()
		if total > maxStatesPerType {
			return nil, fmt.Errorf("register %v: more than %v states", name, maxStatesPerType)
		}
	}
	t.states = make([]*State, total)

	def := 0
	for i, p := range props {
		def += p.def * t.strides[i]
	}
	t.def = table.intern(t, def)

	table.types = append(table.types, t)
	table.byName[name] = t
	return t, nil
}

// MustRegister calls Register and panics if an error is returned. It is meant for registration at start-up.
func (table *StateTable) MustRegister(name string, b Behaviour, props ...Property) *Type {
	t, err := table.Register(name, b, props...)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns the designated empty state, returned for cells that were never set.
func (table *StateTable) Empty() *State {
	return table.empty
}

// Type looks up a registered type by its name.
func (table *StateTable) Type(name string) (*Type, bool) {
	table.mu.RLock()
	defer table.mu.RUnlock()
	t, ok := table.byName[name]
	return t, ok
}

// Types returns all registered types in registration order.
func (table *StateTable) Types() []*Type {
	table.mu.RLock()
	defer table.mu.RUnlock()
	return append([]*Type(nil), table.types...)
}

// ByRuntimeID returns the state with the runtime ID passed.
func (table *StateTable) ByRuntimeID(id uint32) (*State, bool) {
	table.mu.RLock()
	defer table.mu.RUnlock()
	if int(id) >= len(table.byRID) {
		return nil, false
	}
	return table.byRID[id], true
}

// Len returns the amount of states interned so far.
func (table *StateTable) Len() int {
	table.mu.RLock()
	defer table.mu.RUnlock()
	return len(table.byRID)
}

// Warm interns every state of every registered type, so that no interning happens at run time.
func (table *StateTable) Warm() {
	for _, t := range table.Types() {
		t.States()
	}
}

// Intern returns the canonical state of type t with the property values in the assignment passed. The assignment
// must hold exactly the properties declared by t. ErrInvalidProperty is returned if it does not, or if a value has
// the wrong type or lies outside of its domain. Nothing is interned if an error is returned.
func (table *StateTable) Intern(t *Type, assignment map[string]any) (*State, error) {
	if t == nil || t.table != table {
		return nil, ErrUnknownType
	}
	if len(assignment) != len(t.props) {
		return nil, fmt.Errorf("intern %v: expected %v properties, got %v: %w", t.name, len(t.props), len(assignment), ErrInvalidProperty)
	}
	idx := 0
	for i, p := range t.props {
		v, ok := assignment[p.name]
		if !ok {
			return nil, fmt.Errorf("intern %v: missing property %v: %w", t.name, p.name, ErrInvalidProperty)
		}
		vi, ok := p.index(v)
		if !ok {
			return nil, fmt.Errorf("intern %v: %v=%v: %w", t.name, p.name, v, ErrInvalidProperty)
		}
		idx += vi * t.strides[i]
	}
	return table.stateAt(t, idx), nil
}

// WithProperty returns the canonical state equal to s except for the property key, which is set to v.
// ErrUnknownProperty is returned if the type of s does not declare key, ErrInvalidProperty if v lies outside of the
// domain of the property.
func (table *StateTable) WithProperty(s *State, key string, v any) (*State, error) {
	t := s.t
	i, ok := t.index[key]
	if !ok {
		return nil, fmt.Errorf("%v: %v: %w", t.name, key, ErrUnknownProperty)
	}
	vi, ok := t.props[i].index(v)
	if !ok {
		return nil, fmt.Errorf("%v: %v=%v: %w", t.name, key, v, ErrInvalidProperty)
	}
	if vi == s.vals[i] {
		return s, nil
	}
	return table.stateAt(t, s.idx+(vi-s.vals[i])*t.strides[i]), nil
}

// Cycle returns the canonical state equal to s except for the property key, which is advanced to the next value
// in the order of its domain, wrapping around after the last one.
func (table *StateTable) Cycle(s *State, key string) (*State, error) {
	t := s.t
	i, ok := t.index[key]
	if !ok {
		return nil, fmt.Errorf("%v: %v: %w", t.name, key, ErrUnknownProperty)
	}
	next := (s.vals[i] + 1) % t.props[i].Size()
	return table.stateAt(t, s.idx+(next-s.vals[i])*t.strides[i]), nil
}

// stateAt returns the state of t at index idx, interning it if it did not yet exist.
func (table *StateTable) stateAt(t *Type, idx int) *State {
	table.mu.RLock()
	s := t.states[idx]
	table.mu.RUnlock()
	if s != nil {
		return s
	}
	table.mu.Lock()
	defer table.mu.Unlock()
	return table.intern(t, idx)
}

// intern creates the state of t at index idx if it does not yet exist. table.mu must be held for writing.
func (table *StateTable) intern(t *Type, idx int) *State {
	if s := t.states[idx]; s != nil {
		return s
	}
	vals := make([]int, len(t.props))
	rem := idx
	for i := range t.props {
		vals[i] = rem / t.strides[i]
		rem %= t.strides[i]
	}
	s := &State{t: t, idx: idx, vals: vals, rid: uint32(len(table.byRID))}
	s.hash = stateHash(t, vals)
	t.states[idx] = s
	table.byRID = append(table.byRID, s)
	return s
}

func (table *StateTable) misuse(s *State, err error) {
	if table.conf.Strict {
		panic(err)
	}
	table.conf.Log.Error("Invalid state transition.", "state", s.String(), "err", err)
}
