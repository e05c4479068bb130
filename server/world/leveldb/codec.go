package leveldb

import (
	"fmt"
	"slices"
	"strings"

	"github.com/df-mc/blockflow/server/world"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// blockState is the NBT representation of a stored state.
type blockState struct {
	Name       string         `nbt:"name"`
	Properties map[string]any `nbt:"states"`
}

// tickEntry is the NBT representation of a pending tick.
type tickEntry struct {
	X        int32  `nbt:"x"`
	Y        int32  `nbt:"y"`
	Z        int32  `nbt:"z"`
	Name     string `nbt:"name"`
	Delay    int64  `nbt:"delay"`
	Priority int32  `nbt:"priority"`
}

// encodeState encodes s to little endian NBT. Booleans are stored as bytes and integers as ints.
func encodeState(s *world.State) ([]byte, error) {
	props := s.Properties()
	for k, v := range props {
		switch v := v.(type) {
		case bool:
			var b uint8
			if v {
				b = 1
			}
			props[k] = b
		case int:
			props[k] = int32(v)
		}
	}
	return nbt.MarshalEncoding(blockState{Name: s.Name(), Properties: props}, nbt.LittleEndian)
}

// decodeState decodes a state stored by encodeState and interns it in the table passed. Unknown types and property
// values outside of their domain are rejected.
func decodeState(table *world.StateTable, b []byte) (*world.State, error) {
	var m blockState
	if err := nbt.UnmarshalEncoding(b, &m, nbt.LittleEndian); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	t, ok := table.Type(m.Name)
	if !ok {
		return nil, fmt.Errorf("decode state: %v: %w", m.Name, world.ErrUnknownType)
	}
	assignment := make(map[string]any, len(m.Properties))
	for _, p := range t.Properties() {
		v, ok := m.Properties[p.Name()]
		if !ok {
			continue
		}
		if p.Kind() == world.KindBool {
			b, ok := v.(uint8)
			if !ok || b > 1 {
				return nil, fmt.Errorf("decode state: %v: %v=%v: %w", m.Name, p.Name(), v, world.ErrInvalidProperty)
			}
			v = b == 1
		}
		assignment[p.Name()] = v
	}
	for k, v := range m.Properties {
		if _, ok := assignment[k]; !ok {
			return nil, fmt.Errorf("decode state: %v: %v=%v: %w", m.Name, k, v, world.ErrUnknownProperty)
		}
	}
	s, err := table.Intern(t, assignment)
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

// stateString formats a stored state as name[key=value,...] with its keys sorted.
func stateString(m blockState) string {
	if len(m.Properties) == 0 {
		return m.Name
	}
	keys := make([]string, 0, len(m.Properties))
	for k := range m.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%v=%v", k, m.Properties[k])
	}
	b.WriteByte(']')
	return b.String()
}
