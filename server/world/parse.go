package world

import (
	"fmt"
	"strings"
)

// Parse parses a state in the form returned by State.String, name[key=value,...]. Properties left out are set to
// their default value. Whitespace around names, keys and values is ignored.
func (table *StateTable) Parse(str string) (*State, error) {
	str = strings.TrimSpace(str)
	name, rest, hasProps := strings.Cut(str, "[")
	name = strings.TrimSpace(name)
	t, ok := table.Type(name)
	if !ok {
		return nil, fmt.Errorf("parse %q: %w", str, ErrUnknownType)
	}
	s := t.Default()
	if !hasProps {
		return s, nil
	}
	body, ok := strings.CutSuffix(strings.TrimSpace(rest), "]")
	if !ok {
		return nil, fmt.Errorf("parse %q: missing closing bracket", str)
	}
	if strings.TrimSpace(body) == "" {
		return s, nil
	}
	for _, pair := range strings.Split(body, ",") {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parse %q: expected key=value, got %q", str, pair)
		}
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		i, ok := t.index[key]
		if !ok {
			return nil, fmt.Errorf("parse %q: %v: %w", str, key, ErrUnknownProperty)
		}
		vi, ok := t.props[i].parse(val)
		if !ok {
			return nil, fmt.Errorf("parse %q: %v=%v: %w", str, key, val, ErrInvalidProperty)
		}
		s = table.stateAt(t, s.idx+(vi-s.vals[i])*t.strides[i])
	}
	return s, nil
}
