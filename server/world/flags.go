package world

import "strings"

// SetFlags controls which side effects a block change has. The zero value performs every effect; each set bit
// suppresses one of them.
type SetFlags uint16

const (
	// SuppressNeighbours stops the neighbours of a changed cell from being notified.
	SuppressNeighbours SetFlags = 1 << iota
	// SuppressSync stops the change from being reported to the event handler as a block update.
	SuppressSync
	// SuppressDrops stops removed cells from dropping items.
	SuppressDrops
	// MovedByPiston marks the change as part of a piston move. OnRemove hooks receive it as their moved argument.
	MovedByPiston
	// SuppressLight stops light updates from being reported.
	SuppressLight
	// KnownShape skips the shape recomputation of the neighbours of a changed cell.
	KnownShape
)

// Has reports if every flag in o is set in f.
func (f SetFlags) Has(o SetFlags) bool {
	return f&o == o
}

var flagNames = [...]string{"suppress_neighbours", "suppress_sync", "suppress_drops", "moved_by_piston", "suppress_light", "known_shape"}

// String returns the names of the flags set, joined by |.
func (f SetFlags) String() string {
	if f == 0 {
		return "none"
	}
	var names []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// ParseSetFlags parses flags in the form returned by SetFlags.String.
func ParseSetFlags(s string) (SetFlags, bool) {
	var f SetFlags
	if s == "" || s == "none" {
		return 0, true
	}
	for _, part := range strings.Split(s, "|") {
		found := false
		for i, name := range flagNames {
			if strings.TrimSpace(part) == name {
				f |= 1 << i
				found = true
			}
		}
		if !found {
			return 0, false
		}
	}
	return f, true
}
