package world

import "github.com/df-mc/blockflow/server/block/cube"

// Placement is a single non-empty cell of a Grid.
type Placement struct {
	Pos   cube.Pos
	State *State
}

// Snapshot holds everything a Provider persists for a World.
type Snapshot struct {
	// Step is the step the World was at when the snapshot was taken.
	Step       int64
	Placements []Placement
	Ticks      []PendingTick
}

// Provider represents a value that may provide world data to a World value. It usually does the reading and
// writing of the world data so that the World may use it.
type Provider interface {
	// Load reads the stored snapshot, interning its states in the table passed. Stored data that does not map to a
	// valid state of the table is rejected with an error rather than partially loaded.
	Load(table *StateTable) (Snapshot, error)
	// Save replaces the stored snapshot with the one passed.
	Save(s Snapshot) error
	// Close closes the provider, saving any file that might need to be saved, such as the level.dat.
	Close() error
}

// NopProvider implements a Provider that does not perform any disk I/O. It generates values on the run and
// dynamically, instead of reading and writing data, and otherwise returns empty values.
type NopProvider struct{}

// Compile time check to make sure NopProvider implements Provider.
var _ Provider = NopProvider{}

func (NopProvider) Load(*StateTable) (Snapshot, error) { return Snapshot{}, nil }
func (NopProvider) Save(Snapshot) error                { return nil }
func (NopProvider) Close() error                       { return nil }
