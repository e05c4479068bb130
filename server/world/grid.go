package world

import (
	"encoding/binary"
	"slices"

	"github.com/brentp/intintmap"
	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/blockflow/server/block/cube"
)

// maxRadius is the largest horizontal radius a Grid supports, and minY and maxY the vertical limits, all bounded by
// the packing of positions in cube.Pos.Pack.
const (
	maxRadius = 1<<25 - 1
	minY      = -1 << 11
	maxY      = 1<<11 - 1
)

// Change is a single write recorded in the journal of a Grid.
type Change struct {
	Pos      cube.Pos
	Old, New *State
	Flags    SetFlags
}

// Grid is a sparse store of block states indexed by position. Positions that were never set, or were set to the
// empty state, hold the empty state of the StateTable. Grid performs no notification of any kind: It is the raw
// storage beneath the update dispatcher. A Grid is not safe for concurrent use.
type Grid struct {
	table  *StateTable
	ra     cube.Range
	radius int

	cells   *intintmap.Map
	journal []Change
}

// NewGrid creates an empty Grid. Cells are in bounds if their Y lies within r and the absolute values of their X
// and Z do not exceed radius. r is clamped to [-2048, 2047].
func NewGrid(table *StateTable, r cube.Range, radius int) *Grid {
	if radius <= 0 || radius > maxRadius {
		radius = maxRadius
	}
	r = cube.Range{max(r.Min(), minY), min(r.Max(), maxY)}
	return &Grid{table: table, ra: r, radius: radius, cells: intintmap.New(1024, 0.6)}
}

// InBounds reports if pos may hold a state other than the empty state.
func (g *Grid) InBounds(pos cube.Pos) bool {
	if pos.OutOfBounds(g.ra) {
		return false
	}
	return pos[0] >= -g.radius && pos[0] <= g.radius && pos[2] >= -g.radius && pos[2] <= g.radius
}

// Range returns the vertical range of the Grid.
func (g *Grid) Range() cube.Range {
	return g.ra
}

// Block returns the state at pos. The empty state is returned for cells never set and for positions out of bounds.
func (g *Grid) Block(pos cube.Pos) *State {
	if !g.InBounds(pos) {
		return g.table.empty
	}
	rid, ok := g.cells.Get(pos.Pack())
	if !ok {
		return g.table.empty
	}
	s, ok := g.table.ByRuntimeID(uint32(rid))
	if !ok {
		return g.table.empty
	}
	return s
}

// SetRaw stores s at pos and returns the state previously held there. The write is recorded in the journal with
// the flags passed, but no other side effect takes place. Writes out of bounds are ignored and return the empty
// state.
func (g *Grid) SetRaw(pos cube.Pos, s *State, flags SetFlags) *State {
	if !g.InBounds(pos) {
		return g.table.empty
	}
	if s == nil {
		s = g.table.empty
	}
	old := g.Block(pos)
	if old == s {
		return old
	}
	if s.Empty() {
		g.cells.Del(pos.Pack())
	} else {
		g.cells.Put(pos.Pack(), int64(s.rid))
	}
	g.journal = append(g.journal, Change{Pos: pos, Old: old, New: s, Flags: flags})
	return old
}

// Len returns the amount of non-empty cells in the Grid.
func (g *Grid) Len() int {
	return g.cells.Size()
}

// Changes returns all writes recorded since the last call to Changes and clears the journal.
func (g *Grid) Changes() []Change {
	c := g.journal
	g.journal = nil
	return c
}

// All calls f for every non-empty cell in ascending order of packed position until f returns false.
func (g *Grid) All(f func(pos cube.Pos, s *State) bool) {
	keys := make([]int64, 0, g.cells.Size())
	for k := range g.cells.Keys() {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		pos := cube.Unpack(k)
		if !f(pos, g.Block(pos)) {
			return
		}
	}
}

// Digest returns a hash over every non-empty cell and its state. Two grids holding the same states at the same
// positions have the same digest, regardless of the order the states were written in.
func (g *Grid) Digest() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 16)
	g.All(func(pos cube.Pos, s *State) bool {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(pos.Pack()))
		buf = binary.LittleEndian.AppendUint64(buf, s.Hash())
		_, _ = d.Write(buf)
		return true
	})
	return d.Sum64()
}
