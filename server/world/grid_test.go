package world

import (
	"testing"

	"github.com/df-mc/blockflow/server/block/cube"
)

func TestGridDefaultsToEmpty(t *testing.T) {
	table, typ := testTable(t)
	g := NewGrid(table, cube.Range{0, 15}, 100)

	if s := g.Block(cube.Pos{1, 2, 3}); s != table.Empty() {
		t.Fatalf("expected unset cell to be empty, got %v", s)
	}
	for _, pos := range []cube.Pos{{0, -1, 0}, {0, 16, 0}, {101, 0, 0}, {0, 0, -101}} {
		if g.InBounds(pos) {
			t.Fatalf("expected %v to be out of bounds", pos)
		}
		if old := g.SetRaw(pos, typ.Default(), 0); old != table.Empty() {
			t.Fatalf("expected out of bounds write to return the empty state")
		}
		if s := g.Block(pos); s != table.Empty() {
			t.Fatalf("expected out of bounds read to be empty, got %v", s)
		}
	}
	if g.Len() != 0 {
		t.Fatalf("expected out of bounds writes to be ignored, got %d cells", g.Len())
	}
}

func TestGridSetRawJournal(t *testing.T) {
	table, typ := testTable(t)
	g := NewGrid(table, cube.Range{-64, 319}, 0)
	pos := cube.Pos{-5, -64, 7}

	if old := g.SetRaw(pos, typ.Default(), 0); old != table.Empty() {
		t.Fatalf("expected previous state to be empty, got %v", old)
	}
	open := typ.Default().With("open", true)
	if old := g.SetRaw(pos, open, SuppressSync); old != typ.Default() {
		t.Fatalf("expected previous state to be the default state, got %v", old)
	}
	g.SetRaw(pos, open, 0)
	if g.Block(pos) != open {
		t.Fatalf("expected cell to hold %v, got %v", open, g.Block(pos))
	}
	changes := g.Changes()
	if len(changes) != 2 {
		t.Fatalf("expected 2 journal entries, unchanged writes excluded, got %d", len(changes))
	}
	if changes[1].Old != typ.Default() || changes[1].New != open || changes[1].Flags != SuppressSync {
		t.Fatalf("unexpected journal entry %+v", changes[1])
	}
	if len(g.Changes()) != 0 {
		t.Fatalf("expected Changes to clear the journal")
	}
	g.SetRaw(pos, nil, 0)
	if g.Len() != 0 {
		t.Fatalf("expected writing the empty state to free the cell")
	}
}

func TestGridDigestIgnoresWriteOrder(t *testing.T) {
	table, typ := testTable(t)
	a := NewGrid(table, cube.Range{0, 255}, 0)
	b := NewGrid(table, cube.Range{0, 255}, 0)
	positions := []cube.Pos{{0, 0, 0}, {-1, 4, 9}, {30, 200, -30}}
	for i, pos := range positions {
		a.SetRaw(pos, typ.Default().With("level", i), 0)
	}
	for i := len(positions) - 1; i >= 0; i-- {
		b.SetRaw(positions[i], typ.Default().With("level", i), 0)
	}
	if a.Digest() != b.Digest() {
		t.Fatalf("expected equal digests for equal grids")
	}
	b.SetRaw(positions[0], typ.Default().With("open", true), 0)
	if a.Digest() == b.Digest() {
		t.Fatalf("expected digest to change with the contents of the grid")
	}
}

func TestGridClampsUnpackableRange(t *testing.T) {
	table, typ := testTable(t)
	g := NewGrid(table, cube.Range{-5000, 5000}, 0)

	if r := g.Range(); r != (cube.Range{-2048, 2047}) {
		t.Fatalf("expected the range to be clamped to [-2048, 2047], got %v", r)
	}
	for _, pos := range []cube.Pos{{0, 4106, 0}, {0, -2049, 0}, {0, 2048, 0}} {
		if g.InBounds(pos) {
			t.Fatalf("expected %v to be out of bounds", pos)
		}
	}
	g.SetRaw(cube.Pos{0, 10, 0}, typ.Default(), 0)
	g.SetRaw(cube.Pos{0, 2047, 0}, typ.Default().With("open", true), 0)
	if s := g.Block(cube.Pos{0, 4106, 0}); !s.Empty() {
		t.Fatalf("expected a cell 4096 above a written one to stay empty, got %v", s)
	}
	if s := g.Block(cube.Pos{0, -2049, 0}); !s.Empty() {
		t.Fatalf("expected a cell 4096 below a written one to stay empty, got %v", s)
	}
	if g.Len() != 2 {
		t.Fatalf("expected 2 cells, got %d", g.Len())
	}
}
