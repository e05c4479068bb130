package leveldb

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/util"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// DB implements a world provider backed by a leveldb database. Every non-empty cell is stored as an NBT compound
// holding the name of its type and its property values, so that stored data survives changes to the runtime IDs
// of a StateTable.
type DB struct {
	conf Config
	ldb  *leveldb.DB
	dir  string
}

// Compile time check to make sure DB implements world.Provider.
var _ world.Provider = (*DB)(nil)

// Dir returns the directory of the database, or an empty string if it is kept in memory.
func (db *DB) Dir() string {
	return db.dir
}

// Load reads the stored step, cells and pending ticks. If nothing was stored yet, an empty snapshot is returned.
// Load fails as a whole on the first cell or tick that does not map to a valid state of the table passed.
func (db *DB) Load(table *world.StateTable) (world.Snapshot, error) {
	var snap world.Snapshot
	if b, err := db.ldb.Get(keyVersion, nil); err == nil {
		if v := binary.LittleEndian.Uint32(b); v != version {
			return snap, fmt.Errorf("load: unsupported database version %v", v)
		}
	} else if !errors.Is(err, leveldb.ErrNotFound) {
		return snap, fmt.Errorf("load: read version: %w", err)
	}
	if b, err := db.ldb.Get(keyStep, nil); err == nil && len(b) == 8 {
		snap.Step = int64(binary.LittleEndian.Uint64(b))
	} else if err != nil && !errors.Is(err, leveldb.ErrNotFound) {
		return snap, fmt.Errorf("load: read step: %w", err)
	}

	iter := db.ldb.NewIterator(util.BytesPrefix(keyCell), nil)
	defer iter.Release()
	for iter.Next() {
		pos, ok := posFromCellKey(iter.Key())
		if !ok {
			continue
		}
		s, err := decodeState(table, iter.Value())
		if err != nil {
			return world.Snapshot{}, fmt.Errorf("load cell %v: %w", pos, err)
		}
		snap.Placements = append(snap.Placements, world.Placement{Pos: pos, State: s})
	}
	if err := iter.Error(); err != nil {
		return world.Snapshot{}, fmt.Errorf("load cells: %w", err)
	}

	ticks := db.ldb.NewIterator(util.BytesPrefix(keyTick), nil)
	defer ticks.Release()
	for ticks.Next() {
		var e tickEntry
		if err := nbt.UnmarshalEncoding(ticks.Value(), &e, nbt.LittleEndian); err != nil {
			return world.Snapshot{}, fmt.Errorf("load tick: %w", err)
		}
		t, ok := table.Type(e.Name)
		if !ok {
			return world.Snapshot{}, fmt.Errorf("load tick: %v: %w", e.Name, world.ErrUnknownType)
		}
		if e.Priority < int32(world.PriorityExtremelyHigh) || e.Priority > int32(world.PriorityLow) {
			return world.Snapshot{}, fmt.Errorf("load tick: %v: invalid priority %v", e.Name, e.Priority)
		}
		snap.Ticks = append(snap.Ticks, world.PendingTick{
			Pos:      cube.Pos{int(e.X), int(e.Y), int(e.Z)},
			Type:     t,
			Delay:    e.Delay,
			Priority: world.TickPriority(e.Priority),
		})
	}
	if err := ticks.Error(); err != nil {
		return world.Snapshot{}, fmt.Errorf("load ticks: %w", err)
	}
	db.conf.Log.Debug("Loaded world from database.", "cells", len(snap.Placements), "ticks", len(snap.Ticks), "step", snap.Step)
	return snap, nil
}

// Save replaces everything stored in the database with the snapshot passed. The replacement is written in a single
// batch, so a failing Save leaves the previous snapshot intact.
func (db *DB) Save(snap world.Snapshot) error {
	if db.conf.ReadOnly {
		return errors.New("save: database is read-only")
	}
	batch := new(leveldb.Batch)
	for _, prefix := range [][]byte{keyCell, keyTick} {
		iter := db.ldb.NewIterator(util.BytesPrefix(prefix), nil)
		for iter.Next() {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	batch.Put(keyVersion, binary.LittleEndian.AppendUint32(nil, version))
	batch.Put(keyStep, binary.LittleEndian.AppendUint64(nil, uint64(snap.Step)))
	for _, p := range snap.Placements {
		b, err := encodeState(p.State)
		if err != nil {
			return fmt.Errorf("save cell %v: %w", p.Pos, err)
		}
		batch.Put(cellKey(p.Pos), b)
	}
	for i, t := range snap.Ticks {
		b, err := nbt.MarshalEncoding(tickEntry{
			X:        int32(t.Pos[0]),
			Y:        int32(t.Pos[1]),
			Z:        int32(t.Pos[2]),
			Name:     t.Type.Name(),
			Delay:    t.Delay,
			Priority: int32(t.Priority),
		}, nbt.LittleEndian)
		if err != nil {
			return fmt.Errorf("save tick %v: %w", t.Pos, err)
		}
		batch.Put(tickKey(i), b)
	}
	if err := db.ldb.Write(batch, nil); err != nil {
		return fmt.Errorf("save: write batch: %w", err)
	}
	return nil
}

// Palette counts the stored cells per state, keyed by the state string in the name[key=value,...] format. Stored
// cells are not validated against a table.
func (db *DB) Palette() (map[string]int, error) {
	counts := make(map[string]int)
	iter := db.ldb.NewIterator(util.BytesPrefix(keyCell), nil)
	defer iter.Release()
	for iter.Next() {
		var m blockState
		if err := nbt.UnmarshalEncoding(iter.Value(), &m, nbt.LittleEndian); err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		counts[stateString(m)]++
	}
	return counts, iter.Error()
}

// Close closes the provider, saving any file that might need to be saved.
func (db *DB) Close() error {
	return db.ldb.Close()
}
