package world

import "github.com/df-mc/blockflow/server/block/cube"

// setBlock writes s at pos and propagates the change with the remaining depth passed. It reports if the cell
// changed.
func (w *World) setBlock(tx *Tx, pos cube.Pos, s *State, flags SetFlags, depth int) bool {
	if s == nil {
		s = w.conf.Table.empty
	}
	if !w.grid.InBounds(pos) {
		return false
	}
	old := w.grid.SetRaw(pos, s, flags)
	if old == s {
		return false
	}
	w.stats.changes.Add(1)
	w.applyChange(tx, pos, old, s, flags, depth)
	return true
}

// applyChange runs the side effects of the cell at pos changing from old to s: the remove and place hooks of the
// types involved, item drops, light updates, neighbour notifications and the shape recomputation of the six
// neighbours. Hooks see a Tx with depth-1. Once depth reaches zero the change still happens and its drops and light
// update are still emitted, but no hook runs and neighbours are neither notified nor recomputed.
func (w *World) applyChange(tx *Tx, pos cube.Pos, old, s *State, flags SetFlags, depth int) {
	if old == s {
		return
	}
	replaced := old.t != s.t
	truncated := depth <= 0
	hooks := tx.at(depth - 1)
	if replaced {
		if f := old.t.behaviour.OnRemove; f != nil && !truncated {
			w.guard(pos, old, "remove", func() {
				f(old, s, pos, hooks, flags.Has(MovedByPiston))
			})
		}
		if s.Empty() && !flags.Has(SuppressDrops) {
			w.drop(pos, old)
		}
	}
	if !flags.Has(SuppressLight) {
		if l := s.t.behaviour.light(s); l != old.t.behaviour.light(old) {
			w.emit(Event{Kind: EventLightUpdate, Pos: pos, State: s, Level: int(l)})
		}
	}
	if truncated {
		w.stats.truncated.Add(1)
		w.conf.Log.Debug("Update cascade truncated.", "pos", pos, "state", s.String())
		return
	}
	if replaced {
		if f := s.t.behaviour.OnPlace; f != nil {
			w.guard(pos, s, "place", func() {
				f(s, old, pos, hooks)
			})
		}
	}
	if !flags.Has(SuppressNeighbours) {
		w.notifyNeighbours(hooks, pos, -1)
	}
	if !flags.Has(KnownShape) {
		w.updateShapes(tx, pos, s, (flags|SuppressNeighbours)&^SuppressDrops, depth-1)
	}
}

// updateShapes recomputes the six neighbours of pos, in face order, after the cell at pos changed to s. Neighbours
// whose recomputed state differs are written with the flags passed, or destroyed if they recompute to the empty
// state, each recursing with the depth passed.
func (w *World) updateShapes(tx *Tx, pos cube.Pos, s *State, flags SetFlags, depth int) {
	for _, face := range cube.Faces() {
		np := pos.Side(face)
		ns := w.grid.Block(np)
		f := ns.t.behaviour.UpdateShape
		if f == nil {
			continue
		}
		updated := ns
		w.guard(np, ns, "update shape", func() {
			updated = f(ns, face.Opposite(), s, np, pos, tx.at(depth))
		})
		if updated == nil || updated == ns {
			continue
		}
		w.updateOrDestroy(tx, np, updated, flags, depth)
	}
}

// updateOrDestroy writes a recomputed state, destroying the cell if the state is empty.
func (w *World) updateOrDestroy(tx *Tx, pos cube.Pos, s *State, flags SetFlags, depth int) {
	if s.Empty() {
		w.destroy(tx, pos, !flags.Has(SuppressDrops), depth)
		return
	}
	w.setBlock(tx, pos, s, flags&^SuppressDrops, depth)
}

// destroy replaces the cell at pos with the empty state, dropping its items if drops is true.
func (w *World) destroy(tx *Tx, pos cube.Pos, drops bool, depth int) {
	var flags SetFlags
	if !drops {
		flags |= SuppressDrops
	}
	w.setBlock(tx, pos, w.conf.Table.empty, flags, depth)
}

// drop emits an EventDrop for each item dropped by s.
func (w *World) drop(pos cube.Pos, s *State) {
	f := s.t.behaviour.Drops
	if f == nil {
		return
	}
	var drops []string
	w.guard(pos, s, "drops", func() {
		drops = f(s)
	})
	for _, name := range drops {
		w.emit(Event{Kind: EventDrop, Pos: pos, State: s, Name: name})
	}
}

// notifyNeighbours calls the NeighbourChanged hook of each neighbour of pos in face order, except for the one on
// the face skip.
func (w *World) notifyNeighbours(tx *Tx, pos cube.Pos, skip cube.Face) {
	for _, face := range cube.Faces() {
		if face == skip {
			continue
		}
		np := pos.Side(face)
		ns := w.grid.Block(np)
		f := ns.t.behaviour.NeighbourChanged
		if f == nil {
			continue
		}
		w.guard(np, ns, "neighbour changed", func() {
			f(ns, np, pos, tx)
		})
	}
}

// guard calls f and recovers from any panic raised by it, logging the hook and the cell it was raised for.
func (w *World) guard(pos cube.Pos, s *State, hook string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			w.stats.panics.Add(1)
			w.conf.Log.Error("Recovered from panic in block behaviour.", "hook", hook, "pos", pos, "state", s.String(), "panic", r)
		}
	}()
	f()
}
