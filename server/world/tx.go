package world

import (
	"math/rand/v2"

	"github.com/df-mc/blockflow/server/block/cube"
)

// normalTransaction is a transaction that runs a function and closes a channel once done.
type normalTransaction struct {
	c chan struct{}
	f ExecFunc
}

// Run creates a *Tx and calls t.f with it. Once the function returns, the signal network is settled, the changes
// made are reported to the Handler and the Tx is invalidated.
func (t normalTransaction) Run(w *World) {
	tx := &Tx{w: w, depth: w.conf.MaxUpdateDepth, root: true, state: &txState{}}
	t.f(tx)
	tx.settle()
	w.flush()
	tx.state.closed = true
	close(t.c)
}

type txState struct {
	closed bool
}

// Tx represents a synchronised transaction performed on a World. Most operations on a World can only be called
// through a Tx. Tx values are only valid within the function passed to World.Exec and within the behaviour hooks
// they are passed to: Using one after it returned panics.
//
// Every Tx carries the remaining update depth of the change it belongs to. Changes made through a Tx received by a
// behaviour hook count against the budget of the change that called the hook.
type Tx struct {
	w     *World
	depth int
	root  bool
	state *txState
}

// at returns a Tx sharing the transaction of tx with the depth passed.
func (tx *Tx) at(depth int) *Tx {
	return &Tx{w: tx.w, depth: depth, state: tx.state}
}

// World returns the World of the Tx. It panics if the transaction was already closed.
func (tx *Tx) World() *World {
	if tx.state.closed {
		panic("world.Tx: use of transaction after transaction finishes is not permitted")
	}
	return tx.w
}

// Table returns the StateTable of the World.
func (tx *Tx) Table() *StateTable {
	return tx.World().conf.Table
}

// Step returns the current step of the World.
func (tx *Tx) Step() int64 {
	return tx.World().step.Load()
}

// Rand returns the random source of the World. It is seeded with Config.Seed, so a World fed the same transactions
// produces the same values.
func (tx *Tx) Rand() *rand.Rand {
	return tx.World().r
}

// Depth returns the update depth left for changes made through the Tx.
func (tx *Tx) Depth() int {
	return tx.depth
}

// Range returns the vertical range of the World.
func (tx *Tx) Range() cube.Range {
	return tx.World().conf.Range
}

// Block returns the state at pos. The empty state is returned for positions that were never set or that are out of
// bounds.
func (tx *Tx) Block(pos cube.Pos) *State {
	return tx.World().grid.Block(pos)
}

// Digest returns a hash over every non-empty cell of the World and its state. Worlds holding the same cells have
// the same digest.
func (tx *Tx) Digest() uint64 {
	return tx.World().grid.Digest()
}

// Cells returns the amount of non-empty cells in the World.
func (tx *Tx) Cells() int {
	return tx.World().grid.Len()
}

// PendingTicks returns the amount of scheduled ticks that have not fired yet.
func (tx *Tx) PendingTicks() int {
	return tx.World().ticks.Len()
}

// InBounds reports if pos may hold a non-empty state.
func (tx *Tx) InBounds(pos cube.Pos) bool {
	return tx.World().grid.InBounds(pos)
}

// SetBlock writes s at pos and propagates the change with the side effects not suppressed by flags. A nil state
// is equivalent to the empty state. SetBlock returns false if nothing changed.
func (tx *Tx) SetBlock(pos cube.Pos, s *State, flags SetFlags) bool {
	w := tx.World()
	changed := w.setBlock(tx, pos, s, flags, tx.depth)
	if tx.root {
		tx.settle()
	}
	return changed
}

// BreakBlock destroys the cell at pos, dropping its items. It returns false if the cell was already empty.
func (tx *Tx) BreakBlock(pos cube.Pos) bool {
	w := tx.World()
	if w.grid.Block(pos).Empty() {
		return false
	}
	w.destroy(tx, pos, true, tx.depth)
	if tx.root {
		tx.settle()
	}
	return true
}

// PlaceBlock places s at pos as if it was placed against the face passed of the cell on the opposite side. The
// Placement hook of the type may adjust the state or cancel the placement. PlaceBlock returns false if the
// placement was cancelled, if the resulting state cannot survive at pos or if pos is not empty.
func (tx *Tx) PlaceBlock(pos cube.Pos, s *State, face cube.Face) bool {
	w := tx.World()
	if !w.grid.InBounds(pos) || !w.grid.Block(pos).Empty() {
		return false
	}
	if f := s.t.behaviour.Placement; f != nil {
		placed := s
		w.guard(pos, s, "placement", func() {
			placed = f(s, pos, face, tx)
		})
		if placed == nil || placed.Empty() {
			return false
		}
		s = placed
	}
	if !s.t.behaviour.canSurvive(s, pos, tx) {
		return false
	}
	return tx.SetBlock(pos, s, 0)
}

// Activate interacts with the cell at pos. It returns false if the type of the cell has no reaction to it.
func (tx *Tx) Activate(pos cube.Pos) bool {
	w := tx.World()
	s := w.grid.Block(pos)
	f := s.t.behaviour.Activate
	if f == nil {
		return false
	}
	var ok bool
	w.guard(pos, s, "activate", func() {
		ok = f(s, pos, tx)
	})
	if tx.root {
		tx.settle()
	}
	return ok
}

// ScheduleTick schedules a tick for type t at pos, delay steps from now. What happens if a tick is already pending
// for pos and t depends on the TickPolicy of t.
func (tx *Tx) ScheduleTick(pos cube.Pos, t *Type, delay int64, priority TickPriority) {
	w := tx.World()
	if !w.grid.InBounds(pos) {
		return
	}
	w.ticks.Schedule(pos, t, delay, priority, t.behaviour.TickPolicy)
}

// HasScheduledTick reports if a tick for type t at pos is pending.
func (tx *Tx) HasScheduledTick(pos cube.Pos, t *Type) bool {
	return tx.World().ticks.HasPending(pos, t)
}

// WillTickThisStep reports if a tick for type t at pos is pending and due on the current step.
func (tx *Tx) WillTickThisStep(pos cube.Pos, t *Type) bool {
	return tx.World().ticks.WillTickThisStep(pos, t)
}

// NotifyNeighbours calls the NeighbourChanged hook of each of the six neighbours of pos. The hooks run one level
// deeper than tx.
func (tx *Tx) NotifyNeighbours(pos cube.Pos) {
	tx.NotifyNeighboursExcept(pos, -1)
}

// NotifyNeighboursExcept calls the NeighbourChanged hook of the neighbours of pos, skipping the one on the face
// passed.
func (tx *Tx) NotifyNeighboursExcept(pos cube.Pos, skip cube.Face) {
	w := tx.World()
	if tx.depth <= 0 {
		w.stats.truncated.Add(1)
		return
	}
	w.notifyNeighbours(tx.at(tx.depth-1), pos, skip)
}

// Notify calls the NeighbourChanged hook of the cell at pos as if its neighbour at changed changed. The hook runs
// one level deeper than tx.
func (tx *Tx) Notify(pos, changed cube.Pos) {
	w := tx.World()
	s := w.grid.Block(pos)
	f := s.t.behaviour.NeighbourChanged
	if f == nil {
		return
	}
	if tx.depth <= 0 {
		w.stats.truncated.Add(1)
		return
	}
	w.guard(pos, s, "neighbour changed", func() {
		f(s, pos, changed, tx.at(tx.depth-1))
	})
}

// QueueSignal queues pos for recalculation by the signal network.
func (tx *Tx) QueueSignal(pos cube.Pos) {
	tx.World().conf.Network.Queue(pos)
}

// PlaySound emits an EventSound with the name passed at pos.
func (tx *Tx) PlaySound(pos cube.Pos, name string) {
	tx.World().emit(Event{Kind: EventSound, Pos: pos, State: tx.w.grid.Block(pos), Name: name})
}

// Emit passes an event to the Handler of the World.
func (tx *Tx) Emit(e Event) {
	tx.World().emit(e)
}

// settle settles the signal network, unless it is already settling further up the call stack.
func (tx *Tx) settle() {
	w := tx.w
	if w.settling {
		return
	}
	w.settling = true
	defer func() { w.settling = false }()
	w.conf.Network.Settle(tx.at(w.conf.MaxUpdateDepth))
}
