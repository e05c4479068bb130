package world

import (
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/google/uuid"
)

// World is a sparse grid of block states together with the machinery that propagates changes through it: the
// update dispatcher, the tick scheduler and the signal network. All mutation happens inside transactions run on a
// single goroutine, so World is safe for simultaneous use by callers of Exec. A nil *World is safe to use but not
// functional.
type World struct {
	conf Config
	id   uuid.UUID

	queue        chan transaction
	queueClosing chan struct{}
	queueing     sync.WaitGroup

	o sync.Once

	handler atomic.Pointer[Handler]

	closing chan struct{}
	running sync.WaitGroup

	grid  *Grid
	ticks *TickScheduler
	step  atomic.Int64

	// settling is true while the signal network is settling, so that writes made by the network do not start
	// another settle pass.
	settling bool

	r *rand.Rand

	tps   atomic.Uint64
	stats stats
}

// transaction is a type that may be added to the transaction queue of a World.
// Its Run method is called when the transaction is taken out of the queue.
type transaction interface {
	Run(w *World)
}

// New creates a new initialised world without a Provider, holding only the empty type. Most users will want to use
// Config.New instead, to pass a StateTable with registered types.
func New() *World {
	var conf Config
	return conf.New()
}

// ID returns the session ID of the World, generated when it was created.
func (w *World) ID() uuid.UUID {
	return w.id
}

// Table returns the StateTable of the World.
func (w *World) Table() *StateTable {
	return w.conf.Table
}

// Range returns the vertical range of the World.
func (w *World) Range() cube.Range {
	return w.conf.Range
}

// Step returns the current step of the World. It is safe to call outside of transactions.
func (w *World) Step() int64 {
	if w == nil {
		return 0
	}
	return w.step.Load()
}

// TPS returns the average amount of steps per second over the last samples, if the World ticks automatically.
func (w *World) TPS() float64 {
	return math.Float64frombits(w.tps.Load())
}

// Stats returns the counters of the World.
func (w *World) Stats() Stats {
	return w.stats.snapshot()
}

// ExecFunc is a function that performs a synchronised transaction on a World.
type ExecFunc func(tx *Tx)

// Exec performs a synchronised transaction f on a World. Exec returns a channel
// that is closed once the transaction is complete.
func (w *World) Exec(f ExecFunc) <-chan struct{} {
	c := make(chan struct{})
	w.queue <- normalTransaction{c: c, f: f}
	return c
}

// Tick advances the World by one step and blocks until the step is complete.
func (w *World) Tick() {
	<-w.Exec(ticker{}.tick)
}

// handleTransactions continuously reads transactions from the queue and runs
// them.
func (w *World) handleTransactions() {
	for {
		select {
		case tx := <-w.queue:
			tx.Run(w)
		case <-w.queueClosing:
			w.queueing.Done()
			return
		}
	}
}

// Handle changes the current Handler of the world. As a result, events called
// by the world will call the methods of the Handler passed. Handle sets the
// world's Handler to NopHandler if nil is passed.
func (w *World) Handle(h Handler) {
	if w == nil {
		return
	}
	if h == nil {
		h = NopHandler{}
	}
	w.handler.Store(&h)
}

// Handler returns the Handler of the world.
func (w *World) Handler() Handler {
	if w == nil {
		return NopHandler{}
	}
	return *w.handler.Load()
}

// emit passes an event to the Handler, stamping it with the current step.
func (w *World) emit(e Event) {
	e.Step = w.step.Load()
	w.Handler().HandleEvent(e)
}

// flush reports the writes recorded in the journal of the grid as block updates.
func (w *World) flush() {
	for _, c := range w.grid.Changes() {
		if c.Flags.Has(SuppressSync) {
			continue
		}
		w.emit(Event{Kind: EventBlockUpdate, Pos: c.Pos, State: c.New, Old: c.Old})
	}
}

// Save saves the World to the provider.
func (w *World) Save() error {
	var err error
	<-w.Exec(func(tx *Tx) {
		err = w.save()
	})
	return err
}

// save stores a snapshot of the World through the Provider.
func (w *World) save() error {
	if w.conf.ReadOnly {
		return nil
	}
	w.conf.Log.Debug("Saving world to provider...", "cells", w.grid.Len(), "ticks", w.ticks.Len())
	return w.conf.Provider.Save(w.snapshot())
}

// snapshot returns every cell and every pending tick of the World.
func (w *World) snapshot() Snapshot {
	snap := Snapshot{Step: w.step.Load(), Ticks: w.ticks.Pending()}
	snap.Placements = make([]Placement, 0, w.grid.Len())
	w.grid.All(func(pos cube.Pos, s *State) bool {
		snap.Placements = append(snap.Placements, Placement{Pos: pos, State: s})
		return true
	})
	return snap
}

// restore fills the grid and the scheduler of a World that was just created with the snapshot passed. No hooks run
// and no events are emitted.
func (w *World) restore(snap Snapshot) {
	w.step.Store(snap.Step)
	w.ticks = NewTickScheduler(snap.Step, w.conf.MaxTicksPerStep)
	for _, p := range snap.Placements {
		w.grid.SetRaw(p.Pos, p.State, SuppressSync)
	}
	w.grid.Changes()
	w.ticks.Restore(snap.Ticks)
}

// Close closes the world and saves all cells and pending ticks to the Provider.
func (w *World) Close() error {
	var err error
	w.o.Do(func() {
		err = w.close()
	})
	return err
}

// close stops the World from ticking, saves it to the Provider and closes the Provider.
func (w *World) close() error {
	var saveErr error
	<-w.Exec(func(tx *Tx) {
		// Let user code run anything that needs to be finished before closing.
		w.Handler().HandleClose()
		w.Handle(NopHandler{})

		saveErr = w.save()
	})
	if saveErr != nil {
		w.conf.Log.Error("save world: " + saveErr.Error())
	}

	close(w.closing)
	w.running.Wait()

	close(w.queueClosing)
	w.queueing.Wait()

	w.conf.Log.Debug("Closing provider...")
	if err := w.conf.Provider.Close(); err != nil {
		w.conf.Log.Error("close world provider: " + err.Error())
		return err
	}
	return saveErr
}

// Stats holds counters of benign anomalies observed by a World.
type Stats struct {
	// Changes is the amount of writes that changed a cell.
	Changes uint64
	// CascadeBudgetExceeded counts the changes whose update cascade was cut off by MaxUpdateDepth.
	CascadeBudgetExceeded uint64
	// FireOnMissingCell counts the scheduled ticks that fired for a cell that no longer held their type.
	FireOnMissingCell uint64
	// RecoveredPanics counts the behaviour hooks that panicked.
	RecoveredPanics uint64
}

type stats struct {
	changes, truncated, missingCell, panics atomic.Uint64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Changes:               s.changes.Load(),
		CascadeBudgetExceeded: s.truncated.Load(),
		FireOnMissingCell:     s.missingCell.Load(),
		RecoveredPanics:       s.panics.Load(),
	}
}
