package world

import (
	"sync"
	"testing"

	"github.com/df-mc/blockflow/server/block/cube"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (h *recordingHandler) HandleEvent(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHandler) HandleClose() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

func (h *recordingHandler) kinds(k EventKind) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Event
	for _, e := range h.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func newTestWorld(t *testing.T, conf Config) (*World, *recordingHandler) {
	t.Helper()
	if conf.Log == nil {
		conf.Log = discardLog()
	}
	w := conf.New()
	h := &recordingHandler{}
	w.Handle(h)
	t.Cleanup(func() {
		_ = w.Close()
	})
	return w, h
}

func TestSetBlockIdempotent(t *testing.T) {
	table, typ := testTable(t)
	var calls int
	watcher := table.MustRegister("watcher", Behaviour{
		NeighbourChanged: func(s *State, pos, _ cube.Pos, tx *Tx) {
			calls++
			tx.ScheduleTick(pos, s.Type(), int64(calls), PriorityNormal)
		},
		TickPolicy: TickReplace,
	})
	w, h := newTestWorld(t, Config{Table: table})

	pos := cube.Pos{0, 0, 0}
	var first, second bool
	var ticksBefore, ticksAfter int
	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(pos.Side(cube.FaceUp), watcher.Default(), 0)
	})
	calls = 0
	<-w.Exec(func(tx *Tx) {
		first = tx.SetBlock(pos, typ.Default(), 0)
		ticksBefore = tx.PendingTicks()
		second = tx.SetBlock(pos, typ.Default(), 0)
		ticksAfter = tx.PendingTicks()
	})
	if !first || second {
		t.Fatalf("expected only the first write to change the cell, got %v and %v", first, second)
	}
	if ticksBefore != 1 || ticksAfter != ticksBefore {
		t.Fatalf("expected the repeated write to leave the single pending tick alone, got %d then %d", ticksBefore, ticksAfter)
	}
	if calls != 1 {
		t.Fatalf("expected a single neighbour notification, got %d", calls)
	}
	if got := len(h.kinds(EventBlockUpdate)); got != 2 {
		t.Fatalf("expected 2 block updates in total, got %d", got)
	}
}

func TestNeighbourNotificationOrder(t *testing.T) {
	table, typ := testTable(t)
	var order []cube.Pos
	recorder := table.MustRegister("recorder", Behaviour{
		NeighbourChanged: func(_ *State, pos, changed cube.Pos, _ *Tx) {
			if changed == (cube.Pos{}) {
				order = append(order, pos)
			}
		},
	})
	w, _ := newTestWorld(t, Config{Table: table})

	<-w.Exec(func(tx *Tx) {
		for _, face := range []cube.Face{cube.FaceEast, cube.FaceWest, cube.FaceSouth, cube.FaceNorth, cube.FaceUp, cube.FaceDown} {
			tx.SetBlock(cube.Pos{}.Side(face), recorder.Default(), SuppressNeighbours)
		}
		order = nil
		tx.SetBlock(cube.Pos{}, typ.Default(), 0)
	})
	want := []cube.Pos{{0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}}
	if len(order) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("notification %d: expected %v, got %v", i, want[i], order[i])
		}
	}
}

func TestCascadeDepthBound(t *testing.T) {
	table, _ := testTable(t)
	var recomputes int
	flip := table.MustRegister("flip", Behaviour{
		UpdateShape: func(s *State, _ cube.Face, _ *State, _, _ cube.Pos, _ *Tx) *State {
			recomputes++
			return s.Cycle("on")
		},
	}, BoolProperty("on", false))
	w, _ := newTestWorld(t, Config{Table: table, MaxUpdateDepth: 16})

	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(cube.Pos{1, 0, 0}, flip.Default(), KnownShape)
		tx.SetBlock(cube.Pos{0, 0, 0}, flip.Default(), 0)
	})
	if recomputes == 0 || recomputes > 16 {
		t.Fatalf("expected the cyclic cascade to stop within the depth budget, got %d recomputes", recomputes)
	}
	if w.Stats().CascadeBudgetExceeded == 0 {
		t.Fatalf("expected the truncation to be counted")
	}
}

func TestPlaceHookChainDepthBound(t *testing.T) {
	table, _ := testTable(t)
	var ping, pong *Type
	spread := func(next **Type) func(*State, *State, cube.Pos, *Tx) {
		return func(_, _ *State, pos cube.Pos, tx *Tx) {
			tx.SetBlock(pos.Side(cube.FaceEast), (*next).Default(), 0)
		}
	}
	ping = table.MustRegister("ping", Behaviour{OnPlace: spread(&pong)})
	pong = table.MustRegister("pong", Behaviour{OnPlace: spread(&ping)})
	w, _ := newTestWorld(t, Config{Table: table, MaxUpdateDepth: 16, Radius: 2000})

	var cells int
	var last *State
	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(cube.Pos{}, ping.Default(), 0)
		cells = tx.Cells()
		last = tx.Block(cube.Pos{16, 0, 0})
	})
	if cells != 17 {
		t.Fatalf("expected the place hook chain to stop after 17 cells, got %d", cells)
	}
	if !ping.Is(last) {
		t.Fatalf("expected the last written cell to hold ping, got %v", last)
	}
	if w.Stats().CascadeBudgetExceeded == 0 {
		t.Fatalf("expected the truncation to be counted")
	}
}

func TestShapeCascadeDestroysUnsupported(t *testing.T) {
	table, typ := testTable(t)
	hanging := table.MustRegister("hanging", Behaviour{
		Drops: func(*State) []string { return []string{"hanging"} },
		UpdateShape: func(s *State, face cube.Face, neighbour *State, _, _ cube.Pos, tx *Tx) *State {
			if face == cube.FaceUp && neighbour.Empty() {
				return tx.Table().Empty()
			}
			return s
		},
	})
	w, h := newTestWorld(t, Config{Table: table})

	column := []cube.Pos{{0, 10, 0}, {0, 9, 0}, {0, 8, 0}}
	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(column[0], typ.Default(), 0)
		tx.SetBlock(column[1], hanging.Default(), 0)
		tx.SetBlock(column[2], hanging.Default(), 0)
	})
	var remaining int
	<-w.Exec(func(tx *Tx) {
		tx.BreakBlock(column[0])
		for _, pos := range column {
			if !tx.Block(pos).Empty() {
				remaining++
			}
		}
	})
	if remaining != 0 {
		t.Fatalf("expected the whole hanging column to be destroyed, %d cells remain", remaining)
	}
	if got := len(h.kinds(EventDrop)); got != 2 {
		t.Fatalf("expected 2 drops from the hanging cells, got %d", got)
	}
}

func TestFlagsSuppressEffects(t *testing.T) {
	table, typ := testTable(t)
	var shapes int
	table.MustRegister("droppy", Behaviour{Drops: func(*State) []string { return []string{"droppy"} }})
	shaped := table.MustRegister("shaped", Behaviour{
		UpdateShape: func(s *State, _ cube.Face, _ *State, _, _ cube.Pos, _ *Tx) *State {
			shapes++
			return s
		},
	})
	w, h := newTestWorld(t, Config{Table: table})

	droppy, _ := table.Type("droppy")
	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(cube.Pos{0, 1, 0}, shaped.Default(), 0)
		shapes = 0
		tx.SetBlock(cube.Pos{0, 0, 0}, typ.Default(), KnownShape|SuppressSync)
		tx.SetBlock(cube.Pos{5, 0, 0}, droppy.Default(), 0)
		tx.SetBlock(cube.Pos{5, 0, 0}, nil, SuppressDrops)
		tx.SetBlock(cube.Pos{6, 0, 0}, droppy.Default(), 0)
		tx.SetBlock(cube.Pos{6, 0, 0}, nil, 0)
	})
	if shapes != 0 {
		t.Fatalf("expected KnownShape to skip shape updates, got %d", shapes)
	}
	if drops := h.kinds(EventDrop); len(drops) != 1 || drops[0].Pos != (cube.Pos{6, 0, 0}) {
		t.Fatalf("expected a single drop at (6,0,0), got %+v", drops)
	}
	for _, e := range h.kinds(EventBlockUpdate) {
		if e.Pos == (cube.Pos{0, 0, 0}) {
			t.Fatalf("expected SuppressSync to hide the block update at the origin")
		}
	}
}

func TestPanickingBehaviourIsIsolated(t *testing.T) {
	table, typ := testTable(t)
	var recomputed int
	table.MustRegister("faulty", Behaviour{
		UpdateShape: func(*State, cube.Face, *State, cube.Pos, cube.Pos, *Tx) *State {
			panic("faulty shape")
		},
	})
	healthy := table.MustRegister("healthy", Behaviour{
		UpdateShape: func(s *State, _ cube.Face, _ *State, _, _ cube.Pos, _ *Tx) *State {
			recomputed++
			return s
		},
	})
	faulty, _ := table.Type("faulty")
	w, _ := newTestWorld(t, Config{Table: table})

	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(cube.Pos{0, -1, 0}, faulty.Default(), KnownShape)
		tx.SetBlock(cube.Pos{0, 1, 0}, healthy.Default(), KnownShape)
		recomputed = 0
		tx.SetBlock(cube.Pos{}, typ.Default(), 0)
	})
	if recomputed != 1 {
		t.Fatalf("expected the healthy neighbour to be recomputed after the faulty one, got %d", recomputed)
	}
	if got := w.Stats().RecoveredPanics; got != 1 {
		t.Fatalf("expected 1 recovered panic, got %d", got)
	}
}

func TestScheduledTickFiring(t *testing.T) {
	table, typ := testTable(t)
	var fired []int64
	timer := table.MustRegister("timer", Behaviour{
		ScheduledTick: func(_ *State, _ cube.Pos, tx *Tx) {
			fired = append(fired, tx.Step())
		},
	})
	w, _ := newTestWorld(t, Config{Table: table})

	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(cube.Pos{}, timer.Default(), 0)
		tx.ScheduleTick(cube.Pos{}, timer, 3, PriorityNormal)
		tx.SetBlock(cube.Pos{1, 0, 0}, timer.Default(), 0)
		tx.ScheduleTick(cube.Pos{1, 0, 0}, timer, 2, PriorityNormal)
	})
	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(cube.Pos{1, 0, 0}, typ.Default(), 0)
	})
	for range 4 {
		w.Tick()
	}
	if len(fired) != 1 || fired[0] != 3 {
		t.Fatalf("expected a single tick at step 3, got %v", fired)
	}
	if got := w.Stats().FireOnMissingCell; got != 1 {
		t.Fatalf("expected the tick of the replaced cell to be a no-op, got %d", got)
	}
}

func TestDeterministicDigest(t *testing.T) {
	run := func() uint64 {
		table, typ := testTable(t)
		spread := table.MustRegister("spread", Behaviour{
			ScheduledTick: func(s *State, pos cube.Pos, tx *Tx) {
				face := cube.HorizontalFaces()[tx.Rand().IntN(4)]
				tx.SetBlock(pos.Side(face), s, 0)
				tx.ScheduleTick(pos.Side(face), s.Type(), 1, PriorityNormal)
			},
		})
		w, _ := newTestWorld(t, Config{Table: table, Seed: 42})
		<-w.Exec(func(tx *Tx) {
			tx.SetBlock(cube.Pos{}, spread.Default(), 0)
			tx.SetBlock(cube.Pos{0, 1, 0}, typ.Default(), 0)
			tx.ScheduleTick(cube.Pos{}, spread, 1, PriorityNormal)
		})
		for range 20 {
			w.Tick()
		}
		var d uint64
		<-w.Exec(func(tx *Tx) {
			d = w.grid.Digest()
		})
		return d
	}
	if a, b := run(), run(); a != b {
		t.Fatalf("expected equal digests for equal seeds and operations, got %x and %x", a, b)
	}
}

type memProvider struct {
	snap   Snapshot
	closed bool
}

func (p *memProvider) Load(*StateTable) (Snapshot, error) { return p.snap, nil }
func (p *memProvider) Save(s Snapshot) error              { p.snap = s; return nil }
func (p *memProvider) Close() error                       { p.closed = true; return nil }

func TestCloseSavesSnapshot(t *testing.T) {
	table, typ := testTable(t)
	p := &memProvider{}
	w := Config{Table: table, Provider: p, Log: discardLog()}.New()
	h := &recordingHandler{}
	w.Handle(h)

	<-w.Exec(func(tx *Tx) {
		tx.SetBlock(cube.Pos{1, 2, 3}, typ.Default().With("level", 3), 0)
		tx.ScheduleTick(cube.Pos{1, 2, 3}, typ, 5, PriorityHigh)
	})
	w.Tick()
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !p.closed || !h.closed {
		t.Fatalf("expected provider and handler to be closed")
	}
	if p.snap.Step != 1 || len(p.snap.Placements) != 1 || len(p.snap.Ticks) != 1 || p.snap.Ticks[0].Delay != 4 {
		t.Fatalf("unexpected snapshot %+v", p.snap)
	}

	w2, _ := newTestWorld(t, Config{Table: table, Provider: &memProvider{snap: p.snap}})
	var got *State
	var pending bool
	<-w2.Exec(func(tx *Tx) {
		got = tx.Block(cube.Pos{1, 2, 3})
		pending = tx.HasScheduledTick(cube.Pos{1, 2, 3}, typ)
	})
	if got != typ.Default().With("level", 3) || !pending || w2.Step() != 1 {
		t.Fatalf("expected the snapshot to be restored, got %v (pending %v, step %d)", got, pending, w2.Step())
	}
}
