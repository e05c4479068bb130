package world

import (
	"cmp"
	"container/heap"
	"math"
	"slices"
	"time"

	"github.com/df-mc/blockflow/server/block/cube"
)

// TickPriority orders ticks due on the same step. Lower values fire first.
type TickPriority int8

// Priorities of scheduled ticks, from first to last.
const (
	PriorityExtremelyHigh TickPriority = iota
	PriorityVeryHigh
	PriorityHigh
	PriorityNormal
	PriorityLow
)

// String ...
func (p TickPriority) String() string {
	switch p {
	case PriorityExtremelyHigh:
		return "extremely_high"
	case PriorityVeryHigh:
		return "very_high"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// TickPolicy decides what happens when a tick is scheduled for a cell and type that already have a pending tick.
type TickPolicy uint8

const (
	// TickIgnore keeps the pending tick and drops the new one.
	TickIgnore TickPolicy = iota
	// TickReplace drops the pending tick in favour of the new one.
	TickReplace
	// TickExtend keeps whichever of the two ticks is due later.
	TickExtend
)

// ScheduledTick is a pending re-evaluation of the cell at Pos, valid only while the cell still holds a state of
// Type.
type ScheduledTick struct {
	Pos      cube.Pos
	Type     *Type
	Due      int64
	Priority TickPriority

	seq   uint64
	index int
}

// PendingTick is a ScheduledTick with a due step relative to the current step. It is used to persist ticks.
type PendingTick struct {
	Pos      cube.Pos
	Type     *Type
	Delay    int64
	Priority TickPriority
}

type tickKey struct {
	pos cube.Pos
	t   *Type
}

// TickScheduler is a priority queue of scheduled ticks. Ticks pop in order of due step, then priority, then the
// order they were scheduled in. At most one tick is pending per position and type. A TickScheduler is not safe for
// concurrent use.
type TickScheduler struct {
	h       tickHeap
	pending map[tickKey]*ScheduledTick
	seq     uint64

	current    int64
	maxPerStep int
	fired      int
	firedStep  int64
}

// NewTickScheduler returns an empty scheduler positioned at the step passed. No more than maxPerStep ticks are
// returned by Advance for a single step; any remaining ticks stay queued for the step after.
func NewTickScheduler(step int64, maxPerStep int) *TickScheduler {
	if maxPerStep <= 0 {
		maxPerStep = math.MaxInt
	}
	return &TickScheduler{pending: make(map[tickKey]*ScheduledTick), current: step, maxPerStep: maxPerStep, firedStep: step}
}

// Schedule schedules a tick for type t at pos, delay steps after the current step. Negative delays are ignored. If
// a tick is already pending for pos and t, policy decides which tick is kept. Schedule reports if the queue changed.
func (s *TickScheduler) Schedule(pos cube.Pos, t *Type, delay int64, priority TickPriority, policy TickPolicy) bool {
	if delay < 0 || t == nil {
		return false
	}
	due := s.current + delay
	key := tickKey{pos: pos, t: t}
	if existing, ok := s.pending[key]; ok {
		switch policy {
		case TickReplace:
		case TickExtend:
			if existing.Due >= due {
				return false
			}
		default:
			return false
		}
		existing.Due, existing.Priority, existing.seq = due, priority, s.nextSeq()
		heap.Fix(&s.h, existing.index)
		return true
	}
	tick := &ScheduledTick{Pos: pos, Type: t, Due: due, Priority: priority, seq: s.nextSeq()}
	s.pending[key] = tick
	heap.Push(&s.h, tick)
	return true
}

// HasPending reports if a tick for type t at pos is queued.
func (s *TickScheduler) HasPending(pos cube.Pos, t *Type) bool {
	_, ok := s.pending[tickKey{pos: pos, t: t}]
	return ok
}

// WillTickThisStep reports if a tick for type t at pos is queued and due on or before the current step.
func (s *TickScheduler) WillTickThisStep(pos cube.Pos, t *Type) bool {
	tick, ok := s.pending[tickKey{pos: pos, t: t}]
	return ok && tick.Due <= s.current
}

// Len returns the amount of queued ticks.
func (s *TickScheduler) Len() int {
	return len(s.h)
}

// Advance moves the scheduler to step and pops every tick due on or before it, in firing order. Advance may be
// called repeatedly for the same step to collect ticks scheduled while firing; the per-step limit is shared
// between those calls.
func (s *TickScheduler) Advance(step int64) []ScheduledTick {
	s.current = step
	if s.firedStep != step {
		s.firedStep, s.fired = step, 0
	}
	var due []ScheduledTick
	for len(s.h) > 0 && s.h[0].Due <= step && s.fired < s.maxPerStep {
		tick := heap.Pop(&s.h).(*ScheduledTick)
		delete(s.pending, tickKey{pos: tick.Pos, t: tick.Type})
		due = append(due, *tick)
		s.fired++
	}
	return due
}

// Pending returns every queued tick with its delay relative to the current step, in firing order.
func (s *TickScheduler) Pending() []PendingTick {
	sorted := make(tickHeap, len(s.h))
	copy(sorted, s.h)
	slices.SortFunc(sorted, compareTicks)
	ticks := make([]PendingTick, 0, len(sorted))
	for _, tick := range sorted {
		ticks = append(ticks, PendingTick{Pos: tick.Pos, Type: tick.Type, Delay: tick.Due - s.current, Priority: tick.Priority})
	}
	return ticks
}

// Restore schedules the ticks passed, for example after loading them from a Provider. Ticks already pending are
// replaced.
func (s *TickScheduler) Restore(ticks []PendingTick) {
	for _, t := range ticks {
		s.Schedule(t.Pos, t.Type, max(t.Delay, 0), t.Priority, TickReplace)
	}
}

func (s *TickScheduler) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// tickHeap implements heap.Interface ordered by (due, priority, seq).
type tickHeap []*ScheduledTick

func (h tickHeap) Len() int { return len(h) }

func (h tickHeap) Less(i, j int) bool { return compareTicks(h[i], h[j]) < 0 }

func compareTicks(a, b *ScheduledTick) int {
	if c := cmp.Compare(a.Due, b.Due); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

func (h tickHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *tickHeap) Push(x any) {
	tick := x.(*ScheduledTick)
	tick.index = len(*h)
	*h = append(*h, tick)
}

func (h *tickHeap) Pop() any {
	old := *h
	n := len(old)
	tick := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return tick
}

// ticker implements the World ticking loop.
type ticker struct {
	interval time.Duration
}

const (
	tpsSampleSize       = 20
	tpsWarningThreshold = 19.0
)

// tickLoop ticks the World once every interval until it is closed, keeping track of the average amount of steps
// per second.
func (t ticker) tickLoop(w *World) {
	tc := time.NewTicker(t.interval)
	defer tc.Stop()

	target := 1 / t.interval.Seconds()
	lastTick := time.Now()
	var (
		durationSum time.Duration
		ticksCount  int
		warned      bool
	)
	for {
		select {
		case <-tc.C:
			tickStart := time.Now()
			durationSum += tickStart.Sub(lastTick)
			lastTick = tickStart
			if ticksCount++; ticksCount >= tpsSampleSize && durationSum > 0 {
				tps := 1 / (durationSum / time.Duration(ticksCount)).Seconds()
				w.tps.Store(math.Float64bits(tps))
				if tps < target*tpsWarningThreshold/20 {
					if !warned {
						w.conf.Log.Warn("TPS dropped below threshold.", "tps", tps)
						warned = true
					}
				} else {
					warned = false
				}
				durationSum, ticksCount = 0, 0
			}
			<-w.Exec(t.tick)
		case <-w.closing:
			// World is being closed: Stop ticking and get rid of a task.
			w.running.Done()
			return
		}
	}
}

// tick advances the World by a single step: Due scheduled ticks fire, the signal network settles and the changes
// made are reported to the Handler.
func (ticker) tick(tx *Tx) {
	w := tx.w
	step := w.step.Add(1)

	for {
		due := w.ticks.Advance(step)
		if len(due) == 0 {
			break
		}
		for _, t := range due {
			w.fireTick(tx, t)
		}
	}
}

// fireTick runs the ScheduledTick hook of the cell a tick was scheduled for, if the cell still holds the type the
// tick was scheduled for.
func (w *World) fireTick(tx *Tx, t ScheduledTick) {
	s := w.grid.Block(t.Pos)
	if s.t != t.Type {
		w.stats.missingCell.Add(1)
		w.conf.Log.Debug("Scheduled tick for missing cell.", "pos", t.Pos, "type", t.Type.name, "found", s.t.name)
		return
	}
	if hook := s.t.behaviour.ScheduledTick; hook != nil {
		w.guard(t.Pos, s, "scheduled tick", func() {
			hook(s, t.Pos, tx.at(w.conf.MaxUpdateDepth))
		})
	}
	tx.settle()
}
