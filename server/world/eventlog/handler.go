// Package eventlog implements a world.Handler that records the events of a World to compressed JSON lines files.
package eventlog

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/blockflow/server/world"
	"github.com/google/uuid"
)

// Config holds the options of a Handler.
type Config struct {
	// Log is the Logger used to report write errors. If nil, slog.Default() is used.
	Log *slog.Logger
	// Dir is the directory that log files are written to.
	Dir string
	// Prefix is the prefix of the file names. It defaults to "events".
	Prefix string
	// Buffer is the amount of events that may wait to be written before new events are dropped. It defaults to
	// 4096.
	Buffer int
	// World is the session ID of the World the events belong to. It is stamped into every entry.
	World uuid.UUID
}

// Entry is a single line of an event log.
type Entry struct {
	World  string     `json:"world"`
	Step   int64      `json:"step"`
	Kind   string     `json:"kind"`
	Pos    [3]int     `json:"pos"`
	Centre [3]float64 `json:"centre"`
	State  string     `json:"state,omitempty"`
	Old    string     `json:"old,omitempty"`
	Name   string     `json:"name,omitempty"`
	Level  int        `json:"level,omitempty"`
}

// Handler is a world.Handler that passes events to a goroutine writing them to disk. HandleEvent never blocks: If
// the buffer is full, the event is dropped and counted.
type Handler struct {
	conf Config
	w    *writer

	entries chan Entry
	done    sync.WaitGroup
	closed  atomic.Bool
	dropped atomic.Uint64
}

// Compile time check to make sure Handler implements world.Handler.
var _ world.Handler = (*Handler)(nil)

// New creates a Handler and starts writing events in the background.
func (conf Config) New() *Handler {
	h := conf.handler()
	h.done.Add(1)
	go h.run()
	return h
}

func (conf Config) handler() *Handler {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Prefix == "" {
		conf.Prefix = "events"
	}
	if conf.Buffer <= 0 {
		conf.Buffer = 4096
	}
	return &Handler{
		conf:    conf,
		w:       &writer{dir: conf.Dir, prefix: conf.Prefix, now: time.Now},
		entries: make(chan Entry, conf.Buffer),
	}
}

// HandleEvent queues e to be written.
func (h *Handler) HandleEvent(e world.Event) {
	if h.closed.Load() {
		return
	}
	select {
	case h.entries <- h.entry(e):
	default:
		h.dropped.Add(1)
	}
}

// HandleClose writes all queued events and closes the current file.
func (h *Handler) HandleClose() {
	if h.closed.Swap(true) {
		return
	}
	close(h.entries)
	h.done.Wait()
	if n := h.dropped.Load(); n > 0 {
		h.conf.Log.Warn("Event log dropped events.", "dropped", n)
	}
}

// Dropped returns the amount of events dropped because the buffer was full.
func (h *Handler) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *Handler) run() {
	defer h.done.Done()
	for e := range h.entries {
		if err := h.w.write(e); err != nil {
			h.conf.Log.Error("write event: "+err.Error(), "dir", h.conf.Dir)
			continue
		}
		if len(h.entries) == 0 {
			if err := h.w.flush(); err != nil {
				h.conf.Log.Error("flush events: "+err.Error(), "dir", h.conf.Dir)
			}
		}
	}
	if err := h.w.close(); err != nil {
		h.conf.Log.Error("close event log: "+err.Error(), "dir", h.conf.Dir)
	}
}

func (h *Handler) entry(e world.Event) Entry {
	c := e.Pos.Vec3Centre()
	en := Entry{
		World:  h.conf.World.String(),
		Step:   e.Step,
		Kind:   e.Kind.String(),
		Pos:    e.Pos,
		Centre: [3]float64{c[0], c[1], c[2]},
		Name:   e.Name,
		Level:  e.Level,
	}
	if e.State != nil {
		en.State = e.State.String()
	}
	if e.Old != nil {
		en.Old = e.Old.String()
	}
	return en
}
