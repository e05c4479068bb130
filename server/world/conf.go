package world

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/google/uuid"
)

// SignalNetwork recalculates the power of wire cells. Behaviours queue positions through Tx.QueueSignal and the
// World settles the network after the outermost change of a transaction and after every scheduled tick.
type SignalNetwork interface {
	// Queue queues pos for recalculation.
	Queue(pos cube.Pos)
	// Settle recalculates queued positions, writing changes through the Tx passed.
	Settle(tx *Tx)
	// Len returns the amount of queued positions.
	Len() int
}

type nopNetwork struct{}

func (nopNetwork) Queue(cube.Pos) {}
func (nopNetwork) Settle(*Tx)     {}
func (nopNetwork) Len() int       { return 0 }

// Config may be used to create a new World. It holds a variety of fields that influence the World.
type Config struct {
	// Log is the Logger that will be used to log errors and debug messages to. If set to nil, slog.Default() is
	// used.
	Log *slog.Logger
	// Table is the StateTable holding the types that may be placed in the World. If nil, a table holding only the
	// empty type is created.
	Table *StateTable
	// Provider is the Provider implementation used to read and write world data. If set to nil, the Provider used
	// will be NopProvider, which does not store any data to disk.
	Provider Provider
	// Network is the SignalNetwork used to recalculate wire cells. If nil, wire power never changes.
	Network SignalNetwork
	// ReadOnly specifies if the World should be read-only, meaning no new data will be written to the Provider.
	ReadOnly bool
	// Range is the vertical range of cells that may be set. Defaults to [-64, 319] and is clamped to [-2048, 2047].
	Range cube.Range
	// Radius is the largest absolute X and Z of cells that may be set. Defaults to the largest supported radius.
	Radius int
	// MaxUpdateDepth bounds the recursion of a single change through neighbour notifications and shape updates.
	// Defaults to 512.
	MaxUpdateDepth int
	// MaxTicksPerStep bounds the amount of scheduled ticks fired in a single step. Defaults to 65536.
	MaxTicksPerStep int
	// TickInterval is the time between two automatic steps. If zero, the World only steps when World.Tick is called.
	TickInterval time.Duration
	// Seed seeds the random source available to behaviours through Tx.Rand.
	Seed uint64
}

// New creates a new World using the Config conf. The World returned will start ticking as soon as a TickInterval
// is set, and loads the data stored by the Provider before returning.
func (conf Config) New() *World {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Table == nil {
		conf.Table = TableConfig{Log: conf.Log}.New()
	}
	if conf.Provider == nil {
		conf.Provider = NopProvider{}
	}
	if conf.Network == nil {
		conf.Network = nopNetwork{}
	}
	if conf.Range == (cube.Range{}) {
		conf.Range = cube.Range{-64, 319}
	}
	if conf.MaxUpdateDepth <= 0 {
		conf.MaxUpdateDepth = 512
	}
	if conf.MaxTicksPerStep <= 0 {
		conf.MaxTicksPerStep = 65536
	}
	grid := NewGrid(conf.Table, conf.Range, conf.Radius)
	conf.Range = grid.Range()
	w := &World{
		conf:         conf,
		id:           uuid.New(),
		grid:         grid,
		r:            rand.New(rand.NewPCG(conf.Seed, conf.Seed)),
		queue:        make(chan transaction, 128),
		queueClosing: make(chan struct{}),
		closing:      make(chan struct{}),
	}
	w.handler.Store(ptr(Handler(NopHandler{})))

	snap, err := conf.Provider.Load(conf.Table)
	if err != nil {
		conf.Log.Error("load world: "+err.Error(), "world", w.id)
		snap = Snapshot{}
	}
	w.restore(snap)

	w.queueing.Add(1)
	go w.handleTransactions()
	if conf.TickInterval > 0 {
		w.running.Add(1)
		go ticker{interval: conf.TickInterval}.tickLoop(w)
	}
	return w
}

func ptr[T any](v T) *T {
	return &v
}
