package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/df-mc/blockflow/server/block"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/eventlog"
	"github.com/df-mc/blockflow/server/world/leveldb"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// Config contains options for starting a blockflow server.
type Config struct {
	// Log is the Logger to use for logging information. If nil, Log is set to
	// slog.Default().
	Log *slog.Logger
	// Table is the StateTable holding every type that may be placed in the
	// world. If nil, Table is set to block.Table().
	Table *world.StateTable
	// WorldProvider is the world.Provider used for storing and loading world
	// data. If left as nil, the world starts empty every time and nothing is
	// stored.
	WorldProvider world.Provider
	// ReadOnlyWorld specifies if the world should be read only. If set to true,
	// the WorldProvider won't be saved to at all.
	ReadOnlyWorld bool
	// TickInterval is the time between two steps of the world. If zero, the
	// world only advances when World.Tick is called.
	TickInterval time.Duration
	// MaxUpdateDepth bounds the cascade of a single change. If 0, the world
	// default of 512 is used.
	MaxUpdateDepth int
	// MaxTicksPerStep bounds the amount of scheduled ticks fired per step.
	MaxTicksPerStep int
	// SignalBudget bounds the amount of wire recalculations of a single settle
	// of the signal network. Recalculations over budget carry over.
	SignalBudget int
	// Seed seeds the random source available to behaviours.
	Seed uint64
	// EventLogDir is the directory that events of the world are logged to. If
	// empty, events are not logged.
	EventLogDir string
	// EventLogBuffer is the amount of events that may wait to be written
	// before events are dropped.
	EventLogBuffer int
}

// New creates a Server using fields of conf. The world of the Server is
// created and loaded from the WorldProvider before New returns.
func (conf Config) New() *Server {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Table == nil {
		conf.Table = block.Table()
	}
	if conf.WorldProvider == nil {
		conf.WorldProvider = world.NopProvider{}
	}
	srv := &Server{conf: conf, closed: make(chan struct{})}
	srv.network = redstone.Config{Log: conf.Log, BudgetPerSettle: conf.SignalBudget}.New()
	srv.world = world.Config{
		Log:             conf.Log,
		Table:           conf.Table,
		Provider:        conf.WorldProvider,
		Network:         srv.network,
		ReadOnly:        conf.ReadOnlyWorld,
		MaxUpdateDepth:  conf.MaxUpdateDepth,
		MaxTicksPerStep: conf.MaxTicksPerStep,
		TickInterval:    conf.TickInterval,
		Seed:            conf.Seed,
	}.New()
	if conf.EventLogDir != "" {
		srv.events = eventlog.Config{
			Log:    conf.Log,
			Dir:    conf.EventLogDir,
			Buffer: conf.EventLogBuffer,
			World:  srv.world.ID(),
		}.New()
		srv.world.Handle(srv.events)
	}
	conf.Log.Info("World loaded.", "id", srv.world.ID(), "step", srv.world.Step(), "types", len(conf.Table.Types()))
	return srv
}

// UserConfig is the user configuration for a blockflow server. It holds
// settings that affect the simulation and its storage. UserConfig may be
// serialised and can be converted to a Config by calling UserConfig.Config().
type UserConfig struct {
	World struct {
		// SaveData controls whether the world's data will be saved and loaded.
		// If true, the server will use the LevelDB data provider and if false,
		// an empty provider will be used.
		SaveData bool
		// Folder is the folder that the data of the world resides in.
		Folder string
		// ReadOnly prevents the world from being written to the provider.
		ReadOnly bool
		// Seed seeds the random source of the simulation.
		Seed uint64
	}
	Simulation struct {
		// TicksPerSecond is the amount of steps run every second. If 0, the
		// world only advances on demand, for example through the console.
		TicksPerSecond int
		// MaxUpdateDepth bounds the cascade of a single change.
		MaxUpdateDepth int
		// MaxTicksPerStep bounds the amount of scheduled ticks fired per step.
		MaxTicksPerStep int
		// SignalBudget bounds the wire recalculations of a single settle.
		SignalBudget int
	}
	Events struct {
		// Enabled controls if world events are written to compressed logs.
		Enabled bool
		// Folder is the folder that event logs are written to.
		Folder string
		// Buffer is the amount of events that may be queued before dropping.
		Buffer int
	}
}

// Config converts a UserConfig to a Config, so that it may be used for creating
// a Server. An error is returned if creating the data provider failed.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	if uc.Simulation.TicksPerSecond < 0 {
		return Config{}, fmt.Errorf("invalid ticks per second %v", uc.Simulation.TicksPerSecond)
	}
	conf := Config{
		Log:             log,
		ReadOnlyWorld:   uc.World.ReadOnly,
		MaxUpdateDepth:  uc.Simulation.MaxUpdateDepth,
		MaxTicksPerStep: uc.Simulation.MaxTicksPerStep,
		SignalBudget:    uc.Simulation.SignalBudget,
		Seed:            uc.World.Seed,
		EventLogBuffer:  uc.Events.Buffer,
	}
	if uc.Simulation.TicksPerSecond > 0 {
		conf.TickInterval = time.Second / time.Duration(uc.Simulation.TicksPerSecond)
	}
	if uc.Events.Enabled {
		conf.EventLogDir = uc.Events.Folder
	}
	if uc.World.SaveData {
		var err error
		conf.WorldProvider, err = leveldb.Config{Log: log, ReadOnly: uc.World.ReadOnly}.Open(uc.World.Folder)
		if err != nil {
			return conf, fmt.Errorf("create world provider: %w", err)
		}
	}
	return conf, nil
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.World.SaveData = true
	c.World.Folder = "world"
	c.Simulation.TicksPerSecond = 20
	c.Simulation.MaxUpdateDepth = 512
	c.Simulation.MaxTicksPerStep = 65536
	c.Simulation.SignalBudget = 8192
	c.Events.Folder = "events"
	c.Events.Buffer = 4096
	return c
}
