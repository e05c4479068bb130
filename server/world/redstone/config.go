package redstone

import (
	"log/slog"

	"github.com/df-mc/blockflow/server/block/cube"
)

// Config holds the tunable parameters of a Network. The zero value is usable; sensible defaults are applied by
// withDefaults.
type Config struct {
	// Log is the Logger used to report backpressure. If nil, slog.Default() is used.
	Log *slog.Logger
	// BudgetPerSettle caps the amount of recalculations a single call to Network.Settle performs. Positions left in
	// the queue are recalculated by the next call.
	BudgetPerSettle int
	// Metrics receives the counters of the network. If nil, a new registry is created.
	Metrics *Metrics
}

func (c Config) withDefaults() Config {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.BudgetPerSettle <= 0 {
		c.BudgetPerSettle = 8192
	}
	if c.Metrics == nil {
		c.Metrics = NewMetrics()
	}
	return c
}

// New builds a Network using the configuration.
func (c Config) New() *Network {
	c = c.withDefaults()
	return &Network{conf: c, queued: make(map[cube.Pos]struct{})}
}
