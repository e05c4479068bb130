package builtin

import (
	"strings"

	"github.com/df-mc/blockflow/server/cmd"
	"github.com/df-mc/blockflow/server/world"
)

type tickCommand struct {
	Steps int `cmd:"steps,optional"`
}

type digestCommand struct{}

type saveCommand struct{}

type statsCommand struct{}

type helpCommand struct{}

func (c tickCommand) RunWorld(_ cmd.Source, o *cmd.Output, w *world.World) {
	steps := c.Steps
	if steps == 0 {
		steps = 1
	}
	if steps < 0 {
		o.Errort(cmd.MessageParameterInvalid, steps)
		return
	}
	for range steps {
		w.Tick()
	}
	o.Printf("Advanced to step %v.", w.Step())
}

func (digestCommand) Run(_ cmd.Source, o *cmd.Output, tx *world.Tx) {
	o.Printf("Step %v, %v cells, digest %016x.", tx.Step(), tx.Cells(), tx.Digest())
}

func (saveCommand) RunWorld(_ cmd.Source, o *cmd.Output, w *world.World) {
	if err := w.Save(); err != nil {
		o.Error(err)
		return
	}
	o.Printf("Saved the world at step %v.", w.Step())
}

func (statsCommand) Run(_ cmd.Source, o *cmd.Output, tx *world.Tx) {
	stats := tx.World().Stats()
	o.Printf("Step %v, %v cells, %v pending ticks.", tx.Step(), tx.Cells(), tx.PendingTicks())
	o.Printf("Changes: %v, truncated cascades: %v, ticks on missing cells: %v, recovered panics: %v.",
		stats.Changes, stats.CascadeBudgetExceeded, stats.FireOnMissingCell, stats.RecoveredPanics)
}

func (helpCommand) RunWorld(_ cmd.Source, o *cmd.Output, _ *world.World) {
	for _, command := range cmd.Commands() {
		line := command.Usage()
		if aliases := command.Aliases(); len(aliases) > 0 {
			line += " (" + strings.Join(aliases, ", ") + ")"
		}
		o.Printf("%v - %v", line, command.Description())
	}
}
