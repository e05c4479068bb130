package block

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// registerSolids registers the plain full blocks: stone conducts signals, glass does not, and a block of redstone
// is a constant source of full power.
func registerSolids(t *world.StateTable) {
	t.MustRegister(NameStone, world.Behaviour{
		Kind:      world.KindSolid,
		Sturdy:    true,
		Conductor: true,
		Drops:     oneOf("cobblestone"),
	})
	t.MustRegister(NameGlass, world.Behaviour{
		Kind:   world.KindSolid,
		Sturdy: true,
	})
	t.MustRegister(NameRedstoneBlock, world.Behaviour{
		Kind:   world.KindSource,
		Sturdy: true,
		Drops:  oneOf(NameRedstoneBlock),
		Signal: func(*world.State, cube.Pos, cube.Face, *world.Tx) int {
			return redstone.MaxPower
		},
	})
}
