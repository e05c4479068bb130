package block

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// registerCopperBulb registers the copper bulb, a light-emitting block that toggles between lit and unlit every time
// it starts receiving power. Its brightness depends on its oxidation level.
func registerCopperBulb(t *world.StateTable) {
	t.MustRegister(NameCopperBulb, world.Behaviour{
		Kind:          world.KindConsumer,
		Sturdy:        true,
		Conductor:     true,
		Drops:         oneOf(NameCopperBulb),
		LightEmission: copperBulbLight,
		NeighbourChanged: func(s *world.State, pos, _ cube.Pos, tx *world.Tx) {
			checkAndFlipBulb(s, pos, tx)
		},
		OnPlace: func(s, _ *world.State, pos cube.Pos, tx *world.Tx) {
			checkAndFlipBulb(s, pos, tx)
		},
		Activate: func(s *world.State, pos cube.Pos, tx *world.Tx) bool {
			tx.SetBlock(pos, s.Cycle("lit"), 0)
			return true
		},
	},
		world.EnumProperty("oxidation", "unoxidised", "unoxidised", "exposed", "weathered", "oxidised"),
		world.BoolProperty("waxed", false),
		world.BoolProperty("lit", false),
		world.BoolProperty("powered", false),
	)
}

// checkAndFlipBulb updates the powered property of the bulb at pos, toggling lit on a rising edge of power.
func checkAndFlipBulb(s *world.State, pos cube.Pos, tx *world.Tx) {
	powered := redstone.HasNeighbourSignal(tx, pos)
	if powered == s.Bool("powered") {
		return
	}
	n := s.With("powered", powered)
	if powered {
		n = n.Cycle("lit")
		if n.Bool("lit") {
			tx.PlaySound(pos, "copper_bulb.turn_on")
		} else {
			tx.PlaySound(pos, "copper_bulb.turn_off")
		}
	}
	tx.SetBlock(pos, n, 0)
}

func copperBulbLight(s *world.State) uint8 {
	if !s.Bool("lit") {
		return 0
	}
	switch s.Enum("oxidation") {
	case "exposed":
		return 12
	case "weathered":
		return 8
	case "oxidised":
		return 4
	}
	return 15
}
