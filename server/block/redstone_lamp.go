package block

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// lampOffDelay is the amount of steps a lamp keeps shining after losing power.
const lampOffDelay = 4

// registerRedstoneLamp registers the redstone lamp, a light-emitting block that lights up as soon as it is powered
// and turns off lampOffDelay steps after it loses power.
func registerRedstoneLamp(t *world.StateTable) {
	var lamp *world.Type
	lamp = t.MustRegister(NameRedstoneLamp, world.Behaviour{
		Kind:      world.KindConsumer,
		Sturdy:    true,
		Conductor: true,
		Drops:     oneOf(NameRedstoneLamp),
		LightEmission: func(s *world.State) uint8 {
			if s.Bool("lit") {
				return 15
			}
			return 0
		},
		Placement: func(s *world.State, pos cube.Pos, _ cube.Face, tx *world.Tx) *world.State {
			return s.With("lit", redstone.HasNeighbourSignal(tx, pos))
		},
		NeighbourChanged: func(s *world.State, pos, _ cube.Pos, tx *world.Tx) {
			lit, powered := s.Bool("lit"), redstone.HasNeighbourSignal(tx, pos)
			if lit == powered {
				return
			}
			if lit {
				tx.ScheduleTick(pos, lamp, lampOffDelay, world.PriorityNormal)
				return
			}
			tx.SetBlock(pos, s.With("lit", true), world.SuppressNeighbours)
		},
		ScheduledTick: func(s *world.State, pos cube.Pos, tx *world.Tx) {
			if s.Bool("lit") && !redstone.HasNeighbourSignal(tx, pos) {
				tx.SetBlock(pos, s.With("lit", false), world.SuppressNeighbours)
			}
		},
	}, world.BoolProperty("lit", false))
}
