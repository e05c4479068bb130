package block

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// repeaterStepsPerDelay is the amount of steps a single level of the delay property of a repeater stands for.
const repeaterStepsPerDelay = 2

// registerRepeater registers the redstone repeater, a diode that passes a signal received at its back on to the
// cell in front of it at full strength, delay*2 steps later. facing is the direction the output points to.
func registerRepeater(t *world.StateTable) {
	r := &repeater{}
	r.t = t.MustRegister(NameRepeater, world.Behaviour{
		Kind:          world.KindDiode,
		Drops:         oneOf(NameRepeater),
		CanSurvive:    onFloor,
		UpdateShape:   breaksWithoutFloor,
		Signal:        r.signal,
		DirectSignal:  r.signal,
		ConnectsTo:    r.connectsTo,
		ScheduledTick: r.tick,
		NeighbourChanged: func(s *world.State, pos, _ cube.Pos, tx *world.Tx) {
			r.checkTick(s, pos, tx)
		},
		Activate: func(s *world.State, pos cube.Pos, tx *world.Tx) bool {
			tx.SetBlock(pos, s.Cycle("delay"), 0)
			tx.PlaySound(pos, "click")
			return true
		},
		OnPlace: func(s, _ *world.State, pos cube.Pos, tx *world.Tx) {
			updateNeighboursInFront(pos, pos.Side(repeaterFacing(s)), tx)
			r.checkTick(s, pos, tx)
		},
		OnRemove: func(s, _ *world.State, pos cube.Pos, tx *world.Tx, _ bool) {
			updateNeighboursInFront(pos, pos.Side(repeaterFacing(s)), tx)
		},
	},
		world.EnumProperty("facing", "north", "north", "south", "west", "east"),
		world.IntProperty("delay", 1, 4, 1),
		world.BoolProperty("powered", false),
	)
}

type repeater struct {
	t *world.Type
}

// input returns the signal received at the back of the repeater at pos.
func (r *repeater) input(s *world.State, pos cube.Pos, tx *world.Tx) int {
	facing := repeaterFacing(s)
	back := pos.Side(facing.Opposite())
	return max(redstone.Signal(tx, back, facing), redstone.WirePower(tx.Block(back)))
}

// checkTick schedules a tick for the repeater at pos if its output no longer matches its input and no tick is
// pending yet.
func (r *repeater) checkTick(s *world.State, pos cube.Pos, tx *world.Tx) {
	if tx.HasScheduledTick(pos, r.t) {
		return
	}
	powered := s.Bool("powered")
	if powered == (r.input(s, pos, tx) > 0) {
		return
	}
	priority := world.PriorityHigh
	if r.prioritised(s, pos, tx) {
		priority = world.PriorityExtremelyHigh
	} else if powered {
		priority = world.PriorityVeryHigh
	}
	tx.ScheduleTick(pos, r.t, r.delay(s), priority)
}

// prioritised reports if the repeater at pos feeds into the side of another diode.
func (r *repeater) prioritised(s *world.State, pos cube.Pos, tx *world.Tx) bool {
	facing := repeaterFacing(s)
	front := tx.Block(pos.Side(facing))
	if front.Behaviour().Kind != world.KindDiode {
		return false
	}
	f, ok := cube.FaceByName(front.Enum("facing"))
	return ok && f != facing && f != facing.Opposite()
}

// tick switches the output of the repeater at pos to match its input.
func (r *repeater) tick(s *world.State, pos cube.Pos, tx *world.Tx) {
	powered, on := s.Bool("powered"), r.input(s, pos, tx) > 0
	front := pos.Side(repeaterFacing(s))
	switch {
	case powered && !on:
		tx.SetBlock(pos, s.With("powered", false), world.SuppressNeighbours)
		updateNeighboursInFront(pos, front, tx)
	case !powered:
		tx.SetBlock(pos, s.With("powered", true), world.SuppressNeighbours)
		updateNeighboursInFront(pos, front, tx)
		if !on {
			tx.ScheduleTick(pos, r.t, r.delay(s), world.PriorityVeryHigh)
		}
	}
}

func (r *repeater) delay(s *world.State) int64 {
	return int64(s.Int("delay") * repeaterStepsPerDelay)
}

func (r *repeater) signal(s *world.State, _ cube.Pos, face cube.Face, _ *world.Tx) int {
	if s.Bool("powered") && face == repeaterFacing(s) {
		return redstone.MaxPower
	}
	return 0
}

func (r *repeater) connectsTo(s *world.State, face cube.Face) bool {
	return face.Axis() == repeaterFacing(s).Axis()
}

// repeaterFacing returns the direction the output of the repeater points to.
func repeaterFacing(s *world.State) cube.Face {
	f, _ := cube.FaceByName(s.Enum("facing"))
	return f
}
