package block

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
)

// Steps that a button stays pressed after being activated.
const (
	stoneButtonPressDuration  = 20
	woodenButtonPressDuration = 30
)

// registerButtons registers the stone and oak buttons.
func registerButtons(t *world.StateTable) {
	registerButton(t, NameStoneButton, stoneButtonPressDuration)
	registerButton(t, NameOakButton, woodenButtonPressDuration)
}

// registerButton registers a button type: Activating an unpressed button powers it like a lever until a tick
// scheduled pressDuration steps later releases it. Activating a pressed button does nothing.
func registerButton(t *world.StateTable, name string, pressDuration int64) {
	t.MustRegister(name, world.Behaviour{
		Kind:        world.KindSource,
		Drops:       oneOf(name),
		Placement:   attachToFace,
		CanSurvive:  attachedCanSurvive,
		UpdateShape: breaksWithoutSupport,
		Activate: func(s *world.State, pos cube.Pos, tx *world.Tx) bool {
			if s.Bool("powered") {
				return false
			}
			s = s.With("powered", true)
			tx.SetBlock(pos, s, 0)
			tx.NotifyNeighbours(attachedSupport(s, pos))
			tx.ScheduleTick(pos, s.Type(), pressDuration, world.PriorityNormal)
			tx.PlaySound(pos, "button.click_on")
			return true
		},
		ScheduledTick: func(s *world.State, pos cube.Pos, tx *world.Tx) {
			if !s.Bool("powered") {
				return
			}
			s = s.With("powered", false)
			tx.SetBlock(pos, s, 0)
			tx.NotifyNeighbours(attachedSupport(s, pos))
			tx.PlaySound(pos, "button.click_off")
		},
		OnRemove:     releaseSupport,
		Signal:       poweredSignal,
		DirectSignal: poweredDirectSignal,
	}, attachedProperties()...)
}
