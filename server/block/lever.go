package block

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// registerLever registers the lever, an interactable block that acts as a persistent redstone power source. The
// face property holds the face of the supporting block the lever is attached to, powered whether it currently
// outputs power. A powered lever strongly powers its support.
func registerLever(t *world.StateTable) {
	t.MustRegister(NameLever, world.Behaviour{
		Kind:        world.KindSource,
		Drops:       oneOf(NameLever),
		Placement:   attachToFace,
		CanSurvive:  attachedCanSurvive,
		UpdateShape: breaksWithoutSupport,
		Activate: func(s *world.State, pos cube.Pos, tx *world.Tx) bool {
			s = s.Cycle("powered")
			tx.SetBlock(pos, s, 0)
			tx.PlaySound(pos, "click")
			tx.NotifyNeighbours(attachedSupport(s, pos))
			return true
		},
		OnRemove:     releaseSupport,
		Signal:       poweredSignal,
		DirectSignal: poweredDirectSignal,
	}, attachedProperties()...)
}

// attachedProperties returns the properties of a powered attachment: the face of its support it sits on and
// whether it outputs power.
func attachedProperties() []world.Property {
	return []world.Property{
		world.EnumProperty("face", "up", "down", "up", "north", "south", "west", "east"),
		world.BoolProperty("powered", false),
	}
}

// attachedFace returns the face of the supporting block that the attachment is attached to.
func attachedFace(s *world.State) cube.Face {
	f, _ := cube.FaceByName(s.Enum("face"))
	return f
}

// attachedSupport returns the position of the block supporting the attachment at pos.
func attachedSupport(s *world.State, pos cube.Pos) cube.Pos {
	return pos.Side(attachedFace(s).Opposite())
}

func attachToFace(s *world.State, _ cube.Pos, face cube.Face, _ *world.Tx) *world.State {
	return s.With("face", face.String()).With("powered", false)
}

func attachedCanSurvive(s *world.State, pos cube.Pos, tx *world.Tx) bool {
	return tx.Block(attachedSupport(s, pos)).Behaviour().Sturdy
}

// breaksWithoutSupport recomputes an attachment to the empty state once its support is no longer sturdy.
func breaksWithoutSupport(s *world.State, _ cube.Face, _ *world.State, pos, neighbourPos cube.Pos, tx *world.Tx) *world.State {
	if support := attachedSupport(s, pos); neighbourPos == support && !tx.Block(support).Behaviour().Sturdy {
		return tx.Table().Empty()
	}
	return s
}

// releaseSupport updates the support of a powered attachment that was removed.
func releaseSupport(s, _ *world.State, pos cube.Pos, tx *world.Tx, _ bool) {
	if s.Bool("powered") {
		tx.NotifyNeighbours(attachedSupport(s, pos))
	}
}

func poweredSignal(s *world.State, _ cube.Pos, _ cube.Face, _ *world.Tx) int {
	if s.Bool("powered") {
		return redstone.MaxPower
	}
	return 0
}

// poweredDirectSignal strongly powers the support of a powered attachment only.
func poweredDirectSignal(s *world.State, _ cube.Pos, face cube.Face, _ *world.Tx) int {
	if s.Bool("powered") && face == attachedFace(s).Opposite() {
		return redstone.MaxPower
	}
	return 0
}
