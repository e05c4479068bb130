package block

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// registerRedstoneWire registers redstone wire laid on the ground. Wire carries a signal that loses one level of
// power per cell and connects to neighbouring wire, sources and diodes.
func registerRedstoneWire(t *world.StateTable) {
	t.MustRegister(NameRedstoneWire, world.Behaviour{
		Kind:         world.KindWire,
		Drops:        oneOf("redstone"),
		CanSurvive:   onFloor,
		Placement:    placeWire,
		UpdateShape:  updateWireShape,
		Signal:       redstone.WireSignal,
		DirectSignal: redstone.WireSignal,
		NeighbourChanged: func(_ *world.State, pos, _ cube.Pos, tx *world.Tx) {
			tx.QueueSignal(pos)
		},
		OnPlace: func(_, _ *world.State, pos cube.Pos, tx *world.Tx) {
			tx.QueueSignal(pos)
			tx.NotifyNeighbours(pos.Side(cube.FaceUp))
			tx.NotifyNeighbours(pos.Side(cube.FaceDown))
			queueNeighbouringWires(pos, tx)
		},
		OnRemove: func(_, _ *world.State, pos cube.Pos, tx *world.Tx, moved bool) {
			if moved {
				return
			}
			for _, face := range cube.Faces() {
				tx.NotifyNeighbours(pos.Side(face))
			}
			queueNeighbouringWires(pos, tx)
		},
	}, redstone.WireProperties()...)
}

// placeWire returns the wire to place at pos: a cross that is reduced to the connections available around pos.
func placeWire(s *world.State, pos cube.Pos, _ cube.Face, tx *world.Tx) *world.State {
	cross := s.With(redstone.PowerProperty, 0)
	for _, face := range cube.HorizontalFaces() {
		cross = cross.With(face.String(), redstone.SideSide)
	}
	return redstone.Connections(tx, pos, cross)
}

// updateWireShape recomputes the connections of wire after a neighbour changed and removes the wire once it is no
// longer supported.
func updateWireShape(s *world.State, face cube.Face, _ *world.State, pos, _ cube.Pos, tx *world.Tx) *world.State {
	if face == cube.FaceDown {
		if !supported(pos, tx) {
			return tx.Table().Empty()
		}
		return s
	}
	return redstone.Connections(tx, pos, s)
}

// queueNeighbouringWires queues the horizontal neighbours of pos and the cells diagonally above and below them for
// recalculation, so that wire stepping up or down next to pos notices the change.
func queueNeighbouringWires(pos cube.Pos, tx *world.Tx) {
	for _, face := range cube.HorizontalFaces() {
		side := pos.Side(face)
		tx.QueueSignal(side)
		tx.QueueSignal(side.Side(cube.FaceUp))
		tx.QueueSignal(side.Side(cube.FaceDown))
	}
}
