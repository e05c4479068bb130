package block

import (
	"sync"

	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
)

// Names of the types registered by Register.
const (
	NameStone         = "stone"
	NameGlass         = "glass"
	NameRedstoneBlock = "redstone_block"
	NameRedstoneWire  = "redstone_wire"
	NameLever         = "lever"
	NameStoneButton   = "stone_button"
	NameOakButton     = "oak_button"
	NameRedstoneLamp  = "redstone_lamp"
	NameRepeater      = "repeater"
	NameCopperBulb    = "copper_bulb"
)

// Register registers every type of the package on the table passed.
func Register(t *world.StateTable) {
	registerSolids(t)
	registerRedstoneWire(t)
	registerLever(t)
	registerButtons(t)
	registerRedstoneLamp(t)
	registerRepeater(t)
	registerCopperBulb(t)
}

var table = sync.OnceValue(func() *world.StateTable {
	t := world.TableConfig{}.New()
	Register(t)
	t.Warm()
	return t
})

// Table returns a process-wide StateTable holding every type of the package. It is built on first use.
func Table() *world.StateTable {
	return table()
}

// oneOf returns a Drops hook that drops a single item with the name passed.
func oneOf(name string) func(*world.State) []string {
	return func(*world.State) []string {
		return []string{name}
	}
}

// supported reports if the cell below pos can hold attachments.
func supported(pos cube.Pos, tx *world.Tx) bool {
	return tx.Block(pos.Side(cube.FaceDown)).Behaviour().Sturdy
}

// onFloor returns a CanSurvive hook for types that must stand on a sturdy cell.
func onFloor(_ *world.State, pos cube.Pos, tx *world.Tx) bool {
	return supported(pos, tx)
}

// breaksWithoutFloor returns an UpdateShape hook that recomputes to the empty state once the cell below is no
// longer sturdy, and otherwise leaves the state unchanged.
func breaksWithoutFloor(s *world.State, face cube.Face, _ *world.State, pos, _ cube.Pos, tx *world.Tx) *world.State {
	if face == cube.FaceDown && !supported(pos, tx) {
		return tx.Table().Empty()
	}
	return s
}

// updateNeighboursInFront notifies the cell at front, and the neighbours of front apart from pos, of a change of
// the output of the cell at pos.
func updateNeighboursInFront(pos, front cube.Pos, tx *world.Tx) {
	tx.Notify(front, pos)
	tx.NotifyNeighboursExcept(front, front.Face(pos))
}
