package redstone

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
)

// MaxPower is the strongest signal a cell can emit or carry.
const MaxPower = 15

// Signal returns the signal that the cell at pos emits through its face passed. A conductor emits the strongest
// signal that strongly powers it, on top of what its own Signal hook returns.
func Signal(tx *world.Tx, pos cube.Pos, face cube.Face) int {
	return signal(tx, pos, face, true)
}

// DirectSignalTo returns the strongest signal with which a neighbour of pos strongly powers it.
func DirectSignalTo(tx *world.Tx, pos cube.Pos) int {
	return directSignalTo(tx, pos, true)
}

// BestNeighbourSignal returns the strongest signal that a neighbour of pos emits towards it. If wires is false,
// signals emitted by wire cells are ignored, directly as well as through conductors.
func BestNeighbourSignal(tx *world.Tx, pos cube.Pos, wires bool) int {
	best := 0
	for _, face := range cube.Faces() {
		if p := signal(tx, pos.Side(face), face.Opposite(), wires); p > best {
			if best = p; best >= MaxPower {
				return MaxPower
			}
		}
	}
	return best
}

// HasNeighbourSignal reports if any neighbour of pos emits a signal towards it.
func HasNeighbourSignal(tx *world.Tx, pos cube.Pos) bool {
	for _, face := range cube.Faces() {
		if signal(tx, pos.Side(face), face.Opposite(), true) > 0 {
			return true
		}
	}
	return false
}

func signal(tx *world.Tx, pos cube.Pos, face cube.Face, wires bool) int {
	s := tx.Block(pos)
	p := emitted(tx, s, pos, face, wires, false)
	if s.Behaviour().Conductor && p < MaxPower {
		p = max(p, directSignalTo(tx, pos, wires))
	}
	return p
}

func directSignalTo(tx *world.Tx, pos cube.Pos, wires bool) int {
	best := 0
	for _, face := range cube.Faces() {
		np := pos.Side(face)
		if p := emitted(tx, tx.Block(np), np, face.Opposite(), wires, true); p > best {
			if best = p; best >= MaxPower {
				return MaxPower
			}
		}
	}
	return best
}

// emitted calls the Signal or DirectSignal hook of s.
func emitted(tx *world.Tx, s *world.State, pos cube.Pos, face cube.Face, wires, direct bool) int {
	b := s.Behaviour()
	if !wires && b.Kind == world.KindWire {
		return 0
	}
	f := b.Signal
	if direct {
		f = b.DirectSignal
	}
	if f == nil {
		return 0
	}
	return min(max(f(s, pos, face, tx), 0), MaxPower)
}
