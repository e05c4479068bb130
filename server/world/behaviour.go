package world

import "github.com/df-mc/blockflow/server/block/cube"

// BehaviourKind tags a Behaviour with the broad role of its type in signal propagation.
type BehaviourKind uint8

const (
	// KindAir is the kind of the empty type.
	KindAir BehaviourKind = iota
	// KindSolid is the kind of plain blocks without signal behaviour.
	KindSolid
	// KindWire is the kind of types that carry a decaying signal, such as redstone wire.
	KindWire
	// KindSource is the kind of types that emit a signal on their own, such as levers.
	KindSource
	// KindDiode is the kind of types that pass a signal on in one direction after a delay, such as repeaters.
	KindDiode
	// KindConsumer is the kind of types that react to a signal without emitting one, such as lamps.
	KindConsumer
)

// Behaviour is the record of callbacks shared by all states of a Type. Every hook is optional: A nil hook behaves
// as if the type had no reaction to the event. Hooks receive the Tx of the change that triggered them. The depth of
// that Tx is already decremented, so changes made through it count against the cascade budget.
type Behaviour struct {
	Kind BehaviourKind
	// Sturdy is true if the full faces of the type can support attachments such as wire and levers.
	Sturdy bool
	// Conductor is true if the type passes on signals that strongly power it to every neighbour.
	Conductor bool
	// TickPolicy decides what happens when a tick is scheduled while one is already pending for the same cell.
	TickPolicy TickPolicy

	// LightEmission returns the light level emitted by a state.
	LightEmission func(s *State) uint8
	// Placement returns the state to place when s is placed at pos against the face passed. Returning the empty
	// state cancels the placement.
	Placement func(s *State, pos cube.Pos, face cube.Face, tx *Tx) *State
	// CanSurvive reports if s can exist at pos in its current surroundings.
	CanSurvive func(s *State, pos cube.Pos, tx *Tx) bool
	// UpdateShape recomputes s at pos after its neighbour on the face passed changed to neighbour. Returning the empty
	// state destroys the cell.
	UpdateShape func(s *State, face cube.Face, neighbour *State, pos, neighbourPos cube.Pos, tx *Tx) *State
	// NeighbourChanged is called when the cell at changed, a direct neighbour of pos, changed.
	NeighbourChanged func(s *State, pos, changed cube.Pos, tx *Tx)
	// ScheduledTick is called when a tick scheduled for the type at pos is due.
	ScheduledTick func(s *State, pos cube.Pos, tx *Tx)
	// Activate is called when the cell is interacted with. It returns false if nothing happened.
	Activate func(s *State, pos cube.Pos, tx *Tx) bool
	// OnPlace is called after s replaced a state of another type at pos.
	OnPlace func(s, old *State, pos cube.Pos, tx *Tx)
	// OnRemove is called after s at pos was replaced by a state of another type.
	OnRemove func(s, replacement *State, pos cube.Pos, tx *Tx, moved bool)
	// Drops returns the names of the items dropped when s is destroyed.
	Drops func(s *State) []string
	// Signal returns the weak signal that s at pos emits through its face passed.
	Signal func(s *State, pos cube.Pos, face cube.Face, tx *Tx) int
	// DirectSignal returns the strong signal that s at pos emits through its face passed.
	DirectSignal func(s *State, pos cube.Pos, face cube.Face, tx *Tx) int
	// ConnectsTo reports if wire next to the face passed of s visually connects to it. If nil, wire connects to
	// sources and wire only.
	ConnectsTo func(s *State, face cube.Face) bool
}

// SignalSource reports if the behaviour emits signals at all.
func (b *Behaviour) SignalSource() bool {
	return b.Kind == KindWire || b.Kind == KindSource || b.Kind == KindDiode
}

// light returns the light emitted by s, or 0 if the type emits no light.
func (b *Behaviour) light(s *State) uint8 {
	if b.LightEmission == nil {
		return 0
	}
	return b.LightEmission(s)
}

// canSurvive reports if s can stay at pos. Types without CanSurvive hook can always survive.
func (b *Behaviour) canSurvive(s *State, pos cube.Pos, tx *Tx) bool {
	return b.CanSurvive == nil || b.CanSurvive(s, pos, tx)
}
