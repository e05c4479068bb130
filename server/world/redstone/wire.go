package redstone

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
)

// PowerProperty is the name of the int property holding the power of a wire cell.
const PowerProperty = "redstone_signal"

// Values of the connection properties of wire cells, named after the horizontal face they describe.
const (
	SideNone = "none"
	SideSide = "side"
	SideUp   = "up"
)

// WireProperties returns the properties of a wire type: its power and the connection of each horizontal face.
func WireProperties() []world.Property {
	props := []world.Property{world.IntProperty(PowerProperty, 0, MaxPower, 0)}
	for _, face := range cube.HorizontalFaces() {
		props = append(props, world.EnumProperty(face.String(), SideNone, SideNone, SideSide, SideUp))
	}
	return props
}

// TargetPower returns the power that the wire at pos should carry: the strongest signal of a non-wire neighbour, or
// the strongest power of a connected wire minus one, whichever is higher. Wires connect horizontally, up onto a
// conductor if the cell above pos is not a conductor, and down past a neighbour that is not a conductor.
func TargetPower(tx *world.Tx, pos cube.Pos) int {
	incoming := BestNeighbourSignal(tx, pos, false)
	if incoming >= MaxPower {
		return MaxPower
	}
	fromWire := 0
	aboveConductor := tx.Block(pos.Side(cube.FaceUp)).Behaviour().Conductor
	for _, face := range cube.HorizontalFaces() {
		np := pos.Side(face)
		ns := tx.Block(np)
		fromWire = max(fromWire, WirePower(ns))
		if conductor := ns.Behaviour().Conductor; conductor && !aboveConductor {
			fromWire = max(fromWire, WirePower(tx.Block(np.Side(cube.FaceUp))))
		} else if !conductor {
			fromWire = max(fromWire, WirePower(tx.Block(np.Side(cube.FaceDown))))
		}
	}
	return max(incoming, fromWire-1)
}

// WireSignal implements the Signal hook of wire: Wire powers the cell below it and the cells it connects to, but
// never the cell above it.
func WireSignal(s *world.State, pos cube.Pos, face cube.Face, tx *world.Tx) int {
	p := s.Int(PowerProperty)
	if p == 0 || face == cube.FaceUp {
		return 0
	}
	if face == cube.FaceDown {
		return p
	}
	if Connections(tx, pos, s).Enum(face.String()) == SideNone {
		return 0
	}
	return p
}

// Connections returns s with the connection of every horizontal face recomputed from the surroundings of pos. A
// wire without any connection keeps being a dot if it was one; otherwise a wire connected on one axis only is
// extended into a straight line, and a wire without connections becomes a cross.
func Connections(tx *world.Tx, pos cube.Pos, s *world.State) *world.State {
	dot := isDot(s)
	aboveOpen := !tx.Block(pos.Side(cube.FaceUp)).Behaviour().Conductor

	c := s.Type().Default().With(PowerProperty, s.Int(PowerProperty))
	for _, face := range cube.HorizontalFaces() {
		c = c.With(face.String(), ConnectingSide(tx, pos, face, aboveOpen))
	}
	if dot && isDot(c) {
		return c
	}
	north, south := connected(c, cube.FaceNorth), connected(c, cube.FaceSouth)
	east, west := connected(c, cube.FaceEast), connected(c, cube.FaceWest)
	noZ, noX := !north && !south, !east && !west
	if !west && noZ {
		c = c.With(cube.FaceWest.String(), SideSide)
	}
	if !east && noZ {
		c = c.With(cube.FaceEast.String(), SideSide)
	}
	if !north && noX {
		c = c.With(cube.FaceNorth.String(), SideSide)
	}
	if !south && noX {
		c = c.With(cube.FaceSouth.String(), SideSide)
	}
	return c
}

// ConnectingSide returns the connection of the wire at pos on the horizontal face passed. aboveOpen must be true if
// the cell above pos is not a conductor.
func ConnectingSide(tx *world.Tx, pos cube.Pos, face cube.Face, aboveOpen bool) string {
	np := pos.Side(face)
	ns := tx.Block(np)
	if aboveOpen && ns.Behaviour().Sturdy && connectsTo(tx.Block(np.Side(cube.FaceUp)), face, false) {
		return SideUp
	}
	if connectsTo(ns, face.Opposite(), true) {
		return SideSide
	}
	if !ns.Behaviour().Conductor && connectsTo(tx.Block(np.Side(cube.FaceDown)), face, false) {
		return SideSide
	}
	return SideNone
}

// connectsTo reports if wire connects to s. face is the face of s pointing at the wire and is only meaningful if
// known is true; without a known face, wire only connects to wire.
func connectsTo(s *world.State, face cube.Face, known bool) bool {
	b := s.Behaviour()
	if b.Kind == world.KindWire {
		return true
	}
	if !known {
		return false
	}
	if b.ConnectsTo != nil {
		return b.ConnectsTo(s, face)
	}
	return b.SignalSource()
}

func connected(s *world.State, face cube.Face) bool {
	return s.Enum(face.String()) != SideNone
}

func isDot(s *world.State) bool {
	for _, face := range cube.HorizontalFaces() {
		if connected(s, face) {
			return false
		}
	}
	return true
}

// WirePower returns the power of s if it is a wire cell, or 0 otherwise.
func WirePower(s *world.State) int {
	if s.Behaviour().Kind != world.KindWire {
		return 0
	}
	return s.Int(PowerProperty)
}
