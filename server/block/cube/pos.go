package cube

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Pos holds the position of a block. The position is represented of an array with an x, y and z value,
// where the y value is positive.
type Pos [3]int

// String converts the Pos to a string in the format (1,2,3) and returns it.
func (p Pos) String() string {
	return fmt.Sprintf("(%v,%v,%v)", p[0], p[1], p[2])
}

// OutOfBounds checks if the Y value is either bigger than r[1] or smaller than r[0].
func (p Pos) OutOfBounds(r Range) bool {
	y := p[1]
	return y > r[1] || y < r[0]
}

// Add adds two block positions together and returns a new one with the combined values.
func (p Pos) Add(pos Pos) Pos {
	return Pos{p[0] + pos[0], p[1] + pos[1], p[2] + pos[2]}
}

// Vec3Centre returns a vec3 holding the same coordinates as the block position but with 0.5 added on the X, Y
// and Z axes.
func (p Pos) Vec3Centre() mgl64.Vec3 {
	return mgl64.Vec3{float64(p[0]) + 0.5, float64(p[1]) + 0.5, float64(p[2]) + 0.5}
}

// Side returns the position on the side of this block position, at a specific face.
func (p Pos) Side(face Face) Pos {
	switch face {
	case FaceUp:
		p[1]++
	case FaceDown:
		p[1]--
	case FaceNorth:
		p[2]--
	case FaceSouth:
		p[2]++
	case FaceWest:
		p[0]--
	case FaceEast:
		p[0]++
	}
	return p
}

// Face returns the face that the other Pos was on compared to the current Pos. The other Pos is assumed to be a
// direct neighbour of the current Pos.
func (p Pos) Face(other Pos) Face {
	switch other {
	case p.Add(Pos{0, 1}):
		return FaceUp
	case p.Add(Pos{0, -1}):
		return FaceDown
	case p.Add(Pos{0, 0, -1}):
		return FaceNorth
	case p.Add(Pos{0, 0, 1}):
		return FaceSouth
	case p.Add(Pos{-1, 0, 0}):
		return FaceWest
	case p.Add(Pos{1, 0, 0}):
		return FaceEast
	}
	return FaceUp
}

// Neighbours calls the function passed for each of the block position's neighbours, in face order. If the Y value
// is out of bounds, the function will not be called for that position.
func (p Pos) Neighbours(f func(neighbour Pos), r Range) {
	if p.OutOfBounds(r) {
		return
	}
	for _, face := range faces {
		if n := p.Side(face); !n.OutOfBounds(r) {
			f(n)
		}
	}
}

const (
	packXZBits = 26
	packYBits  = 12
	packXZMask = 1<<packXZBits - 1
	packYMask  = 1<<packYBits - 1
)

// Pack encodes the position into a single int64. X and Z must lie within [-2^25, 2^25) and Y within [-2^11, 2^11)
// for the encoding to be lossless.
func (p Pos) Pack() int64 {
	return int64(uint64(p[0]&packXZMask)<<(packXZBits+packYBits) | uint64(p[2]&packXZMask)<<packYBits | uint64(p[1]&packYMask))
}

// Unpack decodes a position previously encoded with Pos.Pack.
func Unpack(v int64) Pos {
	u := uint64(v)
	x := int(u >> (packXZBits + packYBits) & packXZMask)
	z := int(u >> packYBits & packXZMask)
	y := int(u & packYMask)
	return Pos{signExtend(x, packXZBits), signExtend(y, packYBits), signExtend(z, packXZBits)}
}

func signExtend(v, bits int) int {
	if v&(1<<(bits-1)) != 0 {
		return v - 1<<bits
	}
	return v
}
