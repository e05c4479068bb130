package cube

// Face represents the face of a block or entity.
type Face int

const (
	// FaceDown represents the bottom face of a block.
	FaceDown Face = iota
	// FaceUp represents the top face of a block.
	FaceUp
	// FaceNorth represents the north face of a block.
	FaceNorth
	// FaceSouth represents the south face of a block.
	FaceSouth
	// FaceWest represents the west face of the block.
	FaceWest
	// FaceEast represents the east face of the block.
	FaceEast
)

var faces = [...]Face{FaceDown, FaceUp, FaceNorth, FaceSouth, FaceWest, FaceEast}

var horizontalFaces = [...]Face{FaceNorth, FaceSouth, FaceWest, FaceEast}

// Faces returns all six faces in update order: Down, Up, North, South, West, East.
func Faces() []Face {
	return faces[:]
}

// HorizontalFaces returns the four faces that lie in the horizontal plane.
func HorizontalFaces() []Face {
	return horizontalFaces[:]
}

// Opposite returns the opposite face. FaceDown will return FaceUp, FaceNorth will return FaceSouth and vice versa.
func (f Face) Opposite() Face {
	switch f {
	default:
		return FaceUp
	case FaceUp:
		return FaceDown
	case FaceNorth:
		return FaceSouth
	case FaceSouth:
		return FaceNorth
	case FaceWest:
		return FaceEast
	case FaceEast:
		return FaceWest
	}
}

// Axis returns the axis the face is facing. FaceEast and west correspond to the x-axis, north and south to the z
// axis and up and down to the y-axis.
func (f Face) Axis() Axis {
	switch f {
	default:
		return Y
	case FaceEast, FaceWest:
		return X
	case FaceNorth, FaceSouth:
		return Z
	}
}

// String returns the lowercase name of the face, as used in block state properties.
func (f Face) String() string {
	switch f {
	case FaceDown:
		return "down"
	case FaceUp:
		return "up"
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceWest:
		return "west"
	case FaceEast:
		return "east"
	}
	panic("invalid face")
}

// FaceByName returns the face with the name passed, as returned by Face.String.
func FaceByName(name string) (Face, bool) {
	for _, f := range faces {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

// Axis represents the axis that a block, such as a log, may be directed in.
type Axis int

const (
	// Y represents the vertical Y axis.
	Y Axis = iota
	// Z represents the horizontal Z axis.
	Z
	// X represents the horizontal X axis.
	X
)

// String converts an Axis into either x, y or z, depending on which axis it is.
func (a Axis) String() string {
	if a == X {
		return "x"
	} else if a == Y {
		return "y"
	}
	return "z"
}
