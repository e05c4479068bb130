package builtin

import (
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/cmd"
	"github.com/df-mc/blockflow/server/world"
)

type setCommand struct {
	X, Y, Z int
	State   string
	Flags   string `cmd:"flags,optional"`
}

type placeCommand struct {
	X, Y, Z int
	State   string
	Face    string `cmd:"face,optional"`
}

type getCommand struct {
	X, Y, Z int
}

type breakCommand struct {
	X, Y, Z int
}

type activateCommand struct {
	X, Y, Z int
}

func (c setCommand) Run(_ cmd.Source, o *cmd.Output, tx *world.Tx) {
	pos := cube.Pos{c.X, c.Y, c.Z}
	s, err := tx.Table().Parse(c.State)
	if err != nil {
		o.Error(err)
		return
	}
	flags, ok := world.ParseSetFlags(c.Flags)
	if !ok {
		o.Errort(cmd.MessageParameterInvalid, c.Flags)
		return
	}
	if !tx.InBounds(pos) {
		o.Errorf("%v is out of bounds", pos)
		return
	}
	if !tx.SetBlock(pos, s, flags) {
		o.Printf("%v already holds %v.", pos, s)
		return
	}
	o.Printf("Set %v to %v.", pos, s)
}

func (c placeCommand) Run(_ cmd.Source, o *cmd.Output, tx *world.Tx) {
	pos := cube.Pos{c.X, c.Y, c.Z}
	s, err := tx.Table().Parse(c.State)
	if err != nil {
		o.Error(err)
		return
	}
	face := cube.FaceUp
	if c.Face != "" {
		f, ok := cube.FaceByName(c.Face)
		if !ok {
			o.Errort(cmd.MessageParameterInvalid, c.Face)
			return
		}
		face = f
	}
	if !tx.PlaceBlock(pos, s, face) {
		o.Errorf("%v cannot be placed at %v", s, pos)
		return
	}
	o.Printf("Placed %v at %v.", tx.Block(pos), pos)
}

func (c getCommand) Run(_ cmd.Source, o *cmd.Output, tx *world.Tx) {
	pos := cube.Pos{c.X, c.Y, c.Z}
	o.Printf("%v: %v", pos, tx.Block(pos))
}

func (c breakCommand) Run(_ cmd.Source, o *cmd.Output, tx *world.Tx) {
	pos := cube.Pos{c.X, c.Y, c.Z}
	if !tx.BreakBlock(pos) {
		o.Errorf("nothing to break at %v", pos)
		return
	}
	o.Printf("Broke the cell at %v.", pos)
}

func (c activateCommand) Run(_ cmd.Source, o *cmd.Output, tx *world.Tx) {
	pos := cube.Pos{c.X, c.Y, c.Z}
	if !tx.Activate(pos) {
		o.Errorf("%v does not react to activation", tx.Block(pos))
		return
	}
	o.Printf("Activated %v.", tx.Block(pos))
}
