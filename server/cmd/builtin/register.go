// Package builtin holds the commands used to inspect and edit a world from the console.
package builtin

import (
	"sync"

	"github.com/df-mc/blockflow/server/cmd"
)

var registerOnce sync.Once

// Register registers every builtin command. Calling Register more than once has no effect.
func Register() {
	registerOnce.Do(func() {
		cmd.Register(cmd.New("set", "Sets the cell at a position to a state.", []string{"setblock"}, setCommand{}))
		cmd.Register(cmd.New("place", "Places a state at a position as if a player placed it.", nil, placeCommand{}))
		cmd.Register(cmd.New("get", "Prints the state of the cell at a position.", nil, getCommand{}))
		cmd.Register(cmd.New("break", "Breaks the cell at a position.", nil, breakCommand{}))
		cmd.Register(cmd.New("activate", "Interacts with the cell at a position.", []string{"use"}, activateCommand{}))
		cmd.Register(cmd.New("tick", "Advances the world by one or more steps.", []string{"step"}, tickCommand{}))
		cmd.Register(cmd.New("digest", "Prints the digest of every cell of the world.", nil, digestCommand{}))
		cmd.Register(cmd.New("save", "Saves the world to its provider.", nil, saveCommand{}))
		cmd.Register(cmd.New("stats", "Prints the counters of the world.", []string{"status"}, statsCommand{}))
		cmd.Register(cmd.New("help", "Lists every command.", []string{"?"}, helpCommand{}))
	})
}
