package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/df-mc/blockflow/server/world/leveldb"
)

// inspect_palette prints every state stored in a world database together with the amount of cells holding it.
func main() {
	dir := flag.String("world", "world", "directory of the world database")
	filter := flag.String("filter", "", "only print states containing this text")
	flag.Parse()

	db, err := leveldb.Config{ReadOnly: true}.Open(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	palette, err := db.Palette()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	states := make([]string, 0, len(palette))
	for s := range palette {
		if strings.Contains(s, *filter) {
			states = append(states, s)
		}
	}
	slices.Sort(states)
	for _, s := range states {
		fmt.Printf("%8d %s\n", palette[s], s)
	}
}
