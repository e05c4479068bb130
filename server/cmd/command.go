package cmd

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/df-mc/blockflow/server/world"
)

// Runnable represents a Command that may be run by a Source. The exported fields of the struct implementing
// Runnable are its parameters: Before Run is called, each field is filled with the next argument of the command
// line. A field tagged `cmd:"name,optional"` may be left out at the end of a command line.
type Runnable interface {
	// Run runs the Command inside a transaction of the World the command was executed in.
	Run(src Source, o *Output, tx *world.Tx)
}

// WorldRunnable is a Runnable alternative for commands that act on the World as a whole, such as stepping it, and
// therefore must not run inside a transaction.
type WorldRunnable interface {
	RunWorld(src Source, o *Output, w *world.World)
}

// Command is a command that may be executed by a Source. It holds one or more runnables, one of which is picked
// based on the arguments passed.
type Command struct {
	name        string
	description string
	aliases     []string
	v           []reflect.Value
}

// New returns a new Command using the name and description passed. The runnables passed must be structs
// implementing Runnable or WorldRunnable. New panics if a runnable is of any other type or if one of its fields is
// of an unsupported type.
func New(name, description string, aliases []string, r ...any) Command {
	runnables := make([]reflect.Value, len(r))
	for i, runnable := range r {
		switch runnable.(type) {
		case Runnable, WorldRunnable:
		default:
			panic(fmt.Sprintf("runnable %T of command %v implements neither Runnable nor WorldRunnable", runnable, name))
		}
		v := reflect.ValueOf(runnable)
		if v.Kind() != reflect.Struct {
			panic(fmt.Sprintf("runnable %T of command %v must be a struct", runnable, name))
		}
		if err := verifyParameters(v.Type()); err != nil {
			panic(fmt.Sprintf("command %v: %v", name, err))
		}
		runnables[i] = v
	}
	return Command{name: name, description: description, aliases: slices.Clone(aliases), v: runnables}
}

// Name returns the name of the Command.
func (cmd Command) Name() string {
	return cmd.name
}

// Description returns the description of the Command.
func (cmd Command) Description() string {
	return cmd.description
}

// Aliases returns the aliases of the Command. The name is not included.
func (cmd Command) Aliases() []string {
	return slices.Clone(cmd.aliases)
}

// Usage returns the usage of every runnable of the Command, one per line.
func (cmd Command) Usage() string {
	lines := make([]string, len(cmd.v))
	for i, v := range cmd.v {
		lines[i] = strings.TrimSpace(cmd.name + " " + usage(v.Type()))
	}
	return strings.Join(lines, "\n")
}

// Execute executes the Command with the arguments passed on behalf of the Source. The first runnable whose
// parameters can be parsed from args is run. Output is sent to the Source once the Command finished.
func (cmd Command) Execute(args string, src Source, w *world.World) {
	o := &Output{}
	defer src.SendCommandOutput(o)

	fields := strings.Fields(args)
	var lastErr error
	for _, v := range cmd.v {
		r := reflect.New(v.Type()).Elem()
		r.Set(v)
		if err := parseParameters(r, fields); err != nil {
			lastErr = err
			continue
		}
		switch runnable := r.Interface().(type) {
		case WorldRunnable:
			runnable.RunWorld(src, o, w)
		case Runnable:
			<-w.Exec(func(tx *world.Tx) {
				runnable.Run(src, o, tx)
			})
		}
		return
	}
	o.Error(lastErr)
	o.Printf("Usage: %v", cmd.Usage())
}

var (
	commandsMu sync.RWMutex
	commands   = map[string]Command{}
	aliases    = map[string]string{}
)

// Register registers a Command so that it may be found with ByAlias. Its name and aliases replace those of a
// Command registered earlier.
func Register(command Command) {
	commandsMu.Lock()
	defer commandsMu.Unlock()
	commands[command.name] = command
	aliases[command.name] = command.name
	for _, alias := range command.aliases {
		aliases[alias] = command.name
	}
}

// ByAlias looks up a Command by its name or one of its aliases.
func ByAlias(alias string) (Command, bool) {
	commandsMu.RLock()
	defer commandsMu.RUnlock()
	command, ok := commands[aliases[alias]]
	return command, ok
}

// Commands returns every registered Command, sorted by name.
func Commands() []Command {
	commandsMu.RLock()
	defer commandsMu.RUnlock()
	all := make([]Command, 0, len(commands))
	for _, command := range commands {
		all = append(all, command)
	}
	slices.SortFunc(all, func(a, b Command) int {
		return strings.Compare(a.name, b.name)
	})
	return all
}
