package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/df-mc/blockflow/server/block"
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// syncBuffer is a bytes.Buffer safe for use by the logger.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsoleCommands(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := world.Config{Log: discard, Table: block.Table(), Network: redstone.Config{Log: discard}.New()}.New()
	t.Cleanup(func() {
		_ = w.Close()
	})

	out := &syncBuffer{}
	log := slog.New(slog.NewTextHandler(out, nil))
	script := strings.Join([]string{
		"# a lever powering a lamp",
		"set 0 0 0 stone",
		"set 1 0 0 stone",
		"place 0 1 0 lever",
		"/place 1 1 0 redstone_lamp",
		"activate 0 1 0",
		"get 1 1 0",
		"tick 3",
		"digest",
		"set 0 5000 0 stone",
		"set 0 0 0 unknown_block",
		"frobnicate",
	}, "\n")
	New(w, log).WithReader(strings.NewReader(script)).Run(context.Background())

	var lever, lamp *world.State
	<-w.Exec(func(tx *world.Tx) {
		lever, lamp = tx.Block(cube.Pos{0, 1, 0}), tx.Block(cube.Pos{1, 1, 0})
	})
	if !lever.Bool("powered") || !lamp.Bool("lit") {
		t.Fatalf("expected the console to power the lamp, got lever %v and lamp %v", lever, lamp)
	}
	if w.Step() != 3 {
		t.Fatalf("expected 3 steps, got %v", w.Step())
	}

	logged := out.String()
	for _, want := range []string{
		"redstone_lamp[lit=true]",
		"Advanced to step 3.",
		"digest",
		"out of bounds",
		"unknown_block",
		"Unknown command: frobnicate",
	} {
		if !strings.Contains(logged, want) {
			t.Fatalf("expected console output to contain %q, got:\n%v", want, logged)
		}
	}
}
