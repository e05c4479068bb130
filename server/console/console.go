package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/df-mc/blockflow/server/cmd"
	"github.com/df-mc/blockflow/server/cmd/builtin"
	"github.com/df-mc/blockflow/server/world"
)

// Console provides a simple CLI backed command source that reads commands from
// an io.Reader (defaulting to os.Stdin) and executes them on the provided world.
type Console struct {
	w      *world.World
	log    *slog.Logger
	reader io.Reader
}

// New returns a Console bound to the provided world. The console reads from
// os.Stdin and writes command output to the supplied logger. The builtin
// commands are registered if they were not yet.
func New(w *world.World, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	builtin.Register()
	return &Console{
		w:      w,
		log:    log,
		reader: os.Stdin,
	}
}

// WithReader sets a custom reader for the console input. It enables testing the
// console without relying on os.Stdin.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run starts consuming commands from the console. It blocks until the context
// is cancelled or the underlying reader reaches EOF. Lines starting with # are
// ignored.
func (c *Console) Run(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	src := &consoleSource{log: c.log}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				c.log.Error("console input error", "err", err)
			}
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd.ExecuteLine(src, line, c.w, nil)
	}
}

type consoleSource struct {
	log *slog.Logger
}

func (c *consoleSource) Name() string { return "Console" }

func (c *consoleSource) SendCommandOutput(o *cmd.Output) {
	for _, msg := range o.Messages() {
		c.log.Info(msg)
	}
	for _, err := range o.Errors() {
		c.log.Error(err.Error())
	}
}
