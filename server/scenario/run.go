package scenario

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/df-mc/blockflow/server/block"
	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

// Result is the outcome of running a Scenario.
type Result struct {
	// Step is the step the World was at after the last step of the Scenario.
	Step int64
	// Digest is the digest of the World after the last step.
	Digest uint64
	// Failures holds a description of every expectation that was not met.
	Failures []string
	Stats    world.Stats
}

// Passed reports if every expectation of the Scenario was met.
func (r Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run runs the Scenario against a new World holding the types of the block package. An error is returned if a step
// could not be performed at all, such as a state that failed to parse. Expectations that are not met are collected
// in the Result instead.
func (sc Scenario) Run(log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}
	w := world.Config{
		Log:            log,
		Table:          block.Table(),
		Network:        redstone.Config{Log: log}.New(),
		MaxUpdateDepth: sc.MaxUpdateDepth,
		Seed:           sc.Seed,
	}.New()
	defer w.Close()

	var res Result
	for i, step := range sc.Steps {
		if step.Tick > 0 {
			for range step.Tick {
				w.Tick()
			}
			continue
		}
		var err error
		<-w.Exec(func(tx *world.Tx) {
			var failure string
			failure, err = step.apply(tx)
			if failure != "" {
				res.Failures = append(res.Failures, fmt.Sprintf("step %d (at %d): %v", i, tx.Step(), failure))
			}
		})
		if err != nil {
			return res, fmt.Errorf("%v: step %d: %w", sc.Name, i, err)
		}
	}
	<-w.Exec(func(tx *world.Tx) {
		res.Step, res.Digest = tx.Step(), tx.Digest()
	})
	res.Stats = w.Stats()
	log.Debug("Scenario finished.", "name", sc.Name, "step", res.Step, "failures", len(res.Failures))
	return res, nil
}

// apply performs the step inside the transaction passed. It returns a description of the failure if the step was an
// expectation that was not met.
func (step Step) apply(tx *world.Tx) (string, error) {
	switch {
	case step.Set != nil:
		s, err := tx.Table().Parse(step.Set.State)
		if err != nil {
			return "", err
		}
		flags, ok := world.ParseSetFlags(step.Set.Flags)
		if !ok {
			return "", fmt.Errorf("invalid flags %q", step.Set.Flags)
		}
		tx.SetBlock(step.Set.Pos.cube(), s, flags)
	case step.Place != nil:
		s, err := tx.Table().Parse(step.Place.State)
		if err != nil {
			return "", err
		}
		face := cube.FaceUp
		if step.Place.Face != "" {
			face, _ = cube.FaceByName(step.Place.Face)
		}
		if !tx.PlaceBlock(step.Place.Pos.cube(), s, face) {
			return fmt.Sprintf("could not place %v at %v", s, step.Place.Pos.cube()), nil
		}
	case step.Break != nil:
		tx.BreakBlock(step.Break.cube())
	case step.Activate != nil:
		tx.Activate(step.Activate.cube())
	case step.Expect != nil:
		return step.Expect.check(tx), nil
	default:
		return "", errors.New("empty step")
	}
	return "", nil
}

func (e *Expect) check(tx *world.Tx) string {
	pos := e.Pos.cube()
	s := tx.Block(pos)
	if e.State != "" {
		want, err := tx.Table().Parse(e.State)
		if err != nil {
			return err.Error()
		}
		if s != want {
			return fmt.Sprintf("expected %v at %v, got %v", want, pos, s)
		}
	}
	for key, want := range e.Properties {
		got, ok := s.Value(key)
		if !ok {
			return fmt.Sprintf("expected property %v at %v, but %v does not have it", key, pos, s)
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return fmt.Sprintf("expected %v=%v at %v, got %v", key, want, pos, s)
		}
	}
	return ""
}
