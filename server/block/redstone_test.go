package block

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/df-mc/blockflow/server/world/redstone"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []world.Event
}

func (r *eventRecorder) HandleEvent(e world.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) HandleClose() {}

func (r *eventRecorder) named(kind world.EventKind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.events {
		if e.Kind == kind {
			names = append(names, e.Name)
		}
	}
	return names
}

func newWorld(t *testing.T) (*world.World, *eventRecorder) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := world.Config{
		Log:     log,
		Table:   Table(),
		Network: redstone.Config{Log: log}.New(),
	}.New()
	rec := &eventRecorder{}
	w.Handle(rec)
	t.Cleanup(func() {
		_ = w.Close()
	})
	return w, rec
}

func defaultOf(t *testing.T, name string) *world.State {
	t.Helper()
	typ, ok := Table().Type(name)
	if !ok {
		t.Fatalf("type %v not registered", name)
	}
	return typ.Default()
}

func floor(w *world.World, from, to int) {
	<-w.Exec(func(tx *world.Tx) {
		stone, _ := tx.Table().Type(NameStone)
		for x := from; x <= to; x++ {
			tx.SetBlock(cube.Pos{x, 0, 0}, stone.Default(), 0)
		}
	})
}

func blockAt(w *world.World, pos cube.Pos) *world.State {
	var s *world.State
	<-w.Exec(func(tx *world.Tx) {
		s = tx.Block(pos)
	})
	return s
}

func activate(w *world.World, pos cube.Pos) {
	<-w.Exec(func(tx *world.Tx) {
		tx.Activate(pos)
	})
}

func TestTableRegistersEveryType(t *testing.T) {
	for _, name := range []string{NameStone, NameGlass, NameRedstoneBlock, NameRedstoneWire, NameLever, NameStoneButton, NameOakButton, NameRedstoneLamp, NameRepeater, NameCopperBulb} {
		if _, ok := Table().Type(name); !ok {
			t.Fatalf("expected %v to be registered", name)
		}
	}
	if _, err := Table().Parse("repeater[facing=east,delay=4]"); err != nil {
		t.Fatalf("parse repeater: %v", err)
	}
}

func TestRepeaterDelay(t *testing.T) {
	w, _ := newWorld(t)
	floor(w, -1, 3)

	lever, lamp, output := cube.Pos{0, 1, 0}, cube.Pos{2, 1, 0}, cube.Pos{1, 1, 0}
	<-w.Exec(func(tx *world.Tx) {
		tx.PlaceBlock(lever, defaultOf(t, NameLever), cube.FaceUp)
		tx.PlaceBlock(output, defaultOf(t, NameRepeater).With("facing", "east"), cube.FaceUp)
		tx.PlaceBlock(lamp, defaultOf(t, NameRedstoneLamp), cube.FaceUp)
	})
	for i := 0; i < 10; i++ {
		w.Tick()
	}
	activate(w, lever)

	w.Tick()
	if w.Step() != 11 || blockAt(w, output).Bool("powered") || blockAt(w, lamp).Bool("lit") {
		t.Fatalf("expected the repeater to still be unpowered at step 11")
	}
	w.Tick()
	if !blockAt(w, output).Bool("powered") {
		t.Fatalf("expected the repeater to be powered at step 12")
	}
	if !blockAt(w, lamp).Bool("lit") {
		t.Fatalf("expected the lamp in front of the repeater to light at step 12")
	}
}

func TestButtonReleasesAfterPressDuration(t *testing.T) {
	for name, duration := range map[string]int64{NameStoneButton: stoneButtonPressDuration, NameOakButton: woodenButtonPressDuration} {
		t.Run(name, func(t *testing.T) {
			w, rec := newWorld(t)
			floor(w, -1, 2)
			button, support, lamp := cube.Pos{0, 1, 0}, cube.Pos{0, 0, 0}, cube.Pos{1, 1, 0}
			<-w.Exec(func(tx *world.Tx) {
				tx.PlaceBlock(button, defaultOf(t, name), cube.FaceUp)
				tx.PlaceBlock(lamp, defaultOf(t, NameRedstoneLamp), cube.FaceUp)
			})
			for i := 0; i < 10; i++ {
				w.Tick()
			}
			var pressed, again bool
			var strong int
			<-w.Exec(func(tx *world.Tx) {
				pressed = tx.Activate(button)
				again = tx.Activate(button)
				strong = redstone.DirectSignalTo(tx, support)
			})
			if !pressed || again {
				t.Fatalf("expected only the first press to do something, got %v and %v", pressed, again)
			}
			if strong != redstone.MaxPower {
				t.Fatalf("expected a pressed button to strongly power its support, got %d", strong)
			}
			if !blockAt(w, lamp).Bool("lit") {
				t.Fatalf("expected the lamp next to the pressed button to light")
			}
			for w.Step() < 10+duration-1 {
				w.Tick()
				if !blockAt(w, button).Bool("powered") {
					t.Fatalf("expected the button to still be pressed at step %d", w.Step())
				}
			}
			w.Tick()
			if blockAt(w, button).Bool("powered") {
				t.Fatalf("expected the button to be released at step %d", w.Step())
			}
			<-w.Exec(func(tx *world.Tx) {
				strong = redstone.DirectSignalTo(tx, support)
			})
			if strong != 0 {
				t.Fatalf("expected a released button to stop powering its support, got %d", strong)
			}
			sounds := rec.named(world.EventSound)
			if len(sounds) != 2 || sounds[0] != "button.click_on" || sounds[1] != "button.click_off" {
				t.Fatalf("expected a click on and a click off, got %v", sounds)
			}
		})
	}
}

func TestLampTurnsOffAfterDelay(t *testing.T) {
	w, _ := newWorld(t)
	floor(w, -1, 2)
	lever, lamp := cube.Pos{0, 1, 0}, cube.Pos{1, 1, 0}
	<-w.Exec(func(tx *world.Tx) {
		tx.PlaceBlock(lever, defaultOf(t, NameLever), cube.FaceUp)
		tx.PlaceBlock(lamp, defaultOf(t, NameRedstoneLamp), cube.FaceUp)
	})
	activate(w, lever)
	if !blockAt(w, lamp).Bool("lit") {
		t.Fatalf("expected the lamp to light in the same step it is powered")
	}
	activate(w, lever)
	for i := 1; i < lampOffDelay; i++ {
		w.Tick()
		if !blockAt(w, lamp).Bool("lit") {
			t.Fatalf("expected the lamp to still be lit %d steps after losing power", i)
		}
	}
	w.Tick()
	if blockAt(w, lamp).Bool("lit") {
		t.Fatalf("expected the lamp to be off %d steps after losing power", lampOffDelay)
	}
}

func TestCopperBulbTogglesOnRisingEdge(t *testing.T) {
	w, rec := newWorld(t)
	floor(w, -1, 2)
	lever, bulb := cube.Pos{0, 1, 0}, cube.Pos{1, 1, 0}
	<-w.Exec(func(tx *world.Tx) {
		tx.PlaceBlock(lever, defaultOf(t, NameLever), cube.FaceUp)
		tx.PlaceBlock(bulb, defaultOf(t, NameCopperBulb).With("oxidation", "weathered"), cube.FaceUp)
	})

	expect := func(lit, powered bool) {
		t.Helper()
		s := blockAt(w, bulb)
		if s.Bool("lit") != lit || s.Bool("powered") != powered {
			t.Fatalf("expected bulb lit=%v powered=%v, got %v", lit, powered, s)
		}
	}
	activate(w, lever)
	expect(true, true)
	if l := copperBulbLight(blockAt(w, bulb)); l != 8 {
		t.Fatalf("expected a weathered bulb to emit light level 8, got %d", l)
	}
	activate(w, lever)
	expect(true, false)
	activate(w, lever)
	expect(false, true)

	sounds := rec.named(world.EventSound)
	want := []string{"copper_bulb.turn_on", "click", "click", "copper_bulb.turn_off", "click"}
	if len(sounds) != len(want) {
		t.Fatalf("expected sounds %v, got %v", want, sounds)
	}
	for i := range want {
		if sounds[i] != want[i] {
			t.Fatalf("expected sounds %v, got %v", want, sounds)
		}
	}
}

func TestAttachmentsBreakWithoutSupport(t *testing.T) {
	w, rec := newWorld(t)
	floor(w, 0, 1)
	<-w.Exec(func(tx *world.Tx) {
		tx.PlaceBlock(cube.Pos{0, 1, 0}, defaultOf(t, NameLever), cube.FaceUp)
		tx.PlaceBlock(cube.Pos{1, 1, 0}, defaultOf(t, NameRedstoneWire), cube.FaceUp)
	})
	<-w.Exec(func(tx *world.Tx) {
		tx.BreakBlock(cube.Pos{0, 0, 0})
		tx.BreakBlock(cube.Pos{1, 0, 0})
	})
	if !blockAt(w, cube.Pos{0, 1, 0}).Empty() || !blockAt(w, cube.Pos{1, 1, 0}).Empty() {
		t.Fatalf("expected the lever and the wire to break with their support")
	}
	drops := rec.named(world.EventDrop)
	want := []string{"cobblestone", NameLever, "cobblestone", "redstone"}
	if len(drops) != len(want) {
		t.Fatalf("expected drops %v, got %v", want, drops)
	}
	for i := range want {
		if drops[i] != want[i] {
			t.Fatalf("expected drops %v, got %v", want, drops)
		}
	}
}

func TestPlacementRejectsUnsupported(t *testing.T) {
	w, _ := newWorld(t)
	var placed bool
	<-w.Exec(func(tx *world.Tx) {
		placed = tx.PlaceBlock(cube.Pos{0, 5, 0}, defaultOf(t, NameRedstoneWire), cube.FaceUp)
	})
	if placed {
		t.Fatalf("expected wire placement in mid-air to fail")
	}
}
