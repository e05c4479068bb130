package eventlog

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/df-mc/blockflow/server/block/cube"
	"github.com/df-mc/blockflow/server/world"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var entries []Entry
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return entries
}

func TestHandlerWritesEntries(t *testing.T) {
	dir := t.TempDir()
	id := uuid.New()
	h := Config{Log: discard, Dir: dir, World: id}.handler()
	h.w.now = func() time.Time {
		return time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC)
	}
	h.done.Add(1)
	go h.run()

	table := world.TableConfig{Log: discard}.New()
	typ := table.MustRegister("lamp", world.Behaviour{}, world.BoolProperty("lit", false))
	lit := typ.Default().With("lit", true)

	h.HandleEvent(world.Event{Kind: world.EventBlockUpdate, Step: 3, Pos: cube.Pos{1, 2, 3}, State: lit, Old: typ.Default()})
	h.HandleEvent(world.Event{Kind: world.EventLightUpdate, Step: 3, Pos: cube.Pos{1, 2, 3}, State: lit, Level: 15})
	h.HandleClose()
	h.HandleEvent(world.Event{Kind: world.EventSound, Name: "click"})

	entries := readEntries(t, filepath.Join(dir, "events-2024-05-01-13.jsonl.zst"))
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", entries)
	}
	first := entries[0]
	if first.World != id.String() || first.Kind != "block_update" || first.Step != 3 {
		t.Fatalf("unexpected entry %+v", first)
	}
	if first.State != "lamp[lit=true]" || first.Old != "lamp[lit=false]" {
		t.Fatalf("unexpected states in entry %+v", first)
	}
	if first.Centre != [3]float64{1.5, 2.5, 3.5} {
		t.Fatalf("expected centre of the cell, got %v", first.Centre)
	}
	if entries[1].Level != 15 || entries[1].Kind != "light_update" {
		t.Fatalf("unexpected entry %+v", entries[1])
	}
}

func TestHandlerDropsWhenFull(t *testing.T) {
	h := Config{Log: discard, Dir: t.TempDir(), Buffer: 2}.handler()
	for i := 0; i < 5; i++ {
		h.HandleEvent(world.Event{Kind: world.EventSound, Name: "click"})
	}
	if n := h.Dropped(); n != 3 {
		t.Fatalf("expected 3 dropped events, got %v", n)
	}
	h.done.Add(1)
	go h.run()
	h.HandleClose()
}
