package world

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTable(t *testing.T) (*StateTable, *Type) {
	t.Helper()
	table := TableConfig{Log: discardLog(), Strict: true}.New()
	typ, err := table.Register("test", Behaviour{Kind: KindSolid},
		BoolProperty("open", false),
		IntProperty("level", 0, 3, 0),
		EnumProperty("facing", "north", "north", "south", "west", "east"),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return table, typ
}

func TestInternCanonicalIdentity(t *testing.T) {
	table, typ := testTable(t)

	a, err := table.Intern(typ, map[string]any{"open": true, "level": 2, "facing": "west"})
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	b, err := table.Intern(typ, map[string]any{"facing": "west", "level": int32(2), "open": true})
	if err != nil {
		t.Fatalf("intern: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical states for equal assignments, got %v and %v", a, b)
	}
	c, err := table.WithProperty(typ.Default(), "open", true)
	if err != nil {
		t.Fatalf("with property: %v", err)
	}
	c = c.With("level", 2).With("facing", "west")
	if c != a {
		t.Fatalf("expected states reached through WithProperty to be canonical, got %v", c)
	}
	if a.Hash() != c.Hash() || a.RuntimeID() != c.RuntimeID() {
		t.Fatalf("expected equal hash and runtime ID for identical states")
	}
	if got, ok := table.ByRuntimeID(a.RuntimeID()); !ok || got != a {
		t.Fatalf("expected runtime ID lookup to return the state")
	}
}

func TestInternRejectsInvalidAssignments(t *testing.T) {
	table, typ := testTable(t)
	before := table.Len()

	for name, assignment := range map[string]map[string]any{
		"missing":      {"open": true, "level": 1},
		"extra":        {"open": true, "level": 1, "facing": "north", "colour": "red"},
		"out of range": {"open": true, "level": 4, "facing": "north"},
		"wrong type":   {"open": "yes", "level": 1, "facing": "north"},
		"bad enum":     {"open": true, "level": 1, "facing": "up"},
	} {
		if _, err := table.Intern(typ, assignment); !errors.Is(err, ErrInvalidProperty) {
			t.Fatalf("%v: expected ErrInvalidProperty, got %v", name, err)
		}
	}
	if table.Len() != before {
		t.Fatalf("expected no states to be interned by failed calls, got %d new", table.Len()-before)
	}
}

func TestWithPropertyErrors(t *testing.T) {
	table, typ := testTable(t)
	if _, err := table.WithProperty(typ.Default(), "colour", "red"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
	if _, err := table.WithProperty(typ.Default(), "level", 9); !errors.Is(err, ErrInvalidProperty) {
		t.Fatalf("expected ErrInvalidProperty, got %v", err)
	}
	if _, err := table.Cycle(typ.Default(), "colour"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty from cycle, got %v", err)
	}
}

func TestStrictWithPanics(t *testing.T) {
	_, typ := testTable(t)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected With on an unknown property to panic in a strict table")
		}
	}()
	typ.Default().With("colour", "red")
}

func TestLenientWithKeepsState(t *testing.T) {
	table := TableConfig{Log: discardLog()}.New()
	typ := table.MustRegister("lenient", Behaviour{}, BoolProperty("on", false))
	if s := typ.Default().With("colour", "red"); s != typ.Default() {
		t.Fatalf("expected With to return the state unchanged, got %v", s)
	}
}

func TestCycleFollowsDeclarationOrder(t *testing.T) {
	_, typ := testTable(t)
	s := typ.Default()
	var got []string
	for range 5 {
		got = append(got, s.Enum("facing"))
		s = s.Cycle("facing")
	}
	want := []string{"north", "south", "west", "east", "north"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cycle %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if s.Bool("open") || s.Int("level") != 0 {
		t.Fatalf("expected cycle to leave other properties untouched, got %v", s)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	table, _ := testTable(t)
	if _, err := table.Register("test", Behaviour{}); !errors.Is(err, ErrDuplicateType) {
		t.Fatalf("expected ErrDuplicateType, got %v", err)
	}
	if _, err := table.Register("twice", Behaviour{}, BoolProperty("a", false), BoolProperty("a", true)); err == nil {
		t.Fatalf("expected an error for a property declared twice")
	}
	if _, err := table.Register("bad_default", Behaviour{}, EnumProperty("c", "x", "a", "b")); err == nil {
		t.Fatalf("expected an error for a default outside of the domain")
	}
}

func TestParseRoundTrip(t *testing.T) {
	table, typ := testTable(t)
	s := typ.Default().With("open", true).With("level", 3).With("facing", "east")
	if got := s.String(); got != "test[open=true,level=3,facing=east]" {
		t.Fatalf("unexpected string form %q", got)
	}
	parsed, err := table.Parse(s.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != s {
		t.Fatalf("expected parsed state to be identical, got %v", parsed)
	}
	if parsed, err := table.Parse(" test [ level = 1 ] "); err != nil || parsed != typ.Default().With("level", 1) {
		t.Fatalf("expected partial state to fill defaults, got %v (%v)", parsed, err)
	}
	if _, err := table.Parse("nothing"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := table.Parse("test[level=8]"); !errors.Is(err, ErrInvalidProperty) {
		t.Fatalf("expected ErrInvalidProperty, got %v", err)
	}
	if _, err := table.Parse("test[colour=red]"); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
}

func TestEmptyState(t *testing.T) {
	table, typ := testTable(t)
	if !table.Empty().Empty() || table.Empty().Name() != "air" {
		t.Fatalf("expected the empty state to be air, got %v", table.Empty())
	}
	if typ.Default().Empty() {
		t.Fatalf("expected registered types not to be empty")
	}
	table.Warm()
	if got := len(typ.States()); got != 2*4*4 {
		t.Fatalf("expected 32 states, got %d", got)
	}
}
