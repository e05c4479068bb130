package world

import "github.com/df-mc/blockflow/server/block/cube"

// EventKind is the kind of an Event passed to a Handler.
type EventKind uint8

const (
	// EventBlockUpdate is emitted once per transaction for every write that was not made with SuppressSync.
	EventBlockUpdate EventKind = iota
	// EventDrop is emitted for every item dropped by a destroyed cell.
	EventDrop
	// EventSound is emitted when a behaviour plays a sound.
	EventSound
	// EventLightUpdate is emitted when a change alters the light emitted by a cell.
	EventLightUpdate
	// EventSignal is emitted when the signal network changes the power of a wire cell.
	EventSignal
)

// String ...
func (k EventKind) String() string {
	switch k {
	case EventBlockUpdate:
		return "block_update"
	case EventDrop:
		return "drop"
	case EventSound:
		return "sound"
	case EventLightUpdate:
		return "light_update"
	case EventSignal:
		return "signal"
	}
	return "unknown"
}

// Event is a side effect of the simulation that external collaborators, such as renderers, clients or loggers, may
// be interested in. Events are emitted fire-and-forget: The World does not wait on, or look at the result of, their
// handling.
type Event struct {
	Kind EventKind
	// Step is the step of the World at the time the event was emitted.
	Step int64
	Pos  cube.Pos
	// State is the state at Pos after the change, Old the state before it. Old is only set for EventBlockUpdate.
	State, Old *State
	// Name is the item name for EventDrop and the sound name for EventSound.
	Name string
	// Level is the new light level for EventLightUpdate and the new power for EventSignal.
	Level int
}

// Handler handles events emitted by a World. HandleEvent is called from within transactions and must not block or
// call World.Exec.
type Handler interface {
	// HandleEvent handles a single event.
	HandleEvent(e Event)
	// HandleClose is called when the World is closed, before its data is saved.
	HandleClose()
}

// NopHandler implements the Handler interface but does not execute any code when an event is called. The default
// Handler of worlds is set to NopHandler.
type NopHandler struct{}

// Compile time check to make sure NopHandler implements Handler.
var _ Handler = NopHandler{}

func (NopHandler) HandleEvent(Event) {}
func (NopHandler) HandleClose()      {}

// MultiHandler passes every event to each of its handlers in order.
type MultiHandler []Handler

// HandleEvent ...
func (m MultiHandler) HandleEvent(e Event) {
	for _, h := range m {
		h.HandleEvent(e)
	}
}

// HandleClose ...
func (m MultiHandler) HandleClose() {
	for _, h := range m {
		h.HandleClose()
	}
}
