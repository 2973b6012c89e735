// Package input collects window-system events for the frame loop.
//
// Window backends translate their native events into Events and push them here once
// per frame; the frame loop reads them back without knowing which backend is active.
package input

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventFramebufferResize
	EventKeyDown
	EventKeyUp
)

// Key is a backend-neutral key code. Only keys the app reacts to are named.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyF12
	KeyW
	KeyR
)

func (k Key) String() string {
	switch k {
	case KeyEscape:
		return "escape"
	case KeyF12:
		return "f12"
	case KeyW:
		return "w"
	case KeyR:
		return "r"
	default:
		return "unknown"
	}
}

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
}

// Input holds the events of the current frame.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Reset drops the previous frame's events.
func (i *Input) Reset() {
	i.events = i.events[:0]
}

// Push records an event for this frame.
func (i *Input) Push(e Event) {
	i.events = append(i.events, e)
}

// Events returns the events of this frame.
func (i *Input) Events() []Event {
	return i.events
}

// QuitRequested reports whether a quit event arrived this frame.
func (i *Input) QuitRequested() bool {
	for _, e := range i.events {
		if e.Type == EventQuit {
			return true
		}
	}
	return false
}

// IsKeyPressed checks if a specific key went down this frame.
func (i *Input) IsKeyPressed(k Key) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == k {
			return true
		}
	}
	return false
}

// Resized returns the last framebuffer size reported this frame.
func (i *Input) Resized() (width, height int, ok bool) {
	for _, e := range i.events {
		if e.Type == EventFramebufferResize {
			width, height, ok = e.Width, e.Height, true
		}
	}
	return width, height, ok
}
