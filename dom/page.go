package dom

import (
	"context"
	"strings"
)

// Page is the live side of a document. Snapshot reads the current state;
// every other method writes to a single element addressed by XPath.
type Page interface {
	URL() string
	Snapshot(ctx context.Context) (*Document, error)
	SetValue(ctx context.Context, xpath, value string) error
	SetChecked(ctx context.Context, xpath string, checked bool) error
	Focus(ctx context.Context, xpath string) error
	ScrollIntoView(ctx context.Context, xpath string) error
	Dispatch(ctx context.Context, xpath string, ev Event) error
}

// EventKind selects the DOM event constructor a driver should use.
type EventKind int

const (
	BasicEvent EventKind = iota
	KeyboardEvent
	MouseEvent
)

// Event is a synthetic DOM event. Key is set for keyboard events. X and Y
// are set for mouse events and are offsets from the target's top-left
// corner.
type Event struct {
	Type string
	Key  string
	X, Y float64
}

func (e Event) Kind() EventKind {
	switch {
	case strings.HasPrefix(e.Type, "key"):
		return KeyboardEvent
	case strings.HasPrefix(e.Type, "mouse"), e.Type == "click":
		return MouseEvent
	}
	return BasicEvent
}

// KeyCode returns the legacy keyCode for the handful of keys the engine sends.
func (e Event) KeyCode() int {
	switch e.Key {
	case "Enter":
		return 13
	case "Tab":
		return 9
	case "Escape":
		return 27
	}
	if len(e.Key) == 1 {
		return int(strings.ToUpper(e.Key)[0])
	}
	return 0
}

func Input() Event  { return Event{Type: "input"} }
func Change() Event { return Event{Type: "change"} }
func Blur() Event   { return Event{Type: "blur"} }
func Focus() Event  { return Event{Type: "focus"} }

func KeyDown(key string) Event { return Event{Type: "keydown", Key: key} }
func KeyUp(key string) Event   { return Event{Type: "keyup", Key: key} }

func Mouse(typ string, x, y float64) Event { return Event{Type: typ, X: x, Y: y} }
