package engine

import (
	"fmt"
	"time"
)

// Event is any input accepted by Dispatch and Submit
type Event interface {
	event()
}

// PointerKind is the device class of a pointer stream
type PointerKind uint8

const (
	PointerMouse PointerKind = iota
	PointerTouch
	PointerPen
)

// PointerAction is the phase of a pointer event
type PointerAction uint8

const (
	PointerDown PointerAction = iota
	PointerMove
	PointerUp
	PointerCancel
)

func (a PointerAction) String() string {
	switch a {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerCancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

// Mouse buttons, matching DOM numbering
const (
	ButtonLeft   = 0
	ButtonMiddle = 1
	ButtonRight  = 2
)

// PointerEvent carries one pointer sample in surface-local coordinates
// Zero Time means "now" according to the engine clock
type PointerEvent struct {
	ID     int
	Kind   PointerKind
	Button int
	Action PointerAction
	X, Y   float64
	Time   time.Time
}

// ScrollEvent marks scroll activity on the enclosing surface
type ScrollEvent struct{}

// HeightEvent reports that tile Index may have changed content height
type HeightEvent struct {
	Index int
}

func (PointerEvent) event() {}
func (ScrollEvent) event()  {}
func (HeightEvent) event()  {}
