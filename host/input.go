package host

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/drift/engine"
)

const (
	mousePointerID = 1
	wheelRows      = 3
)

// MouseTracker turns tcell button-state reports into pointer transitions
// tcell reports held buttons on every mouse event, so presses and releases are edges of Button1
type MouseTracker struct {
	surface *Screen
	pressed bool
	col     int
	row     int
}

// NewMouseTracker creates a tracker mapping cells through surface
func NewMouseTracker(surface *Screen) *MouseTracker {
	return &MouseTracker{surface: surface}
}

// Pressed reports whether the primary button is held
func (m *MouseTracker) Pressed() bool {
	return m.pressed
}

// Translate returns the engine events for one mouse report
func (m *MouseTracker) Translate(ev *tcell.EventMouse) []engine.Event {
	var out []engine.Event
	buttons := ev.Buttons()
	col, row := ev.Position()

	if buttons&tcell.WheelUp != 0 && m.surface.ScrollBy(-wheelRows) {
		out = append(out, engine.ScrollEvent{})
	}
	if buttons&tcell.WheelDown != 0 && m.surface.ScrollBy(wheelRows) {
		out = append(out, engine.ScrollEvent{})
	}

	down := buttons&tcell.Button1 != 0
	var action engine.PointerAction
	switch {
	case down && !m.pressed:
		action = engine.PointerDown
	case down && m.pressed:
		if col == m.col && row == m.row {
			return out
		}
		action = engine.PointerMove
	case !down && m.pressed:
		action = engine.PointerUp
	default:
		return out
	}

	m.pressed = down
	m.col, m.row = col, row

	x, y := m.surface.ToSurface(col, row)
	return append(out, engine.PointerEvent{
		ID:     mousePointerID,
		Kind:   engine.PointerMouse,
		Button: engine.ButtonLeft,
		Action: action,
		X:      x,
		Y:      y,
		Time:   ev.When(),
	})
}

// Cancel ends a held press, used when the terminal loses the pointer
func (m *MouseTracker) Cancel() []engine.Event {
	if !m.pressed {
		return nil
	}
	m.pressed = false
	x, y := m.surface.ToSurface(m.col, m.row)
	return []engine.Event{engine.PointerEvent{
		ID:     mousePointerID,
		Kind:   engine.PointerMouse,
		Action: engine.PointerCancel,
		X:      x,
		Y:      y,
	}}
}
