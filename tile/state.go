package tile

import (
	"time"

	"github.com/lixenwraith/drift/physics"
	"github.com/lixenwraith/drift/vmath"
)

// DragState is valid only while Mode is Dragging
type DragState struct {
	PointerID int
	OffsetX   float64 // Pointer minus tile position at press
	OffsetY   float64
	LastX     float64 // Last pointer sample
	LastY     float64
	LastTime  time.Time
}

// State is the mutable simulation state of one tile
type State struct {
	physics.Body

	Handle Handle
	Kind   Kind

	Width, Height float64

	Order   int     // Insertion index, stacking tie-break; immutable
	Column  int     // Column bucket, recomputed by the solver
	TargetY float64 // Spring target while Settling
	StartY  float64 // Y when settling last began or drag last ended

	Mode Mode
	Drag DragState

	PaddingTop    float64
	PaddingBottom float64

	// HasContent is false when the handle exposes no content region; such tiles are not draggable
	HasContent bool
}

// Rect returns the tile's current box
func (s *State) Rect() vmath.Rect {
	return vmath.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// Clamp enforces the bounds invariant against a surface of w×h
func (s *State) Clamp(w, h float64) {
	physics.Clamp(&s.Body, s.Width, s.Height, w, h)
}

// EndDrag clears transient drag data
func (s *State) EndDrag() {
	s.Drag = DragState{}
}
