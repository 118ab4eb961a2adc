package tile

import (
	"math"

	"github.com/lixenwraith/drift/parameter"
	"github.com/lixenwraith/drift/vmath"
)

// Registry owns the tile states of one engine instance
// The set is fixed after construction; order matches the input entries
type Registry struct {
	states []*State
}

// NewRegistry measures every entry once and produces its initial state
// Mode starts Free and TargetY equals Y so a tile at rest is self-consistent
func NewRegistry(entries []Entry) *Registry {
	r := &Registry{states: make([]*State, 0, len(entries))}

	for i, e := range entries {
		s := &State{
			Handle: e.Handle,
			Kind:   e.Kind,
			Order:  i,
			Mode:   Free,
		}

		var contentHeight float64
		if e.Handle != nil {
			rect := e.Handle.Rect()
			s.X, s.Y = vmath.OrZero(rect.X), vmath.OrZero(rect.Y)
			s.Width = math.Max(vmath.OrZero(rect.Width), 0)
			s.Height = vmath.OrZero(rect.Height)

			s.PaddingTop, s.PaddingBottom = e.Handle.Padding()
			contentHeight, s.HasContent = e.Handle.ContentHeight()
		}

		if contentHeight > 0 {
			s.Height = contentHeight + s.PaddingTop + s.PaddingBottom
		}
		s.Height = math.Max(s.Height, parameter.MinTileHeight)
		s.TargetY = s.Y
		s.StartY = s.Y

		r.states = append(r.states, s)
	}

	return r
}

// Len returns the tile count
func (r *Registry) Len() int {
	return len(r.states)
}

// At returns the state at index i
func (r *Registry) At(i int) *State {
	return r.states[i]
}

// All returns the backing slice in insertion order; callers must not reorder it
func (r *Registry) All() []*State {
	return r.states
}

// UpdateHeight re-measures tile i and commits a changed height to the handle
// Returns true when the height changed and a layout re-solve is due
func (r *Registry) UpdateHeight(i int) bool {
	s := r.states[i]
	if s.Handle == nil || !s.HasContent {
		return false
	}

	contentHeight, ok := s.Handle.ContentHeight()
	if !ok {
		return false
	}
	next := vmath.OrZero(contentHeight + s.PaddingTop + s.PaddingBottom)
	if next <= 0 || next == s.Height {
		return false
	}

	s.Height = next
	s.Handle.Resize(s.Width, s.Height)
	return true
}

// UpdateHeights re-measures every tile, returns true if any changed
func (r *Registry) UpdateHeights() bool {
	changed := false
	for i := range r.states {
		if r.UpdateHeight(i) {
			changed = true
		}
	}
	return changed
}

// MaxBottom returns the lowest tile edge, 0 for an empty registry
func (r *Registry) MaxBottom() float64 {
	bottom := 0.0
	for _, s := range r.states {
		bottom = math.Max(bottom, s.Y+s.Height)
	}
	return bottom
}

// ModeCounts returns the number of tiles per mode
func (r *Registry) ModeCounts() (free, settling, dragging int) {
	for _, s := range r.states {
		switch s.Mode {
		case Free:
			free++
		case Settling:
			settling++
		case Dragging:
			dragging++
		}
	}
	return free, settling, dragging
}
