package tile

import "github.com/lixenwraith/drift/vmath"

// Handle is the host-owned visual tile; the engine references it but never owns it
type Handle interface {
	// Rect returns current bounding geometry in surface-local coordinates
	Rect() vmath.Rect
	// ContentHeight returns measured content height, false when the tile has no content region
	ContentHeight() (float64, bool)
	// Padding returns the vertical padding around the content region
	Padding() (top, bottom float64)
	// Place commits a display position
	Place(x, y float64)
	// Resize commits a display size
	Resize(width, height float64)
}

// ImageSource is implemented by handles whose content loads lazily
// The returned channel closes once the content height is final
type ImageSource interface {
	ImageReady() <-chan struct{}
}

// Entry is one input to NewRegistry, in display order
type Entry struct {
	Handle Handle
	Kind   Kind
}
