// Package tiletest provides an in-memory tile.Handle for tests
package tiletest

import (
	"sync"

	"github.com/lixenwraith/drift/vmath"
)

// Handle records every commit the engine makes
type Handle struct {
	mu sync.Mutex

	rect        vmath.Rect
	content     float64
	hasContent  bool
	padTop      float64
	padBottom   float64
	placeCount  int
	resizeCount int
	ready       chan struct{}
}

// New creates a handle with content of the given height; padding defaults to 0
func New(x, y, w, h, contentHeight float64) *Handle {
	return &Handle{
		rect:       vmath.Rect{X: x, Y: y, Width: w, Height: h},
		content:    contentHeight,
		hasContent: true,
	}
}

// NewEmpty creates a handle without a content region
func NewEmpty(x, y, w, h float64) *Handle {
	return &Handle{rect: vmath.Rect{X: x, Y: y, Width: w, Height: h}}
}

// WithPadding sets vertical padding and returns the handle
func (h *Handle) WithPadding(top, bottom float64) *Handle {
	h.padTop, h.padBottom = top, bottom
	return h
}

// WithImage makes the handle an image source; call Load to finish loading
func (h *Handle) WithImage() *Handle {
	h.ready = make(chan struct{})
	return h
}

// Load sets the final content height and closes the image ready channel
func (h *Handle) Load(contentHeight float64) {
	h.mu.Lock()
	h.content = contentHeight
	ready := h.ready
	h.mu.Unlock()
	if ready != nil {
		close(ready)
	}
}

// SetContentHeight changes the measured content height without signaling
func (h *Handle) SetContentHeight(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.content = v
}

func (h *Handle) Rect() vmath.Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rect
}

func (h *Handle) ContentHeight() (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.content, h.hasContent
}

func (h *Handle) Padding() (float64, float64) {
	return h.padTop, h.padBottom
}

func (h *Handle) Place(x, y float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rect.X, h.rect.Y = x, y
	h.placeCount++
}

func (h *Handle) Resize(w, height float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rect.Width, h.rect.Height = w, height
	h.resizeCount++
}

// ImageReady is nil for non-image handles; tile.ImageSource callers check for nil
func (h *Handle) ImageReady() <-chan struct{} {
	return h.ready
}

// Placed returns the last committed position and number of Place calls
func (h *Handle) Placed() (x, y float64, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rect.X, h.rect.Y, h.placeCount
}

// Resized returns the number of Resize calls
func (h *Handle) Resized() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resizeCount
}
