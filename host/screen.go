// Package host runs drift in a terminal: it turns content tiles into
// engine handles, feeds mouse input to the engine and draws every frame.
package host

import (
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/drift/config"
)

// Scale converts terminal cells to surface units
type Scale struct {
	CellWidth  float64
	CellHeight float64
}

// ScaleOf returns the cell scale configured for the host
func ScaleOf(cfg config.HostConfig) Scale {
	return Scale{CellWidth: cfg.CellWidth, CellHeight: cfg.CellHeight}
}

// statusRows is reserved at the bottom of the terminal
const statusRows = 1

// Screen is the scrollable layout surface backed by a tcell screen
// Engine methods run on the engine goroutine, drawing reads on the host goroutine
type Screen struct {
	screen      tcell.Screen
	scale       Scale
	narrowWidth float64

	mu     sync.Mutex
	height float64 // Reported total height
	offset float64 // Scroll offset of the viewport top

	// OnScroll is called on the engine goroutine when a height report moves the viewport
	OnScroll func()
}

// NewScreen wraps a tcell screen; narrowWidth is the narrow-layout threshold in units
func NewScreen(screen tcell.Screen, scale Scale, narrowWidth float64) *Screen {
	return &Screen{
		screen:      screen,
		scale:       scale,
		narrowWidth: narrowWidth,
	}
}

// Cells returns the usable terminal size, excluding the status row
func (s *Screen) Cells() (cols, rows int) {
	cols, rows = s.screen.Size()
	rows -= statusRows
	if rows < 0 {
		rows = 0
	}
	return cols, rows
}

// Size returns the surface bounds: terminal width by the larger of reported and visible height
func (s *Screen) Size() (float64, float64) {
	cols, _ := s.Cells()
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(cols) * s.scale.CellWidth, math.Max(s.height, s.ViewportHeight())
}

// ViewportHeight is the visible height in units
func (s *Screen) ViewportHeight() float64 {
	_, rows := s.Cells()
	return float64(rows) * s.scale.CellHeight
}

// Narrow reports whether the terminal is at most the narrow threshold wide
func (s *Screen) Narrow() bool {
	cols, _ := s.Cells()
	return float64(cols)*s.scale.CellWidth <= s.narrowWidth
}

// SetHeight records the total height and pulls the viewport back inside it
func (s *Screen) SetHeight(height float64) {
	viewport := s.ViewportHeight()

	s.mu.Lock()
	s.height = height
	moved := s.clampOffset(viewport)
	s.mu.Unlock()

	if moved && s.OnScroll != nil {
		s.OnScroll()
	}
}

// Height returns the last reported total height
func (s *Screen) Height() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// Offset returns the scroll offset in units
func (s *Screen) Offset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// ScrollBy moves the viewport by whole rows, returns false when clamped in place
func (s *Screen) ScrollBy(rows int) bool {
	viewport := s.ViewportHeight()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.offset
	s.offset += float64(rows) * s.scale.CellHeight
	s.clampOffset(viewport)
	return s.offset != prev
}

// Refit re-clamps the offset after a terminal resize, returns true when it moved
func (s *Screen) Refit() bool {
	viewport := s.ViewportHeight()

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.offset
	s.clampOffset(viewport)
	return s.offset != prev
}

// clampOffset keeps the viewport inside the content; caller holds mu
func (s *Screen) clampOffset(viewport float64) bool {
	limit := math.Max(s.height-viewport, 0)
	next := math.Min(math.Max(s.offset, 0), limit)
	// Whole rows only, so scrolled content stays aligned to cells
	next = math.Floor(next/s.scale.CellHeight) * s.scale.CellHeight
	moved := next != s.offset
	s.offset = next
	return moved
}

// ToSurface maps the center of a cell to surface units
func (s *Screen) ToSurface(col, row int) (x, y float64) {
	offset := s.Offset()
	x = (float64(col) + 0.5) * s.scale.CellWidth
	y = (float64(row)+0.5)*s.scale.CellHeight + offset
	return x, y
}

// ToCell maps surface units to the cell containing them, relative to the viewport
func (s *Screen) ToCell(x, y float64) (col, row int) {
	offset := s.Offset()
	col = int(math.Floor(x / s.scale.CellWidth))
	row = int(math.Floor((y - offset) / s.scale.CellHeight))
	return col, row
}
