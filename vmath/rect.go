package vmath

import "math"

// Rect is an axis-aligned box, top-left origin, y grows downward
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains checks if point is within rect, right and bottom edges exclusive
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Overlaps reports strict overlap on both axes; touching edges do not overlap
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && r.Right() > o.X && r.Y < o.Bottom() && r.Bottom() > o.Y
}

// OverlapArea returns the intersection area, 0 when disjoint
func (r Rect) OverlapArea(o Rect) float64 {
	w := math.Min(r.Right(), o.Right()) - math.Max(r.X, o.X)
	h := math.Min(r.Bottom(), o.Bottom()) - math.Max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}
