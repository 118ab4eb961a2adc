package physics

import "github.com/lixenwraith/drift/vmath"

// Clamp keeps a w×h body inside a boundsW×boundsH surface anchored at origin
// Degenerate or non-finite bounds collapse the body to (0,0)
func Clamp(b *Body, w, h, boundsW, boundsH float64) {
	maxX := vmath.OrZero(boundsW - w)
	maxY := vmath.OrZero(boundsH - h)
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	b.X = vmath.Clamp(vmath.OrZero(b.X), 0, maxX)
	b.Y = vmath.Clamp(vmath.OrZero(b.Y), 0, maxY)
}
