package physics

import (
	"math"

	"github.com/lixenwraith/drift/vmath"
)

// SpringY advances the vertical spring toward target, returns true when the body snapped
// vy += (target - y) * k * dt; vy *= damping^(dt*60); y += vy * dt
// The snap test uses the distance measured before the update and the updated velocity
// Horizontal state is untouched
func SpringY(b *Body, target, dt float64, prof Profile) bool {
	dy := target - b.Y
	b.VY += dy * prof.Stiffness * dt
	b.VY *= vmath.FramePow(prof.Damping, dt)
	b.Y += b.VY * dt

	if math.Abs(dy) < prof.SnapDistance && math.Abs(b.VY) < prof.SnapSpeed {
		b.Y = target
		b.VY = 0
		return true
	}
	return false
}
