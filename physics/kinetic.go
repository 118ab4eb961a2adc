package physics

import (
	"github.com/lixenwraith/drift/vmath"
)

// Body is the kinetic part of a tile: position and velocity in surface units
type Body struct {
	X, Y   float64
	VX, VY float64
}

// Drift performs free integration: p = p + v*dt, then friction decay
// Components slower than the rest epsilon are zeroed so bodies come to rest exactly
func Drift(b *Body, dt float64, prof Profile) {
	b.X += b.VX * dt
	b.Y += b.VY * dt

	friction := vmath.FramePow(prof.Friction, dt)
	b.VX = vmath.Settle(b.VX*friction, prof.RestEpsilon)
	b.VY = vmath.Settle(b.VY*friction, prof.RestEpsilon)
}

// SetImpulse overrides velocity (drag release fling)
func SetImpulse(b *Body, vx, vy float64) {
	b.VX = vx
	b.VY = vy
}

// Stop zeroes velocity
func Stop(b *Body) {
	b.VX = 0
	b.VY = 0
}

// Finite reports whether position and velocity are all finite
func (b *Body) Finite() bool {
	return vmath.Finite(b.X) && vmath.Finite(b.Y) && vmath.Finite(b.VX) && vmath.Finite(b.VY)
}
