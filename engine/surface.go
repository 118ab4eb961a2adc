package engine

// Surface is the host-owned layout container
// All methods are called from the engine goroutine
type Surface interface {
	// Size returns the current container bounds; read every frame
	Size() (width, height float64)
	// ViewportHeight is the visible height, the floor for the reported total height
	ViewportHeight() float64
	// SetHeight reports the total scrollable height after a solve
	SetHeight(height float64)
	// Narrow reports whether overlap resolution replaces stacking; evaluated on demand
	Narrow() bool
}
