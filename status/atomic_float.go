package status

import (
	"math"
	"sync/atomic"
)

// Float is an atomic float64 stored as bits; zero value reads 0.0
type Float struct {
	bits atomic.Uint64
}

// Set stores val
func (f *Float) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get loads the current value
func (f *Float) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Max raises the stored value to val if val is larger
func (f *Float) Max(val float64) {
	for {
		old := f.bits.Load()
		if math.Float64frombits(old) >= val {
			return
		}
		if f.bits.CompareAndSwap(old, math.Float64bits(val)) {
			return
		}
	}
}
