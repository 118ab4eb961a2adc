package status

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metric keys written by the engine
const (
	Frames        = "engine.frames"
	Solves        = "layout.solves"
	Pushes        = "layout.pushes"
	Settles       = "engine.settles"
	Flings        = "input.flings"
	Recovered     = "engine.recovered"
	Dragging      = "tiles.dragging"
	SurfaceHeight = "surface.height"
	FrameDelta    = "engine.dt"
	PeakSpeed     = "input.peak_speed"
	Narrow        = "viewport.narrow"
	SettlingOn    = "engine.settling"
)

// Registry is the metrics facade shared by the engine and the host HUD
type Registry struct {
	Bools  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[Float]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[Float](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Bools.Count() + r.Ints.Count() + r.Floats.Count()
}

// Line renders the selected keys as "key=value" pairs for a status bar
// Unknown keys are skipped
func (r *Registry) Line(keys ...string) string {
	var b strings.Builder
	for _, k := range keys {
		var part string
		switch {
		case r.Ints.has(k):
			part = fmt.Sprintf("%s=%d", short(k), r.Ints.Get(k).Load())
		case r.Floats.has(k):
			part = fmt.Sprintf("%s=%.1f", short(k), r.Floats.Get(k).Get())
		case r.Bools.has(k):
			part = fmt.Sprintf("%s=%t", short(k), r.Bools.Get(k).Load())
		default:
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(part)
	}
	return b.String()
}

// short drops the namespace prefix of a metric key
func short(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[i+1:]
	}
	return key
}

func (m *MetricMap[T]) has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[key]
	return ok
}
