// Package engine runs the tile simulation: a per-frame integrator, the
// debounced settle transition and pointer-driven dragging.
//
// An Engine owns its tile states. All mutation happens on one goroutine:
// either the caller's, when driving Step and Dispatch directly, or the one
// executing Run, which multiplexes frame ticks and queued events.
package engine

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lixenwraith/drift/config"
	"github.com/lixenwraith/drift/layout"
	"github.com/lixenwraith/drift/parameter"
	"github.com/lixenwraith/drift/physics"
	"github.com/lixenwraith/drift/status"
	"github.com/lixenwraith/drift/tile"
)

var (
	// ErrNilSurface is returned by New without a surface
	ErrNilSurface = errors.New("engine: nil surface")
	// ErrRunning is returned by Run when the loop is already active
	ErrRunning = errors.New("engine: already running")
	// ErrStopped is returned by Run after Stop
	ErrStopped = errors.New("engine: stopped")
)

// maxSolvePasses bounds re-solves chained through height changes during a solve
const maxSolvePasses = 3

// Hooks are optional callbacks invoked on the engine goroutine
// They must not call Stop
type Hooks struct {
	OnFrame  func()                         // After positions are committed
	OnSettle func()                         // Settling switched on
	OnSolve  func(total float64)            // Column solve finished
	OnFling  func(index int, speed float64) // Release faster than the cue speed
}

// Option configures an Engine
type Option func(*Engine)

// WithConfig replaces the default settings
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithClock replaces the monotonic clock
func WithClock(tp TimeProvider) Option {
	return func(e *Engine) { e.clock = tp }
}

// WithLogger sets the logger; the engine adds its own id prefix
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithStatus shares a metrics registry
func WithStatus(reg *status.Registry) Option {
	return func(e *Engine) { e.status = reg }
}

// WithHooks installs callbacks
func WithHooks(h Hooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// Engine is one independent layout instance
type Engine struct {
	// ===== Immutable After New =====

	id      uuid.UUID
	surface Surface
	tiles   *tile.Registry
	cfg     config.Config
	wide    physics.Profile
	narrow  physics.Profile
	params  layout.Params
	clock   TimeProvider
	logger  *log.Logger
	status  *status.Registry
	hooks   Hooks
	images  []imageWatch

	// ===== Engine-Goroutine Exclusive =====

	settle         Debounce
	settling       bool
	suppressScroll bool
	solving        bool
	solvePending   bool
	lastFrame      time.Time
	captures       map[int]int // Pointer id -> tile index

	// ===== Lifecycle =====

	lifeMu   sync.Mutex // Orders Run's wg.Add against Stop's wg.Wait
	events   chan Event
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
	detached atomic.Bool

	// ===== Cached Metric Pointers =====

	statFrames    *atomic.Int64
	statSolves    *atomic.Int64
	statPushes    *atomic.Int64
	statSettles   *atomic.Int64
	statFlings    *atomic.Int64
	statRecovered *atomic.Int64
	statDragging  *atomic.Int64
	statHeight    *status.Float
	statDelta     *status.Float
	statPeak      *status.Float
	statNarrow    *atomic.Bool
	statSettling  *atomic.Bool
}

type imageWatch struct {
	index int
	ready <-chan struct{}
}

// New measures the tiles, reports the initial surface height, commits the
// initial geometry and arms the first settle
func New(surface Surface, entries []tile.Entry, opts ...Option) (*Engine, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}

	e := &Engine{
		id:       uuid.New(),
		surface:  surface,
		cfg:      config.Default(),
		clock:    NewMonotonicTimeProvider(),
		captures: make(map[int]int),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	e.logger = e.logger.WithPrefix("engine " + e.id.String()[:8])
	if e.status == nil {
		e.status = status.NewRegistry()
	}
	e.cacheMetrics()

	e.wide = e.cfg.WideProfile()
	e.narrow = e.cfg.NarrowProfile()
	e.params = e.cfg.LayoutParams()
	e.events = make(chan Event, parameter.EventQueueSize)

	e.tiles = tile.NewRegistry(entries)

	for i, s := range e.tiles.All() {
		if s.Handle == nil {
			continue
		}
		s.Handle.Resize(s.Width, s.Height)
		s.Handle.Place(s.X, s.Y)

		src, ok := s.Handle.(tile.ImageSource)
		if !ok {
			continue
		}
		ready := src.ImageReady()
		if ready == nil {
			continue
		}
		select {
		case <-ready:
			e.tiles.UpdateHeight(i)
		default:
			e.images = append(e.images, imageWatch{index: i, ready: ready})
		}
	}

	e.surface.SetHeight(e.tiles.MaxBottom())
	e.statHeight.Set(e.tiles.MaxBottom())

	now := e.clock.Now()
	e.lastFrame = now
	e.settle.Arm(now, e.cfg.Loop.SettleDelay.Duration)

	e.logger.Info("layout initialized", "tiles", e.tiles.Len(), "images", len(e.images))
	return e, nil
}

func (e *Engine) cacheMetrics() {
	e.statFrames = e.status.Ints.Get(status.Frames)
	e.statSolves = e.status.Ints.Get(status.Solves)
	e.statPushes = e.status.Ints.Get(status.Pushes)
	e.statSettles = e.status.Ints.Get(status.Settles)
	e.statFlings = e.status.Ints.Get(status.Flings)
	e.statRecovered = e.status.Ints.Get(status.Recovered)
	e.statDragging = e.status.Ints.Get(status.Dragging)
	e.statHeight = e.status.Floats.Get(status.SurfaceHeight)
	e.statDelta = e.status.Floats.Get(status.FrameDelta)
	e.statPeak = e.status.Floats.Get(status.PeakSpeed)
	e.statNarrow = e.status.Bools.Get(status.Narrow)
	e.statSettling = e.status.Bools.Get(status.SettlingOn)
}

// ID returns the instance id used in log prefixes
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Tiles exposes the registry; mutate only from the engine goroutine
func (e *Engine) Tiles() *tile.Registry {
	return e.tiles
}

// Settling reports whether the settle mode is globally on
func (e *Engine) Settling() bool {
	return e.settling
}

// SettlePending reports whether a settle is armed
func (e *Engine) SettlePending() bool {
	return e.settle.Pending()
}

// Status returns the metrics registry
func (e *Engine) Status() *status.Registry {
	return e.status
}

// startSettling fires the debounced transition: record start, re-measure, solve, spring on
func (e *Engine) startSettling() {
	for _, s := range e.tiles.All() {
		s.StartY = s.Y
	}
	e.tiles.UpdateHeights()
	e.solve()

	e.settling = true
	for _, s := range e.tiles.All() {
		if s.Mode != tile.Dragging {
			s.Mode = tile.Settling
		}
	}
	e.statSettles.Add(1)
	e.statSettling.Store(true)
	e.logger.Debug("settling on", "tiles", e.tiles.Len())

	if e.hooks.OnSettle != nil {
		e.hooks.OnSettle()
	}
}

// stopSettling turns settling off and zeroes every velocity
func (e *Engine) stopSettling() {
	e.settling = false
	for _, s := range e.tiles.All() {
		physics.Stop(&s.Body)
		if s.Mode == tile.Settling {
			s.Mode = tile.Free
		}
	}
	e.statSettling.Store(false)
}

// solve recomputes column targets and the reported surface height
// A solve requested while one is running is folded into a follow-up pass
func (e *Engine) solve() {
	if e.solving {
		e.solvePending = true
		return
	}
	e.solving = true
	defer func() { e.solving = false }()

	for pass := 0; pass < maxSolvePasses; pass++ {
		e.solvePending = false
		e.suppressScroll = true

		total := layout.Stack(e.tiles.All(), e.params, e.surface.ViewportHeight())
		e.surface.SetHeight(total)

		e.statSolves.Add(1)
		e.statHeight.Set(total)
		if e.hooks.OnSolve != nil {
			e.hooks.OnSolve(total)
		}

		if !e.solvePending {
			return
		}
	}
	e.logger.Debug("solve pass limit reached", "passes", maxSolvePasses)
	e.solvePending = false
}

// Dispatch handles one event synchronously on the caller's goroutine
func (e *Engine) Dispatch(ev Event) {
	if e.detached.Load() {
		return
	}
	switch ev := ev.(type) {
	case PointerEvent:
		e.HandlePointer(ev)
	case ScrollEvent:
		e.HandleScroll()
	case HeightEvent:
		e.HandleHeight(ev.Index)
	}
}

// Submit queues an event for the Run goroutine; safe from any goroutine
// Returns false when the engine is stopped or the queue is full
func (e *Engine) Submit(ev Event) bool {
	if e.detached.Load() {
		return false
	}
	select {
	case <-e.stopCh:
		return false
	default:
	}
	select {
	case e.events <- ev:
		return true
	default:
		e.logger.Warn("event queue full, dropping", "event", ev)
		return false
	}
}

// HandleHeight re-measures tile i; targets are re-solved only while settling
func (e *Engine) HandleHeight(i int) {
	if e.detached.Load() || i < 0 || i >= e.tiles.Len() {
		return
	}
	if !e.tiles.UpdateHeight(i) {
		return
	}
	e.logger.Debug("tile height changed", "tile", i, "height", e.tiles.At(i).Height)
	if e.settling {
		e.solve()
	}
}

// HandleScroll treats scroll as activity: settling stops and the settle re-arms
// Scroll caused by the engine's own height report is ignored until the next frame
func (e *Engine) HandleScroll() {
	if e.detached.Load() || e.suppressScroll {
		return
	}
	e.stopSettling()
	e.settle.Arm(e.clock.Now(), e.cfg.Loop.SettleDelay.Duration)
}
