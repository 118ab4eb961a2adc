package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/lixenwraith/drift/parameter"
	"github.com/lixenwraith/drift/status"
	"github.com/lixenwraith/drift/tile"
	"github.com/lixenwraith/drift/tile/tiletest"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeSurface struct {
	w, h     float64
	viewport float64
	narrow   bool
	heights  []float64
	onHeight func(float64)
}

func (s *fakeSurface) Size() (float64, float64) {
	return s.w, s.h
}

func (s *fakeSurface) ViewportHeight() float64 {
	return s.viewport
}

func (s *fakeSurface) Narrow() bool {
	return s.narrow
}

func (s *fakeSurface) SetHeight(h float64) {
	s.heights = append(s.heights, h)
	if s.onHeight != nil {
		s.onHeight(h)
	}
}

func (s *fakeSurface) lastHeight() float64 {
	if len(s.heights) == 0 {
		return -1
	}
	return s.heights[len(s.heights)-1]
}

func wideSurface() *fakeSurface {
	return &fakeSurface{w: 1000, h: 1000, viewport: 600}
}

func entriesOf(handles ...tile.Handle) []tile.Entry {
	entries := make([]tile.Entry, len(handles))
	for i, h := range handles {
		entries[i] = tile.Entry{Handle: h, Kind: tile.KindText}
	}
	return entries
}

func newTestEngine(t *testing.T, surf *fakeSurface, opts []Option, handles ...tile.Handle) (*Engine, *MockTimeProvider) {
	t.Helper()
	clock := NewMockTimeProvider(epoch)
	e, err := New(surf, entriesOf(handles...), append([]Option{WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(e.Stop)
	return e, clock
}

// stepFor runs whole frames until at least d has elapsed on the mock clock
func stepFor(e *Engine, clock *MockTimeProvider, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += parameter.FrameUpdateInterval {
		e.Step(clock.Advance(parameter.FrameUpdateInterval))
	}
}

func press(e *Engine, clock *MockTimeProvider, id int, x, y float64) {
	e.HandlePointer(PointerEvent{ID: id, Kind: PointerMouse, Button: ButtonLeft, Action: PointerDown, X: x, Y: y, Time: clock.Now()})
}

func pointer(e *Engine, action PointerAction, id int, x, y float64, at time.Time) {
	e.HandlePointer(PointerEvent{ID: id, Kind: PointerMouse, Button: ButtonLeft, Action: action, X: x, Y: y, Time: at})
}

func TestNewRejectsNilSurface(t *testing.T) {
	if _, err := New(nil, nil); err != ErrNilSurface {
		t.Fatalf("New(nil) error = %v, want ErrNilSurface", err)
	}
}

// TestNewCommitsInitialGeometry verifies measurement, commit and the first height report
func TestNewCommitsInitialGeometry(t *testing.T) {
	surf := wideSurface()
	h0 := tiletest.New(0, 100, 100, 10, 50).WithPadding(4, 6)
	h1 := tiletest.New(10, 300, 100, 40, 40)
	e, _ := newTestEngine(t, surf, nil, h0, h1)

	if got := e.Tiles().At(0).Height; got != 60 {
		t.Errorf("tile 0 height = %v, want 60", got)
	}
	if got := surf.lastHeight(); got != 340 {
		t.Errorf("initial surface height = %v, want 340", got)
	}
	if _, _, n := h0.Placed(); n != 1 {
		t.Errorf("Place calls = %d, want 1", n)
	}
	if h0.Resized() != 1 || h0.Rect().Height != 60 {
		t.Errorf("Resize not committed: count=%d rect=%+v", h0.Resized(), h0.Rect())
	}
	if !e.SettlePending() || e.Settling() {
		t.Error("first settle should be armed but not active")
	}
}

// TestSettleLifecycle verifies debounce firing, column targets and spring convergence
func TestSettleLifecycle(t *testing.T) {
	surf := wideSurface()
	h0 := tiletest.New(0, 100, 100, 50, 50)
	h1 := tiletest.New(10, 300, 100, 40, 40)

	settles := 0
	e, clock := newTestEngine(t, surf, []Option{WithHooks(Hooks{OnSettle: func() { settles++ }})}, h0, h1)

	stepFor(e, clock, 600*time.Millisecond)
	if e.Settling() {
		t.Fatal("settling before the delay elapsed")
	}

	stepFor(e, clock, 120*time.Millisecond)
	if !e.Settling() || settles != 1 {
		t.Fatalf("settling=%v settles=%d, want active once", e.Settling(), settles)
	}

	t0, t1 := e.Tiles().At(0), e.Tiles().At(1)
	if t0.Mode != tile.Settling || t1.Mode != tile.Settling {
		t.Errorf("modes = %v, %v, want Settling", t0.Mode, t1.Mode)
	}
	if t0.TargetY != 0 || t1.TargetY != 58 {
		t.Errorf("targets = %v, %v, want 0, 58", t0.TargetY, t1.TargetY)
	}
	if t0.StartY != 100 || t1.StartY != 300 {
		t.Errorf("start = %v, %v, want 100, 300", t0.StartY, t1.StartY)
	}
	if got := surf.lastHeight(); got != 600 {
		t.Errorf("surface height = %v, want viewport 600", got)
	}

	for i := 0; i < 20000 && (t0.Y != t0.TargetY || t1.Y != t1.TargetY); i++ {
		e.Step(clock.Advance(parameter.FrameUpdateInterval))
	}
	if t0.Y != 0 || t1.Y != 58 {
		t.Fatalf("did not converge: y0=%v y1=%v", t0.Y, t1.Y)
	}
	if _, y, _ := h1.Placed(); y != 58 {
		t.Errorf("committed y = %v, want 58", y)
	}
	if settles != 1 {
		t.Errorf("settle fired %d times", settles)
	}
}

// TestDragFidelity verifies position tracks the pointer minus the press offset and velocity is Δ/elapsed
func TestDragFidelity(t *testing.T) {
	h0 := tiletest.New(100, 100, 100, 50, 50)

	flungTile, flungSpeed := -1, 0.0
	hooks := Hooks{OnFling: func(i int, speed float64) { flungTile, flungSpeed = i, speed }}
	e, clock := newTestEngine(t, wideSurface(), []Option{WithHooks(hooks)}, h0)

	press(e, clock, 1, 110, 120)
	s := e.Tiles().At(0)
	if s.Mode != tile.Dragging {
		t.Fatalf("mode = %v, want Dragging", s.Mode)
	}
	if e.SettlePending() {
		t.Error("press should cancel the pending settle")
	}

	pointer(e, PointerMove, 1, 140, 140, clock.Advance(10*time.Millisecond))
	if s.X != 130 || s.Y != 120 {
		t.Errorf("position = (%v, %v), want (130, 120)", s.X, s.Y)
	}
	if math.Abs(s.VX-3000) > 1e-6 || math.Abs(s.VY-2000) > 1e-6 {
		t.Errorf("velocity = (%v, %v), want (3000, 2000)", s.VX, s.VY)
	}
	if x, y, _ := h0.Placed(); x != 130 || y != 120 {
		t.Errorf("committed = (%v, %v), want (130, 120)", x, y)
	}

	pointer(e, PointerUp, 1, 140, 140, clock.Now())
	if s.Mode != tile.Free || s.VX == 0 {
		t.Errorf("release: mode=%v vx=%v, want Free carrying velocity", s.Mode, s.VX)
	}
	if s.StartY != 120 || !e.SettlePending() {
		t.Errorf("release: startY=%v pending=%v", s.StartY, e.SettlePending())
	}
	if flungTile != 0 || math.Abs(flungSpeed-math.Hypot(3000, 2000)) > 1e-6 {
		t.Errorf("fling hook = (%d, %v)", flungTile, flungSpeed)
	}

	before := s.X
	e.Step(clock.Advance(parameter.FrameUpdateInterval))
	if s.X <= before {
		t.Errorf("fling did not carry: x %v -> %v", before, s.X)
	}
}

// TestPointerElapsedFloor verifies same-timestamp samples divide by 1ms
func TestPointerElapsedFloor(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil, tiletest.New(100, 100, 100, 50, 50))

	press(e, clock, 1, 110, 110)
	pointer(e, PointerMove, 1, 115, 110, clock.Now())

	s := e.Tiles().At(0)
	if math.Abs(s.VX-5000) > 1e-6 || s.VY != 0 {
		t.Errorf("velocity = (%v, %v), want (5000, 0)", s.VX, s.VY)
	}
}

// TestPressFiltering verifies button, hit-test and content-region rules for starting a drag
func TestPressFiltering(t *testing.T) {
	tests := []struct {
		name   string
		event  PointerEvent
		handle tile.Handle
		want   tile.Mode
	}{
		{"mouse left", PointerEvent{Kind: PointerMouse, Button: ButtonLeft, X: 10, Y: 10}, tiletest.New(0, 0, 100, 50, 50), tile.Dragging},
		{"mouse right", PointerEvent{Kind: PointerMouse, Button: ButtonRight, X: 10, Y: 10}, tiletest.New(0, 0, 100, 50, 50), tile.Free},
		{"touch any button", PointerEvent{Kind: PointerTouch, Button: -1, X: 10, Y: 10}, tiletest.New(0, 0, 100, 50, 50), tile.Dragging},
		{"miss", PointerEvent{Kind: PointerPen, X: 500, Y: 500}, tiletest.New(0, 0, 100, 50, 50), tile.Free},
		{"no content", PointerEvent{Kind: PointerMouse, X: 10, Y: 10}, tiletest.NewEmpty(0, 0, 100, 50), tile.Free},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, wideSurface(), nil, tt.handle)
			tt.event.Action = PointerDown
			e.HandlePointer(tt.event)
			if got := e.Tiles().At(0).Mode; got != tt.want {
				t.Errorf("mode = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestPressTopmost verifies the later tile wins where two overlap
func TestPressTopmost(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil,
		tiletest.New(0, 0, 100, 50, 50),
		tiletest.New(50, 20, 100, 50, 50),
	)
	press(e, clock, 1, 60, 30)
	if e.Tiles().At(0).Mode != tile.Free || e.Tiles().At(1).Mode != tile.Dragging {
		t.Error("expected the later tile to be grabbed")
	}
}

// TestPressStopsSettling verifies a press zeroes every velocity and disarms the settle
func TestPressStopsSettling(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil,
		tiletest.New(0, 300, 100, 50, 50),
		tiletest.New(300, 400, 100, 50, 50),
	)
	stepFor(e, clock, 720*time.Millisecond)
	stepFor(e, clock, 100*time.Millisecond)
	if !e.Settling() || e.Tiles().At(1).VY == 0 {
		t.Fatal("expected tiles springing")
	}

	press(e, clock, 1, 10, e.Tiles().At(0).Y+10)

	if e.Settling() || e.SettlePending() {
		t.Error("press left settling active or armed")
	}
	for i, s := range e.Tiles().All() {
		if s.VX != 0 || s.VY != 0 {
			t.Errorf("tile %d velocity = (%v, %v), want zero", i, s.VX, s.VY)
		}
	}
	if e.Tiles().At(1).Mode != tile.Free {
		t.Errorf("untouched tile mode = %v, want Free", e.Tiles().At(1).Mode)
	}
}

// TestModeLifecycle walks press, move, release, debounce and settle end to end
func TestModeLifecycle(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil, tiletest.New(0, 0, 100, 50, 50))
	s := e.Tiles().At(0)

	press(e, clock, 7, 10, 10)
	pointer(e, PointerMove, 7, 30, 210, clock.Advance(16*time.Millisecond))
	pointer(e, PointerUp, 7, 30, 210, clock.Now())
	if s.Mode != tile.Free {
		t.Fatalf("after release mode = %v, want Free", s.Mode)
	}

	stepFor(e, clock, 600*time.Millisecond)
	if s.Mode != tile.Free {
		t.Fatalf("settled early: %v", s.Mode)
	}
	stepFor(e, clock, 200*time.Millisecond)
	if s.Mode != tile.Settling || s.TargetY != 0 {
		t.Fatalf("after debounce mode=%v target=%v", s.Mode, s.TargetY)
	}
	free, settling, dragging := e.Tiles().ModeCounts()
	if free+settling+dragging != 1 || settling != 1 {
		t.Errorf("mode counts = %d/%d/%d", free, settling, dragging)
	}
}

// TestMultiPointer verifies independent drags and re-entry into settling on late release
func TestMultiPointer(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil,
		tiletest.New(0, 100, 100, 50, 50),
		tiletest.New(300, 100, 100, 50, 50),
	)
	t0, t1 := e.Tiles().At(0), e.Tiles().At(1)

	press(e, clock, 1, 10, 110)
	press(e, clock, 2, 310, 110)
	pointer(e, PointerMove, 2, 320, 130, clock.Advance(10*time.Millisecond))
	if t0.X != 0 || t0.Y != 100 {
		t.Errorf("pointer 2 moved tile 0 to (%v, %v)", t0.X, t0.Y)
	}
	if t1.X != 310 || t1.Y != 120 {
		t.Errorf("tile 1 at (%v, %v), want (310, 120)", t1.X, t1.Y)
	}

	pointer(e, PointerUp, 1, 10, 110, clock.Now())
	stepFor(e, clock, 720*time.Millisecond)
	if !e.Settling() || t0.Mode != tile.Settling || t1.Mode != tile.Dragging {
		t.Fatalf("settling=%v modes=%v/%v", e.Settling(), t0.Mode, t1.Mode)
	}
	if t1.TargetY != 100 {
		t.Errorf("dragged tile target changed to %v", t1.TargetY)
	}

	pointer(e, PointerUp, 2, 320, 130, clock.Now())
	if t1.Mode != tile.Settling || t1.TargetY != 0 {
		t.Errorf("late release: mode=%v target=%v, want Settling/0", t1.Mode, t1.TargetY)
	}
}

// TestCancelWithoutMove verifies a bare press-cancel leaves the tile at rest
func TestCancelWithoutMove(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil, tiletest.New(0, 100, 100, 50, 50))
	press(e, clock, 3, 10, 110)
	pointer(e, PointerCancel, 3, 10, 110, time.Time{})

	s := e.Tiles().At(0)
	if s.Mode != tile.Free || s.VX != 0 || s.VY != 0 || !e.SettlePending() {
		t.Errorf("mode=%v v=(%v,%v) pending=%v", s.Mode, s.VX, s.VY, e.SettlePending())
	}
	pointer(e, PointerMove, 3, 50, 50, clock.Now())
	if s.X != 0 || s.Y != 100 {
		t.Error("move after cancel still dragged the tile")
	}
}

// TestScrollSuppressedAfterSolve verifies self-induced scroll is ignored until the next frame
func TestScrollSuppressedAfterSolve(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil, tiletest.New(0, 300, 100, 50, 50))
	for i := 0; i < 100 && !e.Settling(); i++ {
		e.Step(clock.Advance(parameter.FrameUpdateInterval))
	}
	if !e.Settling() {
		t.Fatal("expected settling")
	}

	e.HandleScroll()
	if !e.Settling() {
		t.Fatal("scroll in the solve frame stopped settling")
	}

	e.Step(clock.Advance(parameter.FrameUpdateInterval))
	e.Dispatch(ScrollEvent{})
	if e.Settling() || !e.SettlePending() {
		t.Errorf("user scroll: settling=%v pending=%v", e.Settling(), e.SettlePending())
	}
	if e.Tiles().At(0).VY != 0 {
		t.Error("scroll left velocity")
	}
}

// TestHeightChangeResolves verifies re-solve on height change while settling, and the re-entrancy guard
func TestHeightChangeResolves(t *testing.T) {
	surf := &fakeSurface{w: 1000, h: 1000, viewport: 100}
	h0 := tiletest.New(0, 0, 100, 50, 50)
	h1 := tiletest.New(0, 200, 100, 40, 40)

	solveCalls := 0
	e, clock := newTestEngine(t, surf, []Option{WithHooks(Hooks{OnSolve: func(float64) { solveCalls++ }})}, h0, h1)

	h0.SetContentHeight(45)
	e.HandleHeight(0)
	if solveCalls != 0 {
		t.Fatal("solved while not settling")
	}

	stepFor(e, clock, 720*time.Millisecond)
	solveCalls = 0
	solves := e.Status().Ints.Get(status.Solves).Load()

	nested := false
	surf.onHeight = func(float64) {
		if nested {
			return
		}
		nested = true
		h1.SetContentHeight(70)
		e.HandleHeight(1)
	}

	h0.SetContentHeight(60)
	e.HandleHeight(0)

	if solveCalls != 2 || e.Status().Ints.Get(status.Solves).Load()-solves != 2 {
		t.Errorf("solve passes = %d, want 2", solveCalls)
	}
	if got := e.Tiles().At(1).TargetY; got != 68 {
		t.Errorf("tile 1 target = %v, want 68", got)
	}
	if got := surf.lastHeight(); got != 146 {
		t.Errorf("surface height = %v, want 146", got)
	}
	if h1.Rect().Height != 70 {
		t.Errorf("resize not committed: %v", h1.Rect().Height)
	}

	e.HandleHeight(-1)
	e.HandleHeight(5)
}

// TestNarrowResolvesOverlaps verifies the sweep in free frames and during a drag
func TestNarrowResolvesOverlaps(t *testing.T) {
	t.Run("frame", func(t *testing.T) {
		surf := &fakeSurface{w: 500, h: 2000, viewport: 800, narrow: true}
		e, clock := newTestEngine(t, surf, nil,
			tiletest.New(0, 0, 100, 50, 50),
			tiletest.New(20, 20, 100, 50, 50),
		)
		e.Step(clock.Advance(parameter.FrameUpdateInterval))
		if got := e.Tiles().At(1).Y; got != 54 {
			t.Errorf("pushed y = %v, want 54", got)
		}
		if e.Status().Ints.Get(status.Pushes).Load() == 0 {
			t.Error("pushes not counted")
		}
	})

	t.Run("drag", func(t *testing.T) {
		surf := &fakeSurface{w: 500, h: 2000, viewport: 800, narrow: true}
		e, clock := newTestEngine(t, surf, nil,
			tiletest.New(0, 0, 100, 50, 50),
			tiletest.New(0, 200, 100, 50, 50),
		)
		press(e, clock, 1, 10, 210)
		pointer(e, PointerMove, 1, 10, 20, clock.Advance(16*time.Millisecond))
		if got := e.Tiles().At(1).Y; got != 54 {
			t.Errorf("dragged tile y = %v, want 54", got)
		}
	})

	t.Run("wide skips", func(t *testing.T) {
		e, clock := newTestEngine(t, wideSurface(), nil,
			tiletest.New(0, 0, 100, 50, 50),
			tiletest.New(20, 20, 100, 50, 50),
		)
		e.Step(clock.Advance(parameter.FrameUpdateInterval))
		if got := e.Tiles().At(1).Y; got != 20 {
			t.Errorf("wide layout moved tile to %v", got)
		}
	})
}

// TestBoundsInvariant verifies positions stay inside the surface through flings and degenerate sizes
func TestBoundsInvariant(t *testing.T) {
	surf := &fakeSurface{w: 400, h: 300, viewport: 300}
	e, clock := newTestEngine(t, surf, nil,
		tiletest.New(10, 10, 100, 50, 50),
		tiletest.New(200, 100, 100, 50, 50),
	)

	press(e, clock, 1, 20, 20)
	pointer(e, PointerMove, 1, 60, 80, clock.Advance(time.Millisecond))
	pointer(e, PointerMove, 1, 1000, 1000, clock.Advance(time.Millisecond))
	pointer(e, PointerUp, 1, 1000, 1000, clock.Now())

	check := func(stage string) {
		w, h := surf.Size()
		for i, s := range e.Tiles().All() {
			maxX := math.Max(w-s.Width, 0)
			maxY := math.Max(h-s.Height, 0)
			if s.X < 0 || s.X > maxX || s.Y < 0 || s.Y > maxY || math.IsNaN(s.X) || math.IsNaN(s.Y) {
				t.Fatalf("%s: tile %d at (%v, %v) outside [0,%v]x[0,%v]", stage, i, s.X, s.Y, maxX, maxY)
			}
		}
	}

	check("drag")
	for i := 0; i < 200; i++ {
		e.Step(clock.Advance(parameter.FrameUpdateInterval))
		check("fling")
	}

	surf.w, surf.h = 0, math.NaN()
	e.Step(clock.Advance(parameter.FrameUpdateInterval))
	for i, s := range e.Tiles().All() {
		if s.X != 0 || s.Y != 0 {
			t.Errorf("degenerate surface: tile %d at (%v, %v)", i, s.X, s.Y)
		}
	}
}

// TestFrameDeltaClamped verifies a stall integrates at most MaxFrameDelta
func TestFrameDeltaClamped(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil, tiletest.New(0, 0, 100, 50, 50))
	s := e.Tiles().At(0)
	s.VX = 100
	e.settle.Cancel()

	e.Step(clock.Advance(10 * time.Second))
	if math.Abs(s.X-5) > 1e-9 {
		t.Errorf("x after stall = %v, want 5", s.X)
	}
	if got := e.Status().Floats.Get(status.FrameDelta).Get(); got != parameter.MaxFrameDelta.Seconds() {
		t.Errorf("dt metric = %v", got)
	}
}

type panicHandle struct {
	*tiletest.Handle
	armed bool
}

func (p *panicHandle) Place(x, y float64) {
	if p.armed {
		panic("place failed")
	}
	p.Handle.Place(x, y)
}

// TestTileFailureIsolated verifies a failing or non-finite tile does not stop the frame
func TestTileFailureIsolated(t *testing.T) {
	bad := &panicHandle{Handle: tiletest.New(0, 0, 100, 50, 50)}
	good := tiletest.New(300, 0, 100, 50, 50)
	e, clock := newTestEngine(t, wideSurface(), nil, bad, good)
	bad.armed = true

	s := e.Tiles().At(1)
	s.VX = math.NaN()

	_, _, before := good.Placed()
	e.Step(clock.Advance(parameter.FrameUpdateInterval))

	if _, _, after := good.Placed(); after != before+1 {
		t.Errorf("good tile Place calls %d -> %d", before, after)
	}
	if s.VX != 0 || s.X != 300 {
		t.Errorf("non-finite tile reset to x=%v vx=%v", s.X, s.VX)
	}
	if got := e.Status().Ints.Get(status.Recovered).Load(); got != 2 {
		t.Errorf("recovered = %d, want 2", got)
	}
}

// TestStopDetaches verifies Stop is idempotent and drops later input
func TestStopDetaches(t *testing.T) {
	e, clock := newTestEngine(t, wideSurface(), nil, tiletest.New(0, 0, 100, 50, 50))
	press(e, clock, 1, 10, 10)

	e.Stop()
	e.Stop()

	s := e.Tiles().At(0)
	if s.Mode != tile.Free {
		t.Errorf("drag survived Stop: %v", s.Mode)
	}
	press(e, clock, 2, 10, 10)
	if s.Mode != tile.Free {
		t.Error("press after Stop started a drag")
	}
	if e.Submit(ScrollEvent{}) {
		t.Error("Submit accepted after Stop")
	}
	if err := e.Run(context.Background()); err != ErrStopped {
		t.Errorf("Run after Stop = %v, want ErrStopped", err)
	}

	x, y := s.X, s.Y
	s.VX = 50
	e.Step(clock.Advance(parameter.FrameUpdateInterval))
	if s.X != x || s.Y != y {
		t.Error("Step after Stop moved a tile")
	}
}

// TestRunDeliversImageHeight verifies image loads reach the loop and the loop exits on cancel
func TestRunDeliversImageHeight(t *testing.T) {
	img := tiletest.New(0, 0, 100, 20, 20).WithImage()
	surf := wideSurface()
	e, err := New(surf, []tile.Entry{{Handle: img, Kind: tile.KindImage}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	img.Load(80)

	deadline := time.Now().Add(2 * time.Second)
	for img.Resized() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("image height never applied")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if got := e.Tiles().At(0).Height; got != 80 {
		t.Errorf("height = %v, want 80", got)
	}
	e.Stop()
}

// TestRunRejectsSecondLoop verifies only one loop drives an engine
func TestRunRejectsSecondLoop(t *testing.T) {
	e, err := New(wideSurface(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for !e.running.Load() {
		if time.Now().After(deadline) {
			t.Fatal("loop never started")
		}
		time.Sleep(time.Millisecond)
	}
	if err := e.Run(context.Background()); err != ErrRunning {
		t.Errorf("second Run = %v, want ErrRunning", err)
	}

	e.Stop()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v after Stop", err)
	}
}

// TestStopRacesRunStart verifies Stop waits for a loop that is just starting
// and that a loop started after Stop is refused
func TestStopRacesRunStart(t *testing.T) {
	for i := 0; i < 50; i++ {
		e, err := New(wideSurface(), nil)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		done := make(chan error, 1)
		go func() { done <- e.Run(context.Background()) }()
		e.Stop()

		select {
		case err := <-done:
			if err != nil && err != ErrStopped {
				t.Fatalf("round %d: Run = %v, want nil or ErrStopped", i, err)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("round %d: Run still active after Stop returned", i)
		}
		if e.running.Load() {
			t.Fatalf("round %d: running after Stop", i)
		}
		if err := e.Run(context.Background()); err != ErrStopped {
			t.Fatalf("round %d: Run after Stop = %v, want ErrStopped", i, err)
		}
	}
}
