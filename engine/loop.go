package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/lixenwraith/drift/layout"
	"github.com/lixenwraith/drift/physics"
	"github.com/lixenwraith/drift/tile"
)

// Step advances the simulation to now
// dt is the wall time since the previous frame, clamped to [0, MaxFrameDelta]
func (e *Engine) Step(now time.Time) {
	if e.detached.Load() {
		return
	}

	dt := now.Sub(e.lastFrame)
	e.lastFrame = now
	if dt < 0 {
		dt = 0
	}
	if limit := e.cfg.Loop.MaxFrameDelta.Duration; dt > limit {
		dt = limit
	}

	// Height reports from the previous solve have been delivered by now
	e.suppressScroll = false

	if e.settle.Due(now) {
		e.startSettling()
	}

	narrow := e.surface.Narrow()
	prof := e.wide
	if narrow {
		prof = e.narrow
	}
	w, h := e.surface.Size()
	seconds := dt.Seconds()

	dragging := 0
	for i, s := range e.tiles.All() {
		if s.Mode == tile.Dragging {
			dragging++
			continue
		}
		e.stepTile(i, s, seconds, prof, w, h)
	}

	if narrow && !e.settling {
		if pushes := layout.ResolveOverlaps(e.tiles.All(), w, h, e.cfg.Layout.OverlapMargin); pushes > 0 {
			e.statPushes.Add(int64(pushes))
		}
	}

	e.commit()

	e.statFrames.Add(1)
	e.statDelta.Set(seconds)
	e.statDragging.Store(int64(dragging))
	e.statNarrow.Store(narrow)

	if e.hooks.OnFrame != nil {
		e.hooks.OnFrame()
	}
}

// stepTile integrates one tile; a failure is contained to that tile
func (e *Engine) stepTile(i int, s *tile.State, dt float64, prof physics.Profile, w, h float64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tile step panicked", "tile", i, "panic", r)
			e.statRecovered.Add(1)
			physics.Stop(&s.Body)
			s.Clamp(w, h)
		}
	}()

	prev := s.Body
	if s.Mode == tile.Settling {
		physics.SpringY(&s.Body, s.TargetY, dt, prof)
	} else {
		physics.Drift(&s.Body, dt, prof)
	}

	if !s.Body.Finite() {
		e.logger.Error("non-finite tile state", "tile", i, "x", s.X, "y", s.Y, "vx", s.VX, "vy", s.VY)
		e.statRecovered.Add(1)
		s.X, s.Y = prev.X, prev.Y
		physics.Stop(&s.Body)
	}
	s.Clamp(w, h)
}

// commit pushes every tile position to its handle after integration
func (e *Engine) commit() {
	for i, s := range e.tiles.All() {
		e.place(i, s)
	}
}

func (e *Engine) place(i int, s *tile.State) {
	if s.Handle == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tile commit panicked", "tile", i, "panic", r)
			e.statRecovered.Add(1)
		}
	}()
	s.Handle.Place(s.X, s.Y)
}

// Run drives Step from a ticker and drains queued events on the same goroutine
// Returns nil when ctx is done or Stop is called
func (e *Engine) Run(ctx context.Context) error {
	e.lifeMu.Lock()
	if e.detached.Load() {
		e.lifeMu.Unlock()
		return ErrStopped
	}
	if e.running.Load() {
		e.lifeMu.Unlock()
		return ErrRunning
	}
	e.running.Store(true)
	images := e.images
	e.images = nil
	e.wg.Add(1 + len(images))
	e.lifeMu.Unlock()

	defer func() {
		e.running.Store(false)
		e.wg.Done()
	}()

	e.watchImages(images)

	ticker := time.NewTicker(e.cfg.Loop.FrameInterval.Duration)
	defer ticker.Stop()

	e.lastFrame = e.clock.Now()
	e.logger.Info("loop started", "interval", e.cfg.Loop.FrameInterval.Duration)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("loop stopped", "reason", ctx.Err())
			return nil
		case <-e.stopCh:
			e.logger.Info("loop stopped", "reason", "stop")
			return nil
		case ev := <-e.events:
			e.Dispatch(ev)
		case <-ticker.C:
			e.Step(e.clock.Now())
		}
	}
}

// watchImages forwards each pending image load as a HeightEvent
// The caller has already added one wg count per watch
func (e *Engine) watchImages(images []imageWatch) {
	for _, w := range images {
		go func(w imageWatch) {
			defer e.wg.Done()
			select {
			case <-w.ready:
				e.Submit(HeightEvent{Index: w.index})
			case <-e.stopCh:
			}
		}(w)
	}
}

// Stop ends Run, waits for its goroutines and detaches input
// Later events and frames are ignored; safe to call more than once
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.lifeMu.Lock()
		e.detached.Store(true)
		e.lifeMu.Unlock()

		close(e.stopCh)
		e.wg.Wait()

		clear(e.captures)
		for _, s := range e.tiles.All() {
			if s.Mode == tile.Dragging {
				s.Mode = tile.Free
				s.EndDrag()
			}
		}
		e.settle.Cancel()
		e.logger.Info("engine stopped", "frames", e.statFrames.Load())
	})
}

// String implements fmt.Stringer for log output
func (e *Engine) String() string {
	free, settling, dragging := e.tiles.ModeCounts()
	return fmt.Sprintf("engine(%s tiles=%d free=%d settling=%d dragging=%d)",
		e.id.String()[:8], e.tiles.Len(), free, settling, dragging)
}
