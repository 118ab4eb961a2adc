package engine

import (
	"math"

	"github.com/lixenwraith/drift/layout"
	"github.com/lixenwraith/drift/physics"
	"github.com/lixenwraith/drift/tile"
)

// HandlePointer applies one pointer sample synchronously
func (e *Engine) HandlePointer(ev PointerEvent) {
	if e.detached.Load() {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = e.clock.Now()
	}

	switch ev.Action {
	case PointerDown:
		e.pointerDown(ev)
	case PointerMove:
		e.pointerMove(ev)
	case PointerUp, PointerCancel:
		e.pointerEnd(ev)
	}
}

// hitTest returns the topmost draggable tile under (x, y), -1 for none
func (e *Engine) hitTest(x, y float64) int {
	states := e.tiles.All()
	for i := len(states) - 1; i >= 0; i-- {
		s := states[i]
		if s.HasContent && s.Rect().Contains(x, y) {
			return i
		}
	}
	return -1
}

func (e *Engine) pointerDown(ev PointerEvent) {
	if ev.Kind == PointerMouse && ev.Button != ButtonLeft {
		return
	}
	if _, captured := e.captures[ev.ID]; captured {
		return
	}

	i := e.hitTest(ev.X, ev.Y)
	if i < 0 {
		return
	}
	s := e.tiles.At(i)
	if s.Mode == tile.Dragging {
		return
	}

	e.stopSettling()
	e.settle.Cancel()

	s.Mode = tile.Dragging
	s.Drag = tile.DragState{
		PointerID: ev.ID,
		OffsetX:   ev.X - s.X,
		OffsetY:   ev.Y - s.Y,
		LastX:     ev.X,
		LastY:     ev.Y,
		LastTime:  ev.Time,
	}
	e.captures[ev.ID] = i

	e.logger.Debug("drag start", "tile", i, "pointer", ev.ID)
}

func (e *Engine) pointerMove(ev PointerEvent) {
	i, ok := e.captures[ev.ID]
	if !ok {
		return
	}
	s := e.tiles.At(i)

	elapsed := ev.Time.Sub(s.Drag.LastTime)
	if floor := e.cfg.Input.MinPointerElapsed.Duration; elapsed < floor {
		elapsed = floor
	}
	seconds := elapsed.Seconds()
	physics.SetImpulse(&s.Body, (ev.X-s.Drag.LastX)/seconds, (ev.Y-s.Drag.LastY)/seconds)
	e.statPeak.Max(math.Hypot(s.VX, s.VY))

	s.Drag.LastX, s.Drag.LastY = ev.X, ev.Y
	s.Drag.LastTime = ev.Time

	w, h := e.surface.Size()
	s.X = ev.X - s.Drag.OffsetX
	s.Y = ev.Y - s.Drag.OffsetY
	s.Clamp(w, h)

	if e.surface.Narrow() {
		if pushes := layout.ResolveOverlaps(e.tiles.All(), w, h, e.cfg.Layout.OverlapMargin); pushes > 0 {
			e.statPushes.Add(int64(pushes))
		}
	}

	e.commit()
}

// pointerEnd releases the drag; the last sampled velocity carries on as a fling
func (e *Engine) pointerEnd(ev PointerEvent) {
	i, ok := e.captures[ev.ID]
	if !ok {
		return
	}
	delete(e.captures, ev.ID)

	s := e.tiles.At(i)
	s.Mode = tile.Free
	s.EndDrag()
	s.StartY = s.Y

	speed := math.Hypot(s.VX, s.VY)
	if speed >= e.cfg.Input.FlingCueSpeed {
		e.statFlings.Add(1)
		if e.hooks.OnFling != nil {
			e.hooks.OnFling(i, speed)
		}
	}

	if e.settling {
		e.solve()
		s.Mode = tile.Settling
	}
	e.settle.Arm(e.clock.Now(), e.cfg.Loop.SettleDelay.Duration)

	e.logger.Debug("drag end", "tile", i, "pointer", ev.ID, "action", ev.Action, "speed", speed)
}
