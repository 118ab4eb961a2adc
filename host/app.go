package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/drift/audio"
	"github.com/lixenwraith/drift/config"
	"github.com/lixenwraith/drift/content"
	"github.com/lixenwraith/drift/engine"
	"github.com/lixenwraith/drift/status"
	"github.com/lixenwraith/drift/tile"
)

// AppOption configures an App
type AppOption func(*App)

// WithAppLogger sets the host logger; the engine logs under the same root
func WithAppLogger(l *log.Logger) AppOption {
	return func(a *App) { a.logger = l }
}

// WithSound plays cues through s; nil disables audio
func WithSound(s *audio.SoundManager) AppOption {
	return func(a *App) { a.sound = s }
}

// WithResolver sets how image references are turned into file paths
func WithResolver(r Resolver) AppOption {
	return func(a *App) { a.resolve = r }
}

// App owns the terminal, the tile views and the engine driving them
type App struct {
	cfg     config.Config
	screen  tcell.Screen
	surface *Screen
	tiles   []*Tile
	engine  *engine.Engine
	status  *status.Registry
	mouse   *MouseTracker
	render  *Renderer
	logger  *log.Logger
	sound   *audio.SoundManager
	resolve Resolver
	held    *Tile
}

// NewApp lays out scheduled tiles on an initialized screen and builds the engine over them
func NewApp(screen tcell.Screen, cfg config.Config, scheduled []content.Tile, opts ...AppOption) (*App, error) {
	if screen == nil {
		return nil, errors.New("host: nil screen")
	}

	a := &App{
		cfg:    cfg,
		screen: screen,
		status: status.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = log.New(io.Discard)
	}
	if a.resolve == nil {
		a.resolve = func(src string) (string, error) {
			return "", fmt.Errorf("no resolver for %q", src)
		}
	}

	scale := ScaleOf(cfg.Host)
	a.surface = NewScreen(screen, scale, cfg.Layout.NarrowWidth)
	cols, _ := a.surface.Cells()
	tileCols := TileColumns(cfg.Host.TileColumns, cols)

	start := time.Now()
	a.tiles = make([]*Tile, len(scheduled))
	heights := make([]float64, len(scheduled))
	for i, ct := range scheduled {
		a.tiles[i] = NewTile(i, ct, tileCols, scale, start.Add(ct.Delay))
		heights[i] = a.tiles[i].Rect().Height
	}
	entries := make([]tile.Entry, len(a.tiles))
	for i, r := range Grid(heights, cols, tileCols, scale) {
		a.tiles[i].Place(r.X, r.Y)
		entries[i] = a.tiles[i].Entry()
	}

	eng, err := engine.New(a.surface, entries,
		engine.WithConfig(cfg),
		engine.WithLogger(a.logger),
		engine.WithStatus(a.status),
		engine.WithHooks(engine.Hooks{
			OnFling:  a.onFling,
			OnSettle: a.onSettle,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	a.engine = eng
	a.surface.OnScroll = eng.HandleScroll
	a.mouse = NewMouseTracker(a.surface)
	a.render = NewRenderer(screen, a.surface, a.tiles, a.status)

	screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	screen.EnableFocus()

	a.logger.Info("host ready", "tiles", len(a.tiles), "cols", cols, "tile_cols", tileCols)
	return a, nil
}

// Engine returns the simulation engine
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Tiles returns the tile views in stacking order
func (a *App) Tiles() []*Tile {
	return a.tiles
}

// Surface returns the scrollable surface
func (a *App) Surface() *Screen {
	return a.surface
}

// Run drives the terminal until ctx is done or the user quits
// The engine is stopped before Run returns; the caller still owns screen.Fini
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.engine.Stop()

	for _, t := range a.tiles {
		if t.ImageReady() == nil {
			continue
		}
		Go(func() {
			if err := t.MeasureImages(a.resolve); err != nil {
				a.logger.Warn("image measure failed", "error", err)
			}
		})
	}

	engineErr := make(chan error, 1)
	Go(func() {
		engineErr <- a.engine.Run(ctx)
	})

	events := make(chan tcell.Event, 64)
	Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	})

	ticker := time.NewTicker(a.cfg.Loop.FrameInterval.Duration)
	defer ticker.Stop()

	a.render.Draw(time.Now())
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("host stopping", "reason", context.Cause(ctx))
			return nil
		case err := <-engineErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("engine: %w", err)
			}
			return nil
		case ev := <-events:
			if !a.handleEvent(ev) {
				a.logger.Info("quit requested")
				return nil
			}
		case now := <-ticker.C:
			a.render.Draw(now)
		}
	}
}

// handleEvent applies one terminal event; false means quit
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return false
			}
		case tcell.KeyPgUp:
			a.scroll(-a.pageRows())
		case tcell.KeyPgDn:
			a.scroll(a.pageRows())
		}
	case *tcell.EventResize:
		a.screen.Sync()
		if a.surface.Refit() {
			a.engine.Submit(engine.ScrollEvent{})
		}
	case *tcell.EventFocus:
		if !ev.Focused {
			a.submit(a.mouse.Cancel())
		}
	case *tcell.EventMouse:
		a.submit(a.mouse.Translate(ev))
	}
	return true
}

func (a *App) pageRows() int {
	_, rows := a.surface.Cells()
	return max(rows-1, 1)
}

func (a *App) scroll(rows int) {
	if a.surface.ScrollBy(rows) {
		a.engine.Submit(engine.ScrollEvent{})
	}
}

func (a *App) submit(evs []engine.Event) {
	for _, ev := range evs {
		if pe, ok := ev.(engine.PointerEvent); ok {
			a.highlight(pe)
		}
		if !a.engine.Submit(ev) {
			a.logger.Debug("event dropped", "event", ev)
		}
	}
}

// highlight marks the pressed tile until release
func (a *App) highlight(ev engine.PointerEvent) {
	switch ev.Action {
	case engine.PointerDown:
		now := time.Now()
		for i := len(a.tiles) - 1; i >= 0; i-- {
			t := a.tiles[i]
			if t.Kind == content.TileEmpty || now.Before(t.Reveal) {
				continue
			}
			if t.Rect().Contains(ev.X, ev.Y) {
				t.SetHighlight(true)
				a.held = t
				return
			}
		}
	case engine.PointerUp, engine.PointerCancel:
		if a.held != nil {
			a.held.SetHighlight(false)
			a.held = nil
		}
	}
}

func (a *App) onFling(index int, speed float64) {
	a.logger.Debug("fling", "tile", index, "speed", speed)
	if a.sound != nil {
		a.sound.PlayFling(speed)
	}
}

func (a *App) onSettle() {
	if a.sound != nil {
		a.sound.PlaySettle()
	}
}
