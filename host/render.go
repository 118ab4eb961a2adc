package host

import (
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/drift/content"
	"github.com/lixenwraith/drift/parameter"
	"github.com/lixenwraith/drift/status"
)

var (
	styleBorder    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleEmpty     = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleError     = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleHighlight = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleText      = tcell.StyleDefault
	styleImage     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleStatus    = tcell.StyleDefault.Reverse(true)
)

// statusKeys are the metrics shown in the status row
var statusKeys = []string{
	status.Frames,
	status.Settles,
	status.Flings,
	status.SurfaceHeight,
	status.Narrow,
	status.SettlingOn,
}

const statusHint = "wheel scroll | drag tiles | q quit"

// Renderer draws tiles and the status row onto a tcell screen
type Renderer struct {
	screen  tcell.Screen
	surface *Screen
	tiles   []*Tile
	status  *status.Registry
}

// NewRenderer creates a renderer over the given tiles in stacking order
func NewRenderer(screen tcell.Screen, surface *Screen, tiles []*Tile, reg *status.Registry) *Renderer {
	return &Renderer{screen: screen, surface: surface, tiles: tiles, status: reg}
}

// Draw renders one frame; tiles before their reveal time are skipped
func (r *Renderer) Draw(now time.Time) {
	r.screen.Clear()
	cols, rows := r.surface.Cells()
	offset := r.surface.Offset()

	for _, t := range r.tiles {
		if now.Before(t.Reveal) {
			continue
		}
		r.drawTile(t.Kind, t.snapshot(), offset, cols, rows)
	}
	r.drawStatus(cols, rows)

	r.screen.Show()
}

func (r *Renderer) drawTile(kind content.TileKind, v view, offset float64, cols, rows int) {
	scale := r.surface.scale
	col0 := int(math.Round(v.rect.X / scale.CellWidth))
	row0 := int(math.Round((v.rect.Y - offset) / scale.CellHeight))
	w := int(math.Round(v.rect.Width / scale.CellWidth))
	h := int(math.Round(v.rect.Height / scale.CellHeight))
	if w < 2 || h < 2 {
		return
	}

	put := func(x, y int, ch rune, st tcell.Style) {
		if x >= 0 && x < cols && y >= 0 && y < rows {
			r.screen.SetContent(x, y, ch, nil, st)
		}
	}

	border := styleBorder
	switch {
	case v.highlight:
		border = styleHighlight
	case kind == content.TileError:
		border = styleError
	case kind == content.TileEmpty:
		border = styleEmpty
	}

	// Clear the interior so tiles underneath do not bleed through
	for y := row0; y < row0+h; y++ {
		for x := col0; x < col0+w; x++ {
			put(x, y, ' ', styleText)
		}
	}

	right, bottom := col0+w-1, row0+h-1
	for x := col0 + 1; x < right; x++ {
		put(x, row0, '─', border)
		put(x, bottom, '─', border)
	}
	for y := row0 + 1; y < bottom; y++ {
		put(col0, y, '│', border)
		put(right, y, '│', border)
	}
	put(col0, row0, '┌', border)
	put(right, row0, '┐', border)
	put(col0, bottom, '└', border)
	put(right, bottom, '┘', border)

	inner := w - 2*textInset
	textStyle := styleText
	if kind == content.TileError {
		textStyle = styleError
	}
	for i, rw := range v.rows {
		y := row0 + parameter.TilePaddingRows + i
		if y >= bottom {
			break
		}
		switch rw.kind {
		case rowImage:
			for x := 0; x < inner; x++ {
				put(col0+textInset+x, y, '░', styleImage)
			}
			drawText(put, col0+textInset, y, rw.text, inner, styleImage)
		case rowText:
			drawText(put, col0+textInset, y, rw.text, inner, textStyle)
		}
	}
}

// drawText writes s from x, clipped to width cells
func drawText(put func(int, int, rune, tcell.Style), x, y int, s string, width int, st tcell.Style) {
	used := 0
	for _, ch := range s {
		cw := runewidth.RuneWidth(ch)
		if used+cw > width {
			return
		}
		put(x+used, y, ch, st)
		used += cw
	}
}

func (r *Renderer) drawStatus(cols, row int) {
	line := " " + r.status.Line(statusKeys...)
	hint := statusHint + " "
	if gap := cols - runewidth.StringWidth(line) - runewidth.StringWidth(hint); gap > 0 {
		line += strings.Repeat(" ", gap) + hint
	}
	line = runewidth.FillRight(runewidth.Truncate(line, cols, ""), cols)

	x := 0
	for _, ch := range line {
		r.screen.SetContent(x, row, ch, nil, styleStatus)
		x += runewidth.RuneWidth(ch)
	}
}
