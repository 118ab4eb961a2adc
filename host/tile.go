package host

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"sync"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/lixenwraith/drift/content"
	"github.com/lixenwraith/drift/parameter"
	"github.com/lixenwraith/drift/tile"
	"github.com/lixenwraith/drift/vmath"
)

const (
	emptyTileRows = 4  // Height of a rhythm dash
	maxImageRows  = 40 // Cap for very tall images
	textInset     = 2  // Border plus one space on each side
)

// Resolver maps an image reference from markdown to a readable path
type Resolver func(src string) (string, error)

// rowKind marks how a laid-out row is drawn
type rowKind uint8

const (
	rowText rowKind = iota
	rowImage
	rowBlank
)

type row struct {
	kind rowKind
	text string
}

// Tile is the terminal rendering of one scheduled content tile
// It implements tile.Handle; image tiles also implement tile.ImageSource
type Tile struct {
	Index  int
	Kind   content.TileKind
	Reveal time.Time

	scale  Scale
	blocks []content.Block
	ready  chan struct{}

	mu        sync.Mutex
	rect      vmath.Rect
	imageRows map[int]int // Block index -> measured rows
	rows      []row
	highlight bool
}

// NewTile lays out t for a tile widthCols cells wide, placed at the origin
func NewTile(index int, t content.Tile, widthCols int, scale Scale, reveal time.Time) *Tile {
	ht := &Tile{
		Index:     index,
		Kind:      t.Kind,
		Reveal:    reveal,
		scale:     scale,
		blocks:    t.Blocks,
		imageRows: make(map[int]int),
	}
	if t.HasImage() {
		ht.ready = make(chan struct{})
	}

	ht.rect.Width = float64(widthCols) * scale.CellWidth
	ht.layout()
	if t.Kind == content.TileEmpty {
		ht.rect.Height = emptyTileRows * scale.CellHeight
	} else {
		ht.rect.Height = float64(len(ht.rows)+2*parameter.TilePaddingRows) * scale.CellHeight
	}
	return ht
}

// innerCols is the text width inside border and padding; caller holds mu
func (t *Tile) innerCols() int {
	cols := int(math.Round(t.rect.Width/t.scale.CellWidth)) - 2*textInset
	if cols < 1 {
		cols = 1
	}
	return cols
}

// layout wraps blocks into rows; caller holds mu or owns t exclusively
func (t *Tile) layout() {
	inner := t.innerCols()
	t.rows = t.rows[:0]

	for i, b := range t.blocks {
		if i > 0 {
			t.rows = append(t.rows, row{kind: rowBlank})
		}
		switch b.Kind {
		case content.KindImage:
			n := t.imageRows[i]
			if n < 1 {
				n = 1
			}
			label := "[" + b.Text + "]"
			if b.Text == "" {
				label = "[image]"
			}
			t.rows = append(t.rows, row{kind: rowImage, text: label})
			for j := 1; j < n; j++ {
				t.rows = append(t.rows, row{kind: rowImage})
			}
		default:
			for _, line := range content.Wrap(b.Text, inner) {
				t.rows = append(t.rows, row{kind: rowText, text: line})
			}
		}
	}
}

// Rect implements tile.Handle
func (t *Tile) Rect() vmath.Rect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rect
}

// ContentHeight implements tile.Handle; dashes have no content region
func (t *Tile) ContentHeight() (float64, bool) {
	if t.Kind == content.TileEmpty {
		return 0, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(len(t.rows)) * t.scale.CellHeight, true
}

// Padding implements tile.Handle
func (t *Tile) Padding() (top, bottom float64) {
	pad := parameter.TilePaddingRows * t.scale.CellHeight
	return pad, pad
}

// Place implements tile.Handle
func (t *Tile) Place(x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rect.X, t.rect.Y = x, y
}

// Resize implements tile.Handle
func (t *Tile) Resize(width, height float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if width != t.rect.Width {
		t.rect.Width = width
		t.layout()
	}
	t.rect.Height = height
}

// ImageReady implements tile.ImageSource; nil for tiles without images
func (t *Tile) ImageReady() <-chan struct{} {
	return t.ready
}

// SetHighlight marks the tile as held by the pointer
func (t *Tile) SetHighlight(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.highlight = on
}

// Entry returns the engine input for this tile
func (t *Tile) Entry() tile.Entry {
	kind := tile.KindText
	switch {
	case t.Kind == content.TileEmpty:
		kind = tile.KindEmpty
	case t.ready != nil:
		kind = tile.KindImage
	}
	return tile.Entry{Handle: t, Kind: kind}
}

// MeasureImages decodes the header of every image block and re-lays out the tile
// The ready channel closes once all images are measured or failed
func (t *Tile) MeasureImages(resolve Resolver) error {
	if t.ready == nil {
		return nil
	}
	defer close(t.ready)

	var errs []error
	for i, b := range t.blocks {
		if b.Kind != content.KindImage {
			continue
		}
		w, h, err := decodeSize(resolve, b.Src)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		t.mu.Lock()
		t.imageRows[i] = t.rowsFor(w, h)
		t.layout()
		t.mu.Unlock()
	}

	if len(errs) > 0 {
		return fmt.Errorf("tile %d: %d image(s) unreadable: %w", t.Index, len(errs), errs[0])
	}
	return nil
}

// rowsFor scales a w×h pixel image to the inner width and returns its row count; caller holds mu
func (t *Tile) rowsFor(w, h int) int {
	if w <= 0 || h <= 0 {
		return 1
	}
	widthUnits := float64(t.innerCols()) * t.scale.CellWidth
	heightUnits := float64(h) * widthUnits / float64(w)
	rows := int(math.Ceil(heightUnits / t.scale.CellHeight))
	return vmath.ClampInt(rows, 1, maxImageRows)
}

func decodeSize(resolve Resolver, src string) (int, int, error) {
	path, err := resolve(src)
	if err != nil {
		return 0, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", src, err)
	}
	return cfg.Width, cfg.Height, nil
}

// view is a consistent copy for drawing
type view struct {
	rect      vmath.Rect
	rows      []row
	highlight bool
}

func (t *Tile) snapshot() view {
	t.mu.Lock()
	defer t.mu.Unlock()
	return view{
		rect:      t.rect,
		rows:      append([]row(nil), t.rows...),
		highlight: t.highlight,
	}
}
