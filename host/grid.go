package host

import (
	"math"

	"github.com/lixenwraith/drift/parameter"
	"github.com/lixenwraith/drift/vmath"
)

// TileColumns returns the tile width in cells for a terminal cols wide
func TileColumns(want, cols int) int {
	return vmath.ClampInt(want, 1, max(cols, 1))
}

// Grid places equal-width tiles left to right in rows that fit screenCols
// Each row is as tall as its tallest tile; heights are in surface units
func Grid(heights []float64, screenCols, tileCols int, scale Scale) []vmath.Rect {
	pitch := tileCols + parameter.GridGapColumns
	perRow := max((screenCols+parameter.GridGapColumns)/max(pitch, 1), 1)
	width := float64(tileCols) * scale.CellWidth
	rowGap := parameter.GridGapRows * scale.CellHeight

	rects := make([]vmath.Rect, len(heights))
	top, rowHeight := 0.0, 0.0
	for i, h := range heights {
		col := i % perRow
		if col == 0 && i > 0 {
			top += rowHeight + rowGap
			rowHeight = 0
		}
		rects[i] = vmath.Rect{
			X:      float64(col*pitch) * scale.CellWidth,
			Y:      top,
			Width:  width,
			Height: h,
		}
		rowHeight = math.Max(rowHeight, h)
	}
	return rects
}
