package parameter

// Reveal rhythm
const (
	// RhythmWord is spelled in morse to order tile reveals
	RhythmWord = "suomenambientyhdistys"

	// RevealBaseSeconds is the delay before the first tile reveal
	RevealBaseSeconds = 3.0

	// RevealSpreadSeconds spreads reveals across the rhythm
	RevealSpreadSeconds = 7.0

	// RevealStaggerSeconds is added per slot modulo RevealStaggerCycle
	RevealStaggerSeconds = 0.4
	RevealStaggerCycle   = 5
)

// Terminal host geometry
const (
	// CellWidth and CellHeight convert terminal cells to surface units
	CellWidth  = 8.0
	CellHeight = 16.0

	// TileColumns is the initial tile width in cells
	TileColumns = 30

	// TilePaddingRows is the vertical padding inside a tile border, per side
	TilePaddingRows = 1

	// GridGapColumns and GridGapRows separate tiles in the initial grid
	GridGapColumns = 3
	GridGapRows    = 1
)
