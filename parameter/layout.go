package parameter

const (
	// ColumnGap is added to the average tile width when bucketing columns
	ColumnGap = 24.0

	// StackGap separates stacked tiles within a column
	StackGap = 8.0

	// OverlapMargin separates tiles pushed apart on narrow viewports
	OverlapMargin = 4.0

	// NarrowWidth is the viewport width at or below which overlap resolution replaces stacking
	NarrowWidth = 600.0

	// MinTileHeight prevents zero-height tiles
	MinTileHeight = 1.0
)
