// Package layout computes resting positions for tiles.
//
// Two solvers are provided. Column stacking buckets tiles by horizontal
// position and stacks each bucket top-down in insertion order, producing
// spring targets. Overlap resolution is a per-frame corrective sweep that
// pushes overlapping tiles apart directly, used on narrow viewports where
// stacking would collapse everything into one column.
package layout
