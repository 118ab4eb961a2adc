package layout

import (
	"math"
	"sort"

	"github.com/lixenwraith/drift/parameter"
	"github.com/lixenwraith/drift/tile"
	"github.com/lixenwraith/drift/vmath"
)

// Params configures column stacking
type Params struct {
	ColumnGap float64 // Added to average width to get the bucket pitch
	StackGap  float64 // Vertical gap between stacked tiles

	// MonotoneTargets clamps targets to min(Y, computed), never pulling a tile downward
	MonotoneTargets bool
}

// DefaultParams returns the stock spacing
func DefaultParams() Params {
	return Params{
		ColumnGap: parameter.ColumnGap,
		StackGap:  parameter.StackGap,
	}
}

// Result is the outcome of one column solve
type Result struct {
	Targets []float64     // Indexed like the input slice
	Buckets map[int][]int // Column bucket -> input indices in stacking order
	Columns []int         // Bucket keys, ascending
	Tallest float64       // Largest final cursor across columns
}

// AverageWidth returns the mean tile width, 0 for no tiles
func AverageWidth(states []*tile.State) float64 {
	if len(states) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range states {
		sum += s.Width
	}
	return sum / float64(len(states))
}

// AssignColumns sets Column = round(X / (avgWidth + gap)) for every tile
func AssignColumns(states []*tile.State, gap float64) {
	pitch := AverageWidth(states) + gap
	for _, s := range states {
		if pitch > 0 && vmath.Finite(pitch) {
			s.Column = vmath.RoundHalfUp(s.X / pitch)
		} else {
			s.Column = 0
		}
	}
}

// ColumnTargets buckets tiles and stacks each bucket by Order from y=0
// Pure: reads Column, Order and Height, writes nothing
func ColumnTargets(states []*tile.State, p Params) Result {
	res := Result{
		Targets: make([]float64, len(states)),
		Buckets: make(map[int][]int),
	}

	for i, s := range states {
		res.Buckets[s.Column] = append(res.Buckets[s.Column], i)
	}

	for col, idx := range res.Buckets {
		sort.SliceStable(idx, func(a, b int) bool {
			return states[idx[a]].Order < states[idx[b]].Order
		})

		cursor := 0.0
		for _, i := range idx {
			res.Targets[i] = cursor
			cursor += states[i].Height + p.StackGap
		}
		res.Tallest = math.Max(res.Tallest, cursor)
		res.Columns = append(res.Columns, col)
	}
	sort.Ints(res.Columns)

	return res
}

// Stack assigns columns, computes targets and applies them to every tile not being dragged
// Returns the surface height to report: the tallest column or the viewport, whichever is larger
func Stack(states []*tile.State, p Params, viewportHeight float64) float64 {
	AssignColumns(states, p.ColumnGap)
	res := ColumnTargets(states, p)

	for i, s := range states {
		if s.Mode == tile.Dragging {
			continue
		}
		target := res.Targets[i]
		if p.MonotoneTargets {
			target = math.Min(s.Y, target)
		}
		s.TargetY = target
	}

	return math.Max(res.Tallest, vmath.OrZero(viewportHeight))
}
