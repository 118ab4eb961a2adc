package layout

import "github.com/lixenwraith/drift/tile"

// ResolveOverlaps runs one symmetric pairwise sweep over all tiles
// For each overlapping pair the member with larger or equal Y (the later one on ties)
// moves below the other plus margin, then is clamped to the surface
// Returns the number of pushes performed
func ResolveOverlaps(states []*tile.State, width, height, margin float64) int {
	pushes := 0
	for i := 0; i < len(states); i++ {
		a := states[i]
		for j := i + 1; j < len(states); j++ {
			b := states[j]
			if !a.Rect().Overlaps(b.Rect()) {
				continue
			}

			push, other := b, a
			if a.Y > b.Y {
				push, other = a, b
			}
			push.Y = other.Y + other.Height + margin
			push.Clamp(width, height)
			pushes++
		}
	}
	return pushes
}

// TotalOverlap sums the pairwise intersection area of all tiles
func TotalOverlap(states []*tile.State) float64 {
	total := 0.0
	for i := 0; i < len(states); i++ {
		for j := i + 1; j < len(states); j++ {
			total += states[i].Rect().OverlapArea(states[j].Rect())
		}
	}
	return total
}
