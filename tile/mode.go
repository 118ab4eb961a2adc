package tile

// Mode is the per-tile simulation state; exactly one holds at any time
type Mode uint8

const (
	// Free drifts under friction; the default before the first settle and after a release
	Free Mode = iota
	// Settling springs toward the column stack target
	Settling
	// Dragging is fully driven by pointer input and skipped by the integrator
	Dragging
)

func (m Mode) String() string {
	switch m {
	case Free:
		return "Free"
	case Settling:
		return "Settling"
	case Dragging:
		return "Dragging"
	default:
		return "Unknown"
	}
}

// Kind tags what a tile shows; the engine never interprets it
type Kind uint8

const (
	KindText Kind = iota
	KindImage
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
