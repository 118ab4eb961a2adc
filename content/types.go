package content

import "time"

// Kind distinguishes the closed set of content blocks
type Kind uint8

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Block is one paragraph of a section
// Text holds the paragraph for KindText and the alt text for KindImage
type Block struct {
	Kind Kind
	Text string
	Src  string // Image path, KindImage only
}

// TileKind is what a scheduled tile shows
type TileKind uint8

const (
	TileSection TileKind = iota // Parsed markdown file
	TileEmpty                   // Rhythm dash, no content
	TileError                   // Load failure message
)

func (k TileKind) String() string {
	switch k {
	case TileSection:
		return "section"
	case TileEmpty:
		return "empty"
	case TileError:
		return "error"
	default:
		return "unknown"
	}
}

// Tile is one scheduled grid entry in display order
type Tile struct {
	Kind   TileKind
	Name   string // Source file, empty for dashes
	Blocks []Block
	Delay  time.Duration // Reveal delay from startup
}

// HasImage reports whether any block is an image
func (t Tile) HasImage() bool {
	for _, b := range t.Blocks {
		if b.Kind == KindImage {
			return true
		}
	}
	return false
}
