package content

import (
	"strings"
	"time"

	"github.com/lixenwraith/drift/parameter"
)

// Slot is one morse symbol of the reveal rhythm
type Slot byte

const (
	Dot  Slot = '.'
	Dash Slot = '-'
)

var morseCode = map[rune]string{
	'a': ".-", 'b': "-...", 'c': "-.-.", 'd': "-..", 'e': ".",
	'f': "..-.", 'g': "--.", 'h': "....", 'i': "..", 'j': ".---",
	'k': "-.-", 'l': ".-..", 'm': "--", 'n': "-.", 'o': "---",
	'p': ".--.", 'q': "--.-", 'r': ".-.", 's': "...", 't': "-",
	'u': "..-", 'v': "...-", 'w': ".--", 'x': "-..-", 'y': "-.--",
	'z': "--..",
}

// Morse spells word as a flat slot sequence; letters outside a-z are skipped
func Morse(word string) []Slot {
	var slots []Slot
	for _, r := range strings.ToLower(word) {
		code, ok := morseCode[r]
		if !ok {
			continue
		}
		for i := 0; i < len(code); i++ {
			slots = append(slots, Slot(code[i]))
		}
	}
	return slots
}

// RevealDelay staggers slot i of n across the reveal window
func RevealDelay(i, n int) time.Duration {
	span := n - 1
	if span < 1 {
		span = 1
	}
	seconds := parameter.RevealBaseSeconds +
		float64(i)/float64(span)*parameter.RevealSpreadSeconds +
		float64(i%parameter.RevealStaggerCycle)*parameter.RevealStaggerSeconds
	return time.Duration(seconds * float64(time.Second))
}

// Loader returns the markdown of a named file
type Loader func(name string) (string, error)

// Schedule maps files onto the rhythm of word
// A dash yields an empty tile, a dot consumes the next file; scheduling stops when files run out
// Files that fail to load become error tiles in their slot
func Schedule(word string, files []string, load Loader) []Tile {
	slots := Morse(word)
	tiles := make([]Tile, 0, len(slots))

	next := 0
	for i, slot := range slots {
		delay := RevealDelay(i, len(slots))
		if slot == Dash {
			tiles = append(tiles, Tile{Kind: TileEmpty, Delay: delay})
			continue
		}
		if next >= len(files) {
			break
		}
		name := files[next]
		next++

		markdown, err := load(name)
		if err != nil || strings.TrimSpace(markdown) == "" {
			tiles = append(tiles, ErrorTile(sectionError(name), delay))
			continue
		}
		tiles = append(tiles, Tile{
			Kind:   TileSection,
			Name:   name,
			Blocks: ParseMarkdown(markdown),
			Delay:  delay,
		})
	}
	return tiles
}

// ErrorTile renders a failure as a regular tile so the grid keeps its shape
func ErrorTile(message string, delay time.Duration) Tile {
	return Tile{
		Kind:   TileError,
		Blocks: []Block{{Kind: KindText, Text: message}},
		Delay:  delay,
	}
}

func sectionError(name string) string {
	if name == "" {
		return "section failed to load"
	}
	return `section "` + name + `" failed to load`
}
