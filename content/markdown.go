package content

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var (
	headingPattern = regexp.MustCompile(`^#{1,6}\s+`)
	imagePattern   = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)$`)
	linkPattern    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern  = regexp.MustCompile(`\*([^*]+)\*`)
	codePattern    = regexp.MustCompile("`([^`]+)`")
)

// ParseMarkdown turns every non-blank line into one block
// Headings lose their markers and inline markup is reduced to plain text
// A line consisting of a single image reference becomes an image block
func ParseMarkdown(src string) []Block {
	var blocks []Block
	for _, line := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := imagePattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			blocks = append(blocks, Block{Kind: KindImage, Text: m[1], Src: m[2]})
			continue
		}

		blocks = append(blocks, Block{
			Kind: KindText,
			Text: Inline(headingPattern.ReplaceAllString(line, "")),
		})
	}
	return blocks
}

// Inline strips link, bold, italic and code markup
func Inline(s string) string {
	s = linkPattern.ReplaceAllString(s, "$1")
	s = boldPattern.ReplaceAllString(s, "$1")
	s = italicPattern.ReplaceAllString(s, "$1")
	s = codePattern.ReplaceAllString(s, "$1")
	return s
}

// Wrap breaks text into lines no wider than width terminal cells
// Words wider than a line are split by rune
func Wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0

	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}

	for _, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)

		if lineWidth > 0 && lineWidth+1+w > width {
			flush()
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}

		for _, r := range word {
			rw := runewidth.RuneWidth(r)
			if lineWidth+rw > width && lineWidth > 0 {
				flush()
			}
			line.WriteRune(r)
			lineWidth += rw
		}
	}
	if lineWidth > 0 {
		flush()
	}
	return lines
}
