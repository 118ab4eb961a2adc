package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	indexFile     = "index.json"
	markdownExt   = ".md"
	contentPrefix = "content/"
)

var (
	// ErrNoContent is returned when discovery finds no markdown files
	ErrNoContent = errors.New("no content index found")

	orderPrefix = regexp.MustCompile(`^(\d{3})-`)
)

// index is the on-disk shape of index.json
type index struct {
	Files []string `json:"files"`
}

// Manager discovers and loads markdown sections from one directory
type Manager struct {
	dir    string
	files  []string
	logger *log.Logger
}

// NewManager creates a manager rooted at dir; a nil logger discards output
func NewManager(dir string, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		dir:    dir,
		logger: logger.WithPrefix("content"),
	}
}

// Discover reads index.json, falling back to scanning the directory for markdown files
// Hidden files are skipped; the result is normalized
func (m *Manager) Discover() error {
	m.files = nil

	names, err := m.readIndex()
	if err != nil {
		m.logger.Debug("index unavailable, scanning directory", "dir", m.dir, "err", err)
		names, err = m.scan()
		if err != nil {
			return fmt.Errorf("failed to read content directory: %w", err)
		}
	}

	m.files = NormalizeFiles(names)
	if len(m.files) == 0 {
		return ErrNoContent
	}
	m.logger.Info("discovered content", "files", len(m.files))
	return nil
}

func (m *Manager) readIndex() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, indexFile))
	if err != nil {
		return nil, err
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", indexFile, err)
	}
	return idx.Files, nil
}

func (m *Manager) scan() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Files returns the discovered files in display order
func (m *Manager) Files() []string {
	return m.files
}

// Dir returns the content root
func (m *Manager) Dir() string {
	return m.dir
}

// Path resolves a file name from the index to a path under the content root
// Names may carry a leading "content/" and must stay inside the root
func (m *Manager) Path(name string) (string, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(name, contentPrefix))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("content path escapes root: %s", name)
	}
	return filepath.Join(m.dir, rel), nil
}

// Load returns the markdown of one section
func (m *Manager) Load(name string) (string, error) {
	path, err := m.Path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load section %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Build discovers content and schedules it on the rhythm of word
// Discovery failure yields a single error tile
func (m *Manager) Build(word string) []Tile {
	if err := m.Discover(); err != nil {
		m.logger.Warn("content unavailable", "dir", m.dir, "err", err)
		return []Tile{ErrorTile(err.Error(), 0)}
	}

	tiles := Schedule(word, m.files, func(name string) (string, error) {
		md, err := m.Load(name)
		if err != nil {
			m.logger.Warn("section failed", "file", name, "err", err)
		}
		return md, err
	})
	m.logger.Debug("scheduled tiles", "tiles", len(tiles), "slots", len(Morse(word)))
	return tiles
}

// NormalizeFiles keeps trimmed markdown names ordered by their three-digit
// prefix, unprefixed names last, ties broken lexically
func NormalizeFiles(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		f = strings.TrimSpace(f)
		if f == "" || !strings.HasSuffix(f, markdownExt) {
			continue
		}
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := orderOf(out[i]), orderOf(out[j])
		if a != b {
			return a < b
		}
		return out[i] < out[j]
	})
	return out
}

// orderOf returns the numeric prefix, or a value sorting after every prefix
func orderOf(name string) int {
	m := orderPrefix.FindStringSubmatch(name)
	if m == nil {
		return 1000
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
