package host

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/drift/parameter"
)

var testScale = Scale{CellWidth: parameter.CellWidth, CellHeight: parameter.CellHeight}

// newSimScreen returns an initialized simulation screen of cols×rows cells
func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	s.SetSize(cols, rows)
	t.Cleanup(s.Fini)
	return s
}

// screenRow reads one screen row back as a string
func screenRow(s tcell.Screen, row, cols int) string {
	out := make([]rune, 0, cols)
	for x := 0; x < cols; x++ {
		r, _, _, _ := s.GetContent(x, row)
		if r == 0 {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
