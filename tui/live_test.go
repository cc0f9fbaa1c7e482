package tui

import (
	"strings"
	"testing"

	"github.com/thalesfsp/gbtune"
)

func TestModelUpdateAndView(t *testing.T) {
	m := NewModel([]string{"learning_rate", "max_depth"}, 10)

	next, _ := m.Update(progressMsg(gbtune.ProgressUpdate{
		Phase:     gbtune.PhaseInitialSampling,
		Iteration: 1,
		Total:     5,
		Current:   []float64{0.1, 3},
		Best:      []float64{0.1, 3},
		BestValue: -0.9,
		LastValue: -0.9,
	}))

	m = next.(Model)

	if m.evaluations != 1 {
		t.Errorf("expected 1 evaluation, got %d", m.evaluations)
	}

	view := m.View()
	if !strings.Contains(view, "1 / 10") {
		t.Errorf("view should show evaluation count, got:\n%s", view)
	}
	if !strings.Contains(view, "learning_rate") {
		t.Error("view should list best parameters")
	}
}

func TestModelQuitOnDone(t *testing.T) {
	m := NewModel(nil, 1)

	_, cmd := m.Update(doneMsg{})
	if cmd == nil {
		t.Fatal("done message should quit the program")
	}
}
