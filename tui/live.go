// Package tui renders a live terminal view of a running optimization,
// consuming the optimizer's progress channel.
package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/thalesfsp/gbtune"
)

const historyCapacity = 400

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type progressMsg gbtune.ProgressUpdate

type doneMsg struct{}

// Model is the bubbletea model for the live optimization view.
type Model struct {
	names []string
	total int

	evaluations int
	phase       string
	lastValue   float64
	bestValue   float64
	best        []float64
	bestHistory []float64
	done        bool
}

// NewModel returns a view for an optimization of total evaluations over the
// named dimensions.
func NewModel(names []string, total int) Model {
	return Model{
		names:       names,
		total:       total,
		bestValue:   math.MaxFloat64,
		bestHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Update consumes progress updates and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case progressMsg:
		m.evaluations++
		m.phase = msg.Phase
		m.lastValue = msg.LastValue
		m.bestValue = msg.BestValue
		m.best = msg.Best

		m.bestHistory = append(m.bestHistory, msg.BestValue)
		if len(m.bestHistory) > historyCapacity {
			m.bestHistory = m.bestHistory[1:]
		}

		return m, nil

	case doneMsg:
		m.done = true

		return m, tea.Quit
	}

	return m, nil
}

// View renders the current optimization state.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("HYPERPARAMETER TUNING") + "\n")

	status := m.phase
	if status == "" {
		status = "waiting"
	}

	if m.done {
		status = "done"
	}

	s.WriteString(fmt.Sprintf("%s\n\n", status))

	if len(m.bestHistory) > 1 {
		chart := asciigraph.Plot(m.bestHistory,
			asciigraph.Height(6),
			asciigraph.Width(50),
			asciigraph.Caption("best objective"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Evaluations") + valueStyle.Render(fmt.Sprintf("%d / %d", m.evaluations, m.total)) + "\n")

	if m.bestValue < math.MaxFloat64 {
		s.WriteString(labelStyle.Render("Best") + valueStyle.Render(fmt.Sprintf("%.6f", m.bestValue)) + "\n")
		s.WriteString(labelStyle.Render("Last") + valueStyle.Render(fmt.Sprintf("%.6f", m.lastValue)) + "\n")
	}

	if len(m.best) == len(m.names) {
		s.WriteString("\nBEST PARAMETERS\n")

		for i, name := range m.names {
			s.WriteString("  " + labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%.4g", m.best[i])) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("q: quit"))

	return s.String()
}

// Run displays the live view until the updates channel closes or the user
// quits. It blocks, so start the optimization in another goroutine and hand
// its progress channel here.
func Run(names []string, total int, updates <-chan gbtune.ProgressUpdate) error {
	program := tea.NewProgram(NewModel(names, total))

	go func() {
		for update := range updates {
			program.Send(progressMsg(update))
		}

		program.Send(doneMsg{})
	}()

	_, err := program.Run()

	return err
}
