// Package labeledspinner shows a spinner beside a label while the user
// waits, either as a full screen or inline within another screen.
package labeledspinner

import (
	"strings"

	"github.com/alkime/dictator/internal/tui/style"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type Model struct {
	spinner spinner.Model
	label   string
	detail  string
}

// New creates a spinner with the given frames and label.
func New(s spinner.Spinner, label string) Model {
	return Model{
		spinner: spinner.New(spinner.WithSpinner(s)),
		label:   label,
	}
}

// WithDetail adds a line shown under the label on the full screen view.
func (m Model) WithDetail(detail string) Model {
	m.detail = detail
	return m
}

// SetLabel replaces the label.
func (m Model) SetLabel(label string) Model {
	m.label = label
	return m
}

func (m Model) Label() string {
	return m.label
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the animation on this spinner's own ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok {
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(tick)

	return m, cmd
}

// View renders the spinner as a screen, followed by help.
func (m Model) View(help string) string {
	var sb strings.Builder

	sb.WriteString(m.Inline())
	sb.WriteString("\n\n")

	if m.detail != "" {
		sb.WriteString(style.Subtitle.Render(m.detail))
		sb.WriteString("\n\n")
	}

	sb.WriteString(help)

	return sb.String()
}

// Inline renders the spinner and label on one line.
func (m Model) Inline() string {
	return m.spinner.View() + " " + style.Title.Render(m.label)
}
