package phases

import (
	"strings"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Done congratulates the user once the last step has been passed.
type Done struct {
	ops   *Ops
	ack   key.Binding
	state dictation.ViewState
}

func NewDone(ops *Ops) *Done {
	return &Done{
		ops: ops,
		ack: key.NewBinding(
			key.WithKeys("enter", " ", "esc"),
			key.WithHelp("enter", "back to list"),
		),
	}
}

func (d *Done) Init() tea.Cmd {
	return nil
}

func (d *Done) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case ViewMsg:
		d.state = msg.State
		enable(&d.ack, d.state, dictation.ActionAcknowledge)
	case tea.KeyMsg:
		if key.Matches(msg, d.ack) {
			return d, d.ops.Do("acknowledge", d.ops.Controller().AcknowledgeCompletion)
		}
	}

	return d, nil
}

func (d *Done) View() string {
	var sb strings.Builder

	sb.WriteString(style.Success.Render("Mission accomplished!"))
	sb.WriteString("\n\n")
	sb.WriteString(style.Subtitle.Render("Finished " + d.state.Title + ", " + pluralize(d.state.StepTotal, "step") + "."))
	sb.WriteString("\n\n")
	sb.WriteString(renderHelpLine(d.ack))

	return sb.String()
}
