package phases

import (
	"strings"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type reviewKeyMap struct {
	Edit   key.Binding
	Accept key.Binding
	Start  key.Binding
	Return key.Binding
}

func defaultReviewKeyMap() reviewKeyMap {
	return reviewKeyMap{
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept"),
		),
		Start: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s/enter", "start dictation"),
		),
		Return: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back to list"),
		),
	}
}

// Review shows a saved instruction before dictation, both right after
// saving and once accepted.
type Review struct {
	ops   *Ops
	keys  reviewKeyMap
	state dictation.ViewState
}

func NewReview(ops *Ops) *Review {
	return &Review{ops: ops, keys: defaultReviewKeyMap()}
}

func (r *Review) Init() tea.Cmd {
	return nil
}

func (r *Review) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case ViewMsg:
		r.state = msg.State
		enable(&r.keys.Edit, r.state, dictation.ActionEdit)
		enable(&r.keys.Accept, r.state, dictation.ActionAccept)
		enable(&r.keys.Start, r.state, dictation.ActionStart)
		enable(&r.keys.Return, r.state, dictation.ActionReturn)

	case tea.KeyMsg:
		ctl := r.ops.Controller()

		switch {
		case key.Matches(msg, r.keys.Edit):
			return r, r.ops.Do("edit", ctl.StartEditing)
		case key.Matches(msg, r.keys.Accept):
			return r, r.ops.Do("accept", ctl.AcceptInstruction)
		case key.Matches(msg, r.keys.Start):
			return r, r.ops.Do("start", ctl.StartDictation)
		case key.Matches(msg, r.keys.Return):
			return r, r.ops.Do("return", ctl.ReturnToList)
		}
	}

	return r, nil
}

func (r *Review) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render(r.state.Title))
	if r.state.Phase == dictation.PhaseReadyToDictate {
		sb.WriteString(" ")
		sb.WriteString(style.Success.Render("ready"))
	}
	sb.WriteString("\n\n")

	if len(r.state.Steps) == 0 {
		sb.WriteString(style.Warning.Render("This instruction has no steps."))
		sb.WriteString("\n")
	}

	for i, s := range r.state.Steps {
		sb.WriteString(stepLine(i+1, s))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(renderHelpLine(r.keys.Edit, r.keys.Accept, r.keys.Start, r.keys.Return))

	return sb.String()
}
