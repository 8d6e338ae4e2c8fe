package phases

import (
	"context"
	"fmt"
	"strings"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type authoringKeyMap struct {
	NextField key.Binding
	PrevField key.Binding
	AddStep   key.Binding
	Save      key.Binding
	Discard   key.Binding
}

func defaultAuthoringKeyMap() authoringKeyMap {
	return authoringKeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		AddStep: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add step"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Discard: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "discard"),
		),
	}
}

type field int

const (
	fieldTitle field = iota
	fieldDraft
	fieldStep
	fieldCount
)

// Authoring edits the title and step text of a new or existing
// instruction. Every change is sent to the controller, which re-parses the
// steps.
type Authoring struct {
	ops   *Ops
	keys  authoringKeyMap
	state dictation.ViewState

	title textinput.Model
	draft textarea.Model
	step  textinput.Model
	focus field

	// reload copies title and draft from the next view-state.
	reload bool
}

func NewAuthoring(ops *Ops) *Authoring {
	title := textinput.New()
	title.Placeholder = "Morning stretch"
	title.CharLimit = 120
	title.Width = 50

	draft := textarea.New()
	draft.Placeholder = "One step per line. End a line with (30) to time it."
	draft.SetWidth(60)
	draft.SetHeight(8)
	draft.ShowLineNumbers = true

	step := textinput.New()
	step.Placeholder = "Touch your toes (20)"
	step.Width = 50

	return &Authoring{
		ops:   ops,
		keys:  defaultAuthoringKeyMap(),
		title: title,
		draft: draft,
		step:  step,
	}
}

func (a *Authoring) Init() tea.Cmd {
	a.reload = true
	a.step.Reset()

	return a.setFocus(fieldTitle)
}

func (a *Authoring) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case ViewMsg:
		a.state = msg.State
		if a.reload || msg.Resync {
			a.title.SetValue(msg.State.Title)
			a.draft.SetValue(msg.State.Draft)
			a.reload = false
		}
		enable(&a.keys.Save, a.state, dictation.ActionSave)

		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	return a, a.updateFocused(teaMsg)
}

func (a *Authoring) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctl := a.ops.Controller()

	switch {
	case key.Matches(msg, a.keys.NextField):
		return a.setFocus((a.focus + 1) % fieldCount)
	case key.Matches(msg, a.keys.PrevField):
		return a.setFocus((a.focus + fieldCount - 1) % fieldCount)
	case key.Matches(msg, a.keys.Discard):
		return a.ops.Do("discard", ctl.DiscardEdits)
	case key.Matches(msg, a.keys.Save):
		if a.state.Phase == dictation.PhaseCreating {
			return a.ops.Do("save", ctl.FinishAuthoring)
		}
		return a.ops.Do("save", ctl.SaveEdits)
	case a.focus == fieldStep && key.Matches(msg, a.keys.AddStep):
		text := a.step.Value()
		a.step.Reset()
		return a.ops.DoAndResync("add-step", func(ctx context.Context) error { return ctl.AddStep(ctx, text) })
	}

	return a.updateFocused(msg)
}

// updateFocused forwards msg to the focused input and sends any change.
func (a *Authoring) updateFocused(msg tea.Msg) tea.Cmd {
	ctl := a.ops.Controller()

	var cmd tea.Cmd
	switch a.focus {
	case fieldTitle:
		before := a.title.Value()
		a.title, cmd = a.title.Update(msg)
		if v := a.title.Value(); v != before {
			return tea.Batch(cmd, a.ops.Do("set-title", func(ctx context.Context) error { return ctl.SetTitle(ctx, v) }))
		}
	case fieldDraft:
		before := a.draft.Value()
		a.draft, cmd = a.draft.Update(msg)
		if v := a.draft.Value(); v != before {
			return tea.Batch(cmd, a.ops.Do("set-draft", func(ctx context.Context) error { return ctl.SetDraft(ctx, v) }))
		}
	case fieldStep:
		a.step, cmd = a.step.Update(msg)
	case fieldCount:
	}

	return cmd
}

func (a *Authoring) setFocus(f field) tea.Cmd {
	a.focus = f
	a.keys.AddStep.SetEnabled(f == fieldStep)
	a.title.Blur()
	a.draft.Blur()
	a.step.Blur()

	switch f {
	case fieldTitle:
		return a.title.Focus()
	case fieldDraft:
		return a.draft.Focus()
	case fieldStep:
		return a.step.Focus()
	case fieldCount:
	}

	return nil
}

func (a *Authoring) View() string {
	var sb strings.Builder

	heading := "New instruction"
	if a.state.Phase == dictation.PhaseEditing {
		heading = "Edit instruction"
	}
	sb.WriteString(style.Title.Render(heading))
	sb.WriteString("\n\n")

	sb.WriteString(style.Label.Render("Title: "))
	sb.WriteString(a.title.View())
	sb.WriteString("\n\n")

	sb.WriteString(style.Label.Render("Steps"))
	sb.WriteString("\n")
	sb.WriteString(a.draft.View())
	sb.WriteString("\n\n")

	sb.WriteString(style.Label.Render("Add step: "))
	sb.WriteString(a.step.View())
	sb.WriteString("\n\n")

	sb.WriteString(style.Subtitle.Render(parsedSummary(a.state.Steps)))
	sb.WriteString("\n\n")

	sb.WriteString(renderHelpLine(a.keys.NextField, a.keys.AddStep, a.keys.Save, a.keys.Discard))

	return sb.String()
}

func parsedSummary(steps []instruction.Step) string {
	total := instruction.Instruction{Steps: steps}.TotalDuration()

	if total == 0 {
		return pluralize(len(steps), "step")
	}

	return fmt.Sprintf("%s, %d s timed", pluralize(len(steps), "step"), total)
}
