package phases

import (
	"context"
	"fmt"
	"strings"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type listKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Create  key.Binding
	Delete  key.Binding
	Refresh key.Binding
}

func defaultListKeyMap() listKeyMap {
	return listKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// List shows the saved instructions.
type List struct {
	ops    *Ops
	keys   listKeyMap
	state  dictation.ViewState
	cursor int
}

func NewList(ops *Ops) *List {
	return &List{ops: ops, keys: defaultListKeyMap()}
}

func (l *List) Init() tea.Cmd {
	return nil
}

func (l *List) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case ViewMsg:
		l.state = msg.State
		l.cursor = max(0, min(l.cursor, len(l.state.Instructions)-1))
		enable(&l.keys.Select, l.state, dictation.ActionSelect)
		enable(&l.keys.Create, l.state, dictation.ActionCreate)
		enable(&l.keys.Delete, l.state, dictation.ActionDelete)
		enable(&l.keys.Refresh, l.state, dictation.ActionRefresh)

	case tea.KeyMsg:
		return l, l.handleKey(msg)
	}

	return l, nil
}

func (l *List) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctl := l.ops.Controller()

	switch {
	case key.Matches(msg, l.keys.Up):
		l.cursor = max(0, l.cursor-1)
	case key.Matches(msg, l.keys.Down):
		l.cursor = min(len(l.state.Instructions)-1, l.cursor+1)
	case key.Matches(msg, l.keys.Create):
		return l.ops.Do("create", ctl.Create)
	case key.Matches(msg, l.keys.Refresh):
		return l.ops.Do("refresh", ctl.Refresh)
	case key.Matches(msg, l.keys.Select):
		if id, ok := l.selected(); ok {
			return l.ops.Do("select", func(ctx context.Context) error { return ctl.Select(ctx, id) })
		}
	case key.Matches(msg, l.keys.Delete):
		if id, ok := l.selected(); ok {
			return l.ops.Do("delete", func(ctx context.Context) error { return ctl.DeleteInstruction(ctx, id) })
		}
	}

	return nil
}

func (l *List) selected() (string, bool) {
	if l.cursor < 0 || l.cursor >= len(l.state.Instructions) {
		return "", false
	}

	return l.state.Instructions[l.cursor].ID, true
}

func (l *List) View() string {
	var sb strings.Builder

	sb.WriteString(style.Title.Render("Instructions"))
	sb.WriteString("\n\n")

	if len(l.state.Instructions) == 0 {
		sb.WriteString(style.Muted.Render("No instructions yet. Press n to write one."))
		sb.WriteString("\n")
	}

	for i, s := range l.state.Instructions {
		marker := "  "
		title := s.Title
		if i == l.cursor {
			marker = style.Bullet.Render("> ")
			title = style.Label.Render(title)
		}

		detail := pluralize(s.Steps, "step")
		if s.Duration > 0 {
			detail += fmt.Sprintf(", %d s timed", s.Duration)
		}

		sb.WriteString(marker + title + " " + style.Muted.Render("("+detail+")") + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(renderHelpLine(l.keys.Up, l.keys.Down, l.keys.Select, l.keys.Create, l.keys.Delete, l.keys.Refresh))

	return sb.String()
}
