// Package tui is the terminal front end of the dictation controller.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/tui/components/labeledspinner"
	"github.com/alkime/dictator/internal/tui/components/phases"
	screens "github.com/alkime/dictator/internal/tui/phases"
	"github.com/alkime/dictator/internal/tui/style"
	"github.com/alkime/dictator/pkg/channels"
	"github.com/alkime/dictator/pkg/uictl"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	screenList      = "list"
	screenAuthoring = "authoring"
	screenReview    = "review"
	screenDictating = "dictating"
	screenDone      = "done"
)

// Config wires the TUI to a running controller.
type Config struct {
	Controller screens.Controller
	// Views receives the controller's published view-states.
	Views <-chan dictation.ViewState
	// Levels feeds the listening waveform. Optional.
	Levels uictl.Levels[int16]
	// Cancel is called when the user quits.
	Cancel context.CancelFunc
}

type viewReceivedMsg struct {
	state dictation.ViewState
}

type viewsClosedMsg struct{}

type model struct {
	config  Config
	keys    KeyMap
	ops     *screens.Ops
	phases  phases.Model
	loading labeledspinner.Model

	state   dictation.ViewState
	ready   bool
	lastErr error
}

// New creates the TUI model. Operations run under ctx.
func New(ctx context.Context, config Config) tea.Model {
	ops := screens.NewOps(ctx, config.Controller)

	return &model{
		config: config,
		keys:   DefaultKeyMap(),
		ops:    ops,
		phases: phases.New([]phases.Phase{
			phases.NewPhase(screenList, screens.NewList(ops)),
			phases.NewPhase(screenAuthoring, screens.NewAuthoring(ops)),
			phases.NewPhase(screenReview, screens.NewReview(ops)),
			phases.NewPhase(screenDictating, screens.NewDictating(ops, config.Levels)),
			phases.NewPhase(screenDone, screens.NewDone(ops)),
		}),
		loading: labeledspinner.New(spinner.Dot, "Loading instructions").WithDetail("Waiting for the session controller"),
	}
}

func screenFor(p dictation.Phase) string {
	switch p {
	case dictation.PhaseCreating, dictation.PhaseEditing:
		return screenAuthoring
	case dictation.PhaseViewingChanges, dictation.PhaseReadyToDictate:
		return screenReview
	case dictation.PhaseDictating:
		return screenDictating
	case dictation.PhaseMissionAccomplished:
		return screenDone
	case dictation.PhaseInstructionList:
		return screenList
	default:
		return screenList
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.loading.Init(),
		m.phases.Init(),
		m.waitForView(),
		m.ops.Snapshot(),
	)
}

// waitForView delivers the newest published view-state, then is re-armed
// by Update.
func (m *model) waitForView() tea.Cmd {
	views := m.config.Views
	if views == nil {
		return nil
	}

	return func() tea.Msg {
		vs, ok := <-views
		if !ok {
			return viewsClosedMsg{}
		}

		return viewReceivedMsg{state: channels.Latest(views, vs)}
	}
}

func (m *model) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ForceQuit):
			return m, m.quit()
		case key.Matches(msg, m.keys.Quit) && m.phases.Current() == screenList:
			return m, m.quit()
		}

	case viewReceivedMsg:
		return m, tea.Batch(m.applyView(screens.ViewMsg{State: msg.state}), m.waitForView())

	case viewsClosedMsg:
		return m, m.quit()

	case screens.ViewMsg:
		return m, m.applyView(msg)

	case screens.OpDoneMsg:
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.lastErr = msg.Err
		} else if msg.Err == nil {
			m.lastErr = nil
		}

		return m, nil

	case spinner.TickMsg:
		if !m.ready {
			var cmd tea.Cmd
			m.loading, cmd = m.loading.Update(msg)
			return m, cmd
		}
	}

	return m, m.updatePhases(teaMsg)
}

func (m *model) applyView(msg screens.ViewMsg) tea.Cmd {
	m.state = msg.State
	m.ready = true

	var cmds []tea.Cmd
	if name := screenFor(msg.State.Phase); name != m.phases.Current() {
		var cmd tea.Cmd
		m.phases, cmd = m.phases.SwitchTo(name)
		m.lastErr = nil
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.updatePhases(msg))

	return tea.Batch(cmds...)
}

func (m *model) updatePhases(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.phases, cmd = m.phases.Forward(msg)

	return cmd
}

func (m *model) quit() tea.Cmd {
	if m.config.Cancel != nil {
		m.config.Cancel()
	}

	return tea.Quit
}

func (m *model) View() string {
	if !m.ready {
		return m.loading.View(renderKeyHelp(m.keys.ForceQuit))
	}

	var sb strings.Builder

	sb.WriteString(style.Subtitle.Render("Dictator · " + m.state.Phase.String()))
	if m.state.Busy {
		sb.WriteString(style.Muted.Render(" · saving"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.phases.View())
	sb.WriteString("\n")

	if m.state.Notice != "" {
		sb.WriteString("\n")
		sb.WriteString(style.Warning.Render(m.state.Notice))
	}
	if m.lastErr != nil {
		sb.WriteString("\n")
		sb.WriteString(style.Error.Render("Error: " + m.lastErr.Error()))
	}

	sb.WriteString("\n")
	if m.phases.Current() == screenList {
		sb.WriteString(renderKeyHelp(m.keys.Quit, "  "))
	}
	sb.WriteString(renderKeyHelp(m.keys.ForceQuit))

	return sb.String()
}

func renderKeyHelp(keyBinding key.Binding, suffix ...string) string {
	return style.Help.Render("[") + style.Key.Render(keyBinding.Help().Key) +
		style.Help.Render("] ") +
		style.Help.Render(keyBinding.Help().Desc) +
		strings.Join(suffix, "")
}
