// Package phases switches between named screens. A screen is initialized
// each time it becomes current; only the current screen receives messages,
// except window sizes which every screen receives.
package phases

import (
	tea "github.com/charmbracelet/bubbletea"
)

// GotoMsg makes the named screen current.
type GotoMsg struct {
	Name string
}

// Goto returns a command emitting GotoMsg.
func Goto(name string) tea.Cmd {
	return func() tea.Msg { return GotoMsg{Name: name} }
}

// Phase is a named screen.
type Phase struct {
	Name  string
	model tea.Model
}

func NewPhase(name string, model tea.Model) Phase {
	return Phase{Name: name, model: model}
}

// Model holds the screens in registration order; the first is current.
type Model struct {
	screens []Phase
	index   map[string]int
	curr    int
	size    *tea.WindowSizeMsg
}

// New panics on duplicate or empty screen lists; both are wiring mistakes.
func New(screens []Phase) Model {
	if len(screens) == 0 {
		panic("phases: no screens")
	}

	index := make(map[string]int, len(screens))
	for i, s := range screens {
		if _, dup := index[s.Name]; dup {
			panic("phases: duplicate screen " + s.Name)
		}
		index[s.Name] = i
	}

	return Model{screens: screens, index: index}
}

func (m Model) Init() tea.Cmd {
	return m.screens[m.curr].model.Init()
}

// Update satisfies tea.Model; embedders should prefer Forward.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.Forward(msg)
}

// Forward routes msg and returns the concrete model.
func (m Model) Forward(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case GotoMsg:
		return m.SwitchTo(msg.Name)

	case tea.WindowSizeMsg:
		m.size = &msg
		cmds := make([]tea.Cmd, len(m.screens))
		for i := range m.screens {
			m.screens[i].model, cmds[i] = m.screens[i].model.Update(msg)
		}

		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.screens[m.curr].model, cmd = m.screens[m.curr].model.Update(msg)

	return m, cmd
}

// SwitchTo makes the named screen current and initializes it. Unknown
// names and the current screen are ignored. A screen entered after a
// resize is also sent the last known size.
func (m Model) SwitchTo(name string) (Model, tea.Cmd) {
	idx, ok := m.index[name]
	if !ok || idx == m.curr {
		return m, nil
	}

	m.curr = idx
	cmd := m.screens[idx].model.Init()
	if m.size != nil {
		var sizeCmd tea.Cmd
		m.screens[idx].model, sizeCmd = m.screens[idx].model.Update(*m.size)
		cmd = tea.Batch(cmd, sizeCmd)
	}

	return m, cmd
}

func (m Model) View() string {
	return m.screens[m.curr].model.View()
}

// Current returns the name of the current screen.
func (m Model) Current() string {
	return m.screens[m.curr].Name
}
