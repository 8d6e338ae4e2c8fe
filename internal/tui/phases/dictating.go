package phases

import (
	"fmt"
	"strings"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/tui/components/labeledspinner"
	"github.com/alkime/dictator/internal/tui/components/waveform"
	"github.com/alkime/dictator/internal/tui/style"
	"github.com/alkime/dictator/pkg/uictl"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type dictatingKeyMap struct {
	Next   key.Binding
	Back   key.Binding
	Repeat key.Binding
	Abort  key.Binding
}

func defaultDictatingKeyMap() dictatingKeyMap {
	return dictatingKeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "n", " "),
			key.WithHelp("→/n", "next"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "b"),
			key.WithHelp("←/b", "back"),
		),
		Repeat: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "repeat"),
		),
		Abort: key.NewBinding(
			key.WithKeys("esc", "x"),
			key.WithHelp("esc", "abort"),
		),
	}
}

// Dictating reads the instruction aloud one step at a time.
type Dictating struct {
	ops   *Ops
	keys  dictatingKeyMap
	state dictation.ViewState

	speaking labeledspinner.Model
	progress progress.Model
	wave     waveform.Model
}

// NewDictating draws the microphone level from levels while listening.
// levels may be nil.
func NewDictating(ops *Ops, levels uictl.Levels[int16]) *Dictating {
	return &Dictating{
		ops:      ops,
		keys:     defaultDictatingKeyMap(),
		speaking: labeledspinner.New(spinner.MiniDot, "Speaking"),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		wave: waveform.New(levels, 40, 2).SetActive(false),
	}
}

func (d *Dictating) Init() tea.Cmd {
	return tea.Batch(d.speaking.Init(), d.wave.Init())
}

func (d *Dictating) Update(teaMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := teaMsg.(type) {
	case ViewMsg:
		d.state = msg.State
		d.wave = d.wave.SetActive(d.state.Listening)
		d.speaking = d.speaking.SetLabel(fmt.Sprintf("Speaking step %d", d.state.StepIndex+1))
		enable(&d.keys.Next, d.state, dictation.ActionNext)
		enable(&d.keys.Back, d.state, dictation.ActionBack)
		enable(&d.keys.Repeat, d.state, dictation.ActionRepeat)
		enable(&d.keys.Abort, d.state, dictation.ActionAbort)

	case tea.KeyMsg:
		ctl := d.ops.Controller()

		switch {
		case key.Matches(msg, d.keys.Next):
			return d, d.ops.Do("next", ctl.Next)
		case key.Matches(msg, d.keys.Back):
			return d, d.ops.Do("back", ctl.Back)
		case key.Matches(msg, d.keys.Repeat):
			return d, d.ops.Do("repeat", ctl.Repeat)
		case key.Matches(msg, d.keys.Abort):
			return d, d.ops.Do("abort", ctl.Abort)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.speaking, cmd = d.speaking.Update(msg)
		return d, cmd

	case waveform.TickMsg:
		var cmd tea.Cmd
		d.wave, cmd = d.wave.Update(msg)
		return d, cmd
	}

	return d, nil
}

func (d *Dictating) View() string {
	var sb strings.Builder

	sb.WriteString(style.Subtitle.Render(fmt.Sprintf("%s · step %d of %d", d.state.Title, d.state.StepIndex+1, d.state.StepTotal)))
	sb.WriteString("\n\n")
	sb.WriteString(style.Title.Render(d.state.StepText))
	sb.WriteString("\n\n")

	if d.state.CountdownTotal > 0 {
		sb.WriteString(d.progress.ViewAs(uictl.Fraction[int](elapsed(d.state))))
		sb.WriteString(" ")
		sb.WriteString(style.Label.Render(fmt.Sprintf("%d s", d.state.Countdown)))
		sb.WriteString("\n\n")
	}

	switch {
	case d.state.Speaking:
		sb.WriteString(d.speaking.Inline())
		sb.WriteString("\n")
	case d.state.Listening:
		sb.WriteString(style.Success.Render("Listening"))
		sb.WriteString(style.Muted.Render(" · say next, back, repeat or exit"))
		sb.WriteString("\n")
		sb.WriteString(d.wave.View())
		sb.WriteString("\n")
	}

	if d.state.VoiceUnavailable {
		sb.WriteString(style.Warning.Render("Voice commands unavailable, use the keys below."))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(renderHelpLine(d.keys.Next, d.keys.Back, d.keys.Repeat, d.keys.Abort))

	return sb.String()
}

// elapsed reads the seconds already counted down in a timed step.
type elapsed dictation.ViewState

func (e elapsed) Read() int {
	return e.CountdownTotal - e.Countdown
}

func (e elapsed) Cap() (int, int) {
	return e.Read(), e.CountdownTotal
}
