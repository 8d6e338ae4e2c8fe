// Package waveform draws the microphone level while the recognizer listens.
// Each column is the loudness of one slice of recent audio; columns loud
// enough to count as speech are highlighted so the user can tell whether
// they are being heard.
package waveform

import (
	"math"
	"strings"
	"time"

	"github.com/alkime/dictator/internal/audio"
	"github.com/alkime/dictator/internal/tui/style"
	"github.com/alkime/dictator/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Eighth-block characters, empty first.
var blocks = []rune(" ▁▂▃▄▅▆▇█")

const (
	stepsPerRow = 8
	frameRate   = 50 * time.Millisecond
)

// TickMsg triggers a waveform redraw.
type TickMsg struct{}

// Model renders recent samples as vertical bars, oldest on the left.
// An inactive waveform draws only its baseline.
type Model struct {
	levels    uictl.Levels[int16]
	width     int
	height    int
	threshold float64
	active    bool
}

// New creates an active waveform width columns wide and height rows tall.
// levels may be nil.
func New(levels uictl.Levels[int16], width, height int) Model {
	return Model{
		levels:    levels,
		width:     max(width, 1),
		height:    max(height, 1),
		threshold: audio.DefaultSilenceThreshold,
		active:    true,
	}
}

// SetActive turns sampling on or off.
func (m Model) SetActive(active bool) Model {
	m.active = active
	return m
}

// Active reports whether the waveform is sampling.
func (m Model) Active() bool {
	return m.active
}

// SetThreshold sets the normalized RMS at which a column counts as speech.
func (m Model) SetThreshold(threshold float64) Model {
	if threshold > 0 {
		m.threshold = threshold
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(TickMsg); ok {
		return m, m.tick()
	}

	return m, nil
}

func (m Model) View() string {
	if m.levels == nil || !m.active {
		return m.baseline()
	}

	samples := m.levels.Read()
	if len(samples) == 0 {
		return m.baseline()
	}

	return m.bars(m.columns(samples))
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// column is the loudness of one slice of samples.
type column struct {
	rms    float64
	height int // in eighths of a row
}

// columns splits samples into width slices. Missing slices are silent.
func (m Model) columns(samples []int16) []column {
	cols := make([]column, m.width)
	size := max(1, len(samples)/m.width)
	top := m.height * stepsPerRow

	for i := range cols {
		start := i * size
		if start >= len(samples) {
			break
		}

		rms := audio.RMS(samples[start:min(start+size, len(samples))])
		// square root so quiet speech still shows
		cols[i] = column{
			rms:    rms,
			height: min(int(math.Sqrt(rms)*float64(top)), top),
		}
	}

	return cols
}

func (m Model) bars(cols []column) string {
	rows := make([]string, m.height)

	for row := range rows {
		floor := (m.height - 1 - row) * stepsPerRow

		var sb strings.Builder
		for _, c := range cols {
			fill := min(max(c.height-floor, 0), stepsPerRow)
			sb.WriteString(m.styleFor(c).Render(string(blocks[fill])))
		}
		rows[row] = sb.String()
	}

	return strings.Join(rows, "\n")
}

func (m Model) styleFor(c column) lipgloss.Style {
	if c.rms >= m.threshold {
		return style.Success
	}
	return style.Progress
}

func (m Model) baseline() string {
	rows := make([]string, m.height)
	for row := range rows {
		rows[row] = strings.Repeat(" ", m.width)
	}
	rows[m.height-1] = strings.Repeat(string(blocks[1]), m.width)

	return style.Muted.Render(strings.Join(rows, "\n"))
}
