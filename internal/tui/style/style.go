// Package style holds the lipgloss styles shared by every screen. Names omit
// a Style suffix since they are read as style.Title, style.Key and so on.
package style

import "github.com/charmbracelet/lipgloss"

// Palette, as ANSI 256 colors.
const (
	pink   = lipgloss.Color("205")
	green  = lipgloss.Color("42")
	red    = lipgloss.Color("196")
	orange = lipgloss.Color("214")
	violet = lipgloss.Color("63")
	white  = lipgloss.Color("255")
	grey   = lipgloss.Color("245")
	dim    = lipgloss.Color("241")
)

var (
	// Title renders screen headings and the step being dictated.
	Title = lipgloss.NewStyle().Bold(true).Foreground(pink)
	// Subtitle renders the status header and secondary lines.
	Subtitle = lipgloss.NewStyle().Foreground(dim)
	// Label renders field labels and the highlighted list row.
	Label = lipgloss.NewStyle().Bold(true).Foreground(white)
	// Muted renders step counts and placeholders.
	Muted = lipgloss.NewStyle().Foreground(grey)
	// Bullet marks the list cursor.
	Bullet = lipgloss.NewStyle().Foreground(pink)

	// Success renders the listening indicator, speech-level bars and completion.
	Success = lipgloss.NewStyle().Foreground(green)
	// Warning renders store notices and the manual-control fallback.
	Warning = lipgloss.NewStyle().Foreground(orange)
	// Error renders failed operations.
	Error = lipgloss.NewStyle().Foreground(red)
	// Progress renders quiet waveform bars.
	Progress = lipgloss.NewStyle().Foreground(violet)

	// Key and Help render the key hints at the bottom of each screen.
	Key  = lipgloss.NewStyle().Bold(true).Foreground(pink)
	Help = lipgloss.NewStyle().Foreground(dim)
)
