package phases

import (
	"fmt"
	"strings"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/internal/tui/style"
	"github.com/charmbracelet/bubbles/key"
)

func renderKeyHelp(keyBinding key.Binding, suffix ...string) string {
	s := style.Help.Render("[") + style.Key.Render(keyBinding.Help().Key) +
		style.Help.Render("] ") +
		style.Help.Render(keyBinding.Help().Desc)

	s += strings.Join(suffix, "")

	return s
}

// renderHelpLine renders the enabled bindings on one line.
func renderHelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if b.Enabled() {
			parts = append(parts, renderKeyHelp(b))
		}
	}

	return strings.Join(parts, "  ")
}

// enable turns b on when the controller offers action.
func enable(b *key.Binding, vs dictation.ViewState, action dictation.Action) {
	b.SetEnabled(vs.Actions.Has(action))
}

// stepLine renders a step as shown on the review screen.
func stepLine(n int, s instruction.Step) string {
	if s.Timed() {
		return fmt.Sprintf("%d. %s (Duration: %d s)", n, s.Text, s.Duration)
	}

	return fmt.Sprintf("%d. %s", n, s.Text)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}

	return fmt.Sprintf("%d %ss", n, word)
}
