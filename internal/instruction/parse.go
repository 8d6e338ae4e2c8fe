package instruction

import (
	"regexp"
	"strconv"
	"strings"
)

// durationSuffix matches a trailing "(N)" and any whitespace before it.
var durationSuffix = regexp.MustCompile(`\s*\(([0-9]+)\)$`)

// ParseStep turns one authored line into a Step. A trailing "(N)" of ASCII
// digits becomes the duration and is stripped from the text. Anything else,
// including digits too large for an int, is left as literal text.
func ParseStep(line string) Step {
	line = strings.TrimSpace(line)

	m := durationSuffix.FindStringSubmatchIndex(line)
	if m == nil {
		return Step{Text: line}
	}

	n, err := strconv.Atoi(line[m[2]:m[3]])
	if err != nil {
		return Step{Text: line}
	}

	return Step{Text: line[:m[0]], Duration: n}
}

// ParseSteps parses authored text one line at a time, dropping lines whose
// step text is empty.
func ParseSteps(text string) []Step {
	var steps []Step

	for line := range strings.SplitSeq(text, "\n") {
		s := ParseStep(line)
		if s.Text == "" {
			continue
		}
		steps = append(steps, s)
	}

	return steps
}

// FormatStep renders a step back to its authored form. Untimed text that
// already ends in "(N)" gets an explicit " (0)" so it parses back as text.
func FormatStep(s Step) string {
	if !s.Timed() {
		if durationSuffix.MatchString(s.Text) {
			return s.Text + " (0)"
		}

		return s.Text
	}

	return s.Text + " (" + strconv.Itoa(s.Duration) + ")"
}

// FormatSteps renders steps one per line so ParseSteps can read them back.
func FormatSteps(steps []Step) string {
	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		lines = append(lines, FormatStep(s))
	}

	return strings.Join(lines, "\n")
}
