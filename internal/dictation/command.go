package dictation

import "strings"

// Command is a navigation command recognized from speech.
type Command int

const (
	CommandNone Command = iota
	CommandNext
	CommandBack
	CommandRepeat
	CommandExit
)

func (c Command) String() string {
	switch c {
	case CommandNext:
		return "next"
	case CommandBack:
		return "back"
	case CommandRepeat:
		return "repeat"
	case CommandExit:
		return "exit"
	default:
		return "none"
	}
}

// commandWords is in priority order. A transcript containing several
// keywords resolves to the first entry that matches.
var commandWords = []struct {
	cmd   Command
	words []string
}{
	{CommandNext, []string{"next"}},
	{CommandBack, []string{"back"}},
	{CommandRepeat, []string{"repeat"}},
	{CommandExit, []string{"exit", "abort"}},
}

// MatchCommand finds a command word anywhere in the recognized phrases.
// Matching is by lower-case substring, so "nextstep" matches next.
func MatchCommand(phrases []string) (Command, bool) {
	transcript := strings.ToLower(strings.Join(phrases, " "))

	for _, cw := range commandWords {
		for _, w := range cw.words {
			if strings.Contains(transcript, w) {
				return cw.cmd, true
			}
		}
	}

	return CommandNone, false
}
