package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
)

// ErrNoSpeechCommand is returned when neither say nor espeak is installed.
var ErrNoSpeechCommand = errors.New("no speech command found: install say (macOS) or espeak")

// baseWordsPerMinute is the rate both say and espeak treat as normal speed.
const baseWordsPerMinute = 175

// CommandVoice speaks through a local text-to-speech command.
type CommandVoice struct {
	path string
	args func(text string) []string
}

// NewCommandVoice finds say or espeak on PATH. speed scales the default
// speaking rate; 1 is normal.
func NewCommandVoice(speed float64) (*CommandVoice, error) {
	if speed <= 0 {
		speed = 1
	}
	rate := strconv.Itoa(int(baseWordsPerMinute * speed))

	if path, err := exec.LookPath("say"); err == nil {
		return &CommandVoice{path: path, args: func(text string) []string {
			return []string{"-r", rate, text}
		}}, nil
	}

	if path, err := exec.LookPath("espeak"); err == nil {
		return &CommandVoice{path: path, args: func(text string) []string {
			return []string{"-s", rate, text}
		}}, nil
	}

	return nil, ErrNoSpeechCommand
}

func (v *CommandVoice) Say(ctx context.Context, text string) error {
	slog.Debug("speaking via command", "command", v.path)

	cmd := exec.CommandContext(ctx, v.path, v.args(text)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run %s: %w: %s", v.path, err, out)
	}

	return nil
}
