package speech

import (
	"context"
	"errors"

	"github.com/alkime/dictator/internal/dictation"
)

// ErrDisabled is reported when voice commands are turned off.
var ErrDisabled = errors.New("speech disabled")

// Silent is a Voice that finishes immediately.
type Silent struct{}

func (Silent) Say(context.Context, string) error { return nil }

// NoInput never listens. Every StartListening fails as unavailable, so the
// controller falls back to manual navigation.
type NoInput struct {
	events chan dictation.InputEvent
}

var _ dictation.SpeechInput = (*NoInput)(nil)

func NewNoInput() *NoInput {
	return &NoInput{events: make(chan dictation.InputEvent)}
}

func (n *NoInput) StartListening(string, string) error {
	return &dictation.InputError{Kind: dictation.ErrorUnavailable, Err: ErrDisabled}
}

func (n *NoInput) StopListening() error { return nil }

func (n *NoInput) Destroy() error { return nil }

func (n *NoInput) Events() <-chan dictation.InputEvent { return n.events }
