package dictation

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLocale           = "en-US"
	DefaultCompletionPhrase = "Mission accomplished!"
	DefaultSettleDelay      = 300 * time.Millisecond
	DefaultFinishTimeout    = 15 * time.Second
	DefaultRetryDelay       = 2 * time.Second
	DefaultPublishTimeout   = 250 * time.Millisecond

	countdownTick = time.Second
)

// Options tunes the controller. Zero values fall back to defaults.
type Options struct {
	// Locale is passed to the speech input on every listen.
	Locale string
	// CompletionPhrase is spoken when the last step is passed.
	CompletionPhrase string
	// SettleDelay separates the end of speech from the start of listening.
	SettleDelay time.Duration
	// FinishTimeout treats an utterance as finished when no finish event
	// arrives in time.
	FinishTimeout time.Duration
	// RetryDelay spaces recognition restarts after transient errors.
	RetryDelay time.Duration
	// PublishTimeout bounds how long the loop waits to hand off a view-state.
	PublishTimeout time.Duration

	Clock  Clock
	NewID  func() string
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Locale == "" {
		o.Locale = DefaultLocale
	}
	if o.CompletionPhrase == "" {
		o.CompletionPhrase = DefaultCompletionPhrase
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.FinishTimeout <= 0 {
		o.FinishTimeout = DefaultFinishTimeout
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = DefaultPublishTimeout
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	return o
}
