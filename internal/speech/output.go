// Package speech adapts text-to-speech engines and speech recognizers to
// the dictation controller's speech ports.
package speech

import (
	"context"
	"log/slog"
	"sync"

	"github.com/alkime/dictator/internal/dictation"
)

// Voice speaks text aloud and returns once it has been heard, or when ctx
// is cancelled.
type Voice interface {
	Say(ctx context.Context, text string) error
}

// Output runs one utterance at a time on a Voice and reports its lifecycle.
// Starting an utterance cancels the previous one. A cancelled utterance
// reports nothing.
type Output struct {
	voice  Voice
	events chan dictation.OutputEvent

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  chan struct{}
	closing sync.Once
}

var _ dictation.SpeechOutput = (*Output)(nil)

func NewOutput(voice Voice) *Output {
	return &Output{
		voice:  voice,
		events: make(chan dictation.OutputEvent, 16),
		closed: make(chan struct{}),
	}
}

func (o *Output) Speak(id, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	select {
	case <-o.closed:
		return dictation.ErrClosed
	default:
	}

	if o.cancel != nil {
		o.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel

	o.wg.Go(func() {
		defer cancel()

		o.emit(ctx, dictation.OutputEvent{Kind: dictation.OutputStarted, ID: id})

		err := o.voice.Say(ctx, text)
		switch {
		case ctx.Err() != nil:
			slog.Debug("utterance cancelled", "id", id)
		case err != nil:
			slog.Warn("utterance failed", "id", id, "error", err)
			o.emit(ctx, dictation.OutputEvent{Kind: dictation.OutputFailed, ID: id, Err: err})
		default:
			o.emit(ctx, dictation.OutputEvent{Kind: dictation.OutputFinished, ID: id})
		}
	})

	return nil
}

// Stop cancels the current utterance, if any.
func (o *Output) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}

	return nil
}

func (o *Output) Events() <-chan dictation.OutputEvent {
	return o.events
}

// Close stops speaking and waits for the voice to return.
func (o *Output) Close() error {
	o.closing.Do(func() { close(o.closed) })
	if err := o.Stop(); err != nil {
		return err
	}
	o.wg.Wait()

	return nil
}

func (o *Output) emit(ctx context.Context, ev dictation.OutputEvent) {
	// Started is always delivered; later events only if still current.
	if ev.Kind != dictation.OutputStarted && ctx.Err() != nil {
		return
	}

	select {
	case o.events <- ev:
	case <-o.closed:
	}
}
