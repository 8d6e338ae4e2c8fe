package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/alkime/dictator/internal/audio"
	"github.com/alkime/dictator/internal/dictation"
)

// Microphone streams mono samples until ctx is cancelled.
type Microphone interface {
	Open(ctx context.Context) (<-chan []int16, error)
	SampleRate() int
}

var _ Microphone = (*audio.Microphone)(nil)

// Transcriber turns an MP3 utterance into text.
type Transcriber interface {
	Transcribe(ctx context.Context, mp3 io.Reader, locale string) (string, error)
}

// Recognizer listens for one utterance per StartListening, transcribes it
// and reports the text as an InputEvent.
type Recognizer struct {
	mic      Microphone
	tr       Transcriber
	endpoint audio.EndpointConfig
	events   chan dictation.InputEvent

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ dictation.SpeechInput = (*Recognizer)(nil)

func NewRecognizer(mic Microphone, tr Transcriber, endpoint audio.EndpointConfig) *Recognizer {
	endpoint.SampleRate = mic.SampleRate()

	return &Recognizer{
		mic:      mic,
		tr:       tr,
		endpoint: endpoint.WithDefaults(),
		events:   make(chan dictation.InputEvent, 4),
	}
}

// StartListening fails with ErrorBusy while a previous session is still
// running.
func (r *Recognizer) StartListening(id, locale string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		select {
		case <-r.done:
		default:
			return &dictation.InputError{Kind: dictation.ErrorBusy, Err: errors.New("already listening")}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		defer cancel()

		ev, ok := r.listen(ctx, id, locale)
		if !ok {
			return
		}

		select {
		case r.events <- ev:
		case <-ctx.Done():
		}
	}()

	return nil
}

// StopListening abandons the current session without reporting it.
func (r *Recognizer) StopListening() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	return nil
}

// Destroy stops listening and waits for the microphone to be released.
func (r *Recognizer) Destroy() error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	return nil
}

func (r *Recognizer) Events() <-chan dictation.InputEvent {
	return r.events
}

// listen returns false when the session was cancelled.
func (r *Recognizer) listen(ctx context.Context, id, locale string) (dictation.InputEvent, bool) {
	fail := func(kind dictation.ErrorKind, err error) (dictation.InputEvent, bool) {
		return dictation.InputEvent{ID: id, Err: &dictation.InputError{Kind: kind, Err: err}}, ctx.Err() == nil
	}

	utterance, err := r.capture(ctx)
	if ctx.Err() != nil {
		return dictation.InputEvent{}, false
	}
	if err != nil {
		var ie *dictation.InputError
		if errors.As(err, &ie) {
			return dictation.InputEvent{ID: id, Err: err}, true
		}
		return fail(dictation.ErrorUnavailable, err)
	}

	var buf bytes.Buffer
	if err := audio.EncodeMP3(&buf, utterance, audio.EncoderConfig{SampleRate: r.endpoint.SampleRate}); err != nil {
		return fail(dictation.ErrorRecognitionFailed, err)
	}

	text, err := r.tr.Transcribe(ctx, &buf, locale)
	if err != nil {
		slog.Debug("transcription failed", "id", id, "error", err)
		return fail(classify(err), err)
	}
	if text == "" {
		return fail(dictation.ErrorNoSpeech, nil)
	}

	slog.Debug("heard", "id", id, "text", text)

	return dictation.InputEvent{ID: id, Results: []string{text}}, ctx.Err() == nil
}

func (r *Recognizer) capture(ctx context.Context) ([]int16, error) {
	micCtx, stop := context.WithCancel(ctx)
	defer stop()

	samples, err := r.mic.Open(micCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to open microphone: %w", err)
	}

	ep := audio.NewEndpointer(r.endpoint)
	for packet := range samples {
		switch ep.Push(packet) {
		case audio.EndpointDone:
			return ep.Utterance(), nil
		case audio.EndpointNoSpeech:
			return nil, &dictation.InputError{Kind: dictation.ErrorNoSpeech}
		case audio.EndpointWaiting, audio.EndpointSpeech:
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return nil, errors.New("microphone closed")
}
