package speech_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedVoice blocks each Say until its text is released or cancelled.
type gatedVoice struct {
	mu    sync.Mutex
	gates map[string]chan error
}

func newGatedVoice() *gatedVoice {
	return &gatedVoice{gates: map[string]chan error{}}
}

func (v *gatedVoice) gate(text string) chan error {
	v.mu.Lock()
	defer v.mu.Unlock()

	g, ok := v.gates[text]
	if !ok {
		g = make(chan error, 1)
		v.gates[text] = g
	}

	return g
}

func (v *gatedVoice) release(text string, err error) {
	v.gate(text) <- err
}

func (v *gatedVoice) Say(ctx context.Context, text string) error {
	select {
	case err := <-v.gate(text):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func next(t *testing.T, ch <-chan dictation.OutputEvent) dictation.OutputEvent {
	t.Helper()

	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for output event")
		return dictation.OutputEvent{}
	}
}

func assertQuiet(t *testing.T, ch <-chan dictation.OutputEvent) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v for %s", ev.Kind, ev.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOutput_Lifecycle(t *testing.T) {
	voice := newGatedVoice()
	out := speech.NewOutput(voice)
	t.Cleanup(func() { _ = out.Close() })

	require.NoError(t, out.Speak("step-0-1", "Breathe in"))
	assert.Equal(t, dictation.OutputEvent{Kind: dictation.OutputStarted, ID: "step-0-1"}, next(t, out.Events()))

	voice.release("Breathe in", nil)
	assert.Equal(t, dictation.OutputEvent{Kind: dictation.OutputFinished, ID: "step-0-1"}, next(t, out.Events()))
}

func TestOutput_Failure(t *testing.T) {
	voice := newGatedVoice()
	out := speech.NewOutput(voice)
	t.Cleanup(func() { _ = out.Close() })

	boom := errors.New("speaker unplugged")
	require.NoError(t, out.Speak("a", "hello"))
	next(t, out.Events())
	voice.release("hello", boom)

	ev := next(t, out.Events())
	assert.Equal(t, dictation.OutputFailed, ev.Kind)
	require.ErrorIs(t, ev.Err, boom)
}

func TestOutput_StopSuppressesCompletion(t *testing.T) {
	out := speech.NewOutput(newGatedVoice())
	t.Cleanup(func() { _ = out.Close() })

	require.NoError(t, out.Speak("a", "hello"))
	next(t, out.Events())

	require.NoError(t, out.Stop())
	require.NoError(t, out.Stop())
	assertQuiet(t, out.Events())
}

func TestOutput_SpeakReplacesCurrent(t *testing.T) {
	voice := newGatedVoice()
	out := speech.NewOutput(voice)
	t.Cleanup(func() { _ = out.Close() })

	require.NoError(t, out.Speak("a", "first"))
	assert.Equal(t, "a", next(t, out.Events()).ID)

	require.NoError(t, out.Speak("b", "second"))
	assert.Equal(t, dictation.OutputEvent{Kind: dictation.OutputStarted, ID: "b"}, next(t, out.Events()))

	voice.release("second", nil)
	assert.Equal(t, dictation.OutputEvent{Kind: dictation.OutputFinished, ID: "b"}, next(t, out.Events()))
	assertQuiet(t, out.Events())
}

func TestOutput_Closed(t *testing.T) {
	out := speech.NewOutput(speech.Silent{})
	require.NoError(t, out.Close())

	require.ErrorIs(t, out.Speak("a", "hello"), dictation.ErrClosed)
}

func TestNoInput(t *testing.T) {
	in := speech.NewNoInput()

	err := in.StartListening("a", "en-US")
	require.ErrorIs(t, err, speech.ErrDisabled)
	assert.Equal(t, dictation.ErrorUnavailable, dictation.KindOf(err))
	require.NoError(t, in.StopListening())
	require.NoError(t, in.Destroy())
}

func TestSilent(t *testing.T) {
	out := speech.NewOutput(speech.Silent{})
	t.Cleanup(func() { _ = out.Close() })

	require.NoError(t, out.Speak("a", "hello"))
	assert.Equal(t, dictation.OutputStarted, next(t, out.Events()).Kind)
	assert.Equal(t, dictation.OutputFinished, next(t, out.Events()).Kind)
}
