package dictation

import (
	"context"
	"errors"
	"fmt"

	"github.com/alkime/dictator/internal/instruction"
)

// Store is the instruction persistence the controller consults at list,
// create and edit boundaries.
type Store interface {
	LoadAll(ctx context.Context) ([]instruction.Instruction, error)
	Save(ctx context.Context, inst instruction.Instruction) error
	Delete(ctx context.Context, id string) error
}

// OutputEventKind is a speech output lifecycle event.
type OutputEventKind int

const (
	OutputStarted OutputEventKind = iota
	OutputProgress
	OutputFinished
	OutputFailed
)

func (k OutputEventKind) String() string {
	switch k {
	case OutputStarted:
		return "started"
	case OutputProgress:
		return "progress"
	case OutputFinished:
		return "finished"
	case OutputFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OutputEvent reports on the utterance with the given ID.
type OutputEvent struct {
	Kind OutputEventKind
	ID   string
	Err  error
}

// SpeechOutput speaks text. Speak returns once playback is queued and
// reports completion through Events. Stop must be safe to call at any time.
type SpeechOutput interface {
	Speak(id, text string) error
	Stop() error
	Events() <-chan OutputEvent
}

// ErrorKind classifies speech input failures.
type ErrorKind int

const (
	ErrorNoSpeech ErrorKind = iota
	ErrorTimeout
	ErrorBusy
	ErrorRecognitionFailed
	ErrorUnavailable
	ErrorPermission
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNoSpeech:
		return "no-speech"
	case ErrorTimeout:
		return "timeout"
	case ErrorBusy:
		return "busy"
	case ErrorRecognitionFailed:
		return "recognition-failed"
	case ErrorUnavailable:
		return "unavailable"
	case ErrorPermission:
		return "permission"
	default:
		return "unknown"
	}
}

// Transient reports whether recognition should simply be retried.
func (k ErrorKind) Transient() bool {
	switch k {
	case ErrorNoSpeech, ErrorTimeout, ErrorBusy, ErrorRecognitionFailed:
		return true
	default:
		return false
	}
}

// InputError is a classified speech input failure.
type InputError struct {
	Kind ErrorKind
	Err  error
}

func (e *InputError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}

	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Unclassified errors are treated as unavailable.
func KindOf(err error) ErrorKind {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Kind
	}

	return ErrorUnavailable
}

// InputEvent ends one listening session: either Results or Err is set.
type InputEvent struct {
	ID      string
	Results []string
	Err     error
}

// SpeechInput recognizes spoken phrases. Each StartListening produces at
// most one InputEvent, after which the recognizer is idle again.
// StopListening and Destroy must be safe to call at any time.
type SpeechInput interface {
	StartListening(id, locale string) error
	StopListening() error
	Destroy() error
	Events() <-chan InputEvent
}
