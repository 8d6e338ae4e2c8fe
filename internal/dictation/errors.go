package dictation

import (
	"errors"

	"github.com/alkime/dictator/internal/instruction"
)

var (
	// ErrInvalidPhase is returned for an operation the current phase does not allow.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")
	// ErrEmptyTitle rejects saving an instruction without a title.
	ErrEmptyTitle = instruction.ErrEmptyTitle
	// ErrNoSteps rejects saving or dictating an instruction without steps.
	ErrNoSteps = instruction.ErrNoSteps
	// ErrInvalidStep rejects saving a blank step or a negative duration.
	ErrInvalidStep = instruction.ErrInvalidStep
	// ErrUnknownInstruction is returned when selecting an id not in the loaded list.
	ErrUnknownInstruction = errors.New("unknown instruction")
	// ErrBusy is returned while another store call is in flight.
	ErrBusy = errors.New("store operation in progress")
	// ErrClosed is returned once the controller loop has exited.
	ErrClosed = errors.New("controller closed")
)
