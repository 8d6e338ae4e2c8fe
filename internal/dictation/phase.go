package dictation

// Phase is a state of the session state machine.
type Phase int

const (
	// PhaseInstructionList shows saved instructions. It is the initial phase.
	PhaseInstructionList Phase = iota
	// PhaseCreating authors a new instruction.
	PhaseCreating
	// PhaseEditing revises the checked-out instruction.
	PhaseEditing
	// PhaseViewingChanges reviews the working copy.
	PhaseViewingChanges
	// PhaseReadyToDictate waits for the user to start dictation.
	PhaseReadyToDictate
	// PhaseDictating speaks steps and listens for commands.
	PhaseDictating
	// PhaseMissionAccomplished follows the last step.
	PhaseMissionAccomplished
)

// String returns the name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseInstructionList:
		return "InstructionList"
	case PhaseCreating:
		return "Creating"
	case PhaseEditing:
		return "Editing"
	case PhaseViewingChanges:
		return "ViewingChanges"
	case PhaseReadyToDictate:
		return "ReadyToDictate"
	case PhaseDictating:
		return "Dictating"
	case PhaseMissionAccomplished:
		return "MissionAccomplished"
	default:
		return "Unknown"
	}
}

// Authoring reports whether the phase edits the working copy.
func (p Phase) Authoring() bool {
	return p == PhaseCreating || p == PhaseEditing
}
