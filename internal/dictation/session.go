package dictation

import (
	"fmt"

	"github.com/alkime/dictator/internal/instruction"
)

// Session is the transient working state for one authoring or dictation
// pass. Only the controller loop mutates it.
//
// Listening implies Phase == PhaseDictating and !Speaking.
type Session struct {
	Phase        Phase
	Instructions []instruction.Instruction

	// Working is the checked-out copy. It never aliases a stored value.
	Working instruction.Instruction
	Draft   string

	Index            int
	Countdown        int
	Counting         bool
	Listening        bool
	Speaking         bool
	VoiceUnavailable bool

	Notice string
	Busy   bool

	// saved is the working copy as last persisted, for DiscardEdits.
	saved instruction.Instruction
}

// CurrentStep returns the step at Index, if any.
func (s Session) CurrentStep() (instruction.Step, bool) {
	if s.Index < 0 || s.Index >= len(s.Working.Steps) {
		return instruction.Step{}, false
	}

	return s.Working.Steps[s.Index], true
}

// Tag identifies one entry into the step protocol. Epoch grows on every
// entry, so a repeat of the same index gets a fresh tag.
type Tag struct {
	Index int
	Epoch int
}

// ID is the utterance and listening-session identifier for the tag.
func (t Tag) ID() string {
	return fmt.Sprintf("step-%d-%d", t.Index, t.Epoch)
}
