package dictation

import (
	"strings"

	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/pkg/collections"
)

// Action is a user operation the presentation layer can offer.
type Action int

const (
	ActionCreate Action = iota
	ActionSelect
	ActionDelete
	ActionRefresh
	ActionEditText
	ActionSave
	ActionDiscard
	ActionEdit
	ActionAccept
	ActionStart
	ActionReturn
	ActionNext
	ActionBack
	ActionRepeat
	ActionAbort
	ActionAcknowledge
)

var actionNames = [...]string{
	ActionCreate:      "create",
	ActionSelect:      "select",
	ActionDelete:      "delete",
	ActionRefresh:     "refresh",
	ActionEditText:    "edit-text",
	ActionSave:        "save",
	ActionDiscard:     "discard",
	ActionEdit:        "edit",
	ActionAccept:      "accept",
	ActionStart:       "start",
	ActionReturn:      "return",
	ActionNext:        "next",
	ActionBack:        "back",
	ActionRepeat:      "repeat",
	ActionAbort:       "abort",
	ActionAcknowledge: "acknowledge",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}

	return actionNames[a]
}

// Actions is a set of enabled actions.
type Actions uint32

func NewActions(as ...Action) Actions {
	var set Actions
	for _, a := range as {
		set |= 1 << a
	}

	return set
}

func (s Actions) Has(a Action) bool {
	return s&(1<<a) != 0
}

func (s Actions) String() string {
	var names []string
	for a := range Action(len(actionNames)) {
		if s.Has(a) {
			names = append(names, a.String())
		}
	}

	return strings.Join(names, ",")
}

// Summary is one row of the instruction list.
type Summary struct {
	ID       string
	Title    string
	Steps    int
	Duration int
}

// ViewState is everything the presentation layer renders.
type ViewState struct {
	Phase Phase

	Instructions []Summary

	InstructionID string
	Title         string
	Draft         string
	Steps         []instruction.Step

	StepIndex int
	StepTotal int
	StepText  string

	// Countdown is the remaining seconds of a timed step, out of
	// CountdownTotal. Counting is set once the countdown is running.
	Countdown      int
	CountdownTotal int
	Counting       bool

	Listening        bool
	Speaking         bool
	VoiceUnavailable bool

	Notice string
	Busy   bool

	Actions Actions
}

// Project derives the view-state from a session. It has no side effects.
func Project(s Session) ViewState {
	vs := ViewState{
		Phase: s.Phase,
		Instructions: collections.Apply(s.Instructions, func(i instruction.Instruction) Summary {
			return Summary{ID: i.ID, Title: i.Title, Steps: len(i.Steps), Duration: i.TotalDuration()}
		}),
		InstructionID:    s.Working.ID,
		Title:            s.Working.Title,
		Draft:            s.Draft,
		Steps:            s.Working.Clone().Steps,
		StepIndex:        s.Index,
		StepTotal:        len(s.Working.Steps),
		Listening:        s.Listening,
		Speaking:         s.Speaking,
		VoiceUnavailable: s.VoiceUnavailable,
		Notice:           s.Notice,
		Busy:             s.Busy,
		Actions:          enabledActions(s),
	}

	if step, ok := s.CurrentStep(); ok {
		vs.StepText = step.Text
		if step.Timed() {
			vs.CountdownTotal = step.Duration
			vs.Countdown = step.Duration
		}
	}

	if s.Counting {
		vs.Countdown = s.Countdown
		vs.Counting = true
	}

	return vs
}

func enabledActions(s Session) Actions {
	switch s.Phase {
	case PhaseInstructionList:
		set := NewActions(ActionCreate)
		if len(s.Instructions) > 0 {
			set |= NewActions(ActionSelect)
			if !s.Busy {
				set |= NewActions(ActionDelete)
			}
		}
		if !s.Busy {
			set |= NewActions(ActionRefresh)
		}

		return set
	case PhaseCreating, PhaseEditing:
		set := NewActions(ActionEditText, ActionDiscard)
		if !s.Busy && s.Working.Validate() == nil {
			set |= NewActions(ActionSave)
		}

		return set
	case PhaseViewingChanges:
		set := NewActions(ActionEdit, ActionAccept, ActionReturn)
		if len(s.Working.Steps) > 0 {
			set |= NewActions(ActionStart)
		}

		return set
	case PhaseReadyToDictate:
		set := NewActions(ActionReturn)
		if len(s.Working.Steps) > 0 {
			set |= NewActions(ActionStart)
		}

		return set
	case PhaseDictating:
		// back stays enabled at index 0 because it re-speaks the first step
		return NewActions(ActionNext, ActionBack, ActionRepeat, ActionAbort)
	case PhaseMissionAccomplished:
		return NewActions(ActionAcknowledge)
	default:
		return 0
	}
}
