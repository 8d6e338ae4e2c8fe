// Package instruction defines the authored instruction model: a titled,
// ordered list of steps, each with an optional spoken duration.
package instruction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTitle  = errors.New("title is required")
	ErrNoSteps     = errors.New("at least one step is required")
	ErrInvalidStep = errors.New("invalid step")
)

// Step is one spoken instruction unit. Duration is in whole seconds and
// zero means the step has no countdown.
type Step struct {
	Text     string `json:"text"               yaml:"text"`
	Duration int    `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Timed reports whether the step drives a countdown.
func (s Step) Timed() bool {
	return s.Duration > 0
}

// Instruction is a named, ordered collection of steps persisted by ID.
type Instruction struct {
	ID    string `json:"id"    yaml:"id,omitempty"`
	Title string `json:"title" yaml:"title"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Clone returns a deep copy so edits never alias the original's steps.
func (i Instruction) Clone() Instruction {
	out := i
	if i.Steps != nil {
		out.Steps = make([]Step, len(i.Steps))
		copy(out.Steps, i.Steps)
	}

	return out
}

// Validate checks the instruction can be saved.
func (i Instruction) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrEmptyTitle
	}

	if len(i.Steps) == 0 {
		return ErrNoSteps
	}

	for n, s := range i.Steps {
		switch {
		case strings.TrimSpace(s.Text) == "":
			return fmt.Errorf("%w: step %d has no text", ErrInvalidStep, n+1)
		case s.Duration < 0:
			return fmt.Errorf("%w: step %d has negative duration %d", ErrInvalidStep, n+1, s.Duration)
		}
	}

	return nil
}

// TotalDuration sums the durations of all timed steps, in seconds.
func (i Instruction) TotalDuration() int {
	total := 0
	for _, s := range i.Steps {
		if s.Timed() {
			total += s.Duration
		}
	}

	return total
}
