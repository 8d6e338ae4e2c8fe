// Package phases implements one screen per dictation phase. Screens render
// the controller's view-state and turn key presses into controller
// operations.
package phases

import (
	"context"
	"errors"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/pkg/channels"
	tea "github.com/charmbracelet/bubbletea"
)

// Controller is the part of the dictation controller the screens drive.
type Controller interface {
	Create(ctx context.Context) error
	Select(ctx context.Context, id string) error
	SetTitle(ctx context.Context, title string) error
	SetDraft(ctx context.Context, text string) error
	AddStep(ctx context.Context, text string) error
	FinishAuthoring(ctx context.Context) error
	SaveEdits(ctx context.Context) error
	DiscardEdits(ctx context.Context) error
	StartEditing(ctx context.Context) error
	AcceptInstruction(ctx context.Context) error
	ReturnToList(ctx context.Context) error
	DeleteInstruction(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	StartDictation(ctx context.Context) error
	Next(ctx context.Context) error
	Back(ctx context.Context) error
	Repeat(ctx context.Context) error
	Abort(ctx context.Context) error
	AcknowledgeCompletion(ctx context.Context) error
	Snapshot(ctx context.Context) (dictation.ViewState, error)
}

var _ Controller = (*dictation.Controller)(nil)

// ErrTooManyPending is reported when key presses outrun the controller.
var ErrTooManyPending = errors.New("too many pending operations")

// ViewMsg carries a view-state to the current screen. Resync asks screens
// holding local edits to reload them from the state.
type ViewMsg struct {
	State  dictation.ViewState
	Resync bool
}

// OpDoneMsg reports the result of a controller operation.
type OpDoneMsg struct {
	Op  string
	Err error
}

// Ops runs controller operations one at a time, in the order the screens
// issued them.
type Ops struct {
	ctx   context.Context
	ctl   Controller
	queue chan func()
}

// NewOps starts the operation worker; it stops with ctx.
func NewOps(ctx context.Context, ctl Controller) *Ops {
	o := &Ops{ctx: ctx, ctl: ctl, queue: make(chan func(), 64)}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case fn := <-o.queue:
				fn()
			}
		}
	}()

	return o
}

// Controller returns the driven controller.
func (o *Ops) Controller() Controller {
	return o.ctl
}

// Do queues fn immediately and returns a command that waits for its result.
func (o *Ops) Do(op string, fn func(ctx context.Context) error) tea.Cmd {
	done := make(chan error, 1)

	if err := channels.SendNonBlock(o.queue, func() { done <- fn(o.ctx) }); err != nil {
		return func() tea.Msg { return OpDoneMsg{Op: op, Err: ErrTooManyPending} }
	}

	return func() tea.Msg {
		select {
		case err := <-done:
			return OpDoneMsg{Op: op, Err: err}
		case <-o.ctx.Done():
			return OpDoneMsg{Op: op, Err: o.ctx.Err()}
		}
	}
}

// DoAndResync is Do followed by a snapshot delivered as a resyncing ViewMsg.
func (o *Ops) DoAndResync(op string, fn func(ctx context.Context) error) tea.Cmd {
	var vs dictation.ViewState

	wait := o.Do(op, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}

		var err error
		vs, err = o.ctl.Snapshot(ctx)
		return err
	})

	return func() tea.Msg {
		msg := wait()
		if done, ok := msg.(OpDoneMsg); ok && done.Err == nil {
			return tea.BatchMsg{
				func() tea.Msg { return ViewMsg{State: vs, Resync: true} },
				func() tea.Msg { return done },
			}
		}

		return msg
	}
}

// Snapshot fetches the current view-state.
func (o *Ops) Snapshot() tea.Cmd {
	return func() tea.Msg {
		vs, err := o.ctl.Snapshot(o.ctx)
		if err != nil {
			return OpDoneMsg{Op: "snapshot", Err: err}
		}

		return ViewMsg{State: vs}
	}
}
