package phases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alkime/dictator/internal/dictation"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// titleController implements only the operations these tests drive.
type titleController struct {
	Controller

	mu     sync.Mutex
	titles []string
	err    error
}

func (c *titleController) SetTitle(_ context.Context, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.titles = append(c.titles, title)
	return c.err
}

func (c *titleController) Snapshot(context.Context) (dictation.ViewState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return dictation.ViewState{Phase: dictation.PhaseCreating, Title: c.titles[len(c.titles)-1]}, nil
}

func TestOps_Order(t *testing.T) {
	ctl := &titleController{}
	ops := NewOps(t.Context(), ctl)

	var cmds []tea.Cmd
	for i := range 20 {
		title := fmt.Sprintf("t%d", i)
		cmds = append(cmds, ops.Do("set-title", func(ctx context.Context) error { return ctl.SetTitle(ctx, title) }))
	}

	// Waiting in reverse must not change the order the operations ran in.
	for i := len(cmds) - 1; i >= 0; i-- {
		msg, ok := cmds[i]().(OpDoneMsg)
		require.True(t, ok)
		require.NoError(t, msg.Err)
	}

	want := make([]string, 20)
	for i := range want {
		want[i] = fmt.Sprintf("t%d", i)
	}
	assert.Equal(t, want, ctl.titles)
}

func TestOps_DoAndResync(t *testing.T) {
	ctl := &titleController{}
	ops := NewOps(t.Context(), ctl)

	msg := ops.DoAndResync("set-title", func(ctx context.Context) error { return ctl.SetTitle(ctx, "Yoga") })()

	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok, "expected a batch, got %T", msg)
	require.Len(t, batch, 2)

	view, ok := batch[0]().(ViewMsg)
	require.True(t, ok)
	assert.True(t, view.Resync)
	assert.Equal(t, "Yoga", view.State.Title)

	done, ok := batch[1]().(OpDoneMsg)
	require.True(t, ok)
	assert.Equal(t, "set-title", done.Op)
	assert.NoError(t, done.Err)
}

func TestOps_DoAndResyncError(t *testing.T) {
	boom := errors.New("boom")
	ctl := &titleController{err: boom}
	ops := NewOps(t.Context(), ctl)

	msg := ops.DoAndResync("set-title", func(ctx context.Context) error { return ctl.SetTitle(ctx, "Yoga") })()

	done, ok := msg.(OpDoneMsg)
	require.True(t, ok, "failed operations do not resync")
	assert.ErrorIs(t, done.Err, boom)
}

func TestOps_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ops := NewOps(ctx, &titleController{})
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	msg := ops.Do("blocked", func(context.Context) error { <-block; return nil })()

	done, ok := msg.(OpDoneMsg)
	require.True(t, ok)
	assert.ErrorIs(t, done.Err, context.Canceled)
}

func TestOps_TooManyPending(t *testing.T) {
	ops := NewOps(t.Context(), &titleController{})

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	var last tea.Cmd
	for range cap(ops.queue) + 2 {
		last = ops.Do("blocked", func(context.Context) error { <-block; return nil })
	}

	done, ok := last().(OpDoneMsg)
	require.True(t, ok)
	assert.ErrorIs(t, done.Err, ErrTooManyPending)
}
