package dictation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/pkg/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_InitialState(t *testing.T) {
	h := newHarness(t, breathing(), threeSteps())

	vs := h.snapshot()
	assert.Equal(t, dictation.PhaseInstructionList, vs.Phase)
	require.Len(t, vs.Instructions, 2)
	assert.Equal(t, dictation.Summary{ID: "breathing", Title: "Breathing", Steps: 2, Duration: 5}, vs.Instructions[0])
	assert.True(t, vs.Actions.Has(dictation.ActionCreate))
	assert.True(t, vs.Actions.Has(dictation.ActionSelect))
}

func TestController_Create(t *testing.T) {
	h := newHarness(t)
	ctx := h.ctx

	require.NoError(t, h.ctrl.Create(ctx))
	assert.Equal(t, dictation.PhaseCreating, h.snapshot().Phase)

	t.Run("validation rejects without store call", func(t *testing.T) {
		assert.ErrorIs(t, h.ctrl.FinishAuthoring(ctx), dictation.ErrEmptyTitle)

		require.NoError(t, h.ctrl.SetTitle(ctx, "Morning"))
		assert.ErrorIs(t, h.ctrl.FinishAuthoring(ctx), dictation.ErrNoSteps)

		require.NoError(t, h.ctrl.AddStep(ctx, "   "))
		require.NoError(t, h.ctrl.AddStep(ctx, "(5)"))
		assert.ErrorIs(t, h.ctrl.FinishAuthoring(ctx), dictation.ErrNoSteps)

		assert.Equal(t, 0, h.store.saveCount())
		assert.Equal(t, dictation.PhaseCreating, h.snapshot().Phase)
	})

	t.Run("draft is parsed live", func(t *testing.T) {
		require.NoError(t, h.ctrl.SetDraft(ctx, "Stretch (30)\nBreathe\n"))
		require.NoError(t, h.ctrl.AddStep(ctx, "Relax  (5)"))

		vs := h.snapshot()
		assert.Equal(t, "Stretch (30)\nBreathe\nRelax  (5)", vs.Draft)
		assert.Equal(t, []instruction.Step{
			{Text: "Stretch", Duration: 30},
			{Text: "Breathe"},
			{Text: "Relax", Duration: 5},
		}, vs.Steps)
		assert.True(t, vs.Actions.Has(dictation.ActionSave))
	})

	t.Run("finish saves and shows the instruction", func(t *testing.T) {
		require.NoError(t, h.ctrl.FinishAuthoring(ctx))

		vs := h.snapshot()
		assert.Equal(t, dictation.PhaseViewingChanges, vs.Phase)
		assert.Equal(t, "id-1", vs.InstructionID)
		assert.Equal(t, "Morning", vs.Title)

		items := h.store.all()
		require.Len(t, items, 1)
		assert.Equal(t, "id-1", items[0].ID)
		assert.Len(t, items[0].Steps, 3)
	})

	t.Run("authoring ops are rejected outside authoring", func(t *testing.T) {
		assert.ErrorIs(t, h.ctrl.SetTitle(ctx, "x"), dictation.ErrInvalidPhase)
		assert.ErrorIs(t, h.ctrl.AddStep(ctx, "x"), dictation.ErrInvalidPhase)
		assert.ErrorIs(t, h.ctrl.SaveEdits(ctx), dictation.ErrInvalidPhase)
	})
}

func TestController_EditAndDiscard(t *testing.T) {
	h := newHarness(t, breathing())
	ctx := h.ctx

	require.NoError(t, h.ctrl.Select(ctx, "breathing"))
	require.NoError(t, h.ctrl.StartEditing(ctx))

	vs := h.snapshot()
	assert.Equal(t, dictation.PhaseEditing, vs.Phase)
	assert.Equal(t, "Breathe in (5)\nBreathe out", vs.Draft)

	require.NoError(t, h.ctrl.SetTitle(ctx, "Changed"))
	require.NoError(t, h.ctrl.SetDraft(ctx, "Only one"))
	require.NoError(t, h.ctrl.DiscardEdits(ctx))

	vs = h.snapshot()
	assert.Equal(t, dictation.PhaseViewingChanges, vs.Phase)
	assert.Equal(t, "Breathing", vs.Title)
	assert.Equal(t, breathing().Steps, vs.Steps)
	assert.Equal(t, 0, h.store.saveCount())
}

func TestController_SaveEdits(t *testing.T) {
	h := newHarness(t, breathing())
	ctx := h.ctx

	require.NoError(t, h.ctrl.Select(ctx, "breathing"))
	require.NoError(t, h.ctrl.StartEditing(ctx))
	require.NoError(t, h.ctrl.AddStep(ctx, "Hold (3)"))
	require.NoError(t, h.ctrl.SaveEdits(ctx))

	vs := h.snapshot()
	assert.Equal(t, dictation.PhaseViewingChanges, vs.Phase)
	assert.Equal(t, 3, vs.StepTotal)

	items := h.store.all()
	require.Len(t, items, 1, "save upserts by id")
	assert.Equal(t, instruction.Step{Text: "Hold", Duration: 3}, items[0].Steps[2])

	// discarding after a save reverts to the saved copy, not the original
	require.NoError(t, h.ctrl.StartEditing(ctx))
	require.NoError(t, h.ctrl.SetDraft(ctx, "x"))
	require.NoError(t, h.ctrl.DiscardEdits(ctx))
	assert.Equal(t, 3, h.snapshot().StepTotal)
}

func TestController_EditRoundTripKeepsLiteralText(t *testing.T) {
	waiting := instruction.Instruction{
		ID:    "waiting",
		Title: "Waiting",
		Steps: []instruction.Step{{Text: "Wait (5)"}, {Text: "Go", Duration: 2}},
	}
	h := newHarness(t, waiting)
	ctx := h.ctx

	require.NoError(t, h.ctrl.Select(ctx, "waiting"))
	require.NoError(t, h.ctrl.StartEditing(ctx))

	draft := h.snapshot().Draft
	assert.Equal(t, "Wait (5) (0)\nGo (2)", draft)

	require.NoError(t, h.ctrl.SetDraft(ctx, draft))
	require.NoError(t, h.ctrl.SaveEdits(ctx))

	items := h.store.all()
	require.Len(t, items, 1)
	assert.Equal(t, waiting.Steps, items[0].Steps)
}

func TestController_StoreFailureKeepsWorkingCopy(t *testing.T) {
	h := newHarness(t)
	ctx := h.ctx
	h.store.setSaveErr(errors.New("disk full"))

	require.NoError(t, h.ctrl.Create(ctx))
	require.NoError(t, h.ctrl.SetTitle(ctx, "Keep me"))
	require.NoError(t, h.ctrl.SetDraft(ctx, "Step one"))

	err := h.ctrl.FinishAuthoring(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")

	vs := h.snapshot()
	assert.Equal(t, dictation.PhaseCreating, vs.Phase)
	assert.Equal(t, "Keep me", vs.Title)
	assert.Equal(t, "Step one", vs.Draft)
	assert.Contains(t, vs.Notice, "disk full")

	h.store.setSaveErr(nil)
	require.NoError(t, h.ctrl.FinishAuthoring(ctx))

	vs = h.snapshot()
	assert.Equal(t, dictation.PhaseViewingChanges, vs.Phase)
	assert.Empty(t, vs.Notice)
}

func TestController_SelectUnknown(t *testing.T) {
	h := newHarness(t, breathing())

	assert.ErrorIs(t, h.ctrl.Select(h.ctx, "nope"), dictation.ErrUnknownInstruction)
	assert.Equal(t, dictation.PhaseInstructionList, h.snapshot().Phase)
}

func TestController_SelectIsACopy(t *testing.T) {
	h := newHarness(t, breathing())
	ctx := h.ctx

	require.NoError(t, h.ctrl.Select(ctx, "breathing"))
	require.NoError(t, h.ctrl.StartEditing(ctx))
	require.NoError(t, h.ctrl.SetDraft(ctx, "Different"))
	require.NoError(t, h.ctrl.DiscardEdits(ctx))
	require.NoError(t, h.ctrl.ReturnToList(ctx))

	vs := h.snapshot()
	assert.Equal(t, dictation.PhaseInstructionList, vs.Phase)
	assert.Equal(t, 2, vs.Instructions[0].Steps)
}

func TestController_DeleteAndRefresh(t *testing.T) {
	h := newHarness(t, breathing(), threeSteps())
	ctx := h.ctx

	require.NoError(t, h.ctrl.DeleteInstruction(ctx, "breathing"))

	vs := h.snapshot()
	require.Len(t, vs.Instructions, 1)
	assert.Equal(t, "three", vs.Instructions[0].ID)

	h.store.mu.Lock()
	h.store.items = append(h.store.items, breathing())
	h.store.mu.Unlock()

	require.NoError(t, h.ctrl.Refresh(ctx))
	assert.Len(t, h.snapshot().Instructions, 2)
}

func TestController_Busy(t *testing.T) {
	h := newHarness(t)
	ctx := h.ctx

	h.store.gate = make(chan struct{})

	saved := make(chan error, 1)
	require.NoError(t, h.ctrl.Create(ctx))
	require.NoError(t, h.ctrl.SetTitle(ctx, "Slow"))
	require.NoError(t, h.ctrl.SetDraft(ctx, "a"))
	go func() { saved <- h.ctrl.FinishAuthoring(ctx) }()

	require.Eventually(t, func() bool { return h.snapshot().Busy }, time.Second, 5*time.Millisecond)

	vs := h.snapshot()
	assert.False(t, vs.Actions.Has(dictation.ActionSave))
	assert.ErrorIs(t, h.ctrl.SaveEdits(ctx), dictation.ErrBusy)

	// the loop keeps serving while the store is slow
	require.NoError(t, h.ctrl.SetTitle(ctx, "Slow"))

	close(h.store.gate)
	require.NoError(t, <-saved)
	assert.Equal(t, dictation.PhaseViewingChanges, h.snapshot().Phase)
}

func TestController_ReadyAndReturn(t *testing.T) {
	h := newHarness(t, breathing())
	ctx := h.ctx

	require.NoError(t, h.ctrl.Select(ctx, "breathing"))
	require.NoError(t, h.ctrl.AcceptInstruction(ctx))
	assert.Equal(t, dictation.PhaseReadyToDictate, h.snapshot().Phase)
	assert.ErrorIs(t, h.ctrl.StartEditing(ctx), dictation.ErrInvalidPhase)

	require.NoError(t, h.ctrl.ReturnToList(ctx))

	vs := h.snapshot()
	assert.Equal(t, dictation.PhaseInstructionList, vs.Phase)
	assert.Empty(t, vs.Title)
}

func TestController_InvalidPhase(t *testing.T) {
	h := newHarness(t)
	ctx := h.ctx

	for name, op := range map[string]func() error{
		"next":        func() error { return h.ctrl.Next(ctx) },
		"back":        func() error { return h.ctrl.Back(ctx) },
		"repeat":      func() error { return h.ctrl.Repeat(ctx) },
		"abort":       func() error { return h.ctrl.Abort(ctx) },
		"start":       func() error { return h.ctrl.StartDictation(ctx) },
		"acknowledge": func() error { return h.ctrl.AcknowledgeCompletion(ctx) },
		"discard":     func() error { return h.ctrl.DiscardEdits(ctx) },
		"edit":        func() error { return h.ctrl.StartEditing(ctx) },
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), dictation.ErrInvalidPhase)
		})
	}

	assert.Equal(t, dictation.PhaseInstructionList, h.snapshot().Phase)
}

func TestController_Closed(t *testing.T) {
	ctrl := dictation.New(&memStore{}, newFakeOutput(), newFakeInput(), dictation.Options{Clock: dictation.NewManualClock()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	_, err := ctrl.Snapshot(ctx)
	require.NoError(t, err)

	cancel()
	require.NoError(t, <-done)

	assert.ErrorIs(t, ctrl.Create(context.Background()), dictation.ErrClosed)
	assert.Error(t, ctrl.Run(context.Background()), "run twice")
}

func TestController_Subscribe(t *testing.T) {
	ctrl := dictation.New(&memStore{items: []instruction.Instruction{breathing()}},
		newFakeOutput(), newFakeInput(), dictation.Options{Clock: dictation.NewManualClock()})

	views := make(chan dictation.ViewState, 16)
	require.NoError(t, ctrl.Subscribe(views, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = ctrl.Run(ctx) }()

	require.Eventually(t, func() bool {
		for _, vs := range channels.Drain(views) {
			if len(vs.Instructions) == 1 {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, ctrl.Create(ctx))
	require.Eventually(t, func() bool {
		for _, vs := range channels.Drain(views) {
			if vs.Phase == dictation.PhaseCreating {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}
