package dictation_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/instruction"
	"github.com/stretchr/testify/require"
)

type utterance struct {
	id   string
	text string
}

type fakeOutput struct {
	mu     sync.Mutex
	spoken []utterance
	stops  int
	err    error
	events chan dictation.OutputEvent
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{events: make(chan dictation.OutputEvent, 16)}
}

func (f *fakeOutput) Speak(id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.spoken = append(f.spoken, utterance{id: id, text: text})

	return f.err
}

func (f *fakeOutput) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++

	return nil
}

func (f *fakeOutput) Events() <-chan dictation.OutputEvent {
	return f.events
}

func (f *fakeOutput) last() utterance {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.spoken) == 0 {
		return utterance{}
	}

	return f.spoken[len(f.spoken)-1]
}

func (f *fakeOutput) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.spoken))
	for _, u := range f.spoken {
		out = append(out, u.text)
	}

	return out
}

func (f *fakeOutput) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stops
}

type listenCall struct {
	id     string
	locale string
}

type fakeInput struct {
	mu       sync.Mutex
	listens  []listenCall
	stops    int
	destroys int
	startErr error
	events   chan dictation.InputEvent

	// hold parks the next StartListening until released
	held    chan struct{}
	release chan struct{}
}

func newFakeInput() *fakeInput {
	return &fakeInput{events: make(chan dictation.InputEvent, 16)}
}

func (f *fakeInput) StartListening(id, locale string) error {
	f.mu.Lock()
	f.listens = append(f.listens, listenCall{id: id, locale: locale})
	held, release := f.held, f.release
	f.held, f.release = nil, nil
	err := f.startErr
	f.mu.Unlock()

	if held != nil {
		close(held)
		<-release
	}

	return err
}

// holdNextListen parks the controller loop inside the next StartListening.
// The first channel closes once the loop is parked; closing the second
// lets it continue.
func (f *fakeInput) holdNextListen() (held <-chan struct{}, release chan<- struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.held = make(chan struct{})
	f.release = make(chan struct{})

	return f.held, f.release
}

func (f *fakeInput) StopListening() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++

	return nil
}

func (f *fakeInput) Destroy() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.destroys++

	return nil
}

func (f *fakeInput) Events() <-chan dictation.InputEvent {
	return f.events
}

func (f *fakeInput) listenCalls() []listenCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]listenCall(nil), f.listens...)
}

func (f *fakeInput) stopCounts() (stops, destroys int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stops, f.destroys
}

type memStore struct {
	mu      sync.Mutex
	items   []instruction.Instruction
	saves   int
	saveErr error
	loadErr error
	gate    chan struct{}
}

func (m *memStore) wait(ctx context.Context) {
	if m.gate == nil {
		return
	}

	select {
	case <-m.gate:
	case <-ctx.Done():
	}
}

func (m *memStore) LoadAll(ctx context.Context) ([]instruction.Instruction, error) {
	m.wait(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loadErr != nil {
		return nil, m.loadErr
	}

	out := make([]instruction.Instruction, 0, len(m.items))
	for _, i := range m.items {
		out = append(out, i.Clone())
	}

	return out, nil
}

func (m *memStore) Save(ctx context.Context, inst instruction.Instruction) error {
	m.wait(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}

	for i := range m.items {
		if m.items[i].ID == inst.ID {
			m.items[i] = inst.Clone()
			return nil
		}
	}
	m.items = append(m.items, inst.Clone())

	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.wait(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.items[:0]
	for _, i := range m.items {
		if i.ID != id {
			kept = append(kept, i)
		}
	}
	m.items = kept

	return nil
}

func (m *memStore) all() []instruction.Instruction {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]instruction.Instruction(nil), m.items...)
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saves
}

func (m *memStore) setSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveErr = err
}

type harness struct {
	t     *testing.T
	ctx   context.Context
	ctrl  *dictation.Controller
	clock *dictation.ManualClock
	out   *fakeOutput
	in    *fakeInput
	store *memStore
}

const (
	testSettle = 300 * time.Millisecond
	testFinish = 15 * time.Second
	testRetry  = 2 * time.Second
)

func newHarness(t *testing.T, items ...instruction.Instruction) *harness {
	t.Helper()

	h := &harness{
		t:     t,
		clock: dictation.NewManualClock(),
		out:   newFakeOutput(),
		in:    newFakeInput(),
		store: &memStore{items: items},
	}

	ids := 0
	h.ctrl = dictation.New(h.store, h.out, h.in, dictation.Options{
		SettleDelay:   testSettle,
		FinishTimeout: testFinish,
		RetryDelay:    testRetry,
		Clock:         h.clock,
		NewID: func() string {
			ids++
			return "id-" + strconv.Itoa(ids)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	h.ctx = ctx

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.ctrl.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	h.waitIdle()

	return h
}

func (h *harness) snapshot() dictation.ViewState {
	h.t.Helper()

	vs, err := h.ctrl.Snapshot(h.ctx)
	require.NoError(h.t, err)

	return vs
}

// waitIdle waits for in-flight store calls to complete.
func (h *harness) waitIdle() {
	h.t.Helper()

	require.Eventually(h.t, func() bool {
		return !h.snapshot().Busy
	}, time.Second, 5*time.Millisecond)
}

func (h *harness) advance(d time.Duration) dictation.ViewState {
	h.t.Helper()

	h.clock.Advance(d)

	return h.snapshot()
}

func (h *harness) finishSpeech() dictation.ViewState {
	h.t.Helper()

	h.out.events <- dictation.OutputEvent{Kind: dictation.OutputFinished, ID: h.out.last().id}

	return h.snapshot()
}

func (h *harness) hear(phrases ...string) dictation.ViewState {
	h.t.Helper()

	calls := h.in.listenCalls()
	require.NotEmpty(h.t, calls, "nothing is listening")
	h.in.events <- dictation.InputEvent{ID: calls[len(calls)-1].id, Results: phrases}

	return h.snapshot()
}

// speakAndSettle finishes the current utterance and waits out the settle delay.
func (h *harness) speakAndSettle() dictation.ViewState {
	h.t.Helper()

	h.finishSpeech()

	return h.advance(testSettle)
}

func breathing() instruction.Instruction {
	return instruction.Instruction{
		ID:    "breathing",
		Title: "Breathing",
		Steps: []instruction.Step{{Text: "Breathe in", Duration: 5}, {Text: "Breathe out"}},
	}
}

func threeSteps() instruction.Instruction {
	return instruction.Instruction{
		ID:    "three",
		Title: "Three",
		Steps: []instruction.Step{{Text: "One"}, {Text: "Two"}, {Text: "Three"}},
	}
}

// dictate selects inst and starts dictation.
func (h *harness) dictate(id string) dictation.ViewState {
	h.t.Helper()

	require.NoError(h.t, h.ctrl.Select(h.ctx, id))
	require.NoError(h.t, h.ctrl.StartDictation(h.ctx))

	return h.snapshot()
}
