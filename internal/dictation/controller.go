// Package dictation implements the session controller: the phase state
// machine for authoring instructions and the protocol that sequences speech
// output, speech input and countdown timers while an instruction is dictated.
//
// All session state is owned by the goroutine running Controller.Run.
// Operations called from other goroutines are posted to that loop and wait
// for its reply. Speech port events, timer firings and store completions are
// delivered to the same loop, so nothing needs locking.
package dictation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/alkime/dictator/pkg/channels"
)

// request is an operation to run on the loop. fn must call done exactly
// once, either immediately or later from another loop event.
type request struct {
	name  string
	fn    func(done func(error))
	reply chan error
	// query requests only read the session
	query bool
	// navigate requests replace the current step; callbacks already
	// queued for it are dropped
	navigate bool
}

// Controller drives one dictation session at a time.
type Controller struct {
	store  Store
	output SpeechOutput
	input  SpeechInput
	opts   Options
	clock  Clock
	logger *slog.Logger

	requests chan request
	inbox    chan func()
	stopped  chan struct{}
	started  atomic.Bool

	broadcaster *channels.Broadcaster[ViewState]
	views       chan<- ViewState

	// loop-owned state
	ctx         context.Context
	inputClosed bool
	sess        Session
	step        stepRuntime
	published   ViewState
}

// New creates a controller. Call Subscribe before Run to receive view-states.
func New(store Store, output SpeechOutput, input SpeechInput, opts Options) *Controller {
	opts = opts.withDefaults()

	c := &Controller{
		store:       store,
		output:      output,
		input:       input,
		opts:        opts,
		clock:       opts.Clock,
		logger:      opts.Logger.With("component", "dictation"),
		requests:    make(chan request),
		inbox:       make(chan func(), 64),
		stopped:     make(chan struct{}),
		broadcaster: channels.NewBroadcaster[ViewState](),
	}
	c.sess.Phase = PhaseInstructionList

	return c
}

// Subscribe registers ch for view-state updates. A send that cannot be
// delivered within timeout is dropped. Must be called before Run.
func (c *Controller) Subscribe(ch chan<- ViewState, timeout time.Duration) error {
	return c.broadcaster.Subscribe(ch, channels.WithSendTimeout(timeout))
}

// Run owns the session until ctx is cancelled. It loads the instruction
// list on start and tears down the speech ports on exit.
func (c *Controller) Run(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("controller already running")
	}
	defer close(c.stopped)

	views, err := c.broadcaster.Run(ctx)
	if err != nil && !errors.Is(err, channels.ErrNoSubscribers) {
		return fmt.Errorf("starting view broadcaster: %w", err)
	}
	c.views = views
	c.ctx = ctx

	outputEvents := c.output.Events()
	inputEvents := c.input.Events()

	c.logger.Debug("controller started")
	c.loadList(func(error) {})
	c.publish()

	for {
		// a waiting request goes before queued events so callbacks it
		// supersedes are dropped rather than applied first
		select {
		case req := <-c.requests:
			c.handleRequest(req, &outputEvents, &inputEvents)
			c.publish()

			continue
		default:
		}

		select {
		case <-ctx.Done():
			c.teardown()
			c.logger.Debug("controller stopped")
			return nil

		case fn := <-c.inbox:
			fn()

		case ev, ok := <-outputEvents:
			if !ok {
				outputEvents = nil
				continue
			}
			c.handleOutputEvent(ev)

		case ev, ok := <-inputEvents:
			if !ok {
				inputEvents = nil
				c.inputClosed = true
				c.voiceUnavailable("speech input closed")
				break
			}
			c.handleInputEvent(ev)

		case req := <-c.requests:
			c.handleRequest(req, &outputEvents, &inputEvents)
		}

		c.publish()
	}
}

func (c *Controller) handleRequest(req request, outputEvents *<-chan OutputEvent, inputEvents *<-chan InputEvent) {
	if req.navigate && c.sess.Phase == PhaseDictating {
		c.step.superseded = c.step.tag
	}

	c.drainPending(outputEvents, inputEvents)
	if !req.query {
		c.sess.Notice = ""
		c.logger.Debug("operation", "name", req.name, "phase", c.sess.Phase)
	}
	req.fn(func(err error) { req.reply <- err })
}

// drainPending handles every event already queued, so an operation always
// observes the effects of events delivered before it was submitted.
func (c *Controller) drainPending(outputEvents *<-chan OutputEvent, inputEvents *<-chan InputEvent) {
	for {
		select {
		case fn := <-c.inbox:
			fn()
		case ev, ok := <-*outputEvents:
			if !ok {
				*outputEvents = nil
				continue
			}
			c.handleOutputEvent(ev)
		case ev, ok := <-*inputEvents:
			if !ok {
				*inputEvents = nil
				c.inputClosed = true
				c.voiceUnavailable("speech input closed")
				continue
			}
			c.handleInputEvent(ev)
		default:
			return
		}
	}
}

// submit runs fn on the loop and waits for its reply.
func (c *Controller) submit(ctx context.Context, name string, fn func(done func(error))) error {
	return c.send(ctx, request{name: name, fn: fn, reply: make(chan error, 1)})
}

func (c *Controller) send(ctx context.Context, req request) error {
	select {
	case c.requests <- req:
	case <-c.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-c.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// do runs a synchronous operation on the loop.
func (c *Controller) do(ctx context.Context, name string, fn func() error) error {
	return c.submit(ctx, name, func(done func(error)) {
		done(fn())
	})
}

// post queues fn to run on the loop. Safe from any goroutine.
func (c *Controller) post(fn func()) {
	select {
	case c.inbox <- fn:
	case <-c.stopped:
	}
}

// after schedules fn on the loop, dropping it if the step tag has moved on
// or a navigation request has superseded it.
func (c *Controller) after(d time.Duration, tag Tag, fn func()) Timer {
	return c.clock.AfterFunc(d, func() {
		c.post(func() {
			if tag != c.step.tag || tag == c.step.superseded {
				return
			}
			fn()
		})
	})
}

func (c *Controller) publish() {
	vs := Project(c.sess)
	if reflect.DeepEqual(vs, c.published) {
		return
	}
	c.published = vs

	if c.views == nil {
		return
	}

	if err := channels.SendWithTimeout(c.views, vs, c.opts.PublishTimeout); err != nil {
		c.logger.Debug("dropped view-state", "error", err, "phase", vs.Phase)
	}
}

// Snapshot returns the current view-state.
func (c *Controller) Snapshot(ctx context.Context) (ViewState, error) {
	var vs ViewState
	err := c.send(ctx, request{
		name:  "snapshot",
		query: true,
		reply: make(chan error, 1),
		fn: func(done func(error)) {
			vs = Project(c.sess)
			done(nil)
		},
	})

	return vs, err
}

// require returns ErrInvalidPhase unless the session is in one of phases.
func (c *Controller) require(phases ...Phase) error {
	for _, p := range phases {
		if c.sess.Phase == p {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrInvalidPhase, c.sess.Phase)
}

// storeCall runs call off the loop and delivers its result to then on the
// loop. At most one store call is in flight.
func (c *Controller) storeCall(name string, call func(ctx context.Context) error, then func(error)) error {
	if c.sess.Busy {
		return ErrBusy
	}
	c.sess.Busy = true

	ctx := c.ctx
	go func() {
		err := call(ctx)
		c.post(func() {
			c.sess.Busy = false
			if err != nil {
				err = fmt.Errorf("%s: %w", name, err)
				c.logger.Error("store call failed", "op", name, "error", err)
			}
			then(err)
		})
	}()

	return nil
}

// teardown releases everything the session holds on loop exit.
func (c *Controller) teardown() {
	c.stopStep()
	c.stopOutput()
	c.sess.Speaking = false

	c.broadcaster.Wait()
	for _, st := range c.broadcaster.Stats() {
		if st.Dropped > 0 || st.Closed {
			c.logger.Debug("view subscriber lost updates",
				"subscriber", st.Name, "dropped", st.Dropped, "closed", st.Closed)
		}
	}
}
