package dictation

import "context"

// stepRuntime holds the handles of the step currently being dictated.
type stepRuntime struct {
	tag   Tag
	epoch int
	// superseded is the tag a pending navigation request is replacing
	superseded Tag

	finish    Timer
	settle    Timer
	retry     Timer
	countdown Timer
}

// StartDictation speaks the first step.
func (c *Controller) StartDictation(ctx context.Context) error {
	return c.do(ctx, "start-dictation", func() error {
		if err := c.require(PhaseViewingChanges, PhaseReadyToDictate); err != nil {
			return err
		}

		if len(c.sess.Working.Steps) == 0 {
			return ErrNoSteps
		}

		c.sess.Phase = PhaseDictating
		c.sess.VoiceUnavailable = c.inputClosed
		c.enterStep(0)

		return nil
	})
}

// Next advances to the following step, or completes after the last one.
func (c *Controller) Next(ctx context.Context) error {
	return c.navigate(ctx, "next", c.next)
}

// Back returns to the previous step. On the first step it re-speaks it.
func (c *Controller) Back(ctx context.Context) error {
	return c.navigate(ctx, "back", c.back)
}

// Repeat re-speaks the current step.
func (c *Controller) Repeat(ctx context.Context) error {
	return c.navigate(ctx, "repeat", c.repeat)
}

// Abort stops dictation and returns to the instruction list.
func (c *Controller) Abort(ctx context.Context) error {
	return c.navigate(ctx, "abort", c.abort)
}

// AcknowledgeCompletion returns to the instruction list after the last step.
func (c *Controller) AcknowledgeCompletion(ctx context.Context) error {
	return c.do(ctx, "acknowledge-completion", func() error {
		if err := c.require(PhaseMissionAccomplished); err != nil {
			return err
		}

		c.stopStep()
		c.stopOutput()
		c.sess.Speaking = false
		c.toList()

		return nil
	})
}

// navigate runs a step-changing operation. Step callbacks queued before it
// are dropped, so an expiring countdown and a manual Next advance once.
func (c *Controller) navigate(ctx context.Context, name string, fn func()) error {
	op := c.dictating(fn)

	return c.send(ctx, request{
		name:     name,
		navigate: true,
		reply:    make(chan error, 1),
		fn:       func(done func(error)) { done(op()) },
	})
}

func (c *Controller) dictating(fn func()) func() error {
	return func() error {
		if err := c.require(PhaseDictating); err != nil {
			return err
		}
		fn()

		return nil
	}
}

func (c *Controller) next() {
	if c.sess.Index+1 < len(c.sess.Working.Steps) {
		c.enterStep(c.sess.Index + 1)
		return
	}

	c.complete()
}

func (c *Controller) back() {
	if c.sess.Index > 0 {
		c.enterStep(c.sess.Index - 1)
		return
	}

	c.enterStep(0)
}

func (c *Controller) repeat() {
	c.enterStep(c.sess.Index)
}

func (c *Controller) abort() {
	c.stopStep()
	c.stopOutput()
	c.sess.Speaking = false
	c.toList()
}

func (c *Controller) apply(cmd Command) {
	c.logger.Info("voice command", "command", cmd, "index", c.sess.Index)

	switch cmd {
	case CommandNext:
		c.next()
	case CommandBack:
		c.back()
	case CommandRepeat:
		c.repeat()
	case CommandExit:
		c.abort()
	case CommandNone:
	}
}

// enterStep runs the step protocol: release everything held for the
// previous step, then speak this one under a fresh tag. Listening and the
// countdown start once the utterance has finished and settled.
func (c *Controller) enterStep(index int) {
	c.stopStep()
	c.stopOutput()

	c.sess.Index = index
	tag := c.nextTag(index)

	step, _ := c.sess.CurrentStep()
	c.speak(tag, step.Text)
}

// complete leaves Dictating and speaks the completion phrase.
func (c *Controller) complete() {
	c.stopStep()
	c.stopOutput()

	c.sess.Phase = PhaseMissionAccomplished
	c.sess.Index = len(c.sess.Working.Steps)
	tag := c.nextTag(c.sess.Index)

	c.speak(tag, c.opts.CompletionPhrase)
}

func (c *Controller) nextTag(index int) Tag {
	c.step.epoch++
	c.step.tag = Tag{Index: index, Epoch: c.step.epoch}

	return c.step.tag
}

func (c *Controller) speak(tag Tag, text string) {
	c.sess.Speaking = true

	if err := c.output.Speak(tag.ID(), text); err != nil {
		c.logger.Warn("speech output failed", "error", err, "tag", tag.ID())
		c.speechFinished(tag)

		return
	}

	c.step.finish = c.after(c.opts.FinishTimeout, tag, func() {
		c.logger.Debug("no finish event, assuming speech done", "tag", tag.ID())
		c.step.finish = nil
		c.speechFinished(tag)
	})
}

// speechFinished runs once per tag, on the finish event or the fallback.
func (c *Controller) speechFinished(tag Tag) {
	if tag != c.step.tag || !c.sess.Speaking {
		return
	}

	c.sess.Speaking = false
	stopTimer(&c.step.finish)

	if c.sess.Phase != PhaseDictating {
		return
	}

	c.step.settle = c.after(c.opts.SettleDelay, tag, func() {
		c.step.settle = nil
		c.startCountdown(tag)
		c.listen(tag)
	})
}

func (c *Controller) listen(tag Tag) {
	if c.sess.Phase != PhaseDictating || c.sess.Speaking || c.sess.VoiceUnavailable || c.sess.Listening {
		return
	}

	if err := c.input.StartListening(tag.ID(), c.opts.Locale); err != nil {
		c.inputFailed(tag, err)
		return
	}

	c.sess.Listening = true
}

func (c *Controller) startCountdown(tag Tag) {
	step, ok := c.sess.CurrentStep()
	if !ok || !step.Timed() || c.sess.Counting {
		return
	}

	c.sess.Countdown = step.Duration
	c.sess.Counting = true
	c.scheduleTick(tag)
}

func (c *Controller) scheduleTick(tag Tag) {
	c.step.countdown = c.after(countdownTick, tag, func() {
		c.step.countdown = nil
		c.sess.Countdown--

		if c.sess.Countdown > 0 {
			c.scheduleTick(tag)
			return
		}

		c.logger.Debug("countdown expired", "index", c.sess.Index)
		c.stopInput()
		c.next()
	})
}

func (c *Controller) handleOutputEvent(ev OutputEvent) {
	if ev.ID != c.step.tag.ID() {
		c.logger.Debug("ignoring stale output event", "kind", ev.Kind, "id", ev.ID, "tag", c.step.tag.ID())
		return
	}

	switch ev.Kind {
	case OutputStarted, OutputProgress:
	case OutputFinished:
		c.speechFinished(c.step.tag)
	case OutputFailed:
		c.logger.Warn("speech output failed", "error", ev.Err, "tag", ev.ID)
		c.speechFinished(c.step.tag)
	}
}

func (c *Controller) handleInputEvent(ev InputEvent) {
	tag := c.step.tag
	if ev.ID != tag.ID() || tag == c.step.superseded || c.sess.Phase != PhaseDictating {
		c.logger.Debug("ignoring stale input event", "id", ev.ID, "tag", tag.ID())
		return
	}

	c.sess.Listening = false

	if ev.Err != nil {
		c.inputFailed(tag, ev.Err)
		return
	}

	cmd, ok := MatchCommand(ev.Results)
	if !ok {
		c.logger.Debug("no command recognized", "results", ev.Results)
		c.listen(tag)

		return
	}

	c.apply(cmd)
}

// inputFailed retries transient recognition errors for the same tag and
// degrades to manual control on anything else.
func (c *Controller) inputFailed(tag Tag, err error) {
	c.stopInput()

	kind := KindOf(err)
	if !kind.Transient() {
		c.voiceUnavailable(err.Error())
		return
	}

	c.logger.Debug("recognition interrupted, retrying", "kind", kind, "tag", tag.ID())
	stopTimer(&c.step.retry)
	c.step.retry = c.after(c.opts.RetryDelay, tag, func() {
		c.step.retry = nil
		c.listen(tag)
	})
}

func (c *Controller) voiceUnavailable(reason string) {
	if c.sess.VoiceUnavailable {
		return
	}

	c.logger.Warn("voice commands unavailable", "reason", reason)
	c.stopInput()
	stopTimer(&c.step.retry)
	c.sess.VoiceUnavailable = true
}

// stopStep stops recognition and clears every timer of the current step.
// Safe to call when nothing is active.
func (c *Controller) stopStep() {
	c.stopInput()
	stopTimer(&c.step.finish)
	stopTimer(&c.step.settle)
	stopTimer(&c.step.retry)
	stopTimer(&c.step.countdown)
	c.sess.Countdown = 0
	c.sess.Counting = false
}

func (c *Controller) stopInput() {
	if err := c.input.StopListening(); err != nil {
		c.logger.Debug("stop listening", "error", err)
	}
	if err := c.input.Destroy(); err != nil {
		c.logger.Debug("destroy recognizer", "error", err)
	}
	c.sess.Listening = false
}

func (c *Controller) stopOutput() {
	if err := c.output.Stop(); err != nil {
		c.logger.Debug("stop speech", "error", err)
	}
}

func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
