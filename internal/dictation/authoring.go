package dictation

import (
	"context"
	"fmt"
	"strings"

	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/pkg/collections"
)

// Create starts authoring a new instruction.
func (c *Controller) Create(ctx context.Context) error {
	return c.do(ctx, "create", func() error {
		if err := c.require(PhaseInstructionList); err != nil {
			return err
		}

		c.sess.Working = instruction.Instruction{}
		c.sess.saved = instruction.Instruction{}
		c.sess.Draft = ""
		c.sess.Phase = PhaseCreating

		return nil
	})
}

// Select checks out a copy of a loaded instruction for review.
func (c *Controller) Select(ctx context.Context, id string) error {
	return c.do(ctx, "select", func() error {
		if err := c.require(PhaseInstructionList); err != nil {
			return err
		}

		idx := collections.IndexFunc(c.sess.Instructions, func(i instruction.Instruction) bool { return i.ID == id })
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownInstruction, id)
		}

		c.checkout(c.sess.Instructions[idx])
		c.sess.Phase = PhaseViewingChanges

		return nil
	})
}

// SetTitle replaces the working title.
func (c *Controller) SetTitle(ctx context.Context, title string) error {
	return c.do(ctx, "set-title", func() error {
		if err := c.require(PhaseCreating, PhaseEditing); err != nil {
			return err
		}

		c.sess.Working.Title = title

		return nil
	})
}

// SetDraft replaces the free-text body and re-parses the working steps.
func (c *Controller) SetDraft(ctx context.Context, text string) error {
	return c.do(ctx, "set-draft", func() error {
		if err := c.require(PhaseCreating, PhaseEditing); err != nil {
			return err
		}

		c.setDraft(text)

		return nil
	})
}

// AddStep appends one authored line to the draft. Blank input is ignored.
func (c *Controller) AddStep(ctx context.Context, text string) error {
	return c.do(ctx, "add-step", func() error {
		if err := c.require(PhaseCreating, PhaseEditing); err != nil {
			return err
		}

		line := strings.TrimSpace(text)
		if instruction.ParseStep(line).Text == "" {
			return nil
		}

		draft := strings.TrimRight(c.sess.Draft, " \t\r\n")
		if draft != "" {
			draft += "\n"
		}
		c.setDraft(draft + line)

		return nil
	})
}

// FinishAuthoring validates and saves the working copy, then shows it.
func (c *Controller) FinishAuthoring(ctx context.Context) error {
	return c.submit(ctx, "finish-authoring", c.save)
}

// SaveEdits is FinishAuthoring for an instruction being edited.
func (c *Controller) SaveEdits(ctx context.Context) error {
	return c.submit(ctx, "save-edits", c.save)
}

// DiscardEdits reverts the working copy to what was last saved.
func (c *Controller) DiscardEdits(ctx context.Context) error {
	return c.do(ctx, "discard-edits", func() error {
		if err := c.require(PhaseCreating, PhaseEditing); err != nil {
			return err
		}

		c.checkout(c.sess.saved)
		c.sess.Phase = PhaseViewingChanges

		return nil
	})
}

// StartEditing seeds the draft from the working steps.
func (c *Controller) StartEditing(ctx context.Context) error {
	return c.do(ctx, "start-editing", func() error {
		if err := c.require(PhaseViewingChanges); err != nil {
			return err
		}

		c.sess.Draft = instruction.FormatSteps(c.sess.Working.Steps)
		c.sess.Phase = PhaseEditing

		return nil
	})
}

// AcceptInstruction moves on to the ready screen.
func (c *Controller) AcceptInstruction(ctx context.Context) error {
	return c.do(ctx, "accept-instruction", func() error {
		if err := c.require(PhaseViewingChanges); err != nil {
			return err
		}

		c.sess.Phase = PhaseReadyToDictate

		return nil
	})
}

// ReturnToList drops the working copy and shows the instruction list.
func (c *Controller) ReturnToList(ctx context.Context) error {
	return c.do(ctx, "return-to-list", func() error {
		if err := c.require(PhaseViewingChanges, PhaseReadyToDictate); err != nil {
			return err
		}

		c.toList()

		return nil
	})
}

// DeleteInstruction deletes an instruction and reloads the list.
func (c *Controller) DeleteInstruction(ctx context.Context, id string) error {
	return c.submit(ctx, "delete-instruction", func(done func(error)) {
		if err := c.require(PhaseInstructionList); err != nil {
			done(err)
			return
		}

		err := c.storeCall("delete", func(ctx context.Context) error {
			return c.store.Delete(ctx, id)
		}, func(err error) {
			if err != nil {
				c.sess.Notice = "Could not delete instruction: " + err.Error()
				done(err)

				return
			}

			c.sess.Instructions = collections.Filter(c.sess.Instructions, func(i instruction.Instruction) bool {
				return i.ID != id
			})
			c.loadList(done)
		})
		if err != nil {
			done(err)
		}
	})
}

// Refresh reloads the instruction list from the store.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.submit(ctx, "refresh", func(done func(error)) {
		if err := c.require(PhaseInstructionList); err != nil {
			done(err)
			return
		}

		if c.sess.Busy {
			done(ErrBusy)
			return
		}

		c.loadList(done)
	})
}

// save validates the working copy and persists it. The reply is deferred
// until the store answers; on failure the working copy stays in place.
func (c *Controller) save(done func(error)) {
	if err := c.require(PhaseCreating, PhaseEditing); err != nil {
		done(err)
		return
	}

	c.sess.Working.Title = strings.TrimSpace(c.sess.Working.Title)
	if err := c.sess.Working.Validate(); err != nil {
		done(err)
		return
	}

	if c.sess.Working.ID == "" {
		c.sess.Working.ID = c.opts.NewID()
	}
	inst := c.sess.Working.Clone()

	err := c.storeCall("save", func(ctx context.Context) error {
		return c.store.Save(ctx, inst)
	}, func(err error) {
		if err != nil {
			c.sess.Notice = "Could not save instruction: " + err.Error()
			done(err)

			return
		}

		c.upsertLoaded(inst)
		if c.sess.Phase.Authoring() {
			c.checkout(inst)
			c.sess.Phase = PhaseViewingChanges
		}
		done(nil)
	})
	if err != nil {
		done(err)
	}
}

// loadList refreshes the loaded list. A failure keeps the previous list.
func (c *Controller) loadList(done func(error)) {
	var loaded []instruction.Instruction

	err := c.storeCall("load", func(ctx context.Context) error {
		var err error
		loaded, err = c.store.LoadAll(ctx)
		return err
	}, func(err error) {
		if err != nil {
			c.sess.Notice = "Could not load instructions: " + err.Error()
			done(err)

			return
		}

		c.sess.Instructions = collections.Apply(loaded, instruction.Instruction.Clone)
		done(nil)
	})
	if err != nil {
		done(err)
	}
}

func (c *Controller) setDraft(text string) {
	c.sess.Draft = text
	c.sess.Working.Steps = instruction.ParseSteps(text)
}

// checkout makes inst the working copy and the discard target.
func (c *Controller) checkout(inst instruction.Instruction) {
	c.sess.Working = inst.Clone()
	c.sess.saved = inst.Clone()
	c.sess.Draft = instruction.FormatSteps(inst.Steps)
}

func (c *Controller) upsertLoaded(inst instruction.Instruction) {
	idx := collections.IndexFunc(c.sess.Instructions, func(i instruction.Instruction) bool { return i.ID == inst.ID })
	if idx >= 0 {
		c.sess.Instructions[idx] = inst.Clone()
		return
	}

	c.sess.Instructions = append(c.sess.Instructions, inst.Clone())
}

// toList ends the session and returns to the instruction list.
func (c *Controller) toList() {
	c.nextTag(-1)
	c.sess.Working = instruction.Instruction{}
	c.sess.saved = instruction.Instruction{}
	c.sess.Draft = ""
	c.sess.Index = 0
	c.sess.Phase = PhaseInstructionList
}
