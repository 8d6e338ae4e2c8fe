package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alkime/dictator/internal/config"
	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/internal/store"
)

// ListCmd prints every stored instruction.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run(cfg *config.Config) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	all, err := st.LoadAll(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load instructions: %w", err)
	}

	if len(all) == 0 {
		fmt.Println("No instructions yet. Run 'dictator' to write one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTEPS\tTIMED")
	for _, inst := range all {
		fmt.Fprintf(w, "%s\t%s\t%d\t%ds\n", inst.ID, inst.Title, len(inst.Steps), inst.TotalDuration())
	}

	return w.Flush()
}

// ShowCmd prints one instruction in the authoring text format.
type ShowCmd struct {
	ID string `arg:"" help:"Instruction ID"`
}

// Run executes the show command.
func (c *ShowCmd) Run(cfg *config.Config) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	inst, err := store.Get(context.Background(), st, c.ID)
	if err != nil {
		return err
	}

	fmt.Println(inst.Title)
	fmt.Println()
	for i, step := range inst.Steps {
		if step.Timed() {
			fmt.Printf("%d. %s (Duration: %d s)\n", i+1, step.Text, step.Duration)
		} else {
			fmt.Printf("%d. %s\n", i+1, step.Text)
		}
	}

	return nil
}

// ImportCmd stores an instruction read from a document.
type ImportCmd struct {
	File   string `arg:"" type:"existingfile" help:"Path to a .txt, .yaml or .json document"`
	Format string `flag:"" optional:"" help:"Document format (text, yaml, json); defaults to the file extension"`
}

// Run executes the import command.
func (c *ImportCmd) Run(cfg *config.Config) error {
	format := instruction.FormatFromPath(c.File)
	if c.Format != "" {
		var err error
		if format, err = instruction.ParseFormat(c.Format); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	inst, err := instruction.Unmarshal(data, format)
	if err != nil {
		return err
	}

	if err := inst.Validate(); err != nil {
		return fmt.Errorf("invalid instruction in %s: %w", c.File, err)
	}

	if inst.ID == "" {
		inst.ID = store.NewID()
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.Save(context.Background(), inst); err != nil {
		return fmt.Errorf("failed to save instruction: %w", err)
	}

	fmt.Printf("imported %q as %s\n", inst.Title, inst.ID)

	return nil
}

// ExportCmd writes one instruction as a document.
type ExportCmd struct {
	ID     string `arg:"" help:"Instruction ID"`
	Format string `flag:"" default:"text" enum:"text,yaml,json" help:"Document format"`
	Output string `flag:"" short:"o" optional:"" help:"Output file (default: stdout)"`
}

// Run executes the export command.
func (c *ExportCmd) Run(cfg *config.Config) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	inst, err := store.Get(context.Background(), st, c.ID)
	if err != nil {
		return err
	}

	data, err := instruction.Marshal(inst, instruction.Format(c.Format))
	if err != nil {
		return err
	}

	if c.Output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(c.Output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Output, err)
	}

	return nil
}

// DeleteCmd removes one instruction.
type DeleteCmd struct {
	ID string `arg:"" help:"Instruction ID"`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(cfg *config.Config) error {
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()

	inst, err := store.Get(ctx, st, c.ID)
	if err != nil {
		return err
	}

	if err := st.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete instruction: %w", err)
	}

	fmt.Printf("deleted %q\n", inst.Title)

	return nil
}
