package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/alkime/dictator/internal/audio"
	"github.com/alkime/dictator/internal/config"
	"github.com/alkime/dictator/internal/keyring"
	"github.com/alkime/dictator/internal/logger"
	"github.com/alkime/dictator/internal/store"
)

// CLI defines the dictator command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"1" help:"Launch terminal UI for writing and dictating instructions"`

	// Subcommands
	List    ListCmd    `cmd:"" help:"List stored instructions"`
	Show    ShowCmd    `cmd:"" help:"Print one instruction"`
	Import  ImportCmd  `cmd:"" help:"Import an instruction from a text, YAML or JSON file"`
	Export  ExportCmd  `cmd:"" help:"Export an instruction as text, YAML or JSON"`
	Delete  DeleteCmd  `cmd:"" help:"Delete an instruction"`
	Serve   ServeCmd   `cmd:"" help:"Serve the instruction authoring API"`
	Devices DevicesCmd `cmd:"" help:"List available audio devices"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration"`
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct {
	Kind string `help:"Only list this kind of device" enum:"all,capture,playback" default:"all"`
}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	slog.Debug("enumerating audio devices", "kind", dcmd.Kind)

	devices, err := audio.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tDEFAULT\tNAME\tFORMATS")
	for _, dev := range devices {
		if dcmd.Kind != "all" && dev.Kind != dcmd.Kind {
			continue
		}

		def := ""
		if dev.IsDefault {
			def = "*"
		}
		formats := make([]string, len(dev.Formats))
		for i, f := range dev.Formats {
			formats[i] = f.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dev.Kind, def, dev.Name, strings.Join(formats, " "))
	}

	return w.Flush()
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey    SetKeyCmd    `cmd:"" help:"Store an API key in system keychain"`
	DeleteKey DeleteKeyCmd `cmd:"" name:"delete-key" help:"Remove an API key from system keychain"`
	ListKeys  ListKeysCmd  `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"openai" help:"Service name (openai)"`
	Secret  string `arg:"" help:"API key value"`
}

// Run executes the set-key command.
func (c *SetKeyCmd) Run() error {
	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, c.Secret); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// DeleteKeyCmd removes an API key from the system keychain.
type DeleteKeyCmd struct {
	Service string `arg:"" enum:"openai" help:"Service name (openai)"`
}

// Run executes the delete-key command.
func (c *DeleteKeyCmd) Run() error {
	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Delete(apiKey); err != nil {
		return err
	}

	fmt.Printf("%s API key removed from keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured.
type ListKeysCmd struct{}

// Run executes the list-keys command.
//
//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run() error {
	allSet := true

	for _, apiKey := range keyring.AllAPIKeys() {
		if keyring.IsSet(apiKey) {
			fmt.Printf("%s: configured\n", apiKey.DisplayName())
		} else {
			fmt.Printf("%s: not set\n", apiKey.DisplayName())
			allSet = false
		}
	}

	if !allSet {
		fmt.Println("\nRun 'dictator config set-key <service> <key>' to configure.")
	}

	return nil
}

// openStore opens the configured instruction store in the data directory.
func openStore(cfg *config.Config) (store.Store, error) {
	dir, err := cfg.DataPath()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	st, err := store.Open(cfg.StoreDriver, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open instruction store: %w", err)
	}

	return st, nil
}

func closeStore(st store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("Failed to close instruction store", "error", err)
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dictator: %v\n", err)
		os.Exit(1)
	}

	// Human-readable logs for one-shot commands; the TUI replaces this
	logger.SetupLogger(cfg, logger.Stderr())

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("dictator"),
		kong.Description("Write step-by-step instructions and have them read aloud."),
		kong.UsageOnError(),
	)
	err = ctx.Run(cfg)
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}
