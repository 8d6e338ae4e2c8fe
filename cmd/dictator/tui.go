package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alkime/dictator/internal/audio"
	"github.com/alkime/dictator/internal/config"
	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/logger"
	"github.com/alkime/dictator/internal/speech"
	"github.com/alkime/dictator/internal/tui"
	"github.com/alkime/dictator/pkg/uictl"
	tea "github.com/charmbracelet/bubbletea"
)

// levelWindow is about 50ms of capture, enough for one waveform frame.
const levelWindow = audio.CaptureSampleRate / 20

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	Output string `flag:"" optional:"" help:"Speech output (overrides DICTATOR_SPEECH_OUTPUT)"`
	Input  string `flag:"" optional:"" help:"Speech input (overrides DICTATOR_SPEECH_INPUT)"`
	Locale string `flag:"" optional:"" help:"Recognition locale (overrides DICTATOR_LOCALE)"`
}

// Run executes the TUI command.
//
//nolint:funlen // CLI command with multiple setup steps
func (c *TUICmd) Run(cfg *config.Config) error {
	if c.Output != "" {
		cfg.SpeechOutput = c.Output
	}
	if c.Input != "" {
		cfg.SpeechInput = c.Input
	}
	if c.Locale != "" {
		cfg.Locale = c.Locale
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wg := sync.WaitGroup{}

	dir, err := cfg.DataPath()
	if err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	// The TUI owns the terminal, so logs only go to the file
	logFile, err := logger.OpenFile(dir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	log := logger.SetupLogger(cfg, logger.Sink{W: logFile, JSON: true})
	log.Info("Starting dictator",
		"output", cfg.SpeechOutput,
		"input", cfg.SpeechInput,
		"store", cfg.StoreDriver,
		"locale", cfg.Locale,
	)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ports, err := newSpeechPorts(cfg)
	if err != nil {
		return err
	}
	defer ports.Close()

	opts := cfg.Dictation()
	opts.Logger = log
	ctl := dictation.New(st, ports.output, ports.input, opts)

	views := make(chan dictation.ViewState, 16)
	if err := ctl.Subscribe(views, dictation.DefaultPublishTimeout); err != nil {
		return fmt.Errorf("failed to subscribe to controller: %w", err)
	}

	wg.Go(func() {
		if err := ctl.Run(ctx); err != nil {
			slog.Error("Controller error", "error", err)
			cancel()
		}
	})

	p := tea.NewProgram(
		tui.New(ctx, tui.Config{
			Controller: ctl,
			Views:      views,
			Levels:     ports.levels,
			Cancel:     cancel,
		}),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err = p.Run()
	cancel()
	wg.Wait()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	fmt.Println("finished. bye!")

	return nil
}

// speechPorts holds the adapters behind the controller's speech ports.
type speechPorts struct {
	output *speech.Output
	input  dictation.SpeechInput
	levels uictl.Levels[int16]

	closers []func() error
}

func (p *speechPorts) Close() {
	for _, closeFn := range p.closers {
		if err := closeFn(); err != nil {
			slog.Error("Failed to release speech adapter", "error", err)
		}
	}
}

// newSpeechPorts builds the configured speech output and input adapters.
func newSpeechPorts(cfg *config.Config) (*speechPorts, error) {
	var (
		ports  speechPorts
		client *speech.OpenAI
	)

	if cfg.SpeechOutput == config.OutputOpenAI || cfg.SpeechInput == config.InputWhisper {
		apiKey, err := cfg.OpenAIKey()
		if err != nil {
			return nil, fmt.Errorf("%w. Set OPENAI_API_KEY, run 'dictator config set-key openai <key>' "+
				"or use --output say --input none", err)
		}

		if client, err = speech.NewOpenAI(apiKey, cfg.Voice, cfg.SpeechSpeed); err != nil {
			return nil, err
		}
	}

	var voice speech.Voice
	switch cfg.SpeechOutput {
	case config.OutputOpenAI:
		player := audio.NewPlayer(audio.PlaybackConfig(audio.PlaybackSampleRate))
		ports.closers = append(ports.closers, player.Close)
		voice = speech.NewSynthVoice(client, player)
	case config.OutputSay:
		cmdVoice, err := speech.NewCommandVoice(cfg.SpeechSpeed)
		if err != nil {
			return nil, err
		}
		voice = cmdVoice
	default:
		voice = speech.Silent{}
	}

	ports.output = speech.NewOutput(voice)
	// closed first so no utterance outlives the player
	ports.closers = append([]func() error{ports.output.Close}, ports.closers...)

	switch cfg.SpeechInput {
	case config.InputWhisper:
		levels := audio.NewLevelMeter(audio.CaptureSampleRate)
		mic := audio.NewMicrophone(audio.CaptureConfig(), levels)
		ports.input = speech.NewRecognizer(mic, client, cfg.Endpoint())
		ports.levels = levels.Window(levelWindow)
	default:
		ports.input = speech.NewNoInput()
	}

	return &ports, nil
}
