package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alkime/dictator/internal/audio"
	"github.com/alkime/dictator/internal/dictation"
	"github.com/alkime/dictator/internal/keyring"
	"github.com/alkime/dictator/internal/store"
	"github.com/alkime/dictator/internal/workdir"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"

	// Prefix namespaces every environment variable, e.g. DICTATOR_PORT.
	Prefix = "DICTATOR"
)

const (
	OutputOpenAI = "openai"
	OutputSay    = "say"
	OutputNone   = "none"

	InputWhisper = "whisper"
	InputNone    = "none"
)

// Config holds all application configuration.
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Storage settings
	DataDir     string       `envconfig:"DATA_DIR"`
	StoreDriver store.Driver `envconfig:"STORE_DRIVER" default:"json"`

	// Server settings
	Port       string `envconfig:"PORT" default:"8080"`
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`

	// Dictation settings
	Locale           string        `envconfig:"LOCALE" default:"en-US"`
	CompletionPhrase string        `envconfig:"COMPLETION_PHRASE" default:"Mission accomplished!"`
	SettleDelay      time.Duration `envconfig:"SETTLE_DELAY" default:"300ms"`
	FinishTimeout    time.Duration `envconfig:"FINISH_TIMEOUT" default:"15s"`
	RetryDelay       time.Duration `envconfig:"RETRY_DELAY" default:"2s"`

	// Speech settings
	SpeechOutput     string        `envconfig:"SPEECH_OUTPUT" default:"openai"`
	SpeechInput      string        `envconfig:"SPEECH_INPUT" default:"whisper"`
	Voice            string        `envconfig:"VOICE" default:"alloy"`
	SpeechSpeed      float64       `envconfig:"SPEECH_SPEED" default:"1.0"`
	ListenTimeout    time.Duration `envconfig:"LISTEN_TIMEOUT" default:"8s"`
	SilenceThreshold float64       `envconfig:"SILENCE_THRESHOLD" default:"0.02"`

	// OpenAIAPIKey also reads the unprefixed OPENAI_API_KEY.
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Error loading .env file", "error", err)
		}
	}

	var config Config
	if err := envconfig.Process(Prefix, &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case store.DriverJSON, store.DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q (want json or sqlite)", c.StoreDriver)
	}

	switch c.SpeechOutput {
	case OutputOpenAI, OutputSay, OutputNone:
	default:
		return fmt.Errorf("unknown speech output %q (want openai, say or none)", c.SpeechOutput)
	}

	switch c.SpeechInput {
	case InputWhisper, InputNone:
	default:
		return fmt.Errorf("unknown speech input %q (want whisper or none)", c.SpeechInput)
	}

	return nil
}

// IsDevelopment reports whether debug logging should be on by default.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// DataPath returns the data directory, creating it if needed.
func (c *Config) DataPath() (string, error) {
	return workdir.Resolve(c.DataDir)
}

// OpenAIKey returns the configured key, falling back to the keychain.
func (c *Config) OpenAIKey() (string, error) {
	key, err := keyring.Lookup(keyring.OpenAI, c.OpenAIAPIKey)
	if err != nil {
		return "", errors.Join(errors.New("OpenAI API key not configured"), err)
	}

	return key, nil
}

// Dictation maps the settings onto controller options.
func (c *Config) Dictation() dictation.Options {
	return dictation.Options{
		Locale:           c.Locale,
		CompletionPhrase: c.CompletionPhrase,
		SettleDelay:      c.SettleDelay,
		FinishTimeout:    c.FinishTimeout,
		RetryDelay:       c.RetryDelay,
	}
}

// Endpoint maps the settings onto utterance detection.
func (c *Config) Endpoint() audio.EndpointConfig {
	return audio.EndpointConfig{
		Threshold:     c.SilenceThreshold,
		ListenTimeout: c.ListenTimeout,
	}
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		return "default-src 'none'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'none'; " +
			"form-action 'none'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:"
}
