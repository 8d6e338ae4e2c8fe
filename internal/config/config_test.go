package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alkime/dictator/internal/config"
	"github.com/alkime/dictator/internal/keyring"
	"github.com/alkime/dictator/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, "Mission accomplished!", cfg.CompletionPhrase)
	assert.Equal(t, 300*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, 15*time.Second, cfg.FinishTimeout)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.Equal(t, 8*time.Second, cfg.ListenTimeout)
	assert.Equal(t, store.DriverJSON, cfg.StoreDriver)

	opts := cfg.Dictation()
	assert.Equal(t, cfg.Locale, opts.Locale)
	assert.Equal(t, cfg.FinishTimeout, opts.FinishTimeout)

	ep := cfg.Endpoint()
	assert.Equal(t, cfg.ListenTimeout, ep.ListenTimeout)
	assert.InDelta(t, 0.02, ep.Threshold, 1e-9)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("DICTATOR_STORE_DRIVER", "sqlite")
	t.Setenv("DICTATOR_SETTLE_DELAY", "1s")
	t.Setenv("DICTATOR_SPEECH_INPUT", "none")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, store.DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, time.Second, cfg.SettleDelay)
	assert.Equal(t, config.InputNone, cfg.SpeechInput)

	key, err := cfg.OpenAIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-env", key)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DICTATOR_STORE_DRIVER", "csv")

	_, err := config.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv")
}

func TestOpenAIKey_FallsBackToKeychain(t *testing.T) {
	gokeyring.MockInit()

	cfg := &config.Config{}
	_, err := cfg.OpenAIKey()
	require.Error(t, err)

	require.NoError(t, keyring.Set(keyring.OpenAI, "sk-keychain"))
	key, err := cfg.OpenAIKey()
	require.NoError(t, err)
	assert.Equal(t, "sk-keychain", key)
}

func TestDataPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	cfg := &config.Config{DataDir: dir}

	got, err := cfg.DataPath()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.DirExists(t, dir)
}

func TestBuildCSP(t *testing.T) {
	assert.Contains(t, config.BuildCSP("strict"), "default-src 'none'")
	assert.Contains(t, config.BuildCSP("relaxed"), "default-src 'self'")
}
