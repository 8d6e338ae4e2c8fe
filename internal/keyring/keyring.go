// Package keyring keeps API keys in the system keychain under the dictator
// service, so they need not live in the environment or a .env file.
package keyring

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/zalando/go-keyring"
)

const serviceName = "dictator"

// ErrEmptySecret rejects storing a blank key.
var ErrEmptySecret = errors.New("API key cannot be empty")

// APIKey names a keychain entry.
type APIKey string

// OpenAI is used for speech synthesis and transcription.
const OpenAI APIKey = "openai-api-key"

// services maps the names users type to keychain entries.
var services = map[string]APIKey{
	"openai": OpenAI,
}

// AllAPIKeys returns every known entry in a stable order.
func AllAPIKeys() []APIKey {
	return slices.Sorted(maps.Values(services))
}

// DisplayName is the service name for the entry.
func (k APIKey) DisplayName() string {
	for name, key := range services {
		if key == k {
			return name
		}
	}

	return string(k)
}

// APIKeyFromServiceName maps a service name such as "openai" to its entry.
func APIKeyFromServiceName(name string) (APIKey, error) {
	k, ok := services[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown service: %s", name)
	}

	return k, nil
}

func Get(k APIKey) (string, error) {
	value, err := keyring.Get(serviceName, string(k))
	if err != nil {
		return "", wrap("get", k, err)
	}

	return value, nil
}

// Set stores value, trimmed of surrounding whitespace.
func Set(k APIKey, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptySecret
	}

	return wrap("set", k, keyring.Set(serviceName, string(k), value))
}

func Delete(k APIKey) error {
	return wrap("delete", k, keyring.Delete(serviceName, string(k)))
}

// IsSet reports whether the keychain holds the entry.
func IsSet(k APIKey) bool {
	_, err := keyring.Get(serviceName, string(k))
	return err == nil
}

// Lookup prefers value from the environment and falls back to the keychain.
func Lookup(k APIKey, fromEnv string) (string, error) {
	if v := strings.TrimSpace(fromEnv); v != "" {
		return v, nil
	}

	return Get(k)
}

func wrap(op string, k APIKey, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("keychain %s %s: %w", op, k.DisplayName(), err)
}
