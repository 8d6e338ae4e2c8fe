// Package workdir locates the directory dictator keeps its instructions and
// log file in.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default is the data directory relative to the user's home.
var Default = filepath.Join("Documents", "Alkime", "Dictator")

// Resolve returns dir with a leading ~ expanded, or the default directory
// under $HOME when dir is empty. The directory is created if missing.
func Resolve(dir string) (string, error) {
	switch {
	case dir == "":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, Default)
	case dir == "~" || strings.HasPrefix(dir, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	return dir, nil
}
