// Package store persists instructions. Two backends are provided: a single
// JSON document holding every instruction, and a SQLite database.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/pkg/collections"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("instruction not found")
	ErrMissingID = errors.New("instruction has no id")
)

// Store is keyed document storage for instructions.
type Store interface {
	// LoadAll returns every instruction in insertion order.
	LoadAll(ctx context.Context) ([]instruction.Instruction, error)
	// Save inserts or replaces the instruction with the same ID.
	Save(ctx context.Context, inst instruction.Instruction) error
	// Delete removes the instruction if present.
	Delete(ctx context.Context, id string) error
	Close() error
}

// Driver selects a Store backend.
type Driver string

const (
	DriverJSON   Driver = "json"
	DriverSQLite Driver = "sqlite"
)

// NewID returns a fresh random instruction identifier.
func NewID() string {
	return uuid.NewString()
}

// Open opens the backend for driver inside dir.
func Open(driver Driver, dir string) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewFileStore(filepath.Join(dir, "instructions.json")), nil
	case DriverSQLite:
		return OpenSQLite(filepath.Join(dir, "instructions.sqlite"))
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// Get loads a single instruction by ID.
func Get(ctx context.Context, s Store, id string) (instruction.Instruction, error) {
	all, err := s.LoadAll(ctx)
	if err != nil {
		return instruction.Instruction{}, err
	}

	idx := collections.IndexFunc(all, func(i instruction.Instruction) bool { return i.ID == id })
	if idx < 0 {
		return instruction.Instruction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return all[idx], nil
}
