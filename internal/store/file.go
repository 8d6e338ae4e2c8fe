package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/alkime/dictator/internal/instruction"
	"github.com/alkime/dictator/pkg/collections"
)

// FileStore keeps all instructions as one JSON array in a single file.
// A missing file reads as an empty list.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) LoadAll(ctx context.Context) ([]instruction.Instruction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *FileStore) Save(ctx context.Context, inst instruction.Instruction) error {
	if inst.ID == "" {
		return ErrMissingID
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}

	inst = inst.Clone()
	idx := collections.IndexFunc(all, func(i instruction.Instruction) bool { return i.ID == inst.ID })
	if idx >= 0 {
		all[idx] = inst
	} else {
		all = append(all, inst)
	}

	return s.write(all)
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}

	return s.write(collections.Filter(all, func(i instruction.Instruction) bool { return i.ID != id }))
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() ([]instruction.Instruction, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []instruction.Instruction{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var all []instruction.Instruction
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}

	if all == nil {
		all = []instruction.Instruction{}
	}

	return all, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *FileStore) write(all []instruction.Instruction) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding instructions: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".instructions-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}
