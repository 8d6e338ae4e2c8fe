package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alkime/dictator/internal/instruction"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS instructions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		steps TEXT NOT NULL
	);
`

// SQLiteStore keeps one row per instruction with steps encoded as JSON.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path. ":memory:" opens a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// in-memory databases are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]instruction.Instruction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, steps FROM instructions ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("query instructions: %w", err)
	}
	defer rows.Close()

	all := []instruction.Instruction{}
	for rows.Next() {
		var inst instruction.Instruction
		var steps string
		if err := rows.Scan(&inst.ID, &inst.Title, &steps); err != nil {
			return nil, fmt.Errorf("scan instruction: %w", err)
		}
		if err := json.Unmarshal([]byte(steps), &inst.Steps); err != nil {
			return nil, fmt.Errorf("decode steps for %s: %w", inst.ID, err)
		}
		all = append(all, inst)
	}

	return all, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, inst instruction.Instruction) error {
	if inst.ID == "" {
		return ErrMissingID
	}

	steps, err := json.Marshal(inst.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO instructions (id, title, steps) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, steps = excluded.steps
	`, inst.ID, inst.Title, string(steps))
	if err != nil {
		return fmt.Errorf("save instruction %s: %w", inst.ID, err)
	}

	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM instructions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete instruction %s: %w", id, err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
