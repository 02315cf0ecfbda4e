// Package localdoc persists the scenario in a local SQLite database.
// It is the demo / anonymous-mode backend: durable across restarts but
// with no live sync, so Watch reports no channel.
package localdoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"

	_ "modernc.org/sqlite"
)

// DocumentKey is the fixed storage key for the demo-mode scenario.
const DocumentKey = "income_scenario"

type Store struct {
	db *sql.DB
}

// Open creates (or reuses) the SQLite database at dbPath and runs
// migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context) (core.Scenario, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM scenario_documents WHERE doc_key = ?`, DocumentKey,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Scenario{}, false, nil
	}
	if err != nil {
		return core.Scenario{}, false, fmt.Errorf("load scenario: %w", err)
	}

	var sc core.Scenario
	if err := json.Unmarshal([]byte(payload), &sc); err != nil {
		return core.Scenario{}, false, fmt.Errorf("decode scenario: %w", err)
	}
	return sc, true, nil
}

func (s *Store) Save(ctx context.Context, sc core.Scenario, updatedAt time.Time) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scenario_documents (doc_key, payload, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(doc_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		DocumentKey, string(payload), updatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	return nil
}

// Watch returns no channel: local storage has no live feed.
func (s *Store) Watch(_ context.Context) (<-chan core.Scenario, error) {
	return nil, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
