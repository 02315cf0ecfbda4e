// Package memory is an in-memory scenario document store used by tests
// and as a last-resort backend when neither Redis nor SQLite is
// configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

type Store struct {
	mu        sync.Mutex
	sc        core.Scenario
	updatedAt time.Time
	exists    bool

	saves    int
	loadErr  error
	saveErr  error
	watchers []chan core.Scenario
	closed   bool
}

func New() *Store {
	return &Store{}
}

// FailLoads makes subsequent Load calls return err.
func (s *Store) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// FailSaves makes subsequent Save calls return err.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves returns how many writes have been accepted.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Stored returns the last accepted document.
func (s *Store) Stored() (core.Scenario, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sc.Clone(), s.exists
}

// Seed installs a document without counting as a save.
func (s *Store) Seed(sc core.Scenario, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sc = sc.Clone()
	s.updatedAt = updatedAt
	s.exists = true
}

// Emit pushes a snapshot to every watcher, simulating a remote edit.
func (s *Store) Emit(sc core.Scenario) {
	s.mu.Lock()
	watchers := append([]chan core.Scenario(nil), s.watchers...)
	s.mu.Unlock()
	for _, ch := range watchers {
		ch <- sc.Clone()
	}
}

func (s *Store) Load(_ context.Context) (core.Scenario, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return core.Scenario{}, false, s.loadErr
	}
	return s.sc.Clone(), s.exists, nil
}

func (s *Store) Save(_ context.Context, sc core.Scenario, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sc = sc.Clone()
	s.updatedAt = updatedAt
	s.exists = true
	s.saves++
	return nil
}

func (s *Store) Watch(ctx context.Context) (<-chan core.Scenario, error) {
	ch := make(chan core.Scenario, 8)
	s.mu.Lock()
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()
	return ch, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
