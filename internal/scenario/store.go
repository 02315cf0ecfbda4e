// Package scenario owns the user's income scenario: a small state
// machine around the mutable Scenario with clamped setters, debounced
// write-behind persistence, and a live remote subscription that
// reconciles cross-device edits without self-echo.
package scenario

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

// State is the store's lifecycle position. Saving is part of the state,
// not an ad-hoc flag, so echo suppression cannot race with flushes.
type State string

const (
	StateLoading  State = "loading"
	StateIdle     State = "idle"
	StateDirty    State = "dirty"
	StateFlushing State = "flushing"
)

// Config holds the store's timing knobs.
type Config struct {
	// Debounce is the quiet window before a dirty scenario is written.
	Debounce time.Duration

	// EchoSuppress is the grace period after a write acknowledgement
	// during which inbound snapshots are discarded as self-echoes.
	EchoSuppress time.Duration
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		Debounce:     500 * time.Millisecond,
		EchoSuppress: 100 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = 500 * time.Millisecond
	}
	if c.EchoSuppress <= 0 {
		c.EchoSuppress = 100 * time.Millisecond
	}
	return c
}

// Store owns the mutable Scenario for one user session. All methods are
// safe for concurrent use; setter effects are observable in the next
// read. Failed writes keep local state and retry on the next debounce
// cycle.
type Store struct {
	mu   sync.Mutex
	cfg  Config
	docs DocumentStore
	now  func() time.Time

	sc            core.Scenario
	state         State
	suppressUntil time.Time
	timer         *time.Timer
	lastErr       string
	closed        bool

	flushCtx    context.Context
	watchCancel context.CancelFunc
	wg          sync.WaitGroup
}

// NewStore builds a store over the given persistence backend. Call
// Start before reading.
func NewStore(docs DocumentStore, cfg Config) *Store {
	return &Store{
		cfg:   cfg.withDefaults(),
		docs:  docs,
		now:   time.Now,
		sc:    core.DefaultScenario(),
		state: StateLoading,
	}
}

// Start loads the persisted scenario and begins watching for remote
// snapshots. A failed load yields defaults and records the error; the
// store stays usable.
func (s *Store) Start(ctx context.Context) error {
	sc, ok, err := s.docs.Load(ctx)

	s.mu.Lock()
	s.flushCtx = context.WithoutCancel(ctx)
	switch {
	case err != nil:
		s.lastErr = err.Error()
		s.sc = core.DefaultScenario()
	case ok:
		s.sc = sc.Sanitized()
	default:
		// First read: created lazily with defaults.
		s.sc = core.DefaultScenario()
	}
	s.state = StateIdle
	s.mu.Unlock()

	if err != nil {
		slog.WarnContext(ctx, "Scenario load failed, using defaults", "error", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	snapshots, werr := s.docs.Watch(watchCtx)
	if werr != nil {
		cancel()
		slog.WarnContext(ctx, "Scenario watch unavailable, live sync disabled", "error", werr)
		return nil
	}
	if snapshots == nil {
		cancel()
		return nil
	}

	s.mu.Lock()
	s.watchCancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-watchCtx.Done():
				return
			case sc, open := <-snapshots:
				if !open {
					return
				}
				s.applySnapshot(sc)
			}
		}
	}()

	return nil
}

// Close tears the store down: the debounce timer is cancelled (pending
// edits are not flushed) and the live subscription stops.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cancel := s.watchCancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	return s.docs.Close()
}

// Scenario returns a copy of the current scenario.
func (s *Store) Scenario() core.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sc.Clone()
}

// CurrentState reports the state machine position.
func (s *Store) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsLoading reports whether the first snapshot has not arrived yet.
func (s *Store) IsLoading() bool {
	return s.CurrentState() == StateLoading
}

// IsSaving reports whether a write is in flight.
func (s *Store) IsSaving() bool {
	return s.CurrentState() == StateFlushing
}

// Err returns the last persistence error as a string, empty when clear.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// IsEnabled reports whether the scenario overlay is active.
func (s *Store) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sc.Enabled
}

// MonthlyIncome is the projected monthly income from the annual fields.
func (s *Store) MonthlyIncome() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sc.MonthlyIncome()
}

// HasValues reports whether any projected income field is set.
func (s *Store) HasValues() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sc.HasValues()
}

// HasExpenseFilters reports whether any bucket is excluded.
func (s *Store) HasExpenseFilters() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sc.HasExpenseFilters()
}

// EffectiveMonthlyIncome is the scenario income when enabled, otherwise
// the supplied historical average.
func (s *Store) EffectiveMonthlyIncome(historicalAvg core.Money) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sc.Enabled {
		return s.sc.MonthlyIncome()
	}
	return historicalAvg
}

// SetEnabled toggles the scenario overlay.
func (s *Store) SetEnabled(enabled bool) {
	s.apply(func(sc *core.Scenario) { sc.Enabled = enabled })
}

// SetSalary sets the projected annual salary, clamped at zero.
func (s *Store) SetSalary(annual core.Money) {
	s.apply(func(sc *core.Scenario) { sc.SalaryAnnual = annual.ClampNonNegative() })
}

// SetBonus sets the projected annual bonus and its payout frequency.
// The frequency is stored but does not participate in the math.
func (s *Store) SetBonus(annual core.Money, freq core.BonusFrequency) {
	s.apply(func(sc *core.Scenario) {
		sc.BonusAnnual = annual.ClampNonNegative()
		if freq.IsValid() {
			sc.BonusFrequency = freq
		}
	})
}

// SetStock sets the projected annual stock value, clamped at zero.
func (s *Store) SetStock(annual core.Money) {
	s.apply(func(sc *core.Scenario) { sc.StockAnnual = annual.ClampNonNegative() })
}

// ToggleExpenseBucket flips a bucket's include flag. Unknown buckets
// are ignored.
func (s *Store) ToggleExpenseBucket(b core.Bucket) {
	if !core.IsValidBucket(b) {
		return
	}
	s.apply(func(sc *core.Scenario) { sc.ExpenseBuckets[b] = !sc.BucketIncluded(b) })
}

// ResetExpenseBuckets includes every bucket again.
func (s *Store) ResetExpenseBuckets() {
	s.apply(func(sc *core.Scenario) {
		for _, b := range core.AllBuckets() {
			sc.ExpenseBuckets[b] = true
		}
	})
}

// ResetToCurrent pre-fills the salary from the historical monthly
// average (x12) and zeroes bonus and stock.
func (s *Store) ResetToCurrent(historicalAvgMonthlyIncome core.Money) {
	s.apply(func(sc *core.Scenario) {
		sc.SalaryAnnual = historicalAvgMonthlyIncome.ClampNonNegative().Mul(12)
		sc.BonusAnnual = core.Money{}
		sc.StockAnnual = core.Money{}
	})
}

// Replace swaps in a whole scenario document, sanitized. Used by the
// HTTP layer for full-document updates.
func (s *Store) Replace(sc core.Scenario) {
	clean := sc.Sanitized()
	s.apply(func(cur *core.Scenario) { *cur = clean })
}

// ClearScenario resets everything to defaults.
func (s *Store) ClearScenario() {
	s.apply(func(sc *core.Scenario) { *sc = core.DefaultScenario() })
}

// apply runs a mutation under the lock and arms the debounce timer.
// Consecutive edits inside the quiet window collapse into one write
// carrying the latest state.
func (s *Store) apply(mutate func(*core.Scenario)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	mutate(&s.sc)
	if s.state != StateFlushing {
		s.state = StateDirty
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.Debounce, s.flush)
}

// flush performs the write-behind persistence write.
func (s *Store) flush() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = StateFlushing
	s.timer = nil
	doc := s.sc.Clone()
	ctx := s.flushCtx
	if ctx == nil {
		ctx = context.Background()
	}
	updatedAt := s.now()
	s.mu.Unlock()

	err := s.docs.Save(ctx, doc, updatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Keep local state; the user keeps editing and the next
		// debounce cycle retries.
		s.lastErr = err.Error()
		slog.Error("Scenario write failed, will retry", "error", err)
		if s.state == StateFlushing {
			s.state = StateDirty
		}
		if !s.closed && s.timer == nil {
			s.timer = time.AfterFunc(s.cfg.Debounce, s.flush)
		}
		return
	}
	s.lastErr = ""
	s.suppressUntil = s.now().Add(s.cfg.EchoSuppress)
	if s.state == StateFlushing {
		if s.timer != nil {
			// Edits landed while the write was in flight.
			s.state = StateDirty
		} else {
			s.state = StateIdle
		}
	}
}

// applySnapshot merges an inbound remote snapshot. Snapshots arriving
// while a write is in flight, or inside the post-write grace window,
// are our own echoes and are discarded; otherwise the remote document
// is authoritative (last writer wins across devices).
func (s *Store) applySnapshot(sc core.Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.state == StateFlushing || s.now().Before(s.suppressUntil) {
		return
	}
	s.sc = sc.Sanitized()
	s.state = StateIdle
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
