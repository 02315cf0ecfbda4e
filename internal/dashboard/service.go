// Package dashboard orchestrates the runway pipeline: pull raw data
// from the configured source, normalize and aggregate it, apply the
// income scenario, and run the calculator.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/accounts"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/aggregate"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/cache"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/runway"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/scenario"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/source"
)

var (
	ErrNoExporter = errors.New("no exporter configured")
	ErrNoScenario = errors.New("no scenario store configured")
)

// ProjectionExporter pushes a computed result to an external sink.
type ProjectionExporter interface {
	ExportProjection(ctx context.Context, result runway.Result) error
}

// snapshot is the fetched and aggregated upstream data for one user.
// Caching stops at this layer; the calculator itself is cheap and the
// scenario changes underneath it without touching upstream data.
type snapshot struct {
	Accounts []core.Account
	Monthly  []core.MonthlyBucket
}

const (
	cacheSize = 64
	cacheTTL  = 5 * time.Minute
)

type Options struct {
	PeriodMonths        int
	ProjectionCapMonths int
	GrowthCapMultiplier int64
}

// Service computes runway results on demand.
type Service struct {
	src      source.Backend
	scenario *scenario.Store
	exporter ProjectionExporter
	cache    *cache.LRUCache[snapshot]
	opts     Options
	now      func() time.Time
}

func NewService(src source.Backend, sc *scenario.Store, exporter ProjectionExporter, opts Options) *Service {
	return &Service{
		src:      src,
		scenario: sc,
		exporter: exporter,
		cache:    cache.NewLRUCache[snapshot](cacheSize, cacheTTL),
		opts:     opts,
		now:      time.Now,
	}
}

// Cache exposes the snapshot cache for sweep registration.
func (s *Service) Cache() cache.Cleaner {
	return s.cache
}

// Scenario exposes the scenario store for the HTTP layer.
func (s *Service) Scenario() *scenario.Store {
	return s.scenario
}

// Runway computes the runway result for a user. periodMonths <= 0
// falls back to the configured default.
func (s *Service) Runway(ctx context.Context, userID string, periodMonths int) (runway.Result, error) {
	now := s.now()

	snap, err := s.snapshot(ctx, userID, now)
	if err != nil {
		return runway.Result{}, err
	}

	if periodMonths <= 0 {
		periodMonths = s.opts.PeriodMonths
	}
	opts := runway.Options{
		PeriodMonths:        periodMonths,
		ProjectionCapMonths: s.opts.ProjectionCapMonths,
		GrowthCapMultiplier: s.opts.GrowthCapMultiplier,
	}
	if s.scenario != nil {
		opts = scenario.Overrides(s.scenario.Scenario(), snap.Monthly, opts)
	}

	return runway.Calculate(snap.Accounts, snap.Monthly, now, opts), nil
}

// ResetScenarioToCurrent seeds the scenario salary from the user's
// historical average income and clears bonus and stock.
func (s *Service) ResetScenarioToCurrent(ctx context.Context, userID string) error {
	if s.scenario == nil {
		return ErrNoScenario
	}
	snap, err := s.snapshot(ctx, userID, s.now())
	if err != nil {
		return err
	}
	baseline := runway.Calculate(snap.Accounts, snap.Monthly, s.now(), runway.Options{
		PeriodMonths: s.opts.PeriodMonths,
	})
	s.scenario.ResetToCurrent(baseline.HistoricalAvgMonthlyIncome)
	return nil
}

// ExportProjection computes the current result and pushes its
// projection to the configured exporter.
func (s *Service) ExportProjection(ctx context.Context, userID string, periodMonths int) error {
	if s.exporter == nil {
		return ErrNoExporter
	}
	result, err := s.Runway(ctx, userID, periodMonths)
	if err != nil {
		return err
	}
	return s.exporter.ExportProjection(ctx, result)
}

// InvalidateUser drops cached upstream data for a user. Called when a
// budget refresh event arrives; the next request refetches.
func (s *Service) InvalidateUser(ctx context.Context, userID string) {
	removed := s.cache.DeletePrefix(userID + ":")
	if removed > 0 {
		slog.InfoContext(ctx, "Invalidated cached data", "user_id", userID, "entries", removed)
	}
}

// snapshot returns cached upstream data or fetches and aggregates it.
// The month tag in the key rolls the window forward at month boundaries.
func (s *Service) snapshot(ctx context.Context, userID string, now time.Time) (snapshot, error) {
	key := fmt.Sprintf("%s:data:%s", userID, now.Format("2006-01"))
	if snap, ok := s.cache.Get(key); ok {
		return snap, nil
	}

	rawAccounts, err := s.src.ListAccounts(ctx, userID)
	if err != nil {
		return snapshot{}, fmt.Errorf("list accounts: %w", err)
	}
	txns, err := s.src.ListTransactions(ctx, userID)
	if err != nil {
		return snapshot{}, fmt.Errorf("list transactions: %w", err)
	}
	rawCats, err := s.src.ListCategories(ctx, userID)
	if err != nil {
		return snapshot{}, fmt.Errorf("list categories: %w", err)
	}

	entries := make(map[string]core.Bucket, len(rawCats))
	for cat, b := range rawCats {
		entries[cat] = core.Bucket(b)
	}
	categories := aggregate.NewCategoryMap(entries, core.BucketGuiltFree)

	snap := snapshot{
		Accounts: accounts.Normalize(rawAccounts),
		Monthly:  aggregate.Monthly(txns, now, categories),
	}
	s.cache.Set(key, snap)

	slog.DebugContext(ctx, "Fetched upstream data",
		"user_id", userID,
		"accounts", len(snap.Accounts),
		"months", len(snap.Monthly))

	return snap, nil
}
