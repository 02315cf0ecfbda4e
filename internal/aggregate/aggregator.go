// Package aggregate folds a categorized transaction stream into the
// ordered monthly series the runway calculator consumes.
package aggregate

import (
	"sort"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

// Transaction is a single categorized ledger entry. Amount is signed
// minor units: positive amounts are income, negative amounts are
// expenses. Transfers between user-owned accounts carry Transfer=true
// and never count toward income or expenses.
type Transaction struct {
	ID       string
	Date     time.Time
	Amount   core.Money
	Category string
	Transfer bool
}

// CategoryMap maps provider categories onto the four spending buckets.
// The mapping is injected policy so callers (and tests) control it.
type CategoryMap struct {
	byCategory map[string]core.Bucket
	fallback   core.Bucket
}

// NewCategoryMap builds a mapping table. Entries pointing at an invalid
// bucket are dropped. An invalid fallback becomes guiltFree.
func NewCategoryMap(entries map[string]core.Bucket, fallback core.Bucket) *CategoryMap {
	m := &CategoryMap{
		byCategory: make(map[string]core.Bucket, len(entries)),
		fallback:   fallback,
	}
	if !core.IsValidBucket(m.fallback) {
		m.fallback = core.BucketGuiltFree
	}
	for cat, b := range entries {
		if core.IsValidBucket(b) {
			m.byCategory[cat] = b
		}
	}
	return m
}

// BucketFor resolves a provider category to its bucket.
func (m *CategoryMap) BucketFor(category string) core.Bucket {
	if b, ok := m.byCategory[category]; ok {
		return b
	}
	return m.fallback
}

// windowMonths is the minimum history the series covers: the last 12
// completed months plus the current one.
const windowMonths = 12

// Monthly aggregates transactions into ascending monthly buckets. The
// series always spans at least the 12 completed months before now plus
// the current month, with inactive months present as zeros so charts
// show gaps. Older transactions extend the series backwards.
func Monthly(txns []Transaction, now time.Time, categories *CategoryMap) []core.MonthlyBucket {
	if categories == nil {
		categories = NewCategoryMap(nil, core.BucketGuiltFree)
	}

	byKey := make(map[string]*core.MonthlyBucket)
	ensure := func(t time.Time) *core.MonthlyBucket {
		key := t.Format(core.MonthKeyLayout)
		if b, ok := byKey[key]; ok {
			return b
		}
		b := core.NewMonthlyBucket(t)
		byKey[key] = &b
		return &b
	}

	// Seed the fixed window so empty months appear as zeros.
	cur := firstOfMonth(now)
	for i := 0; i <= windowMonths; i++ {
		ensure(cur.AddDate(0, -i, 0))
	}

	for _, tx := range txns {
		if tx.Date.IsZero() || tx.Transfer {
			continue
		}
		if tx.Date.After(now) {
			continue
		}
		b := ensure(firstOfMonth(tx.Date))
		switch {
		case tx.Amount.IsPositive():
			b.Income = b.Income.Add(tx.Amount)
		case tx.Amount.IsNegative():
			amount := tx.Amount.Abs()
			b.Expenses = b.Expenses.Add(amount)
			bucket := categories.BucketFor(tx.Category)
			b.ByBucket[bucket] = b.ByBucket[bucket].Add(amount)
		}
	}

	out := make([]core.MonthlyBucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MonthKey < out[j].MonthKey
	})
	return out
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
