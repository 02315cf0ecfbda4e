package aggregate

import (
	"testing"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

var testCategories = NewCategoryMap(map[string]core.Bucket{
	"Rent":      core.BucketFixedCosts,
	"Groceries": core.BucketFixedCosts,
	"Brokerage": core.BucketInvestments,
	"Emergency": core.BucketSavings,
	"Dining":    core.BucketGuiltFree,
}, core.BucketGuiltFree)

func TestMonthlyWindowAndOrdering(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	got := Monthly(nil, now, testCategories)

	if len(got) != 13 {
		t.Fatalf("series length = %d, want 13 (12 completed months + current)", len(got))
	}
	if got[0].MonthKey != "2024-06" {
		t.Errorf("first month = %s, want 2024-06", got[0].MonthKey)
	}
	if got[len(got)-1].MonthKey != "2025-06" {
		t.Errorf("last month = %s, want 2025-06", got[len(got)-1].MonthKey)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].MonthKey >= got[i].MonthKey {
			t.Fatalf("series not ascending at %d: %s >= %s", i, got[i-1].MonthKey, got[i].MonthKey)
		}
	}
}

func TestMonthlySignsAndBuckets(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	may := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
	txns := []Transaction{
		{ID: "t1", Date: may, Amount: core.CentsOf(500_000), Category: "Paycheck"},
		{ID: "t2", Date: may, Amount: core.CentsOf(-180_000), Category: "Rent"},
		{ID: "t3", Date: may, Amount: core.CentsOf(-20_000), Category: "Dining"},
		{ID: "t4", Date: may, Amount: core.CentsOf(-50_000), Category: "Brokerage"},
		{ID: "t5", Date: may, Amount: core.CentsOf(-7_500), Category: "Unmapped Category"},
	}

	series := Monthly(txns, now, testCategories)
	var bucket core.MonthlyBucket
	for _, b := range series {
		if b.MonthKey == "2025-05" {
			bucket = b
		}
	}

	if bucket.Income.Cents != 500_000 {
		t.Errorf("income = %d, want 500000", bucket.Income.Cents)
	}
	if bucket.Expenses.Cents != 257_500 {
		t.Errorf("expenses = %d, want 257500", bucket.Expenses.Cents)
	}
	if err := bucket.Validate(); err != nil {
		t.Errorf("bucket invariant broken: %v", err)
	}
	if got := bucket.ByBucket[core.BucketFixedCosts].Cents; got != 180_000 {
		t.Errorf("fixedCosts = %d, want 180000", got)
	}
	if got := bucket.ByBucket[core.BucketGuiltFree].Cents; got != 27_500 {
		t.Errorf("guiltFree = %d, want 27500 (dining plus unmapped fallback)", got)
	}
	if got := bucket.ByBucket[core.BucketInvestments].Cents; got != 50_000 {
		t.Errorf("investments = %d, want 50000", got)
	}
}

func TestMonthlyExcludesTransfersAndBadRecords(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	may := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
	txns := []Transaction{
		{ID: "t1", Date: may, Amount: core.CentsOf(-100_000), Category: "Rent"},
		{ID: "t2", Date: may, Amount: core.CentsOf(-999_900), Category: "Rent", Transfer: true},
		{ID: "t3", Amount: core.CentsOf(-50_000), Category: "Rent"}, // zero date
		{ID: "t4", Date: now.AddDate(0, 1, 0), Amount: core.CentsOf(-1_000), Category: "Rent"},
	}

	series := Monthly(txns, now, testCategories)
	var total int64
	for _, b := range series {
		total += b.Expenses.Cents
	}
	if total != 100_000 {
		t.Errorf("total expenses = %d, want 100000 (transfer, undated, and future entries excluded)", total)
	}
}

func TestMonthlyExtendsBackwardsForOldTransactions(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	old := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	txns := []Transaction{{ID: "t1", Date: old, Amount: core.CentsOf(-5_000), Category: "Rent"}}

	series := Monthly(txns, now, testCategories)
	if series[0].MonthKey != "2023-01" {
		t.Errorf("first month = %s, want 2023-01", series[0].MonthKey)
	}
}

func TestNewCategoryMapDropsInvalidEntries(t *testing.T) {
	m := NewCategoryMap(map[string]core.Bucket{
		"Rent":   core.BucketFixedCosts,
		"Broken": core.Bucket("vacation"),
	}, core.Bucket("nonsense"))

	if got := m.BucketFor("Rent"); got != core.BucketFixedCosts {
		t.Errorf("BucketFor(Rent) = %s", got)
	}
	if got := m.BucketFor("Broken"); got != core.BucketGuiltFree {
		t.Errorf("invalid entry should fall back, got %s", got)
	}
	if got := m.BucketFor("Anything"); got != core.BucketGuiltFree {
		t.Errorf("invalid fallback should become guiltFree, got %s", got)
	}
}
