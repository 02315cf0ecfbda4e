package core

import (
	"errors"
	"time"
)

// Bucket is one of the four coarse expense classes of the spending plan.
type Bucket string

const (
	BucketFixedCosts  Bucket = "fixedCosts"
	BucketInvestments Bucket = "investments"
	BucketSavings     Bucket = "savings"
	BucketGuiltFree   Bucket = "guiltFree"
)

// AllBuckets returns the fixed bucket set in stable order.
func AllBuckets() []Bucket {
	return []Bucket{BucketFixedCosts, BucketInvestments, BucketSavings, BucketGuiltFree}
}

// IsValidBucket reports whether b belongs to the fixed bucket set.
func IsValidBucket(b Bucket) bool {
	switch b {
	case BucketFixedCosts, BucketInvestments, BucketSavings, BucketGuiltFree:
		return true
	}
	return false
}

var ErrBucketMismatch = errors.New("expenses do not equal the sum of per-bucket expenses")

// MonthKeyLayout is the time layout for MonthlyBucket.MonthKey.
const MonthKeyLayout = "2006-01"

// MonthNameLayout is the time layout for human month labels.
const MonthNameLayout = "Jan 2006"

// MonthlyBucket is one month of aggregated income and expenses.
// Income and Expenses are non-negative; Expenses always equals the sum
// of ByBucket values.
type MonthlyBucket struct {
	MonthKey  string // YYYY-MM, ascending sort key
	MonthName string
	Income    Money
	Expenses  Money
	ByBucket  map[Bucket]Money
}

// NewMonthlyBucket returns an empty bucket for the month containing t.
func NewMonthlyBucket(t time.Time) MonthlyBucket {
	return MonthlyBucket{
		MonthKey:  t.Format(MonthKeyLayout),
		MonthName: t.Format(MonthNameLayout),
		ByBucket:  make(map[Bucket]Money, 4),
	}
}

// HasActivity reports whether the month carries any income or expenses.
// Months without activity are excluded from historical averages.
func (m MonthlyBucket) HasActivity() bool {
	return m.Income.IsPositive() || m.Expenses.IsPositive()
}

func (m MonthlyBucket) Validate() error {
	if m.Income.IsNegative() || m.Expenses.IsNegative() {
		return ErrNegativeAmount
	}
	var sum Money
	for _, v := range m.ByBucket {
		sum = sum.Add(v)
	}
	if sum.Cents != m.Expenses.Cents {
		return ErrBucketMismatch
	}
	return nil
}
