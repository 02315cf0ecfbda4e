package core

import "encoding/json"

// BonusFrequency is how often the projected bonus pays out. It is stored
// and persisted for forward compatibility; the math only ever consumes
// the annualized bonus value.
type BonusFrequency string

const (
	BonusAnnual     BonusFrequency = "annual"
	BonusSemiannual BonusFrequency = "semiannual"
	BonusQuarterly  BonusFrequency = "quarterly"
)

// IsValid reports whether f is a recognized frequency.
func (f BonusFrequency) IsValid() bool {
	switch f {
	case BonusAnnual, BonusSemiannual, BonusQuarterly:
		return true
	}
	return false
}

// Scenario is the user-authored income and expense-filter overlay applied
// on top of historical averages. All monetary fields are annual amounts
// in minor units and are never negative.
type Scenario struct {
	Enabled        bool
	SalaryAnnual   Money
	BonusAnnual    Money
	BonusFrequency BonusFrequency
	StockAnnual    Money
	ExpenseBuckets map[Bucket]bool
}

// DefaultScenario returns the scenario created lazily on first read:
// disabled, zero income, every bucket included.
func DefaultScenario() Scenario {
	return Scenario{
		BonusFrequency: BonusAnnual,
		ExpenseBuckets: defaultBuckets(),
	}
}

func defaultBuckets() map[Bucket]bool {
	m := make(map[Bucket]bool, 4)
	for _, b := range AllBuckets() {
		m[b] = true
	}
	return m
}

// Sanitized merges s with defaults field by field: monetary negatives are
// clamped to zero, unknown bucket keys are dropped, missing bucket keys
// default to true, and an unrecognized frequency falls back to annual.
// Loads from any persistence backend pass through here.
func (s Scenario) Sanitized() Scenario {
	out := Scenario{
		Enabled:        s.Enabled,
		SalaryAnnual:   s.SalaryAnnual.ClampNonNegative(),
		BonusAnnual:    s.BonusAnnual.ClampNonNegative(),
		BonusFrequency: s.BonusFrequency,
		StockAnnual:    s.StockAnnual.ClampNonNegative(),
		ExpenseBuckets: defaultBuckets(),
	}
	if !out.BonusFrequency.IsValid() {
		out.BonusFrequency = BonusAnnual
	}
	for b, included := range s.ExpenseBuckets {
		if IsValidBucket(b) {
			out.ExpenseBuckets[b] = included
		}
	}
	return out
}

// Clone returns a deep copy; the bucket map is never shared.
func (s Scenario) Clone() Scenario {
	out := s
	out.ExpenseBuckets = make(map[Bucket]bool, len(s.ExpenseBuckets))
	for b, included := range s.ExpenseBuckets {
		out.ExpenseBuckets[b] = included
	}
	return out
}

// MonthlyIncome is the projected monthly income implied by the three
// annual fields.
func (s Scenario) MonthlyIncome() Money {
	return s.SalaryAnnual.Add(s.BonusAnnual).Add(s.StockAnnual).Div(12)
}

// HasValues reports whether any of the three annual income fields is set.
func (s Scenario) HasValues() bool {
	return s.SalaryAnnual.IsPositive() || s.BonusAnnual.IsPositive() || s.StockAnnual.IsPositive()
}

// HasExpenseFilters reports whether any bucket is excluded.
func (s Scenario) HasExpenseFilters() bool {
	for _, b := range AllBuckets() {
		if !s.BucketIncluded(b) {
			return true
		}
	}
	return false
}

// BucketIncluded reports whether b participates in scenario expenses.
// Missing keys count as included.
func (s Scenario) BucketIncluded(b Bucket) bool {
	included, ok := s.ExpenseBuckets[b]
	if !ok {
		return true
	}
	return included
}

// Equal reports whether two scenarios are semantically identical after
// sanitization. The store uses it to recognize self-echoed snapshots.
func (s Scenario) Equal(o Scenario) bool {
	a, b := s.Sanitized(), o.Sanitized()
	if a.Enabled != b.Enabled ||
		a.SalaryAnnual != b.SalaryAnnual ||
		a.BonusAnnual != b.BonusAnnual ||
		a.BonusFrequency != b.BonusFrequency ||
		a.StockAnnual != b.StockAnnual {
		return false
	}
	for _, bucket := range AllBuckets() {
		if a.ExpenseBuckets[bucket] != b.ExpenseBuckets[bucket] {
			return false
		}
	}
	return true
}

// Wire format shared by the remote document and local durable storage.
type scenarioJSON struct {
	Enabled bool `json:"enabled"`
	Salary  struct {
		Annual int64 `json:"annual"`
	} `json:"salary"`
	Bonus struct {
		Annual    int64  `json:"annual"`
		Frequency string `json:"frequency"`
	} `json:"bonus"`
	Stock struct {
		AnnualValue int64 `json:"annualValue"`
	} `json:"stock"`
	ExpenseBuckets map[string]bool `json:"expenseBuckets"`
}

func (s Scenario) MarshalJSON() ([]byte, error) {
	var w scenarioJSON
	w.Enabled = s.Enabled
	w.Salary.Annual = s.SalaryAnnual.Cents
	w.Bonus.Annual = s.BonusAnnual.Cents
	w.Bonus.Frequency = string(s.BonusFrequency)
	w.Stock.AnnualValue = s.StockAnnual.Cents
	w.ExpenseBuckets = make(map[string]bool, len(s.ExpenseBuckets))
	for b, included := range s.ExpenseBuckets {
		w.ExpenseBuckets[string(b)] = included
	}
	return json.Marshal(w)
}

func (s *Scenario) UnmarshalJSON(data []byte) error {
	var w scenarioJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	in := Scenario{
		Enabled:        w.Enabled,
		SalaryAnnual:   Money{Cents: w.Salary.Annual},
		BonusAnnual:    Money{Cents: w.Bonus.Annual},
		BonusFrequency: BonusFrequency(w.Bonus.Frequency),
		StockAnnual:    Money{Cents: w.Stock.AnnualValue},
		ExpenseBuckets: make(map[Bucket]bool, len(w.ExpenseBuckets)),
	}
	for b, included := range w.ExpenseBuckets {
		in.ExpenseBuckets[Bucket(b)] = included
	}
	*s = in.Sanitized()
	return nil
}
