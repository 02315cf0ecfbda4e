package scenario

import (
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/runway"
)

// Overrides converts a scenario plus the monthly series into calculator
// options. This is the only place bucket filters influence numbers; the
// calculator itself is bucket-agnostic.
//
// The income override is set when the scenario is enabled and carries
// values; the expense override is set when the scenario is enabled and
// excludes at least one bucket. Otherwise the corresponding field stays
// nil and the calculator falls back to historical averages.
func Overrides(sc core.Scenario, monthly []core.MonthlyBucket, opts runway.Options) runway.Options {
	if !sc.Enabled {
		return opts
	}

	if sc.HasValues() {
		income := sc.MonthlyIncome()
		opts.ScenarioIncome = &income
	}

	if sc.HasExpenseFilters() {
		expenses := filteredAvgExpenses(sc, monthly, opts.PeriodMonths)
		opts.ScenarioExpenses = &expenses
	}

	return opts
}

// filteredAvgExpenses averages the included buckets over the recent
// window, using the same window and active-month rules as the
// calculator's historical averages.
func filteredAvgExpenses(sc core.Scenario, monthly []core.MonthlyBucket, periodMonths int) core.Money {
	switch periodMonths {
	case 3, 6, 12:
	default:
		periodMonths = runway.DefaultPeriodMonths
	}
	if len(monthly) > periodMonths {
		monthly = monthly[len(monthly)-periodMonths:]
	}

	var sum core.Money
	var active int64
	for _, m := range monthly {
		if !m.HasActivity() {
			continue
		}
		active++
		for _, b := range core.AllBuckets() {
			if sc.BucketIncluded(b) {
				sum = sum.Add(m.ByBucket[b])
			}
		}
	}
	if active == 0 {
		active = 1
	}
	return sum.Div(active)
}
