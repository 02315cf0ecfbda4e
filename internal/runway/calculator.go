// Package runway implements the cash-runway engine: reserve breakdown,
// historical averages, pure/net runway months, a bounded balance
// projection, and a health classification.
//
// Calculate is a pure function of its inputs. Time never comes from the
// process clock; callers pass now explicitly, which is what makes the
// results reproducible in tests.
package runway

import (
	"math"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

// Health classifies the runway by worst-case (pure) burn.
type Health string

const (
	HealthCritical  Health = "critical"
	HealthCaution   Health = "caution"
	HealthHealthy   Health = "healthy"
	HealthExcellent Health = "excellent"
)

// Defaults for Options fields left at zero.
const (
	DefaultPeriodMonths        = 6
	DefaultProjectionCapMonths = 24
	DefaultGrowthCapMultiplier = 2
	emptyProjectionMonths      = 6
)

// Options control the historical window and the optional scenario
// overrides. A nil override falls back to the historical average.
type Options struct {
	// PeriodMonths is the size of the historical window: 3, 6, or 12.
	PeriodMonths int

	// ScenarioIncome replaces the historical average income when set.
	ScenarioIncome *core.Money

	// ScenarioExpenses replaces the historical average expenses when set.
	ScenarioExpenses *core.Money

	// ProjectionCapMonths is the hard ceiling on projection length.
	ProjectionCapMonths int

	// GrowthCapMultiplier bounds the net projection at multiplier x cash
	// reserves. This is a chart-domain clamp, not a financial model.
	GrowthCapMultiplier int64
}

func (o Options) withDefaults() Options {
	switch o.PeriodMonths {
	case 3, 6, 12:
	default:
		o.PeriodMonths = DefaultPeriodMonths
	}
	if o.ProjectionCapMonths <= 0 {
		o.ProjectionCapMonths = DefaultProjectionCapMonths
	}
	if o.GrowthCapMultiplier <= 0 {
		o.GrowthCapMultiplier = DefaultGrowthCapMultiplier
	}
	return o
}

// CashBreakdown splits liquid reserves by where they sit.
type CashBreakdown struct {
	Checking   core.Money
	Savings    core.Money
	ManualCash core.Money
}

// ProjectionPoint is one month of the forward balance projection.
type ProjectionPoint struct {
	Month       string
	PureBalance core.Money
	NetBalance  core.Money
}

// SpendingPoint is one month of the historical income/expense series.
type SpendingPoint struct {
	Month    string
	Income   core.Money
	Expenses core.Money
}

// Result is the full runway computation. It is an immutable value;
// callers never mutate it.
type Result struct {
	CashReserves core.Money
	Breakdown    CashBreakdown

	AvgMonthlyIncome   core.Money
	AvgMonthlyExpenses core.Money
	AvgMonthlyNet      core.Money

	HistoricalAvgMonthlyIncome   core.Money
	HistoricalAvgMonthlyExpenses core.Money

	// PureRunwayMonths and NetRunwayMonths may be +Inf.
	PureRunwayMonths float64
	NetRunwayMonths  float64

	Projection         []ProjectionPoint
	HistoricalSpending []SpendingPoint

	Health Health

	UsingScenarioIncome   bool
	UsingScenarioExpenses bool
}

// Calculate produces the runway result for the given accounts, monthly
// series, and options. It is total: malformed or empty inputs yield a
// well-formed result, never a panic or error.
func Calculate(accounts []core.Account, monthly []core.MonthlyBucket, now time.Time, opts Options) Result {
	opts = opts.withDefaults()

	breakdown := cashBreakdown(accounts)
	reserves := breakdown.Checking.Add(breakdown.Savings).Add(breakdown.ManualCash)

	window := recentWindow(monthly, opts.PeriodMonths)
	histIncome, histExpenses := historicalAverages(window)

	res := Result{
		CashReserves:                 reserves,
		Breakdown:                    breakdown,
		HistoricalAvgMonthlyIncome:   histIncome,
		HistoricalAvgMonthlyExpenses: histExpenses,
		HistoricalSpending:           spendingSeries(window),
	}

	res.AvgMonthlyIncome = histIncome
	if opts.ScenarioIncome != nil {
		res.AvgMonthlyIncome = *opts.ScenarioIncome
		res.UsingScenarioIncome = true
	}
	res.AvgMonthlyExpenses = histExpenses
	if opts.ScenarioExpenses != nil {
		res.AvgMonthlyExpenses = *opts.ScenarioExpenses
		res.UsingScenarioExpenses = true
	}
	res.AvgMonthlyNet = res.AvgMonthlyIncome.Sub(res.AvgMonthlyExpenses)

	res.PureRunwayMonths = runwayMonths(reserves, res.AvgMonthlyExpenses)
	if res.AvgMonthlyNet.Cents >= 0 {
		res.NetRunwayMonths = math.Inf(1)
	} else {
		res.NetRunwayMonths = runwayMonths(reserves, res.AvgMonthlyNet.Abs())
	}

	empty := reserves.IsZero() && res.AvgMonthlyIncome.IsZero() && res.AvgMonthlyExpenses.IsZero()
	res.Projection = project(reserves, res.AvgMonthlyExpenses, res.AvgMonthlyNet, now, opts, res.PureRunwayMonths, empty)

	if empty {
		// No cash and no activity: the runway is formally infinite but
		// there is nothing to run on.
		res.Health = HealthCritical
	} else {
		res.Health = classify(res.PureRunwayMonths)
	}

	return res
}

// cashBreakdown sums open-account balances into the liquid categories.
// Investments are excluded because they are not liquid for runway
// purposes; credit and loan balances are liabilities, not cash.
func cashBreakdown(accounts []core.Account) CashBreakdown {
	var b CashBreakdown
	for _, a := range accounts {
		if a.IsClosed() {
			continue
		}
		switch {
		case a.Type == core.TypeChecking:
			b.Checking = b.Checking.Add(a.Balance)
		case a.Type == core.TypeSavings:
			b.Savings = b.Savings.Add(a.Balance)
		case a.Type == core.TypeCash:
			b.ManualCash = b.ManualCash.Add(a.Balance)
		case a.Source == core.SourceManual && a.Type != core.TypeInvestment && !a.IsLiability():
			b.ManualCash = b.ManualCash.Add(a.Balance)
		}
	}
	return b
}

// recentWindow takes the most recent n buckets and drops the ones with
// no activity.
func recentWindow(monthly []core.MonthlyBucket, n int) []core.MonthlyBucket {
	if len(monthly) > n {
		monthly = monthly[len(monthly)-n:]
	}
	out := make([]core.MonthlyBucket, 0, len(monthly))
	for _, m := range monthly {
		if m.HasActivity() {
			out = append(out, m)
		}
	}
	return out
}

func historicalAverages(window []core.MonthlyBucket) (income, expenses core.Money) {
	n := int64(len(window))
	if n == 0 {
		n = 1
	}
	for _, m := range window {
		income = income.Add(m.Income)
		expenses = expenses.Add(m.Expenses)
	}
	return income.Div(n), expenses.Div(n)
}

func spendingSeries(window []core.MonthlyBucket) []SpendingPoint {
	out := make([]SpendingPoint, 0, len(window))
	for _, m := range window {
		out = append(out, SpendingPoint{Month: m.MonthName, Income: m.Income, Expenses: m.Expenses})
	}
	return out
}

// runwayMonths is reserves over burn, +Inf when there is no burn, and
// never negative.
func runwayMonths(reserves, burn core.Money) float64 {
	if !burn.IsPositive() {
		return math.Inf(1)
	}
	months := float64(reserves.Cents) / float64(burn.Cents)
	if months < 0 {
		return 0
	}
	return months
}

// project builds the forward balance series. The horizon runs three
// months past the pure runway, floored at six months ahead and capped
// at ProjectionCapMonths. An infinite pure runway projects to the cap,
// except for the canonical empty result which keeps the six-month floor.
func project(reserves, avgExpenses, avgNet core.Money, now time.Time, opts Options, pureMonths float64, empty bool) []ProjectionPoint {
	var horizon int
	switch {
	case empty:
		horizon = emptyProjectionMonths
	case math.IsInf(pureMonths, 1):
		horizon = opts.ProjectionCapMonths
	default:
		horizon = int(math.Ceil(math.Max(pureMonths, 6))) + 3
		if horizon > opts.ProjectionCapMonths {
			horizon = opts.ProjectionCapMonths
		}
	}

	growthCap := reserves.Mul(opts.GrowthCapMultiplier)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	out := make([]ProjectionPoint, 0, horizon+1)
	for i := 0; i <= horizon; i++ {
		month := start.AddDate(0, i, 0)
		p := ProjectionPoint{Month: month.Format(core.MonthNameLayout)}

		p.PureBalance = reserves.Sub(avgExpenses.Mul(int64(i))).ClampNonNegative()

		if avgNet.Cents >= 0 {
			net := reserves.Add(avgNet.Mul(int64(i)))
			if net.Cents > growthCap.Cents {
				net = growthCap
			}
			p.NetBalance = net
		} else {
			p.NetBalance = reserves.Sub(avgNet.Abs().Mul(int64(i))).ClampNonNegative()
		}

		out = append(out, p)
	}
	return out
}

// classify grades the worst-case burn. Exactly six months still counts
// as caution.
func classify(pureMonths float64) Health {
	switch {
	case pureMonths < 3:
		return HealthCritical
	case pureMonths <= 6:
		return HealthCaution
	case pureMonths < 12:
		return HealthHealthy
	default:
		return HealthExcellent
	}
}
