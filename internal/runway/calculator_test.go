package runway

import (
	"math"
	"testing"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

var testNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func checking(id string, cents int64) core.Account {
	return core.Account{ID: id, Name: id, Source: core.SourceBudgetService, Type: core.TypeChecking, Balance: core.CentsOf(cents)}
}

func savings(id string, cents int64) core.Account {
	return core.Account{ID: id, Name: id, Source: core.SourceBudgetService, Type: core.TypeSavings, Balance: core.CentsOf(cents)}
}

// flatMonths builds n consecutive months ending just before testNow,
// each with the given income and expenses (all expenses in fixedCosts).
func flatMonths(n int, incomeCents, expenseCents int64) []core.MonthlyBucket {
	out := make([]core.MonthlyBucket, 0, n)
	for i := n; i >= 1; i-- {
		b := core.NewMonthlyBucket(testNow.AddDate(0, -i, 0))
		b.Income = core.CentsOf(incomeCents)
		b.Expenses = core.CentsOf(expenseCents)
		b.ByBucket[core.BucketFixedCosts] = core.CentsOf(expenseCents)
		out = append(out, b)
	}
	return out
}

func TestCalculateAllZero(t *testing.T) {
	res := Calculate(nil, nil, testNow, Options{})

	if !res.CashReserves.IsZero() {
		t.Errorf("cashReserves = %d, want 0", res.CashReserves.Cents)
	}
	if !math.IsInf(res.PureRunwayMonths, 1) {
		t.Errorf("pureRunwayMonths = %v, want +Inf", res.PureRunwayMonths)
	}
	if res.Health != HealthCritical {
		t.Errorf("health = %s, want critical", res.Health)
	}
	if len(res.Projection) != 7 {
		t.Errorf("projection length = %d, want 7", len(res.Projection))
	}
	for i, p := range res.Projection {
		if !p.PureBalance.IsZero() || !p.NetBalance.IsZero() {
			t.Errorf("projection[%d] not zero: %+v", i, p)
		}
	}
}

func TestCalculateSteadyCashNoIncome(t *testing.T) {
	accounts := []core.Account{checking("c1", 600_000)}
	monthly := flatMonths(6, 0, 100_000)

	res := Calculate(accounts, monthly, testNow, Options{})

	if res.CashReserves.Cents != 600_000 {
		t.Errorf("cashReserves = %d, want 600000", res.CashReserves.Cents)
	}
	if res.AvgMonthlyExpenses.Cents != 100_000 {
		t.Errorf("avgMonthlyExpenses = %d, want 100000", res.AvgMonthlyExpenses.Cents)
	}
	if res.PureRunwayMonths != 6 {
		t.Errorf("pureRunwayMonths = %v, want 6", res.PureRunwayMonths)
	}
	if res.NetRunwayMonths != 6 {
		t.Errorf("netRunwayMonths = %v, want 6", res.NetRunwayMonths)
	}
	if res.Health != HealthCaution {
		t.Errorf("health = %s, want caution", res.Health)
	}
	if got := res.Projection[6].PureBalance; !got.IsZero() {
		t.Errorf("projection[6].pureBalance = %d, want 0", got.Cents)
	}
}

func TestCalculatePositiveNetGrowth(t *testing.T) {
	accounts := []core.Account{checking("c1", 1_000_000)}
	monthly := flatMonths(6, 500_000, 300_000)

	res := Calculate(accounts, monthly, testNow, Options{})

	if res.AvgMonthlyNet.Cents != 200_000 {
		t.Errorf("avgMonthlyNet = %d, want 200000", res.AvgMonthlyNet.Cents)
	}
	if !math.IsInf(res.NetRunwayMonths, 1) {
		t.Errorf("netRunwayMonths = %v, want +Inf", res.NetRunwayMonths)
	}
	if got := res.PureRunwayMonths; math.Abs(got-10.0/3.0) > 1e-9 {
		t.Errorf("pureRunwayMonths = %v, want ~3.33", got)
	}
	if res.Health != HealthCaution {
		t.Errorf("health = %s, want caution", res.Health)
	}
	last := res.Projection[len(res.Projection)-1]
	if last.NetBalance.Cents != 2_000_000 {
		t.Errorf("net projection not capped at 2x reserves: %d", last.NetBalance.Cents)
	}
	for _, p := range res.Projection {
		if p.NetBalance.Cents > 2_000_000 {
			t.Fatalf("net balance %d exceeds growth cap", p.NetBalance.Cents)
		}
	}
}

func TestCalculateIgnoresClosedAccounts(t *testing.T) {
	closed := savings("s2", 999_900)
	closed.ClosedOn = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	accounts := []core.Account{savings("s1", 500_000), closed}

	res := Calculate(accounts, flatMonths(6, 0, 100_000), testNow, Options{})

	if res.CashReserves.Cents != 500_000 {
		t.Errorf("cashReserves = %d, want 500000 (closed account must not contribute)", res.CashReserves.Cents)
	}
	if res.Breakdown.Savings.Cents != 500_000 {
		t.Errorf("savings breakdown = %d, want 500000", res.Breakdown.Savings.Cents)
	}
}

func TestCalculateScenarioIncomeOverride(t *testing.T) {
	accounts := []core.Account{checking("c1", 1_000_000)}
	monthly := flatMonths(6, 400_000, 300_000)
	override := core.CentsOf(1_000_000) // $120k salary / 12

	res := Calculate(accounts, monthly, testNow, Options{ScenarioIncome: &override})

	if !res.UsingScenarioIncome {
		t.Error("isUsingScenarioIncome = false, want true")
	}
	if res.UsingScenarioExpenses {
		t.Error("isUsingScenarioExpenses = true, want false")
	}
	if res.AvgMonthlyIncome.Cents != 1_000_000 {
		t.Errorf("avgMonthlyIncome = %d, want override 1000000", res.AvgMonthlyIncome.Cents)
	}
	if res.HistoricalAvgMonthlyIncome.Cents != 400_000 {
		t.Errorf("historical income = %d, want 400000 (override must not leak)", res.HistoricalAvgMonthlyIncome.Cents)
	}
	if res.AvgMonthlyNet.Cents != 700_000 {
		t.Errorf("avgMonthlyNet = %d, want 700000", res.AvgMonthlyNet.Cents)
	}
	if !math.IsInf(res.NetRunwayMonths, 1) {
		t.Errorf("netRunwayMonths = %v, want +Inf under scenario income", res.NetRunwayMonths)
	}
}

func TestCashBreakdownManualAccounts(t *testing.T) {
	accounts := []core.Account{
		{ID: "m1", Name: "Wallet", Source: core.SourceManual, Type: core.TypeCash, Balance: core.CentsOf(10_000)},
		{ID: "m2", Name: "Gold coins", Source: core.SourceManual, Type: core.TypeOther, Balance: core.CentsOf(20_000)},
		{ID: "m3", Name: "Brokerage", Source: core.SourceManual, Type: core.TypeInvestment, Balance: core.CentsOf(5_000_000)},
		{ID: "m4", Name: "Car loan", Source: core.SourceManual, Type: core.TypeLoan, Balance: core.CentsOf(-900_000)},
		{ID: "b1", Name: "Misc", Source: core.SourceBudgetService, Type: core.TypeOther, Balance: core.CentsOf(70_000)},
	}

	res := Calculate(accounts, nil, testNow, Options{})

	// Manual cash and manual "other" count; investments, liabilities,
	// and budget-service "other" do not.
	if res.Breakdown.ManualCash.Cents != 30_000 {
		t.Errorf("manualCash = %d, want 30000", res.Breakdown.ManualCash.Cents)
	}
	if res.CashReserves.Cents != 30_000 {
		t.Errorf("cashReserves = %d, want 30000", res.CashReserves.Cents)
	}
}

func TestCalculateWindowSelection(t *testing.T) {
	accounts := []core.Account{checking("c1", 600_000)}
	// Twelve months of history; only the recent three should matter for
	// a 3-month window: expenses 1000 vs older 2000.
	monthly := append(flatMonths(12, 0, 200_000)[:9], flatMonths(3, 0, 100_000)...)

	res := Calculate(accounts, monthly, testNow, Options{PeriodMonths: 3})

	if res.AvgMonthlyExpenses.Cents != 100_000 {
		t.Errorf("avgMonthlyExpenses = %d, want 100000 from 3-month window", res.AvgMonthlyExpenses.Cents)
	}
	if len(res.HistoricalSpending) != 3 {
		t.Errorf("historicalSpending length = %d, want 3", len(res.HistoricalSpending))
	}
}

func TestCalculateSkipsInactiveMonths(t *testing.T) {
	accounts := []core.Account{checking("c1", 600_000)}
	monthly := flatMonths(6, 0, 100_000)
	// Blank out two months; averages divide by the four active ones.
	monthly[1] = core.NewMonthlyBucket(testNow.AddDate(0, -5, 0))
	monthly[3] = core.NewMonthlyBucket(testNow.AddDate(0, -3, 0))

	res := Calculate(accounts, monthly, testNow, Options{})

	if res.AvgMonthlyExpenses.Cents != 100_000 {
		t.Errorf("avgMonthlyExpenses = %d, want 100000 (inactive months excluded)", res.AvgMonthlyExpenses.Cents)
	}
}

func TestProjectionInvariants(t *testing.T) {
	cases := []struct {
		name     string
		accounts []core.Account
		monthly  []core.MonthlyBucket
	}{
		{"all zero", nil, nil},
		{"burning", []core.Account{checking("c", 600_000)}, flatMonths(6, 0, 100_000)},
		{"growing", []core.Account{checking("c", 1_000_000)}, flatMonths(6, 500_000, 300_000)},
		{"no expenses", []core.Account{checking("c", 1_000_000)}, flatMonths(6, 500_000, 0)},
		{"long runway", []core.Account{checking("c", 100_000_000)}, flatMonths(6, 0, 100_000)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Calculate(tc.accounts, tc.monthly, testNow, Options{})

			if n := len(res.Projection); n < 1 || n > 25 {
				t.Fatalf("projection length %d outside [1, 25]", n)
			}
			for i := 1; i < len(res.Projection); i++ {
				if res.Projection[i].PureBalance.Cents > res.Projection[i-1].PureBalance.Cents {
					t.Fatalf("pureBalance increased at %d", i)
				}
			}
			if res.PureRunwayMonths < 0 {
				t.Errorf("pureRunwayMonths negative: %v", res.PureRunwayMonths)
			}
			if res.AvgMonthlyNet.Cents >= 0 && !math.IsInf(res.NetRunwayMonths, 1) {
				t.Errorf("non-negative net must give infinite net runway, got %v", res.NetRunwayMonths)
			}
			sum := res.Breakdown.Checking.Add(res.Breakdown.Savings).Add(res.Breakdown.ManualCash)
			if sum != res.CashReserves {
				t.Errorf("cashReserves %d != breakdown sum %d", res.CashReserves.Cents, sum.Cents)
			}
		})
	}
}

func TestCalculateDeterminism(t *testing.T) {
	accounts := []core.Account{checking("c1", 1_234_567), savings("s1", 765_432)}
	monthly := flatMonths(12, 450_000, 390_000)

	a := Calculate(accounts, monthly, testNow, Options{PeriodMonths: 12})
	b := Calculate(accounts, monthly, testNow, Options{PeriodMonths: 12})

	if a.PureRunwayMonths != b.PureRunwayMonths || a.NetRunwayMonths != b.NetRunwayMonths {
		t.Error("identical inputs produced different runway months")
	}
	if len(a.Projection) != len(b.Projection) {
		t.Fatal("identical inputs produced different projection lengths")
	}
	for i := range a.Projection {
		if a.Projection[i] != b.Projection[i] {
			t.Fatalf("projection[%d] differs between runs", i)
		}
	}
}

func TestProjectionMonthLabels(t *testing.T) {
	res := Calculate([]core.Account{checking("c1", 600_000)}, flatMonths(6, 0, 100_000), testNow, Options{})
	if res.Projection[0].Month != "Jun 2025" {
		t.Errorf("projection[0].Month = %s, want Jun 2025", res.Projection[0].Month)
	}
	if res.Projection[1].Month != "Jul 2025" {
		t.Errorf("projection[1].Month = %s, want Jul 2025", res.Projection[1].Month)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		months float64
		want   Health
	}{
		{0, HealthCritical},
		{2.99, HealthCritical},
		{3, HealthCaution},
		{6, HealthCaution},
		{6.01, HealthHealthy},
		{11.99, HealthHealthy},
		{12, HealthExcellent},
		{math.Inf(1), HealthExcellent},
	}
	for _, tt := range tests {
		if got := classify(tt.months); got != tt.want {
			t.Errorf("classify(%v) = %s, want %s", tt.months, got, tt.want)
		}
	}
}
