package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/accounts"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/aggregate"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/dashboard"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/scenario"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/scenario/memory"
)

// fixedSource serves six steady months ending at the current month:
// 5000 in, 4000 out, against 6000 of checking.
type fixedSource struct{}

func (fixedSource) ListAccounts(_ context.Context, _ string) ([]accounts.Raw, error) {
	return []accounts.Raw{
		{ID: "a1", Name: "Checking", Source: core.SourceBudgetService, Type: "depository", Subtype: "checking", BalanceCents: 600_000},
	}, nil
}

func (fixedSource) ListTransactions(_ context.Context, _ string) ([]aggregate.Transaction, error) {
	now := time.Now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var txns []aggregate.Transaction
	for i := 0; i < 6; i++ {
		m := first.AddDate(0, -i, 0)
		tag := m.Format("2006-01")
		txns = append(txns,
			aggregate.Transaction{ID: "pay-" + tag, Date: m, Amount: core.CentsOf(500_000), Category: "Paycheck"},
			aggregate.Transaction{ID: "rent-" + tag, Date: m, Amount: core.CentsOf(-400_000), Category: "Rent"},
		)
	}
	return txns, nil
}

func (fixedSource) ListCategories(_ context.Context, _ string) (map[string]string, error) {
	return map[string]string{"Rent": string(core.BucketFixedCosts)}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := scenario.NewStore(memory.New(), scenario.DefaultConfig())
	if err := store.Start(context.Background()); err != nil {
		t.Fatalf("start scenario store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := dashboard.NewService(fixedSource{}, store, nil, dashboard.Options{PeriodMonths: 6})
	s := NewServer(":0", svc)
	t.Cleanup(func() { s.rateLimiter.stop() })
	return s
}

func doRequest(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := doRequest(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := doRequest(t, s, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
}

func TestGetRunway(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/runway", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got runwayJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.CashReservesCents != 600_000 {
		t.Errorf("reserves = %d, want 600000", got.CashReservesCents)
	}
	if got.AvgMonthlyIncomeCents != 500_000 {
		t.Errorf("avg income = %d, want 500000", got.AvgMonthlyIncomeCents)
	}
	if got.PureRunwayMonths == nil || *got.PureRunwayMonths != 1.5 {
		t.Errorf("pure runway = %v, want 1.5", got.PureRunwayMonths)
	}
	if got.Health == "" {
		t.Error("health missing")
	}
	if len(got.Projection) == 0 {
		t.Error("projection empty")
	}
}

func TestGetRunwayRejectsBadPeriod(t *testing.T) {
	s := newTestServer(t)

	for _, period := range []string{"abc", "0", "-3", "5", "24"} {
		rec := doRequest(t, s, http.MethodGet, "/api/runway?period="+period, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("period %q: status = %d, want 400", period, rec.Code)
		}
	}
}

func TestScenarioLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/scenario", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get scenario = %d", rec.Code)
	}
	var got scenarioJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Scenario.Enabled {
		t.Error("fresh scenario should be disabled")
	}

	body := `{"enabled":true,"salary":{"annual":12000000},"bonus":{"annual":0,"frequency":"annual"},"stock":{"annualValue":0},"expenseBuckets":{"fixedCosts":true,"investments":true,"savings":true,"guiltFree":true}}`
	rec = doRequest(t, s, http.MethodPut, "/api/scenario", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("put scenario = %d, body = %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Scenario.Enabled {
		t.Error("scenario not enabled after PUT")
	}
	if got.MonthlyIncomeCents != 1_000_000 {
		t.Errorf("monthly income = %d, want 1000000", got.MonthlyIncomeCents)
	}

	// The enabled scenario must now drive the runway numbers.
	rec = doRequest(t, s, http.MethodGet, "/api/runway", "")
	var result runwayJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode runway: %v", err)
	}
	if !result.UsingScenarioIncome {
		t.Error("runway not using scenario income")
	}
	if result.AvgMonthlyIncomeCents != 1_000_000 {
		t.Errorf("avg income = %d, want scenario 1000000", result.AvgMonthlyIncomeCents)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/scenario", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete scenario = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Scenario.Enabled || !got.Scenario.SalaryAnnual.IsZero() {
		t.Error("scenario not reset to defaults")
	}
}

func TestPutScenarioRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPut, "/api/scenario", `{"enabled": "not-a-bool"`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestResetScenarioToCurrent(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/scenario/reset-to-current", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got scenarioJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Scenario.SalaryAnnual.Cents != 6_000_000 {
		t.Errorf("salary = %d, want 6000000 (historical monthly x 12)", got.Scenario.SalaryAnnual.Cents)
	}
}

func TestExportWithoutExporter(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/runway/export", "")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPatch, "/api/scenario", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
