package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/dashboard"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/runway"
)

// defaultUserID identifies the single household when no user query
// parameter is given.
const defaultUserID = "local"

func userIDFrom(r *http.Request) string {
	if u := strings.TrimSpace(r.URL.Query().Get("user")); u != "" {
		return u
	}
	return defaultUserID
}

// Wire shapes. Money travels as integer cents; infinite runway travels
// as null since JSON has no infinity.
type (
	breakdownJSON struct {
		CheckingCents   int64 `json:"checkingCents"`
		SavingsCents    int64 `json:"savingsCents"`
		ManualCashCents int64 `json:"manualCashCents"`
	}

	projectionPointJSON struct {
		Month            string `json:"month"`
		PureBalanceCents int64  `json:"pureBalanceCents"`
		NetBalanceCents  int64  `json:"netBalanceCents"`
	}

	spendingPointJSON struct {
		Month         string `json:"month"`
		IncomeCents   int64  `json:"incomeCents"`
		ExpensesCents int64  `json:"expensesCents"`
	}

	runwayJSON struct {
		CashReservesCents int64         `json:"cashReservesCents"`
		Breakdown         breakdownJSON `json:"breakdown"`

		AvgMonthlyIncomeCents   int64 `json:"avgMonthlyIncomeCents"`
		AvgMonthlyExpensesCents int64 `json:"avgMonthlyExpensesCents"`
		AvgMonthlyNetCents      int64 `json:"avgMonthlyNetCents"`

		HistoricalAvgMonthlyIncomeCents   int64 `json:"historicalAvgMonthlyIncomeCents"`
		HistoricalAvgMonthlyExpensesCents int64 `json:"historicalAvgMonthlyExpensesCents"`

		PureRunwayMonths *float64 `json:"pureRunwayMonths"`
		NetRunwayMonths  *float64 `json:"netRunwayMonths"`

		Projection         []projectionPointJSON `json:"projection"`
		HistoricalSpending []spendingPointJSON   `json:"historicalSpending"`

		Health string `json:"health"`

		UsingScenarioIncome   bool `json:"usingScenarioIncome"`
		UsingScenarioExpenses bool `json:"usingScenarioExpenses"`
	}

	scenarioJSON struct {
		Scenario           core.Scenario `json:"scenario"`
		State              string        `json:"state"`
		Error              string        `json:"error,omitempty"`
		MonthlyIncomeCents int64         `json:"monthlyIncomeCents"`
	}

	errorJSON struct {
		Error string `json:"error"`
	}
)

func toRunwayJSON(result runway.Result) runwayJSON {
	out := runwayJSON{
		CashReservesCents: result.CashReserves.Cents,
		Breakdown: breakdownJSON{
			CheckingCents:   result.Breakdown.Checking.Cents,
			SavingsCents:    result.Breakdown.Savings.Cents,
			ManualCashCents: result.Breakdown.ManualCash.Cents,
		},
		AvgMonthlyIncomeCents:             result.AvgMonthlyIncome.Cents,
		AvgMonthlyExpensesCents:           result.AvgMonthlyExpenses.Cents,
		AvgMonthlyNetCents:                result.AvgMonthlyNet.Cents,
		HistoricalAvgMonthlyIncomeCents:   result.HistoricalAvgMonthlyIncome.Cents,
		HistoricalAvgMonthlyExpensesCents: result.HistoricalAvgMonthlyExpenses.Cents,
		PureRunwayMonths:                  finiteMonths(result.PureRunwayMonths),
		NetRunwayMonths:                   finiteMonths(result.NetRunwayMonths),
		Health:                            string(result.Health),
		UsingScenarioIncome:               result.UsingScenarioIncome,
		UsingScenarioExpenses:             result.UsingScenarioExpenses,
		Projection:                        make([]projectionPointJSON, 0, len(result.Projection)),
		HistoricalSpending:                make([]spendingPointJSON, 0, len(result.HistoricalSpending)),
	}
	for _, p := range result.Projection {
		out.Projection = append(out.Projection, projectionPointJSON{
			Month:            p.Month,
			PureBalanceCents: p.PureBalance.Cents,
			NetBalanceCents:  p.NetBalance.Cents,
		})
	}
	for _, p := range result.HistoricalSpending {
		out.HistoricalSpending = append(out.HistoricalSpending, spendingPointJSON{
			Month:         p.Month,
			IncomeCents:   p.Income.Cents,
			ExpensesCents: p.Expenses.Cents,
		})
	}
	return out
}

func finiteMonths(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorJSON{Error: msg})
}

func (s *Server) handleGetRunway(w http.ResponseWriter, r *http.Request) {
	period := 0
	if v := strings.TrimSpace(r.URL.Query().Get("period")); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || (p != 3 && p != 6 && p != 12) {
			writeError(w, http.StatusBadRequest, "period must be 3, 6, or 12")
			return
		}
		period = p
	}

	result, err := s.svc.Runway(r.Context(), userIDFrom(r), period)
	if err != nil {
		slog.ErrorContext(r.Context(), "Runway computation failed", "error", err)
		writeError(w, http.StatusBadGateway, "upstream data unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toRunwayJSON(result))
}

func (s *Server) handleExportRunway(w http.ResponseWriter, r *http.Request) {
	period := 0
	if v := strings.TrimSpace(r.URL.Query().Get("period")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			period = p
		}
	}

	err := s.svc.ExportProjection(r.Context(), userIDFrom(r), period)
	switch {
	case errors.Is(err, dashboard.ErrNoExporter):
		writeError(w, http.StatusNotImplemented, "export is not configured")
	case err != nil:
		slog.ErrorContext(r.Context(), "Projection export failed", "error", err)
		writeError(w, http.StatusBadGateway, "export failed")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "exported"})
	}
}

func (s *Server) scenarioResponse() scenarioJSON {
	store := s.svc.Scenario()
	return scenarioJSON{
		Scenario:           store.Scenario(),
		State:              string(store.CurrentState()),
		Error:              store.Err(),
		MonthlyIncomeCents: store.MonthlyIncome().Cents,
	}
}

func (s *Server) requireScenario(w http.ResponseWriter) bool {
	if s.svc.Scenario() == nil {
		writeError(w, http.StatusNotImplemented, "scenario store is not configured")
		return false
	}
	return true
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	if !s.requireScenario(w) {
		return
	}
	writeJSON(w, http.StatusOK, s.scenarioResponse())
}

func (s *Server) handlePutScenario(w http.ResponseWriter, r *http.Request) {
	if !s.requireScenario(w) {
		return
	}

	var sc core.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		writeError(w, http.StatusBadRequest, "malformed scenario document")
		return
	}

	s.svc.Scenario().Replace(sc)
	writeJSON(w, http.StatusOK, s.scenarioResponse())
}

func (s *Server) handleResetScenario(w http.ResponseWriter, r *http.Request) {
	if !s.requireScenario(w) {
		return
	}

	if err := s.svc.ResetScenarioToCurrent(r.Context(), userIDFrom(r)); err != nil {
		slog.ErrorContext(r.Context(), "Scenario reset failed", "error", err)
		writeError(w, http.StatusBadGateway, "could not compute historical income")
		return
	}
	writeJSON(w, http.StatusOK, s.scenarioResponse())
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	if !s.requireScenario(w) {
		return
	}

	s.svc.Scenario().ClearScenario()
	writeJSON(w, http.StatusOK, s.scenarioResponse())
}
