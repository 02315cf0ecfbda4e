// Package demo is a file-seeded data source used when the dashboard
// runs without a budgeting-service connection.
package demo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/accounts"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/aggregate"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

type Store struct {
	mu   sync.Mutex
	accs []accounts.Raw
	txns []aggregate.Transaction
	cats map[string]string
}

func New(accs []accounts.Raw, txns []aggregate.Transaction, cats map[string]string) *Store {
	return &Store{accs: accs, txns: txns, cats: cats}
}

// NewFromFiles loads accounts.json, transactions.json, and
// categories.json from base. Missing or unreadable files fall back to
// the built-in seed so a fresh checkout renders a populated dashboard.
func NewFromFiles(base string, now time.Time) *Store {
	accs := readAccounts(filepath.Join(base, "accounts.json"))
	txns := readTransactions(filepath.Join(base, "transactions.json"))
	cats := readCategories(filepath.Join(base, "categories.json"))

	if len(accs) == 0 {
		accs = seedAccounts()
	}
	if len(txns) == 0 {
		txns = seedTransactions(now)
	}
	if len(cats) == 0 {
		cats = seedCategories()
	}
	return New(accs, txns, cats)
}

// ListAccounts returns the seeded account records. UserID is ignored;
// the demo source holds a single household.
func (s *Store) ListAccounts(_ context.Context, _ string) ([]accounts.Raw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]accounts.Raw(nil), s.accs...), nil
}

func (s *Store) ListTransactions(_ context.Context, _ string) ([]aggregate.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]aggregate.Transaction(nil), s.txns...), nil
}

func (s *Store) ListCategories(_ context.Context, _ string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.cats))
	for k, v := range s.cats {
		out[k] = v
	}
	return out, nil
}

// JSON shapes for the seed files.
type (
	accountRecord struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Source       string `json:"source"`
		Type         string `json:"type"`
		Subtype      string `json:"subtype,omitempty"`
		BalanceCents int64  `json:"balanceCents"`
		ClosedOn     string `json:"closedOn,omitempty"`
	}

	transactionRecord struct {
		ID          string `json:"id"`
		Date        string `json:"date"`
		AmountCents int64  `json:"amountCents"`
		Category    string `json:"category,omitempty"`
		Transfer    bool   `json:"transfer,omitempty"`
	}
)

const dateLayout = "2006-01-02"

func readAccounts(path string) []accounts.Raw {
	var records []accountRecord
	if !readJSON(path, &records) {
		return nil
	}
	out := make([]accounts.Raw, 0, len(records))
	for _, r := range records {
		raw := accounts.Raw{
			ID:           r.ID,
			Name:         r.Name,
			Source:       core.AccountSource(r.Source),
			Type:         r.Type,
			Subtype:      r.Subtype,
			BalanceCents: r.BalanceCents,
		}
		if r.ClosedOn != "" {
			if t, err := time.Parse(dateLayout, r.ClosedOn); err == nil {
				raw.ClosedOn = t
			}
		}
		out = append(out, raw)
	}
	return out
}

func readTransactions(path string) []aggregate.Transaction {
	var records []transactionRecord
	if !readJSON(path, &records) {
		return nil
	}
	out := make([]aggregate.Transaction, 0, len(records))
	for _, r := range records {
		t, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			continue
		}
		out = append(out, aggregate.Transaction{
			ID:       r.ID,
			Date:     t,
			Amount:   core.CentsOf(r.AmountCents),
			Category: r.Category,
			Transfer: r.Transfer,
		})
	}
	return out
}

func readCategories(path string) map[string]string {
	var cats map[string]string
	if !readJSON(path, &cats) {
		return nil
	}
	return cats
}

func readJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func seedAccounts() []accounts.Raw {
	return []accounts.Raw{
		{ID: "demo-checking", Name: "Everyday Checking", Source: core.SourceBudgetService, Type: "depository", Subtype: "checking", BalanceCents: 1_240_000},
		{ID: "demo-savings", Name: "High-Yield Savings", Source: core.SourceBudgetService, Type: "depository", Subtype: "savings", BalanceCents: 3_000_000},
		{ID: "demo-credit", Name: "Rewards Card", Source: core.SourceBudgetService, Type: "credit", Subtype: "credit card", BalanceCents: -125_000},
		{ID: "demo-brokerage", Name: "Brokerage", Source: core.SourceBudgetService, Type: "investment", Subtype: "brokerage", BalanceCents: 5_800_000},
		{ID: "demo-cash", Name: "Cash Envelope", Source: core.SourceManual, Type: "", BalanceCents: 50_000},
	}
}

// seedTransactions builds a steady year of activity ending at now:
// salary in, rent and groceries out, a monthly brokerage buy, and a
// savings transfer that must never count as spending.
func seedTransactions(now time.Time) []aggregate.Transaction {
	var out []aggregate.Transaction
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		m := month.AddDate(0, -i, 0)
		tag := m.Format("2006-01")
		out = append(out,
			aggregate.Transaction{ID: "salary-" + tag, Date: m.AddDate(0, 0, 1), Amount: core.CentsOf(650_000), Category: "Paycheck"},
			aggregate.Transaction{ID: "rent-" + tag, Date: m.AddDate(0, 0, 2), Amount: core.CentsOf(-200_000), Category: "Rent"},
			aggregate.Transaction{ID: "groceries-" + tag, Date: m.AddDate(0, 0, 8), Amount: core.CentsOf(-60_000), Category: "Groceries"},
			aggregate.Transaction{ID: "dining-" + tag, Date: m.AddDate(0, 0, 14), Amount: core.CentsOf(-40_000), Category: "Dining Out"},
			aggregate.Transaction{ID: "invest-" + tag, Date: m.AddDate(0, 0, 15), Amount: core.CentsOf(-50_000), Category: "Brokerage Buy"},
			aggregate.Transaction{ID: "save-" + tag, Date: m.AddDate(0, 0, 16), Amount: core.CentsOf(-30_000), Category: "Savings Deposit"},
			aggregate.Transaction{ID: "xfer-" + tag, Date: m.AddDate(0, 0, 20), Amount: core.CentsOf(-100_000), Category: "Transfer", Transfer: true},
		)
	}
	return out
}

func seedCategories() map[string]string {
	return map[string]string{
		"Rent":            string(core.BucketFixedCosts),
		"Groceries":       string(core.BucketFixedCosts),
		"Utilities":       string(core.BucketFixedCosts),
		"Dining Out":      string(core.BucketGuiltFree),
		"Brokerage Buy":   string(core.BucketInvestments),
		"Savings Deposit": string(core.BucketSavings),
	}
}

// WriteSeedFiles dumps the built-in seed to base so users can edit it.
func WriteSeedFiles(base string, now time.Time) error {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	accs := make([]accountRecord, 0)
	for _, a := range seedAccounts() {
		rec := accountRecord{
			ID:           a.ID,
			Name:         a.Name,
			Source:       string(a.Source),
			Type:         a.Type,
			Subtype:      a.Subtype,
			BalanceCents: a.BalanceCents,
		}
		accs = append(accs, rec)
	}
	txns := make([]transactionRecord, 0)
	for _, t := range seedTransactions(now) {
		txns = append(txns, transactionRecord{
			ID:          t.ID,
			Date:        t.Date.Format(dateLayout),
			AmountCents: t.Amount.Cents,
			Category:    t.Category,
			Transfer:    t.Transfer,
		})
	}
	files := map[string]any{
		"accounts.json":     accs,
		"transactions.json": txns,
		"categories.json":   seedCategories(),
	}
	for name, v := range files {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(base, name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}
