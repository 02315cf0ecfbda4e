// Package accounts normalizes heterogeneous account records from the
// budgeting service and from user-authored manual accounts into the
// uniform core.Account shape the runway calculator consumes.
package accounts

import (
	"strings"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

// Raw is an account record as delivered by an upstream source, before
// type normalization. Balance is in integer minor units.
type Raw struct {
	ID           string
	Name         string
	Source       core.AccountSource
	Type         string
	Subtype      string
	BalanceCents int64
	ClosedOn     time.Time
}

// Normalize maps raw records to normalized accounts. Records missing
// required fields are skipped; an unrecognized type never drops a record,
// it becomes TypeOther (or TypeCash for manual accounts).
func Normalize(raw []Raw) []core.Account {
	out := make([]core.Account, 0, len(raw))
	for _, r := range raw {
		a := core.Account{
			ID:       r.ID,
			Name:     r.Name,
			Source:   r.Source,
			Type:     normalizeType(r.Source, r.Type, r.Subtype),
			Balance:  core.CentsOf(r.BalanceCents),
			ClosedOn: r.ClosedOn,
		}
		if err := a.Validate(); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Token groups checked against the lowercased type and subtype hints.
// Loan tokens run before credit so "line of credit" lands on loan.
var (
	checkingTokens   = []string{"checking", "chequing"}
	savingsTokens    = []string{"savings"}
	loanTokens       = []string{"mortgage", "auto", "student", "personal loan", "line of credit", "lineofcredit", "loan", "medical debt", "other debt"}
	creditTokens     = []string{"credit"}
	investmentTokens = []string{"401k", "403b", "ira", "roth", "brokerage", "crypto", "investment", "stock", "hsa"}
	cashTokens       = []string{"cash"}
)

func normalizeType(source core.AccountSource, typ, subtype string) core.AccountType {
	hint := strings.ToLower(strings.TrimSpace(subtype))
	if hint == "" {
		hint = strings.ToLower(strings.TrimSpace(typ))
	} else {
		hint = strings.ToLower(strings.TrimSpace(typ)) + " " + hint
	}

	switch {
	case matchesAny(hint, checkingTokens):
		return core.TypeChecking
	case matchesAny(hint, savingsTokens):
		return core.TypeSavings
	case matchesAny(hint, loanTokens):
		return core.TypeLoan
	case matchesAny(hint, creditTokens):
		return core.TypeCredit
	case matchesAny(hint, investmentTokens):
		return core.TypeInvestment
	case matchesAny(hint, cashTokens):
		return core.TypeCash
	case source == core.SourceManual:
		// Manual accounts without a recognized type count as cash on hand.
		return core.TypeCash
	default:
		return core.TypeOther
	}
}

func matchesAny(hint string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(hint, tok) {
			return true
		}
	}
	return false
}
