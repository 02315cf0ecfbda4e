package core

import (
	"errors"
	"strings"
	"time"
)

// AccountSource identifies where an account record came from.
type AccountSource string

const (
	SourceBudgetService AccountSource = "budget_service"
	SourceManual        AccountSource = "manual"
)

// AccountType is the normalized type tag shared by both sources.
type AccountType string

const (
	TypeChecking   AccountType = "checking"
	TypeSavings    AccountType = "savings"
	TypeCash       AccountType = "cash"
	TypeCredit     AccountType = "credit"
	TypeLoan       AccountType = "loan"
	TypeInvestment AccountType = "investment"
	TypeOther      AccountType = "other"
)

var (
	ErrMissingID   = errors.New("missing account id")
	ErrMissingName = errors.New("missing account name")
)

// Account is a normalized account record. The pipeline never mutates
// accounts in place; they are rebuilt from upstream sources per request.
type Account struct {
	ID      string
	Name    string
	Source  AccountSource
	Type    AccountType
	Balance Money
	// ClosedOn is the close date, zero for open accounts. A closed
	// account never contributes to any sum.
	ClosedOn time.Time
}

// IsClosed reports whether the account has a close date.
func (a Account) IsClosed() bool {
	return !a.ClosedOn.IsZero()
}

// IsLiability reports whether the balance represents debt rather than cash.
func (a Account) IsLiability() bool {
	return a.Type == TypeCredit || a.Type == TypeLoan
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrMissingName
	}
	return nil
}
