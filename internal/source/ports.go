// Package source defines the inbound data ports of the dashboard:
// where account, transaction, and category data comes from.
package source

import (
	"context"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/accounts"
	"github.com/philgetzen/my-finance-dashboard-sub003/internal/aggregate"
)

// Ports for inbound data adapters.
type (
	AccountReader interface {
		ListAccounts(ctx context.Context, userID string) ([]accounts.Raw, error)
	}

	TransactionReader interface {
		ListTransactions(ctx context.Context, userID string) ([]aggregate.Transaction, error)
	}

	// CategoryReader maps raw category names to spending buckets.
	CategoryReader interface {
		ListCategories(ctx context.Context, userID string) (map[string]string, error)
	}
)

// Backend represents a unified data source providing all inbound operations
type Backend interface {
	AccountReader
	TransactionReader
	CategoryReader
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error
