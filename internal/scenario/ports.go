package scenario

import (
	"context"
	"time"

	"github.com/philgetzen/my-finance-dashboard-sub003/internal/core"
)

// DocumentStore is the outbound port for scenario persistence. The
// authenticated backend is a remote document store with live updates;
// demo mode uses durable local storage without a live feed.
type DocumentStore interface {
	// Load fetches the stored scenario. ok is false when no document
	// exists yet.
	Load(ctx context.Context) (sc core.Scenario, ok bool, err error)

	// Save upserts the scenario document with merge semantics.
	Save(ctx context.Context, sc core.Scenario, updatedAt time.Time) error

	// Watch emits scenario snapshots written by any session, including
	// this one (the store suppresses its own echoes). Backends without
	// live sync return a nil channel.
	Watch(ctx context.Context) (<-chan core.Scenario, error)

	Close() error
}
