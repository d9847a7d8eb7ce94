package domain

import (
	"context"
	"time"

	ledgerdomain "github.com/smallbiznis/paysync/internal/ledger/domain"
)

// Source lists a provider's transactions for a window and maps its raw
// statuses to the ledger's canonical ones.
type Source interface {
	Provider() string

	// MapStatus translates a provider status string into the canonical
	// status. It is pure and total: the second return is false when the
	// raw status is unknown, in which case callers default to pending.
	MapStatus(raw string) (ledgerdomain.Status, bool)

	// Transactions opens a fresh single-pass sequence over the window.
	// Calling it again with the same window restarts from the first page.
	Transactions(ctx context.Context, window Window) Iterator
}

// Iterator walks a paginated transaction listing lazily. A page fetch that
// fails after retries ends the iteration and is reported by Err; items
// yielded before the failure remain valid.
type Iterator interface {
	Next(ctx context.Context) bool
	Transaction() Transaction
	Err() error
}

// SourceFactory builds a Source from provider configuration.
type SourceFactory interface {
	Provider() string
	NewSource(cfg SourceConfig) (Source, error)
}

// SourceConfig carries provider credentials and paging limits.
type SourceConfig struct {
	APIKey      string
	AccountID   string
	BaseURL     string
	PageSize    int
	MaxRetries  int
	RetryWait   time.Duration
	HTTPTimeout time.Duration
}
