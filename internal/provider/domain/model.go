package domain

import (
	"errors"
	"time"
)

// Window bounds one reconciliation run: transactions created in
// [Start, End) are considered. Start must not be after End.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return ErrInvalidWindow
	}
	if w.Start.After(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// Transaction is one provider-side transaction as listed by the provider API.
// AmountMinor is in the provider's minor units (cents); Raw is the unparsed
// provider payload, kept as the ledger metadata snapshot.
type Transaction struct {
	ExternalID  string
	AmountMinor int64
	Currency    string
	RawStatus   string
	Raw         []byte
}

var (
	ErrInvalidWindow    = errors.New("invalid_window")
	ErrInvalidConfig    = errors.New("invalid_provider_config")
	ErrProviderNotFound = errors.New("provider_not_found")
	ErrPageFetchFailed  = errors.New("page_fetch_failed")
)
