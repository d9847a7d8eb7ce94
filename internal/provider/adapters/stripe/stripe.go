package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	ledgerdomain "github.com/smallbiznis/paysync/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/paysync/internal/observability/metrics"
	"github.com/smallbiznis/paysync/internal/provider/domain"
	"go.uber.org/zap"
)

const (
	defaultBaseURL    = "https://api.stripe.com"
	defaultPageSize   = 100
	maxPageSize       = 100
	defaultMaxRetries = 3
	defaultRetryWait  = 500 * time.Millisecond
	defaultTimeout    = 15 * time.Second
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Provider() string {
	return "stripe"
}

func (f *Factory) NewSource(cfg domain.SourceConfig) (domain.Source, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, domain.ErrInvalidConfig
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryWait := cfg.RetryWait
	if retryWait <= 0 {
		retryWait = defaultRetryWait
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Source{
		apiKey:     apiKey,
		accountID:  strings.TrimSpace(cfg.AccountID),
		baseURL:    baseURL,
		pageSize:   pageSize,
		maxRetries: maxRetries,
		retryWait:  retryWait,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

type Source struct {
	apiKey     string
	accountID  string
	baseURL    string
	pageSize   int
	maxRetries int
	retryWait  time.Duration
	client     *http.Client
}

func (s *Source) Provider() string {
	return "stripe"
}

// MapStatus maps a payment intent status onto the ledger statuses. The known
// in-flight intent states stay pending; anything unrecognized reports false
// so callers can log it.
func (s *Source) MapStatus(raw string) (ledgerdomain.Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "succeeded":
		return ledgerdomain.StatusSucceeded, true
	case "processing",
		"requires_payment_method",
		"requires_confirmation",
		"requires_action",
		"requires_capture",
		"canceled":
		return ledgerdomain.StatusPending, true
	default:
		return ledgerdomain.StatusPending, false
	}
}

func (s *Source) Transactions(ctx context.Context, window domain.Window) domain.Iterator {
	return &iterator{
		source: s,
		window: window,
		err:    window.Validate(),
	}
}

type iterator struct {
	source  *Source
	window  domain.Window
	cursor  string
	buffer  []domain.Transaction
	current domain.Transaction
	done    bool
	err     error
}

func (it *iterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	for len(it.buffer) == 0 {
		if it.done {
			return false
		}
		if err := it.fetchPage(ctx); err != nil {
			it.err = err
			return false
		}
	}
	it.current = it.buffer[0]
	it.buffer = it.buffer[1:]
	it.cursor = it.current.ExternalID
	return true
}

func (it *iterator) Transaction() domain.Transaction {
	return it.current
}

func (it *iterator) Err() error {
	return it.err
}

func (it *iterator) fetchPage(ctx context.Context) error {
	page, err := it.source.listPage(ctx, it.window, it.cursor)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPageFetchFailed, err)
	}

	items := make([]domain.Transaction, 0, len(page.Data))
	for _, raw := range page.Data {
		var intent paymentIntent
		if err := json.Unmarshal(raw, &intent); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrPageFetchFailed, err)
		}
		items = append(items, domain.Transaction{
			ExternalID:  intent.ID,
			AmountMinor: intent.Amount,
			Currency:    intent.Currency,
			RawStatus:   intent.Status,
			Raw:         raw,
		})
	}
	it.buffer = items
	it.done = !page.HasMore
	return nil
}

type listResponse struct {
	Data    []json.RawMessage `json:"data"`
	HasMore bool              `json:"has_more"`
}

type paymentIntent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Created  int64  `json:"created"`
}

type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("stripe api error %d: %s", e.status, e.message)
}

func (e *apiError) retryable() bool {
	return e.status == http.StatusRequestTimeout ||
		e.status == http.StatusTooManyRequests ||
		e.status >= http.StatusInternalServerError
}

// listPage fetches one page of payment intents created within the window,
// retrying transient failures with exponential backoff. Non-retryable API
// errors and exhausted retries both surface to the iterator, which ends the
// sequence there.
func (s *Source) listPage(ctx context.Context, window domain.Window, cursor string) (listResponse, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.retryWait

	return backoff.Retry(ctx, func() (listResponse, error) {
		page, err := s.doList(ctx, window, cursor)
		if err == nil {
			return page, nil
		}
		var apiErr *apiError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return listResponse{}, backoff.Permanent(err)
		}
		return listResponse{}, err
	},
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(s.maxRetries)+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			obsmetrics.Reconcile().IncPageRetry(s.Provider())
			zap.L().Warn("stripe page fetch retry",
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)
}

func (s *Source) doList(ctx context.Context, window domain.Window, cursor string) (listResponse, error) {
	values := url.Values{}
	values.Set("created[gte]", strconv.FormatInt(window.Start.Unix(), 10))
	values.Set("created[lt]", strconv.FormatInt(window.End.Unix(), 10))
	values.Set("limit", strconv.Itoa(s.pageSize))
	if cursor != "" {
		values.Set("starting_after", cursor)
	}

	endpoint := s.baseURL + "/v1/payment_intents?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return listResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if s.accountID != "" {
		req.Header.Set("Stripe-Account", s.accountID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return listResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return listResponse{}, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return listResponse{}, &apiError{status: resp.StatusCode, message: strings.TrimSpace(string(body))}
	}

	var page listResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return listResponse{}, err
	}
	return page, nil
}
