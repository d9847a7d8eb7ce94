package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ledgerdomain "github.com/smallbiznis/paysync/internal/ledger/domain"
	"github.com/smallbiznis/paysync/internal/provider/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow() domain.Window {
	end := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return domain.Window{Start: end.Add(-24 * time.Hour), End: end}
}

func newTestSource(t *testing.T, baseURL string, maxRetries int) *Source {
	t.Helper()
	src, err := NewFactory().NewSource(domain.SourceConfig{
		APIKey:     "sk_test_123",
		BaseURL:    baseURL,
		PageSize:   2,
		MaxRetries: maxRetries,
		RetryWait:  time.Millisecond,
	})
	require.NoError(t, err)
	return src.(*Source)
}

func TestNewSourceRequiresAPIKey(t *testing.T) {
	_, err := NewFactory().NewSource(domain.SourceConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestMapStatus(t *testing.T) {
	src := newTestSource(t, "https://api.stripe.com", 1)

	cases := []struct {
		raw    string
		want   ledgerdomain.Status
		mapped bool
	}{
		{"succeeded", ledgerdomain.StatusSucceeded, true},
		{"SUCCEEDED", ledgerdomain.StatusSucceeded, true},
		{" succeeded ", ledgerdomain.StatusSucceeded, true},
		{"processing", ledgerdomain.StatusPending, true},
		{"requires_payment_method", ledgerdomain.StatusPending, true},
		{"requires_confirmation", ledgerdomain.StatusPending, true},
		{"requires_action", ledgerdomain.StatusPending, true},
		{"requires_capture", ledgerdomain.StatusPending, true},
		{"canceled", ledgerdomain.StatusPending, true},
		{"something_new", ledgerdomain.StatusPending, false},
		{"", ledgerdomain.StatusPending, false},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			status, mapped := src.MapStatus(tc.raw)
			assert.Equal(t, tc.want, status)
			assert.Equal(t, tc.mapped, mapped)
		})
	}
}

func TestTransactionsPagination(t *testing.T) {
	window := testWindow()

	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		query := r.URL.Query()
		assert.Equal(t, fmt.Sprintf("%d", window.Start.Unix()), query.Get("created[gte]"))
		assert.Equal(t, fmt.Sprintf("%d", window.End.Unix()), query.Get("created[lt]"))
		assert.Equal(t, "2", query.Get("limit"))

		cursor := query.Get("starting_after")
		requests = append(requests, cursor)

		w.Header().Set("Content-Type", "application/json")
		switch cursor {
		case "":
			fmt.Fprint(w, `{"object":"list","has_more":true,"data":[
				{"id":"pi_1","amount":5000,"currency":"kes","status":"succeeded"},
				{"id":"pi_2","amount":1200,"currency":"usd","status":"processing"}
			]}`)
		case "pi_2":
			fmt.Fprint(w, `{"object":"list","has_more":false,"data":[
				{"id":"pi_3","amount":700,"currency":"usd","status":"succeeded"}
			]}`)
		default:
			t.Errorf("unexpected cursor %q", cursor)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	src := newTestSource(t, server.URL, 1)

	var items []domain.Transaction
	iter := src.Transactions(context.Background(), window)
	for iter.Next(context.Background()) {
		items = append(items, iter.Transaction())
	}
	require.NoError(t, iter.Err())

	require.Len(t, items, 3)
	assert.Equal(t, "pi_1", items[0].ExternalID)
	assert.Equal(t, int64(5000), items[0].AmountMinor)
	assert.Equal(t, "kes", items[0].Currency)
	assert.Equal(t, "succeeded", items[0].RawStatus)
	assert.NotEmpty(t, items[0].Raw)
	assert.Equal(t, "pi_3", items[2].ExternalID)

	assert.Equal(t, []string{"", "pi_2"}, requests)
}

func TestTransactionsEmptyWindowResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"object":"list","has_more":false,"data":[]}`)
	}))
	defer server.Close()

	src := newTestSource(t, server.URL, 1)
	iter := src.Transactions(context.Background(), testWindow())
	assert.False(t, iter.Next(context.Background()))
	assert.NoError(t, iter.Err())
}

func TestTransactionsRetriesTransientErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"object":"list","has_more":false,"data":[
			{"id":"pi_1","amount":100,"currency":"usd","status":"succeeded"}
		]}`)
	}))
	defer server.Close()

	src := newTestSource(t, server.URL, 3)
	iter := src.Transactions(context.Background(), testWindow())
	require.True(t, iter.Next(context.Background()))
	assert.Equal(t, "pi_1", iter.Transaction().ExternalID)
	assert.False(t, iter.Next(context.Background()))
	require.NoError(t, iter.Err())
	assert.Equal(t, 3, attempts)
}

func TestTransactionsFailAfterRetriesExhausted(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := newTestSource(t, server.URL, 2)
	iter := src.Transactions(context.Background(), testWindow())
	assert.False(t, iter.Next(context.Background()))
	require.Error(t, iter.Err())
	assert.ErrorIs(t, iter.Err(), domain.ErrPageFetchFailed)
	assert.Equal(t, 3, attempts)
}

func TestTransactionsDoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Invalid API Key provided"}}`)
	}))
	defer server.Close()

	src := newTestSource(t, server.URL, 3)
	iter := src.Transactions(context.Background(), testWindow())
	assert.False(t, iter.Next(context.Background()))
	require.Error(t, iter.Err())
	assert.Equal(t, 1, attempts)
}

func TestTransactionsInvalidWindow(t *testing.T) {
	src := newTestSource(t, "https://api.stripe.com", 1)

	end := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	iter := src.Transactions(context.Background(), domain.Window{Start: end.Add(time.Hour), End: end})
	assert.False(t, iter.Next(context.Background()))
	assert.ErrorIs(t, iter.Err(), domain.ErrInvalidWindow)
}

func TestTransactionsRestartable(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"object":"list","has_more":false,"data":[
			{"id":"pi_1","amount":100,"currency":"usd","status":"succeeded"}
		]}`)
	}))
	defer server.Close()

	src := newTestSource(t, server.URL, 1)
	window := testWindow()

	for run := 0; run < 2; run++ {
		iter := src.Transactions(context.Background(), window)
		require.True(t, iter.Next(context.Background()))
		assert.False(t, iter.Next(context.Background()))
		require.NoError(t, iter.Err())
	}
	assert.Equal(t, 2, calls)
}
