package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sales-analytics/internal/model"
)

var fastRetry = RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffMultiplier: 2}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := retry(ctx, StageIngest, fastRetry, func(attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retry(ctx, StageIngest, fastRetry, func(int) error {
		calls++
		return errors.New("down")
	})
	assert.ErrorContains(t, err, "failed after 3 attempts: down")
	assert.Equal(t, 3, calls)

	calls = 0
	boom := errors.New("bad request")
	err = retry(ctx, StageIngest, fastRetry, func(int) error {
		calls++
		return permanent(boom)
	})
	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour}

	done := make(chan error, 1)
	go func() {
		done <- retry(ctx, StageExport, slow, func(int) error { return errors.New("locked") })
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("retry ignored cancellation")
	}
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffMultiplier: 2}
	assert.Equal(t, 100*time.Millisecond, cfg.backoff(1))
	assert.Equal(t, 400*time.Millisecond, cfg.backoff(3))
	assert.Equal(t, time.Second, cfg.backoff(10))

	cfg.Jitter = true
	for i := 0; i < 50; i++ {
		d := cfg.backoff(2)
		assert.GreaterOrEqual(t, d, 180*time.Millisecond)
		assert.LessOrEqual(t, d, 220*time.Millisecond)
	}
}

func TestLoadHTTPRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/flaky.csv":
			if hits.Add(1) < 3 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(fixtureCSV))
		default:
			hits.Add(1)
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	}))
	defer srv.Close()

	opts := LoadOptions{Retry: fastRetry}
	table, _, err := Load(context.Background(), model.Source{URL: srv.URL + "/flaky.csv"}, opts)
	require.NoError(t, err)
	assert.Equal(t, 7, table.Len())
	assert.Equal(t, int32(3), hits.Load())

	hits.Store(0)
	_, _, err = Load(context.Background(), model.Source{URL: srv.URL + "/private.csv"}, opts)
	assert.ErrorContains(t, err, "403")
	assert.Equal(t, int32(1), hits.Load())
}

func TestIsSQLiteBusy(t *testing.T) {
	assert.True(t, isSQLiteBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, isSQLiteBusy(errors.Join(errors.New("save"), sqlite3.Error{Code: sqlite3.ErrLocked})))
	assert.False(t, isSQLiteBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, isSQLiteBusy(errors.New("disk full")))
}
