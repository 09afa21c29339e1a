package http_test

import (
	"context"
	"errors"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fvhttp "github.com/shashiranjanraj/furnivision/pkg/http"
)

func TestPostJSONAndDecode(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := fvhttp.Post(srv.URL).Header("x-goog-api-key", "secret").Body(map[string]any{"a": 1}).Send()
	require.NoError(t, err)
	require.NoError(t, resp.Throw())

	var out struct{ OK bool }
	require.NoError(t, resp.JSON(&out))
	assert.True(t, out.OK)
}

func TestRetriesOnServiceUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(gohttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(gohttp.StatusOK)
	}))
	defer srv.Close()

	resp, err := fvhttp.Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLastAttemptResponseIsReturned(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusTooManyRequests)
		_, _ = w.Write([]byte(`quota`))
	}))
	defer srv.Close()

	resp, err := fvhttp.Get(srv.URL).Retry(2, time.Millisecond).Send()
	require.NoError(t, err)

	var se *fvhttp.StatusError
	require.True(t, errors.As(resp.Throw(), &se))
	assert.Equal(t, gohttp.StatusTooManyRequests, se.Code)
	assert.Equal(t, "quota", se.Body)
}

func TestCancelledContextStopsRetries(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		w.WriteHeader(gohttp.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fvhttp.Get(srv.URL).Retry(5, time.Second).WithContext(ctx).Send()
	assert.Error(t, err)
}

func TestRetryAfterHeaderIsHonoured(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(gohttp.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	start := time.Now()
	resp, err := fvhttp.Get(srv.URL).Retry(2, time.Minute).Send()
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestNoRetryByDefault(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(gohttp.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp, err := fvhttp.Post(srv.URL).Body("raw").Send()
	require.NoError(t, err)
	assert.Error(t, resp.Throw())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
