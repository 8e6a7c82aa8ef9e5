package pocketbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

// recordingSleeper replaces real backoff waits.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*Options)) (*Client, *recordingSleeper) {
	t.Helper()
	opts := DefaultOptions(srv.URL)
	opts.HTTPClient = srv.Client()
	if mutate != nil {
		mutate(&opts)
	}
	c := NewClient(opts)
	sleeper := &recordingSleeper{}
	c.sleep = sleeper.sleep
	return c, sleeper
}

// statusSequence answers with the given statuses in order, then 200.
func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		if n <= len(statuses) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(statuses[n-1])
			_, _ = w.Write([]byte(`{"code":` + strconv.Itoa(statuses[n-1]) + `,"message":"failure ` + strconv.Itoa(n) + `","data":{}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"a"}],"meta":{"hasMore":false}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

type row struct {
	ID string `json:"id"`
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	srv, calls := statusSequence(t, http.StatusInternalServerError, http.StatusInternalServerError)
	c, sleeper := newTestClient(t, srv, nil)

	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list?limit=24&offset=0")

	require.True(t, outcome.OK(), outcome.ErrorMessage())
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []row{{ID: "a"}}, outcome.Data.Data)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.waits)
}

func TestClient_RetriesExhausted(t *testing.T) {
	srv, calls := statusSequence(t, 503, 503, 503, 503)
	c, _ := newTestClient(t, srv, nil)

	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list")

	require.False(t, outcome.OK())
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, domain.ErrorKindServer, outcome.Err.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, outcome.StatusCode)
	assert.Equal(t, "failure 3", outcome.Err.Message)
	assert.Nil(t, outcome.Data.Data)
}

func TestClient_ClientErrorIsTerminal(t *testing.T) {
	srv, calls := statusSequence(t, http.StatusNotFound)
	c, sleeper := newTestClient(t, srv, nil)

	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list")

	require.False(t, outcome.OK())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, domain.ErrorKindNotFound, outcome.Err.Kind)
	assert.Equal(t, "failure 1", outcome.Err.Message)
	assert.Empty(t, sleeper.waits)
}

func TestClient_NoRetriesConfigured(t *testing.T) {
	srv, calls := statusSequence(t, http.StatusBadGateway)
	c, _ := newTestClient(t, srv, func(o *Options) { o.Retries = 0 })

	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list")

	assert.False(t, outcome.OK())
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Timeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	c, _ := newTestClient(t, srv, func(o *Options) {
		o.Timeout = 20 * time.Millisecond
		o.Retries = 1
	})

	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list")

	require.False(t, outcome.OK())
	assert.Equal(t, domain.ErrorKindTimeout, outcome.Err.Kind)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CanceledContextIsNotRetried(t *testing.T) {
	srv, calls := statusSequence(t)
	c, _ := newTestClient(t, srv, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome := FetchPage[row](ctx, c, "/api/plugins/list")

	require.False(t, outcome.OK())
	assert.Equal(t, domain.ErrorKindCanceled, outcome.Err.Kind)
	assert.False(t, outcome.Err.Retryable())
	assert.LessOrEqual(t, calls.Load(), int32(1))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: url, Retries: 1})
	sleeper := &recordingSleeper{}
	c.sleep = sleeper.sleep

	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list")

	require.False(t, outcome.OK())
	assert.Equal(t, domain.ErrorKindNetwork, outcome.Err.Kind)
	assert.Len(t, sleeper.waits, 1)
}

func TestClient_RetryAfterExtendsBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set(HeaderRetryAfter, "5")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(srv.Close)

	c, sleeper := newTestClient(t, srv, nil)

	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list")

	require.True(t, outcome.OK())
	assert.Equal(t, []time.Duration{5 * time.Second}, sleeper.waits)
}

func TestClient_RetryAfterIsCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRetryAfter, "86400")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c, sleeper := newTestClient(t, srv, nil)

	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list")

	require.False(t, outcome.OK())
	assert.Equal(t, domain.ErrorKindServer, outcome.Err.Kind)
	assert.Equal(t, []time.Duration{MaxRetryAfter, MaxRetryAfter}, sleeper.waits)
}

func TestClient_RetryAfterPauseIsCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(HeaderRetryAfter, "86400")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	limiter := NewRateLimiter(0)
	c, _ := newTestClient(t, srv, func(o *Options) {
		o.Retries = 0
		o.Limiter = limiter
	})

	before := time.Now()
	outcome := FetchPage[row](context.Background(), c, "/api/plugins/list")

	require.False(t, outcome.OK())
	assert.WithinDuration(t, before.Add(MaxRetryAfter), limiter.PausedUntil(), 5*time.Second)
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	c, _ := newTestClient(t, srv, nil)

	outcome := c.Do(context.Background(), Request{Method: http.MethodPost, URL: "/api/x", Body: map[string]int{"a": 1}})

	require.True(t, outcome.OK())
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get(HeaderRequestID))
}

func TestFetchJSON_BodyHandling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/text":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("pong"))
		case "/broken":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": [`))
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(srv.Close)
	c, _ := newTestClient(t, srv, nil)
	ctx := context.Background()

	text := FetchJSON[string](ctx, c, Request{URL: "/text"})
	require.True(t, text.OK())
	assert.Equal(t, "pong", text.Data)

	broken := FetchPage[row](ctx, c, "/broken")
	require.True(t, broken.OK())
	assert.Nil(t, broken.Data.Data)
	assert.Nil(t, broken.Data.Meta)

	empty := FetchPage[row](ctx, c, "/empty")
	require.True(t, empty.OK())
	assert.Equal(t, http.StatusNoContent, empty.StatusCode)
}

func TestClient_ValidationErrorCarriesFieldData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"message":"Failed to authenticate.","data":{"identity":{"code":"validation_required","message":"Missing required value."}}}`))
	}))
	t.Cleanup(srv.Close)
	c, _ := newTestClient(t, srv, nil)

	outcome := c.Do(context.Background(), Request{Method: http.MethodPost, URL: "/api/x"})

	require.False(t, outcome.OK())
	assert.Equal(t, domain.ErrorKindValidation, outcome.Err.Kind)
	assert.Equal(t, "Failed to authenticate.", outcome.Err.Message)
	assert.Equal(t, map[string]string{"identity": "Missing required value."}, FieldErrors(outcome.Err))
}

func TestPageSource(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"p1","slug":"pb","name":"PB"}],"meta":{"hasMore":true,"nextOffset":24}}`))
	}))
	t.Cleanup(srv.Close)
	c, _ := newTestClient(t, srv, nil)

	source := NewPageSource[domain.Plugin](c)
	outcome := source.FetchPage(context.Background(), srv.URL+"/api/plugins/list?limit=24&offset=0")

	require.True(t, outcome.OK())
	assert.Equal(t, "limit=24&offset=0", gotQuery)
	require.Len(t, outcome.Data.Data, 1)
	assert.Equal(t, "PB", outcome.Data.Data[0].Name)
	cursor := outcome.Data.Meta.Advance(0, 1)
	assert.Equal(t, domain.PageCursor{Offset: 24, HasMore: true}, cursor)
}

func TestStatusError_FallbackMessages(t *testing.T) {
	plain := statusError(http.StatusBadGateway, []byte("upstream down"))
	assert.Equal(t, "upstream down", plain.Message)
	assert.Equal(t, domain.ErrorKindServer, plain.Kind)

	empty := statusError(http.StatusForbidden, nil)
	assert.Equal(t, "Forbidden", empty.Message)
	assert.Equal(t, domain.ErrorKindForbidden, empty.Kind)
}

func TestResponse_IsJSON(t *testing.T) {
	assert.True(t, Response{ContentType: "application/json; charset=utf-8"}.IsJSON())
	assert.True(t, Response{ContentType: "application/problem+json"}.IsJSON())
	assert.False(t, Response{ContentType: "text/html"}.IsJSON())
	assert.False(t, Response{}.IsJSON())
}
