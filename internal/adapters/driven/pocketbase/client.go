package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

const (
	// DefaultTimeout is the per-attempt request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 2

	// DefaultRetryDelay is the base of the exponential backoff.
	DefaultRetryDelay = time.Second

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 16 << 20

	// HeaderCSRF carries the anti-forgery token.
	HeaderCSRF = "X-CSRF-Token"

	// HeaderRequestID identifies one attempt in backend logs.
	HeaderRequestID = "X-Request-Id"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the backend origin; relative request URLs resolve against it.
	BaseURL string

	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration

	// Retries is the number of extra attempts for retryable failures.
	Retries int

	// RetryDelay is the backoff base; attempt n waits RetryDelay * 2^n.
	RetryDelay time.Duration

	// HTTPClient performs requests. Defaults to NewHTTPClient(nil).
	HTTPClient *http.Client

	// CSRF supplies the token for state-changing requests. Optional.
	CSRF driven.CSRFTokenSource

	// Limiter throttles requests and honours Retry-After. Optional.
	Limiter *RateLimiter

	// Metrics records attempts and latency. Optional.
	Metrics *Metrics
}

// DefaultOptions returns the standard timeout and retry policy for baseURL.
func DefaultOptions(baseURL string) Options {
	return Options{
		BaseURL:    baseURL,
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// Request describes one logical request.
type Request struct {
	Method string

	// URL is absolute, or a path relative to Options.BaseURL.
	URL string

	// Body is JSON-encoded when non-nil.
	Body any

	// Header is merged into the request headers.
	Header http.Header
}

// Response is a successful raw response.
type Response struct {
	StatusCode  int
	Header      http.Header
	ContentType string
	Body        []byte
}

// IsJSON reports whether the response declares a JSON body.
func (r Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.Contains(r.ContentType, "json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Client talks to the PocketBase REST API.
type Client struct {
	opts  Options
	http  *http.Client
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(nil)
	}

	return &Client{
		opts:  opts,
		http:  httpClient,
		sleep: sleepContext,
	}
}

// NewHTTPClient returns an HTTP client with a cookie jar, so cookies bound
// to the CSRF token are replayed, and an Authorization header taken from
// session when one is available.
func NewHTTPClient(session driven.SessionProvider) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar:       jar,
		Transport: NewSessionTransport(session, http.DefaultTransport),
	}
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.opts.BaseURL
}

// resolve turns a relative path into an absolute URL.
func (c *Client) resolve(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return c.opts.BaseURL + u
}

// Do performs req, retrying transient failures, and returns the raw response.
func (c *Client) Do(ctx context.Context, req Request) domain.FetchOutcome[Response] {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	target := c.resolve(req.URL)

	var body []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return domain.Failure[Response](&domain.FetchError{
				Kind:    domain.ErrorKindClient,
				Message: fmt.Sprintf("encode request body: %v", err),
			})
		}
		body = encoded
	}

	attempts := c.opts.Retries + 1
	var last *domain.FetchError
	for attempt := 0; attempt < attempts; attempt++ {
		resp, ferr, retryAfter := c.attempt(ctx, method, target, body, req.Header)
		if ferr == nil {
			c.opts.Metrics.observeAttempt(method, "ok")
			return domain.Success(*resp, resp.StatusCode)
		}
		last = ferr
		c.opts.Metrics.observeAttempt(method, string(ferr.Kind))

		if !ferr.Retryable() || attempt == attempts-1 {
			break
		}

		wait := c.backoff(attempt)
		if retryAfter > wait {
			wait = retryAfter
		}
		logger.Debug("Retrying %s %s in %s after %s", method, target, wait, ferr.Kind)
		c.opts.Metrics.observeRetry(string(ferr.Kind))
		if err := c.sleep(ctx, wait); err != nil {
			return domain.Failure[Response](canceledError(err))
		}
	}

	logger.Warn("%s %s failed: %v", method, target, last)
	return domain.Failure[Response](last)
}

// backoff returns RetryDelay * 2^attempt.
func (c *Client) backoff(attempt int) time.Duration {
	return c.opts.RetryDelay << attempt
}

// attempt performs a single round trip under the per-attempt timeout.
func (c *Client) attempt(
	ctx context.Context,
	method, target string,
	body []byte,
	header http.Header,
) (*Response, *domain.FetchError, time.Duration) {
	actx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	if c.opts.Limiter != nil {
		if err := c.opts.Limiter.Wait(actx); err != nil {
			return nil, transportError(ctx, actx, err), 0
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(actx, method, target, reader)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.ErrorKindClient, Message: err.Error()}, 0
	}

	for key, values := range header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	mutation := isMutation(method)
	if mutation && c.opts.CSRF != nil {
		if token := c.opts.CSRF.Token(ctx); token != "" {
			httpReq.Header.Set(HeaderCSRF, token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.opts.Metrics.observeLatency(method, 0, time.Since(start))
		return nil, transportError(ctx, actx, err), 0
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.opts.Metrics.observeLatency(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, transportError(ctx, actx, err), 0
	}

	logger.Debug("%s %s -> %d (%d bytes)", method, target, resp.StatusCode, len(data))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{
			StatusCode:  resp.StatusCode,
			Header:      resp.Header,
			ContentType: resp.Header.Get("Content-Type"),
			Body:        data,
		}, nil, 0
	}

	var retryAfter time.Duration
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		retryAfter = ParseRetryAfter(resp.Header.Get(HeaderRetryAfter), time.Now())
		if c.opts.Limiter != nil && retryAfter > 0 {
			c.opts.Limiter.Pause(retryAfter)
		}
	}
	if mutation && resp.StatusCode == http.StatusForbidden && c.opts.CSRF != nil {
		c.opts.CSRF.Invalidate()
	}

	return nil, statusError(resp.StatusCode, data), retryAfter
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchJSON performs req and decodes a JSON success body into T. A success
// body that is not JSON, or does not decode, leaves the zero value; when T is
// string the raw text is returned instead.
func FetchJSON[T any](ctx context.Context, c *Client, req Request) domain.FetchOutcome[T] {
	outcome := c.Do(ctx, req)
	if !outcome.OK() {
		return domain.Failure[T](outcome.Err)
	}

	var data T
	resp := outcome.Data
	if text, ok := any(&data).(*string); ok && !resp.IsJSON() {
		*text = string(resp.Body)
		return domain.Success(data, resp.StatusCode)
	}
	if len(resp.Body) > 0 && resp.IsJSON() {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			logger.Debug("Discarding undecodable body: %v", err)
			var zero T
			data = zero
		}
	}
	return domain.Success(data, resp.StatusCode)
}

// FetchPage requests one page of a list endpoint.
func FetchPage[T any](ctx context.Context, c *Client, endpointURL string) domain.FetchOutcome[domain.Page[T]] {
	return FetchJSON[domain.Page[T]](ctx, c, Request{Method: http.MethodGet, URL: endpointURL})
}

// Ensure PageSource implements the interface.
var _ driven.PageFetcher[domain.Plugin] = (*PageSource[domain.Plugin])(nil)

// PageSource fetches pages of one record type.
type PageSource[T any] struct {
	client *Client
}

// NewPageSource creates a page source backed by client.
func NewPageSource[T any](client *Client) *PageSource[T] {
	return &PageSource[T]{client: client}
}

// FetchPage requests endpointURL.
func (s *PageSource[T]) FetchPage(ctx context.Context, endpointURL string) domain.FetchOutcome[domain.Page[T]] {
	return FetchPage[T](ctx, s.client, endpointURL)
}

// transportError classifies a failure that produced no HTTP response.
func transportError(parent, attempt context.Context, err error) *domain.FetchError {
	switch {
	case parent.Err() != nil:
		return canceledError(parent.Err())
	case errors.Is(attempt.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return &domain.FetchError{Kind: domain.ErrorKindTimeout, Message: "request timed out"}
	default:
		return &domain.FetchError{Kind: domain.ErrorKindNetwork, Message: err.Error()}
	}
}

func canceledError(err error) *domain.FetchError {
	return &domain.FetchError{Kind: domain.ErrorKindCanceled, Message: err.Error()}
}
