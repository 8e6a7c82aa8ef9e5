package pocketbase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// CSRFPath is the token endpoint.
const CSRFPath = "/api/csrf-token"

// csrfTimeout bounds a token fetch.
const csrfTimeout = 10 * time.Second

// Ensure CSRFCache implements the interface.
var _ driven.CSRFTokenSource = (*CSRFCache)(nil)

// CSRFCache holds the anti-forgery token for the process. Concurrent callers
// that find it empty share a single fetch.
type CSRFCache struct {
	url     string
	http    *http.Client
	metrics *Metrics

	group singleflight.Group

	mu    sync.RWMutex
	token string
}

// NewCSRFCache creates a cache that fetches from baseURL + CSRFPath.
func NewCSRFCache(baseURL string, httpClient *http.Client, metrics *Metrics) *CSRFCache {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CSRFCache{
		url:     strings.TrimRight(baseURL, "/") + CSRFPath,
		http:    httpClient,
		metrics: metrics,
	}
}

// Token returns the cached token, fetching it on first use. It returns ""
// when the endpoint is unavailable; the next call tries again.
func (c *CSRFCache) Token(ctx context.Context) string {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return token
	}

	// The shared fetch must not be cut short by whichever caller started it.
	fetchCtx := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do("csrf", func() (any, error) {
		c.mu.RLock()
		cached := c.token
		c.mu.RUnlock()
		if cached != "" {
			return cached, nil
		}

		token, err := c.fetch(fetchCtx)
		if err != nil {
			logger.Warn("CSRF token unavailable: %v", err)
			c.metrics.observeCSRF("error")
			return "", nil
		}
		c.metrics.observeCSRF("ok")

		c.mu.Lock()
		c.token = token
		c.mu.Unlock()
		return token, nil
	})

	token, _ = v.(string)
	return token
}

// Invalidate drops the cached token.
func (c *CSRFCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func (c *CSRFCache) fetch(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, csrfTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("csrf request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("csrf request failed with status %d", resp.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode csrf response: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("csrf response carried no token")
	}
	return body.Token, nil
}
