package memory

import (
	"net/url"
	"sync"

	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// Ensure Location implements the interface.
var _ driven.Location = (*Location)(nil)

// Location is a navigable page URL held in memory. Replace rewrites it in
// place, so there is never more than one history entry.
type Location struct {
	mu sync.RWMutex
	u  url.URL
}

// NewLocation parses rawURL into a Location.
func NewLocation(rawURL string) (*Location, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &Location{u: *u}, nil
}

// Path returns the URL path.
func (l *Location) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.Path
}

// Query returns a copy of the query parameters.
func (l *Location) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.Query()
}

// Replace rewrites the query string.
func (l *Location) Replace(query url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.u.RawQuery = query.Encode()
}

// String returns the full URL.
func (l *Location) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.u.String()
}
