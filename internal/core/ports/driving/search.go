package driving

import (
	"context"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
)

// SearchService provides command-palette search over the catalogue.
type SearchService interface {
	// Search ranks the catalogue against query and returns at most limit
	// candidates. A blank query returns no results.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchCandidate, error)

	// Remember records a submitted search term in the history.
	Remember(ctx context.Context, term string) error

	// History returns the remembered terms, most recent first.
	History(ctx context.Context) ([]string, error)
}

// AuthService manages the signed-in session.
type AuthService interface {
	// Login signs in with identity and password.
	Login(ctx context.Context, identity, password string) (*domain.AuthSession, error)

	// Refresh validates and refreshes the stored session.
	// It returns domain.ErrAuthRequired when signed out.
	Refresh(ctx context.Context) (*domain.AuthSession, error)

	// Logout clears the stored session.
	Logout(ctx context.Context) error
}

// SitemapService renders sitemap documents for the site.
type SitemapService interface {
	// Static renders the sitemap of the fixed site pages.
	Static() ([]byte, error)

	// Docs renders the documentation sitemap.
	Docs(ctx context.Context) ([]byte, error)

	// Plugins renders the plugin sitemap.
	Plugins(ctx context.Context) ([]byte, error)

	// Showcase renders the showcase sitemap.
	Showcase(ctx context.Context) ([]byte, error)

	// Index renders the sitemap index.
	Index() ([]byte, error)
}

// SettingsService reads and edits the client configuration.
type SettingsService interface {
	// Get returns the effective settings: stored values over defaults, with
	// environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Set validates and stores one setting by key.
	Set(key, value string) error

	// Lookup returns the effective value of key as text.
	Lookup(key string) (string, error)

	// Keys lists the known setting keys in display order.
	Keys() []string

	// Path returns where settings are stored.
	Path() string
}
