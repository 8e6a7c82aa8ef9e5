package domain

import "time"

// AppSettings is the effective client configuration.
type AppSettings struct {
	// PocketBaseURL is the backend origin.
	PocketBaseURL string

	// SiteURL is the public site origin used for share links and sitemaps.
	SiteURL string

	Fetch FetchSettings

	// ListLimit is the page size of list views.
	ListLimit int

	// SearchCap is the maximum number of search results shown.
	SearchCap int

	// SnapshotTTL is how long a stored first page may seed a list view.
	SnapshotTTL time.Duration

	// DocsDir is the built static site's docs directory. Empty disables docs.
	DocsDir string
}

// FetchSettings configures the fetch client.
type FetchSettings struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration

	// RateLimit is the request budget per second. Zero means unlimited.
	RateLimit int
}

// DefaultAppSettings returns the built-in defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		PocketBaseURL: "https://api.pocketbase.cn",
		SiteURL:       "https://pocketbase.cn",
		Fetch: FetchSettings{
			Timeout:    30 * time.Second,
			Retries:    2,
			RetryDelay: time.Second,
		},
		ListLimit:   24,
		SearchCap:   8,
		SnapshotTTL: 10 * time.Minute,
	}
}
