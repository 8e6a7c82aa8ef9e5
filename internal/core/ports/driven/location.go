package driven

import "net/url"

// Location is the navigable URL a filtered view is bound to.
type Location interface {
	// Path returns the URL path of the current page.
	Path() string

	// Query returns a copy of the current query parameters.
	Query() url.Values

	// Replace rewrites the query string in place, without adding a history entry.
	Replace(query url.Values)

	// String returns the full current URL.
	String() string
}
