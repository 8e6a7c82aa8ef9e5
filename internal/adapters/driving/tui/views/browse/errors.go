package browse

import "errors"

// Error definitions for the list view.
var (
	// ErrNoBrowseService indicates that no browse service was provided.
	ErrNoBrowseService = errors.New("browse service is required")
)
