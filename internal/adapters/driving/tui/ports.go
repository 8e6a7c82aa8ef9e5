// Package tui provides an interactive terminal browser for the PocketBase.cn
// catalogue. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search ranks the catalogue for the command palette.
	Search driving.SearchService

	// Browse opens the plugin and showcase lists.
	Browse driving.BrowseService

	// SiteURL is the public site origin selected entries link to.
	SiteURL string

	// SearchLimit caps palette results. Zero uses the service default.
	SearchLimit int
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchService, browse driving.BrowseService, siteURL string) *Ports {
	return &Ports{
		Search:  search,
		Browse:  browse,
		SiteURL: siteURL,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Browse == nil {
		return ErrMissingBrowseService
	}
	return nil
}
