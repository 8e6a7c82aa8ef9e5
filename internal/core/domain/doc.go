// Package domain defines the core entities for pbcn.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ListQuery, PageCursor, Page: the paginated list model
//   - FetchOutcome, FetchError: results of a backend round trip
//   - SearchCandidate: a normalised searchable record
//   - Plugin, Showcase, DocEntry: catalogue records served by PocketBase
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
