// Package services implements the driving port interfaces and the list
// machinery shared by the CLI and the TUI: relevance scoring and ranking,
// the incremental list controller, filter/URL synchronisation, full crawls,
// sitemaps and the signed-in session.
//
// Services are pure Go and reach the network and disk only through driven ports.
package services
