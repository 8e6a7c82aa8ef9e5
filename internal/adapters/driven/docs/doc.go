// Package docs reads documentation pages from the built static site so they
// can take part in local search.
package docs
