// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PageFetcher: Fetches one page of a PocketBase list endpoint
//   - Location: The navigable URL a filtered view is bound to
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VisibilityObserver: Drives infinite scroll. Without it, load-more is manual.
//   - SnapshotStore: Hydration seeds. Without it, every view starts with a fetch.
//   - HistoryStore: Search history. Without it, history is not remembered.
//   - DocSource: Documentation pages. Without it, search covers plugins and showcases only.
//   - SessionStore / AuthAPI: Signed-in session. Without them, requests are anonymous.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
