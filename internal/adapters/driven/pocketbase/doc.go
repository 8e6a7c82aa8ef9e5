// Package pocketbase is the HTTP adapter for the PocketBase.cn backend.
//
// Client performs every request with a per-attempt timeout and bounded
// exponential retries, and resolves to a domain.FetchOutcome instead of
// returning Go errors. State-changing requests carry an anti-forgery token
// from a shared CSRFCache. PageSource adapts the client to the list
// controller's driven.PageFetcher port, and Users implements driven.AuthAPI.
package pocketbase
