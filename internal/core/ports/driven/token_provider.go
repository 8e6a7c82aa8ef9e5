package driven

import "context"

// CSRFTokenSource provides the anti-forgery token sent on state-changing
// requests. Implementations share one in-flight fetch among concurrent callers.
type CSRFTokenSource interface {
	// Token returns the cached token, fetching it on first use.
	// Returns empty string if the token endpoint is unavailable.
	Token(ctx context.Context) string

	// Invalidate drops the cached token so the next call fetches a new one.
	Invalidate()
}

// SessionProvider exposes the signed-in session to the fetch layer.
type SessionProvider interface {
	// GetToken returns the session token, or empty string when signed out.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a valid, unexpired session is available.
	IsAuthenticated() bool
}
