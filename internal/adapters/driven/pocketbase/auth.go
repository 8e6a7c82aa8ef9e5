package pocketbase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// Users collection auth endpoints.
const (
	authWithPasswordPath = "/api/collections/users/auth-with-password"
	authRefreshPath      = "/api/collections/users/auth-refresh"
)

var errNoSession = errors.New("no session token")

// Ensure Users implements the interface.
var _ driven.AuthAPI = (*Users)(nil)

// authResponse is the body of the users auth endpoints.
type authResponse struct {
	Token  string      `json:"token"`
	Record domain.User `json:"record"`
}

// Users is the users-collection auth API.
type Users struct {
	client *Client
	now    func() time.Time
}

// NewUsers creates the auth API over client.
func NewUsers(client *Client) *Users {
	return &Users{client: client, now: time.Now}
}

// AuthWithPassword signs in with identity (email or username) and password.
func (u *Users) AuthWithPassword(ctx context.Context, identity, password string) (*domain.AuthSession, error) {
	outcome := FetchJSON[authResponse](ctx, u.client, Request{
		Method: http.MethodPost,
		URL:    authWithPasswordPath,
		Body: map[string]string{
			"identity": identity,
			"password": password,
		},
	})
	return u.session(outcome)
}

// AuthRefresh exchanges token for a fresh session.
func (u *Users) AuthRefresh(ctx context.Context, token string) (*domain.AuthSession, error) {
	outcome := FetchJSON[authResponse](ctx, u.client, Request{
		Method: http.MethodPost,
		URL:    authRefreshPath,
		Header: http.Header{"Authorization": {token}},
	})
	return u.session(outcome)
}

func (u *Users) session(outcome domain.FetchOutcome[authResponse]) (*domain.AuthSession, error) {
	if !outcome.OK() {
		return nil, outcome.Err
	}
	if outcome.Data.Token == "" {
		return nil, domain.ErrAuthInvalid
	}
	expires, err := TokenExpiry(outcome.Data.Token)
	if err != nil {
		return nil, err
	}
	return &domain.AuthSession{
		Token:     outcome.Data.Token,
		User:      outcome.Data.Record,
		ExpiresAt: expires,
		UpdatedAt: u.now(),
	}, nil
}

// TokenExpiry reads the exp claim of a PocketBase auth token. The signature
// is not verified; only the backend can do that. A token without exp yields
// the zero time.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, domain.ErrAuthInvalid
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, domain.ErrAuthInvalid
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// sessionTokenSource adapts a SessionProvider to oauth2.TokenSource.
type sessionTokenSource struct {
	session driven.SessionProvider
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.session.GetToken(context.Background())
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errNoSession
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// SessionTransport adds the session's Authorization header to requests that
// do not already carry one.
type SessionTransport struct {
	session driven.SessionProvider
	base    http.RoundTripper
	authed  *oauth2.Transport
}

// NewSessionTransport wraps base. A nil session leaves requests unchanged.
func NewSessionTransport(session driven.SessionProvider, base http.RoundTripper) *SessionTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &SessionTransport{session: session, base: base}
	if session != nil {
		t.authed = &oauth2.Transport{Source: sessionTokenSource{session: session}, Base: base}
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (t *SessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.authed == nil || req.Header.Get("Authorization") != "" || !t.session.IsAuthenticated() {
		return t.base.RoundTrip(req)
	}
	return t.authed.RoundTrip(req)
}
