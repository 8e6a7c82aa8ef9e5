package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driving"
	"github.com/browerscan/pocketbase.cn/internal/logger"
)

// Ensure AuthService implements the interfaces.
var (
	_ driving.AuthService    = (*AuthService)(nil)
	_ driven.SessionProvider = (*AuthService)(nil)
)

// AuthService manages the signed-in session and exposes its token to the
// fetch layer.
type AuthService struct {
	api   driven.AuthAPI
	store driven.SessionStore
	now   func() time.Time

	mu      sync.Mutex
	session *domain.AuthSession
	loaded  bool
}

// NewAuthService creates a new auth service.
func NewAuthService(api driven.AuthAPI, store driven.SessionStore) *AuthService {
	return &AuthService{
		api:   api,
		store: store,
		now:   time.Now,
	}
}

// SetAPI sets the backend auth API. The fetch client that implements it
// depends on this service for its token, so it is wired after construction.
func (s *AuthService) SetAPI(api driven.AuthAPI) {
	s.api = api
}

// Login signs in with identity and password and stores the session.
func (s *AuthService) Login(ctx context.Context, identity, password string) (*domain.AuthSession, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	logger.Section("Login")
	logger.Debug("Identity: %s", identity)

	session, err := s.api.AuthWithPassword(ctx, identity, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if err := s.store.Save(ctx, *session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.remember(session)
	logger.Info("Signed in as %s", session.User.ID)
	return session, nil
}

// Refresh exchanges the stored token for a fresh session. A session that is
// expired or rejected by the backend is cleared.
func (s *AuthService) Refresh(ctx context.Context) (*domain.AuthSession, error) {
	logger.Section("Session Refresh")

	current, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		s.remember(nil)
		return nil, domain.ErrAuthRequired
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if !current.Valid(s.now()) {
		logger.Debug("Stored session expired at %s", current.ExpiresAt)
		s.clear(ctx)
		return nil, domain.ErrAuthExpired
	}

	session, err := s.api.AuthRefresh(ctx, current.Token)
	if err != nil {
		logger.Warn("Session refresh failed: %v", err)
		s.clear(ctx)
		return nil, fmt.Errorf("%w: %w", domain.ErrAuthExpired, err)
	}
	if err := s.store.Save(ctx, *session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.remember(session)
	return session, nil
}

// Logout clears the stored session.
func (s *AuthService) Logout(ctx context.Context) error {
	s.remember(nil)
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// GetToken returns the valid session token, or empty string when signed out.
func (s *AuthService) GetToken(ctx context.Context) (string, error) {
	session, err := s.current(ctx)
	if err != nil {
		return "", err
	}
	if !session.Valid(s.now()) {
		return "", nil
	}
	return session.Token, nil
}

// IsAuthenticated reports whether a valid session is available.
func (s *AuthService) IsAuthenticated() bool {
	session, err := s.current(context.Background())
	return err == nil && session.Valid(s.now())
}

// current returns the cached session, loading it from the store once.
func (s *AuthService) current(ctx context.Context) (*domain.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.session, nil
	}
	session, err := s.store.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		s.loaded = true
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s.session = session
	s.loaded = true
	return session, nil
}

func (s *AuthService) remember(session *domain.AuthSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.loaded = true
}

func (s *AuthService) clear(ctx context.Context) {
	s.remember(nil)
	if err := s.store.Clear(ctx); err != nil {
		logger.Warn("Failed to clear session: %v", err)
	}
}
