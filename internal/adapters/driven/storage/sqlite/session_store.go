package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/browerscan/pocketbase.cn/internal/core/domain"
	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// Load returns the stored session.
func (s *sessionStore) Load(ctx context.Context) (*domain.AuthSession, error) {
	var session domain.AuthSession
	var userJSON string
	var expiresAt, updatedAt sql.NullInt64

	err := s.store.db.QueryRowContext(ctx, `
		SELECT token, user_json, expires_at, updated_at FROM auth_session WHERE id = 1
	`).Scan(&session.Token, &userJSON, &expiresAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if err := json.Unmarshal([]byte(userJSON), &session.User); err != nil {
		return nil, fmt.Errorf("unmarshalling session user: %w", err)
	}
	session.ExpiresAt = fromMillis(expiresAt)
	session.UpdatedAt = fromMillis(updatedAt)
	return &session, nil
}

// Save stores the session, replacing any previous one.
func (s *sessionStore) Save(ctx context.Context, session domain.AuthSession) error {
	if session.Token == "" {
		return domain.ErrInvalidInput
	}

	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("marshalling session user: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO auth_session (id, token, user_json, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, session.Token, string(userJSON), toMillis(session.ExpiresAt), toMillis(session.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (s *sessionStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM auth_session"); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
