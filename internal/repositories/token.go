package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/shared"
)

// TokenRepository persists [auth.Token] values in the tokens table.
type TokenRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db, now: time.Now}
}

// Save inserts or replaces the token stored for clientID.
func (r *TokenRepository) Save(clientID string, token *auth.Token) error {
	if clientID == "" {
		return fmt.Errorf("%w: client id", shared.ErrMissingArgument)
	}
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: token has no access token", shared.ErrInvalidInput)
	}

	now := r.now()
	query := `
		INSERT INTO tokens (id, client_id, access_token, token_type, refresh_token, scope, expires_in, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			access_token = excluded.access_token,
			token_type = excluded.token_type,
			refresh_token = excluded.refresh_token,
			scope = excluded.scope,
			expires_in = excluded.expires_in,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		shared.GenerateID(),
		clientID,
		token.AccessToken,
		token.TokenType,
		token.RefreshToken,
		token.Scope,
		token.ExpiresIn,
		unixOrZero(token.ExpiresAt),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Get returns the token stored for clientID, or [shared.ErrNotFound].
func (r *TokenRepository) Get(clientID string) (*auth.Token, error) {
	query := `
		SELECT access_token, token_type, refresh_token, scope, expires_in, expires_at
		FROM tokens
		WHERE client_id = ?
	`

	var (
		token     auth.Token
		expiresAt int64
	)
	err := r.db.QueryRow(query, clientID).Scan(
		&token.AccessToken,
		&token.TokenType,
		&token.RefreshToken,
		&token.Scope,
		&token.ExpiresIn,
		&expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no token for client %s", shared.ErrNotFound, clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	if expiresAt > 0 {
		token.ExpiresAt = time.Unix(expiresAt, 0)
	}
	return &token, nil
}

// UpdatedAt reports when the token for clientID was last written.
func (r *TokenRepository) UpdatedAt(clientID string) (time.Time, error) {
	var updatedAt time.Time
	err := r.db.QueryRow("SELECT updated_at FROM tokens WHERE client_id = ?", clientID).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: no token for client %s", shared.ErrNotFound, clientID)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query token: %w", err)
	}
	return updatedAt, nil
}

// Delete removes the token stored for clientID.
func (r *TokenRepository) Delete(clientID string) error {
	result, err := r.db.Exec("DELETE FROM tokens WHERE client_id = ?", clientID)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no token for client %s", shared.ErrNotFound, clientID)
	}

	return nil
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
