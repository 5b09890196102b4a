package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lionscafe/api/domain/user"
	"github.com/lionscafe/api/ports"
)

// ActionTokenStore implements ports.ActionTokenStore using SQLite.
type ActionTokenStore struct {
	db *DB
}

// NewActionTokenStore creates a new SQLite action token store.
func NewActionTokenStore(db *DB) *ActionTokenStore {
	return &ActionTokenStore{db: db}
}

// Create stores a new token.
func (s *ActionTokenStore) Create(ctx context.Context, t user.ActionToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_tokens (id, user_id, email, type, hash, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Email, string(t.Type), t.Hash, t.ExpiresAt, t.UsedAt, t.CreatedAt)

	return constraintErr(err)
}

// GetByHash retrieves a token by its hash and type.
func (s *ActionTokenStore) GetByHash(ctx context.Context, hash []byte, tokenType user.ActionTokenType) (user.ActionToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, email, type, hash, expires_at, used_at, created_at
		FROM action_tokens
		WHERE hash = ? AND type = ?
	`, hash, string(tokenType))

	return scanActionToken(row)
}

// MarkUsed marks a token as redeemed.
func (s *ActionTokenStore) MarkUsed(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE action_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL
	`, at, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// InvalidateForUser expires all outstanding tokens of a type for a user,
// so only the most recently issued token can be redeemed.
func (s *ActionTokenStore) InvalidateForUser(ctx context.Context, userID string, tokenType user.ActionTokenType) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE action_tokens
		SET used_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND type = ? AND used_at IS NULL
	`, userID, string(tokenType))
	return err
}

// DeleteExpired removes all expired tokens.
func (s *ActionTokenStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM action_tokens WHERE expires_at < ?
	`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanActionToken(row *sql.Row) (user.ActionToken, error) {
	var t user.ActionToken
	var tokenType string
	var usedAt sql.NullTime

	err := row.Scan(
		&t.ID, &t.UserID, &t.Email, &tokenType, &t.Hash, &t.ExpiresAt, &usedAt, &t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return user.ActionToken{}, ErrNotFound
	}
	if err != nil {
		return user.ActionToken{}, err
	}

	t.Type = user.ActionTokenType(tokenType)
	if usedAt.Valid {
		at := usedAt.Time
		t.UsedAt = &at
	}
	return t, nil
}

// Ensure interface compliance.
var _ ports.ActionTokenStore = (*ActionTokenStore)(nil)
