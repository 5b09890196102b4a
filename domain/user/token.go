package user

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ActionTokenType identifies the purpose of a one-time account token.
type ActionTokenType string

const (
	TokenEmailVerification ActionTokenType = "email_verification"
	TokenPasswordReset     ActionTokenType = "password_reset"
)

// ActionToken is a one-time email verification or password reset token
// (immutable value type). Only the SHA-256 hash is ever stored.
type ActionToken struct {
	ID        string
	UserID    string
	Email     string // email at time of token creation
	Type      ActionTokenType
	Hash      []byte
	ExpiresAt time.Time
	UsedAt    *time.Time // nil = not used
	CreatedAt time.Time
}

// ActionTokenResult is the outcome of token generation. RawToken is only
// available here; it is sent to the user and never persisted.
type ActionTokenResult struct {
	Token    ActionToken
	RawToken string
}

// GenerateActionToken creates a new token of the given type.
func GenerateActionToken(userID, email string, tokenType ActionTokenType, expiresIn time.Duration) ActionTokenResult {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		panic("crypto/rand failed")
	}
	rawToken := hex.EncodeToString(randomBytes)

	idBytes := make([]byte, 8)
	rand.Read(idBytes)

	now := time.Now().UTC()
	token := ActionToken{
		ID:        "tok_" + hex.EncodeToString(idBytes),
		UserID:    userID,
		Email:     email,
		Type:      tokenType,
		Hash:      HashActionToken(rawToken),
		ExpiresAt: now.Add(expiresIn),
		CreatedAt: now,
	}

	return ActionTokenResult{Token: token, RawToken: rawToken}
}

// HashActionToken hashes a raw token for storage and lookup.
func HashActionToken(rawToken string) []byte {
	h := sha256.Sum256([]byte(rawToken))
	return h[:]
}

// IsExpired returns true if the token has expired.
func (t ActionToken) IsExpired() bool {
	return time.Now().UTC().After(t.ExpiresAt)
}

// IsUsed returns true if the token has been redeemed.
func (t ActionToken) IsUsed() bool {
	return t.UsedAt != nil
}

// IsValid returns true if the token is neither expired nor used.
func (t ActionToken) IsValid() bool {
	return !t.IsExpired() && !t.IsUsed()
}

// MarkUsed returns a copy of the token marked as redeemed.
func (t ActionToken) MarkUsed(at time.Time) ActionToken {
	t.UsedAt = &at
	return t
}
