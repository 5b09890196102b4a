// Package app contains the orchestration services between the HTTP
// surface and the storage ports.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/adapters/auth"
	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/user"
	"github.com/lionscafe/api/ports"
)

const (
	verificationTokenTTL  = 24 * time.Hour
	passwordResetTokenTTL = time.Hour
)

// AuthService handles registration, login and account token flows.
type AuthService struct {
	users  ports.UserStore
	tokens ports.ActionTokenStore
	hasher ports.Hasher
	jwt    *auth.TokenService
	clock  ports.Clock
	ids    ports.IDGenerator
	logger zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users ports.UserStore, tokens ports.ActionTokenStore, hasher ports.Hasher, jwt *auth.TokenService, clock ports.Clock, ids ports.IDGenerator, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		jwt:    jwt,
		clock:  clock,
		ids:    ids,
		logger: logger,
	}
}

// RegisterResult carries the created account and its verification token.
// RawToken is handed to the mail flow and never persisted.
type RegisterResult struct {
	User     user.User
	RawToken string
}

// Register creates a new customer account and issues an email
// verification token.
func (s *AuthService) Register(ctx context.Context, req user.RegisterRequest) (RegisterResult, error) {
	if v := user.ValidateRegister(req); !v.Valid {
		return RegisterResult{}, apperr.Validation("Validation failed",
			fieldErrors(v.Errors, []string{"email", "password", "name"}))
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return RegisterResult{}, apperr.Internal("").WithCause(err)
	}

	now := s.clock.Now()
	u := user.User{
		ID:           s.ids.New(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         user.RoleCustomer,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return RegisterResult{}, apperr.Conflict("Email already registered")
		}
		return RegisterResult{}, storeErr(err, "User")
	}

	result := user.GenerateActionToken(u.ID, u.Email, user.TokenEmailVerification, verificationTokenTTL)
	if err := s.tokens.Create(ctx, result.Token); err != nil {
		return RegisterResult{}, storeErr(err, "Verification token")
	}

	s.logger.Info().Str("user_id", u.ID).Str("email", u.Email).Msg("user registered")
	return RegisterResult{User: u, RawToken: result.RawToken}, nil
}

// LoginResult carries the authenticated account and its access token.
type LoginResult struct {
	User      user.User
	Token     string
	ExpiresAt time.Time
}

// Login checks credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return LoginResult{}, apperr.Authentication("Invalid credentials")
		}
		return LoginResult{}, storeErr(err, "User")
	}

	if !s.hasher.Compare(u.PasswordHash, password) {
		s.logger.Warn().Str("email", email).Msg("login failed")
		return LoginResult{}, apperr.Authentication("Invalid credentials")
	}
	if !u.Active {
		return LoginResult{}, apperr.Authentication("Account is deactivated")
	}

	token, expiresAt, err := s.jwt.Generate(u)
	if err != nil {
		return LoginResult{}, apperr.Internal("").WithCause(err)
	}

	s.logger.Info().Str("user_id", u.ID).Msg("user logged in")
	return LoginResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

// Refresh exchanges a valid token for a fresh one, re-reading the
// account so role or deactivation changes take effect.
func (s *AuthService) Refresh(ctx context.Context, token string) (LoginResult, error) {
	claims, err := s.jwt.Verify(token)
	if err != nil {
		return LoginResult{}, authErr(err)
	}

	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return LoginResult{}, apperr.Authentication("Invalid token")
		}
		return LoginResult{}, storeErr(err, "User")
	}
	if !u.Active {
		return LoginResult{}, apperr.Authentication("Account is deactivated")
	}

	fresh, expiresAt, err := s.jwt.Generate(u)
	if err != nil {
		return LoginResult{}, apperr.Internal("").WithCause(err)
	}
	return LoginResult{User: u, Token: fresh, ExpiresAt: expiresAt}, nil
}

// ForgotPassword issues a password reset token. Unknown emails return
// an empty token without error, so the endpoint never reveals whether
// an account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", nil
		}
		return "", storeErr(err, "User")
	}

	if err := s.tokens.InvalidateForUser(ctx, u.ID, user.TokenPasswordReset); err != nil {
		return "", storeErr(err, "Reset token")
	}

	result := user.GenerateActionToken(u.ID, u.Email, user.TokenPasswordReset, passwordResetTokenTTL)
	if err := s.tokens.Create(ctx, result.Token); err != nil {
		return "", storeErr(err, "Reset token")
	}

	s.logger.Info().Str("user_id", u.ID).Msg("password reset requested")
	return result.RawToken, nil
}

// ResetPassword redeems a reset token and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if len(newPassword) < 8 || !user.IsStrongPassword(newPassword) {
		return apperr.Validation("Validation failed", []apperr.FieldError{{
			Field:   "password",
			Message: "Password must be at least 8 characters with uppercase, lowercase, and number",
		}})
	}

	t, err := s.redeemToken(ctx, rawToken, user.TokenPasswordReset)
	if err != nil {
		return err
	}

	u, err := s.users.Get(ctx, t.UserID)
	if err != nil {
		return storeErr(err, "User")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal("").WithCause(err)
	}
	u.PasswordHash = hash
	if err := s.users.Update(ctx, u); err != nil {
		return storeErr(err, "User")
	}

	s.logger.Info().Str("user_id", u.ID).Msg("password reset")
	return nil
}

// VerifyEmail redeems a verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	t, err := s.redeemToken(ctx, rawToken, user.TokenEmailVerification)
	if err != nil {
		return err
	}

	u, err := s.users.Get(ctx, t.UserID)
	if err != nil {
		return storeErr(err, "User")
	}
	u.EmailVerified = true
	if err := s.users.Update(ctx, u); err != nil {
		return storeErr(err, "User")
	}

	s.logger.Info().Str("user_id", u.ID).Msg("email verified")
	return nil
}

// ResendVerification issues a fresh verification token. Unknown emails
// return an empty token without error.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", nil
		}
		return "", storeErr(err, "User")
	}
	if u.EmailVerified {
		return "", apperr.Conflict("Email already verified")
	}

	if err := s.tokens.InvalidateForUser(ctx, u.ID, user.TokenEmailVerification); err != nil {
		return "", storeErr(err, "Verification token")
	}

	result := user.GenerateActionToken(u.ID, u.Email, user.TokenEmailVerification, verificationTokenTTL)
	if err := s.tokens.Create(ctx, result.Token); err != nil {
		return "", storeErr(err, "Verification token")
	}
	return result.RawToken, nil
}

// redeemToken looks up, checks and consumes a one-time token.
func (s *AuthService) redeemToken(ctx context.Context, rawToken string, tokenType user.ActionTokenType) (user.ActionToken, error) {
	invalid := apperr.Authentication("Invalid or expired token")

	t, err := s.tokens.GetByHash(ctx, user.HashActionToken(rawToken), tokenType)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return user.ActionToken{}, invalid
		}
		return user.ActionToken{}, storeErr(err, "Token")
	}
	if t.IsUsed() || s.clock.Now().After(t.ExpiresAt) {
		return user.ActionToken{}, invalid
	}

	if err := s.tokens.MarkUsed(ctx, t.ID, s.clock.Now()); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// Lost the race to another redemption.
			return user.ActionToken{}, invalid
		}
		return user.ActionToken{}, storeErr(err, "Token")
	}
	return t, nil
}

// authErr maps token service failures to the taxonomy.
func authErr(err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return apperr.TokenExpired()
	default:
		return apperr.Authentication("Invalid token")
	}
}
