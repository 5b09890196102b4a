// Package auth provides stateless authentication using JWT.
// No server-side session storage; tokens are self-contained.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lionscafe/api/domain/user"
)

// Sentinel verification failures, mapped to taxonomy errors at the HTTP
// layer.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into a request principal.
func (c *Claims) Principal() user.Principal {
	role, ok := user.ParseRole(c.Role)
	if !ok {
		role = user.RoleCustomer
	}
	return user.Principal{
		ID:     c.UserID,
		Email:  c.Email,
		Role:   role,
		Active: c.Active,
	}
}

// TokenService signs and verifies HS256 access tokens.
// Thread-safe and suitable for concurrent use.
type TokenService struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService creates a JWT token service. If secret is empty a
// random 32-byte secret is generated (tokens then die with the process).
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	var secretBytes []byte
	if secret == "" {
		secretBytes = make([]byte, 32)
		rand.Read(secretBytes)
	} else {
		secretBytes = []byte(secret)
	}

	if expiry == 0 {
		expiry = 24 * time.Hour
	}

	return &TokenService{
		secret: secretBytes,
		issuer: "lionscafe",
		expiry: expiry,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source (for tests).
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Generate creates a signed token for the given user.
func (s *TokenService) Generate(u user.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiry)

	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
		Active: u.Active,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature and expiry and returns the claims.
// Failures are ErrTokenExpired or ErrTokenInvalid.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Refresh verifies a token and issues a fresh one with extended expiry.
// The stored user record is the caller's responsibility; claims are
// reissued as-is.
func (s *TokenService) Refresh(tokenString string) (string, time.Time, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.Generate(user.User{
		ID:     claims.UserID,
		Email:  claims.Email,
		Role:   user.Role(claims.Role),
		Active: claims.Active,
	})
}

// GenerateSecret generates a random secret suitable for JWT signing.
func GenerateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
