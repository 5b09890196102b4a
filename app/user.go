package app

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/user"
	"github.com/lionscafe/api/ports"
)

// UserService handles profiles and admin account management.
type UserService struct {
	users  ports.UserStore
	hasher ports.Hasher
	clock  ports.Clock
	logger zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users ports.UserStore, hasher ports.Hasher, clock ports.Clock, logger zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, clock: clock, logger: logger}
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id string) (user.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return user.User{}, storeErr(err, "User")
	}
	return u, nil
}

// ProfileUpdate carries the fields a user may change on their own
// account. Empty fields are left untouched.
type ProfileUpdate struct {
	Name  string
	Email string
}

// UpdateProfile applies profile changes. Changing the email resets the
// verified flag.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (user.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return user.User{}, storeErr(err, "User")
	}

	var details []apperr.FieldError
	if upd.Name != "" {
		name := strings.TrimSpace(upd.Name)
		if len(name) < 2 || len(name) > 100 {
			details = append(details, apperr.FieldError{Field: "name", Message: "Name must be between 2 and 100 characters", RejectedValue: upd.Name})
		} else {
			u.Name = name
		}
	}
	if upd.Email != "" && upd.Email != u.Email {
		if !user.IsValidEmail(upd.Email) {
			details = append(details, apperr.FieldError{Field: "email", Message: "Invalid email format", RejectedValue: upd.Email})
		} else {
			u.Email = upd.Email
			u.EmailVerified = false
		}
	}
	if len(details) > 0 {
		return user.User{}, apperr.Validation("Validation failed", details)
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return user.User{}, apperr.Conflict("Email already registered")
		}
		return user.User{}, storeErr(err, "User")
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return storeErr(err, "User")
	}
	if !s.hasher.Compare(u.PasswordHash, current) {
		return apperr.Authentication("Current password is incorrect")
	}
	if len(next) < 8 || !user.IsStrongPassword(next) {
		return apperr.Validation("Validation failed", []apperr.FieldError{{
			Field:   "newPassword",
			Message: "Password must be at least 8 characters with uppercase, lowercase, and number",
		}})
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperr.Internal("").WithCause(err)
	}
	u.PasswordHash = hash
	if err := s.users.Update(ctx, u); err != nil {
		return storeErr(err, "User")
	}

	s.logger.Info().Str("user_id", id).Msg("password changed")
	return nil
}

// UserPage is a paginated account listing.
type UserPage struct {
	Users []user.User
	Total int
}

// List returns accounts with pagination (admin action).
func (s *UserService) List(ctx context.Context, limit, offset int) (UserPage, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return UserPage{}, storeErr(err, "User")
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return UserPage{}, storeErr(err, "User")
	}
	return UserPage{Users: users, Total: total}, nil
}

// SetRole changes an account's role (admin action).
func (s *UserService) SetRole(ctx context.Context, id string, role user.Role) (user.User, error) {
	if _, ok := user.ParseRole(string(role)); !ok {
		return user.User{}, apperr.Validation("Validation failed", []apperr.FieldError{{
			Field: "role", Message: "Unknown role", RejectedValue: string(role),
		}})
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return user.User{}, storeErr(err, "User")
	}
	u.Role = role
	if err := s.users.Update(ctx, u); err != nil {
		return user.User{}, storeErr(err, "User")
	}

	s.logger.Info().Str("user_id", id).Str("role", string(role)).Msg("role changed")
	return u, nil
}

// SetActive activates or deactivates an account (admin action).
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (user.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return user.User{}, storeErr(err, "User")
	}
	u.Active = active
	if err := s.users.Update(ctx, u); err != nil {
		return user.User{}, storeErr(err, "User")
	}
	return u, nil
}
