// Package user provides identity value types and pure validation functions.
// This package has NO dependencies on I/O or external packages.
package user

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleStaff, RoleManager, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// Roles returns all valid roles in ascending privilege order.
func Roles() []Role {
	return []Role{RoleCustomer, RoleStaff, RoleManager, RoleAdmin}
}

// BypassesOwnership reports whether the role may act on any user's
// resources without an ownership match.
func (r Role) BypassesOwnership() bool {
	return r == RoleAdmin || r == RoleManager
}

// Principal is the identity attached to a request after token
// verification. Created per-request, never persisted.
type Principal struct {
	ID     string
	Email  string
	Role   Role
	Active bool
}

// Allowed reports whether the principal's role is in the allow-list.
func (p Principal) Allowed(roles []Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// User is the stored account record.
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  []byte
	Role          Role
	Active        bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RegisterRequest is a signup request (value type).
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// ValidationResult collects field-level failures.
type ValidationResult struct {
	Valid  bool
	Errors map[string]string // field -> error message
}

// ValidateRegister validates a signup request (pure function).
func ValidateRegister(req RegisterRequest) ValidationResult {
	errs := make(map[string]string)

	if req.Email == "" {
		errs["email"] = "Email is required"
	} else if !IsValidEmail(req.Email) {
		errs["email"] = "Invalid email format"
	}

	if req.Password == "" {
		errs["password"] = "Password is required"
	} else if len(req.Password) < 8 {
		errs["password"] = "Password must be at least 8 characters"
	} else if !IsStrongPassword(req.Password) {
		errs["password"] = "Password must contain uppercase, lowercase, and number"
	}

	if req.Name == "" {
		errs["name"] = "Name is required"
	} else if len(req.Name) < 2 {
		errs["name"] = "Name must be at least 2 characters"
	} else if len(req.Name) > 100 {
		errs["name"] = "Name must be less than 100 characters"
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether s is a plausible email address.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// IsStrongPassword requires an upper, a lower and a digit.
func IsStrongPassword(password string) bool {
	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
