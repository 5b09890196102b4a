package http

import (
	"context"

	"github.com/lionscafe/api/domain/user"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	validatedBodyKey
	validatedParamsKey
	validatedQueryKey
)

// Location names a request data source for validation.
type Location string

const (
	LocationBody   Location = "body"
	LocationParams Location = "params"
	LocationQuery  Location = "query"
)

func locationKey(loc Location) ctxKey {
	switch loc {
	case LocationParams:
		return validatedParamsKey
	case LocationQuery:
		return validatedQueryKey
	default:
		return validatedBodyKey
	}
}

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the authenticated identity attached by the
// Authenticate middleware, if any.
func PrincipalFrom(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey).(user.Principal)
	return p, ok
}

func withValidated(ctx context.Context, loc Location, data map[string]any) context.Context {
	return context.WithValue(ctx, locationKey(loc), data)
}

// Validated returns the sanitized data stored by the Validate
// middleware for the given location. Nil when no schema ran.
func Validated(ctx context.Context, loc Location) map[string]any {
	m, _ := ctx.Value(locationKey(loc)).(map[string]any)
	return m
}
