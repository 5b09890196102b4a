// Package ports defines the interfaces between the application core and
// its adapters. Stores are implemented by adapters/sqlite; Clock,
// IDGenerator and Hasher have real and fake implementations for tests.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/lionscafe/api/domain/menu"
	"github.com/lionscafe/api/domain/order"
	"github.com/lionscafe/api/domain/ratelimit"
	"github.com/lionscafe/api/domain/reservation"
	"github.com/lionscafe/api/domain/user"
)

// Sentinel errors returned by store implementations. Callers match with
// errors.Is and never inspect driver errors directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("already exists")
	ErrInvalidReference = errors.New("invalid reference")
)

// Clock provides the current time. Injected so tests control time.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher hashes and verifies secrets.
type Hasher interface {
	Hash(plaintext string) ([]byte, error)
	Compare(hash []byte, plaintext string) bool
}

// UserStore persists user accounts.
type UserStore interface {
	Get(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) error
	Update(ctx context.Context, u user.User) error
	List(ctx context.Context, limit, offset int) ([]user.User, error)
	Count(ctx context.Context) (int, error)
}

// ActionTokenStore persists one-time email verification and password
// reset tokens. Only token hashes are stored.
type ActionTokenStore interface {
	Create(ctx context.Context, t user.ActionToken) error
	GetByHash(ctx context.Context, hash []byte, tokenType user.ActionTokenType) (user.ActionToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	InvalidateForUser(ctx context.Context, userID string, tokenType user.ActionTokenType) error
}

// MenuStore persists menu categories and items.
type MenuStore interface {
	GetCategory(ctx context.Context, id string) (menu.Category, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]menu.Category, error)
	CreateCategory(ctx context.Context, c menu.Category) error
	UpdateCategory(ctx context.Context, c menu.Category) error
	DeleteCategory(ctx context.Context, id string) error

	GetItem(ctx context.Context, id string) (menu.Item, error)
	ListItems(ctx context.Context, categoryID string, limit, offset int) ([]menu.Item, error)
	CountItems(ctx context.Context, categoryID string) (int, error)
	ListFeatured(ctx context.Context) ([]menu.Item, error)
	CreateItem(ctx context.Context, i menu.Item) error
	UpdateItem(ctx context.Context, i menu.Item) error
	DeleteItem(ctx context.Context, id string) error
}

// OrderStore persists orders and their lines.
type OrderStore interface {
	Create(ctx context.Context, o order.Order) error
	Get(ctx context.Context, id string) (order.Order, error)
	List(ctx context.Context, limit, offset int) ([]order.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error)
	Count(ctx context.Context, userID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status order.Status, at time.Time) error
}

// ReservationStore persists reservations.
type ReservationStore interface {
	Create(ctx context.Context, r reservation.Reservation) error
	Get(ctx context.Context, id string) (reservation.Reservation, error)
	List(ctx context.Context, limit, offset int) ([]reservation.Reservation, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]reservation.Reservation, error)
	Count(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, r reservation.Reservation) error
	// ListActiveByTable returns reservations holding the table that
	// overlap the [from, to) window.
	ListActiveByTable(ctx context.Context, tableID string, from, to time.Time) ([]reservation.Reservation, error)
}

// TableStore persists dining tables.
type TableStore interface {
	Create(ctx context.Context, t reservation.Table) error
	Get(ctx context.Context, id string) (reservation.Table, error)
	List(ctx context.Context) ([]reservation.Table, error)
	ListByStatus(ctx context.Context, status reservation.TableStatus) ([]reservation.Table, error)
	UpdateStatus(ctx context.Context, id string, status reservation.TableStatus, at time.Time) error
}

// RateLimitStore holds per-key limiter state. Take must be atomic per
// key: concurrent callers may not observe intermediate state.
type RateLimitStore interface {
	Take(ctx context.Context, key string, cfg ratelimit.Config, now time.Time) (ratelimit.Result, error)
}
