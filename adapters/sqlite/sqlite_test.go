package sqlite_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/lionscafe/api/adapters/sqlite"
	"github.com/lionscafe/api/domain/menu"
	"github.com/lionscafe/api/domain/order"
	"github.com/lionscafe/api/domain/reservation"
	"github.com/lionscafe/api/domain/user"
)

func setupTestDB(t *testing.T) (*sqlite.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "cafeapi-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	db, err := sqlite.Open(path)
	if err != nil {
		os.Remove(path)
		t.Fatalf("open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		os.Remove(path)
		t.Fatalf("migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(path)
	}

	return db, cleanup
}

func seedUser(t *testing.T, db *sqlite.DB, id, email string) user.User {
	t.Helper()
	store := sqlite.NewUserStore(db)
	u := user.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: []byte("hash"),
		Role:         user.RoleCustomer,
		Active:       true,
	}
	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedTable(t *testing.T, db *sqlite.DB, id string, number, capacity int) reservation.Table {
	t.Helper()
	store := sqlite.NewTableStore(db)
	now := time.Now().UTC()
	tbl := reservation.Table{
		ID:        id,
		Number:    number,
		Capacity:  capacity,
		Status:    reservation.TableAvailable,
		QRCode:    "qr-" + id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Create(context.Background(), tbl); err != nil {
		t.Fatalf("seed table: %v", err)
	}
	return tbl
}

// -----------------------------------------------------------------------------
// UserStore Tests
// -----------------------------------------------------------------------------

func TestUserStore_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	u := user.User{
		ID:            "user-1",
		Email:         "alice@example.com",
		Name:          "Alice",
		PasswordHash:  []byte("bcrypt-hash"),
		Role:          user.RoleStaff,
		Active:        true,
		EmailVerified: true,
	}
	if err := store.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("Email = %q, want %q", got.Email, u.Email)
	}
	if got.Role != user.RoleStaff {
		t.Errorf("Role = %q, want %q", got.Role, user.RoleStaff)
	}
	if string(got.PasswordHash) != "bcrypt-hash" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "bcrypt-hash")
	}
	if !got.EmailVerified {
		t.Error("EmailVerified = false, want true")
	}

	byEmail, err := store.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != "user-1" {
		t.Errorf("GetByEmail ID = %q, want user-1", byEmail.ID)
	}
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "dup@example.com")

	err := store.Create(ctx, user.User{
		ID:           "user-2",
		Email:        "dup@example.com",
		Name:         "Other",
		PasswordHash: []byte("x"),
		Role:         user.RoleCustomer,
	})
	if !errors.Is(err, sqlite.ErrDuplicate) {
		t.Errorf("Create duplicate email error = %v, want ErrDuplicate", err)
	}
}

func TestUserStore_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, sqlite.ErrNotFound) {
		t.Errorf("Get missing error = %v, want ErrNotFound", err)
	}
	if err := store.Update(ctx, user.User{ID: "nope"}); !errors.Is(err, sqlite.ErrNotFound) {
		t.Errorf("Update missing error = %v, want ErrNotFound", err)
	}
}

func TestUserStore_ListAndCount(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "a@example.com")
	seedUser(t, db, "user-2", "b@example.com")
	seedUser(t, db, "user-3", "c@example.com")

	users, err := store.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("List returned %d users, want 2", len(users))
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("Count = %d, want 3", count)
	}
}

// -----------------------------------------------------------------------------
// ActionTokenStore Tests
// -----------------------------------------------------------------------------

func TestActionTokenStore_RoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewActionTokenStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "a@example.com")

	result := user.GenerateActionToken("user-1", "a@example.com", user.TokenPasswordReset, time.Hour)
	if err := store.Create(ctx, result.Token); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByHash(ctx, user.HashActionToken(result.RawToken), user.TokenPasswordReset)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if got.ID != result.Token.ID {
		t.Errorf("ID = %q, want %q", got.ID, result.Token.ID)
	}
	if got.IsUsed() {
		t.Error("fresh token reported as used")
	}

	// Wrong type must not match.
	if _, err := store.GetByHash(ctx, user.HashActionToken(result.RawToken), user.TokenEmailVerification); !errors.Is(err, sqlite.ErrNotFound) {
		t.Errorf("GetByHash wrong type error = %v, want ErrNotFound", err)
	}
}

func TestActionTokenStore_MarkUsedOnce(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewActionTokenStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "a@example.com")

	result := user.GenerateActionToken("user-1", "a@example.com", user.TokenEmailVerification, time.Hour)
	if err := store.Create(ctx, result.Token); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := time.Now().UTC()
	if err := store.MarkUsed(ctx, result.Token.ID, at); err != nil {
		t.Fatalf("MarkUsed: %v", err)
	}

	// Second redemption fails.
	if err := store.MarkUsed(ctx, result.Token.ID, at); !errors.Is(err, sqlite.ErrNotFound) {
		t.Errorf("second MarkUsed error = %v, want ErrNotFound", err)
	}

	got, err := store.GetByHash(ctx, user.HashActionToken(result.RawToken), user.TokenEmailVerification)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if !got.IsUsed() {
		t.Error("token not marked used")
	}
}

func TestActionTokenStore_InvalidateForUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewActionTokenStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "a@example.com")

	first := user.GenerateActionToken("user-1", "a@example.com", user.TokenPasswordReset, time.Hour)
	if err := store.Create(ctx, first.Token); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.InvalidateForUser(ctx, "user-1", user.TokenPasswordReset); err != nil {
		t.Fatalf("InvalidateForUser: %v", err)
	}

	got, err := store.GetByHash(ctx, user.HashActionToken(first.RawToken), user.TokenPasswordReset)
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if !got.IsUsed() {
		t.Error("invalidated token not marked used")
	}
}

// -----------------------------------------------------------------------------
// MenuStore Tests
// -----------------------------------------------------------------------------

func TestMenuStore_CategoriesAndItems(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewMenuStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	cat := menu.Category{
		ID: "cat-1", Name: "Coffee", SortOrder: 1, Active: true,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := store.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	item := menu.Item{
		ID: "item-1", CategoryID: "cat-1", Name: "Flat White",
		PriceCents: 450, Available: true, Featured: true,
		Tags:      []string{"hot", "dairy"},
		CreatedAt: now, UpdatedAt: now,
	}
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	got, err := store.GetItem(ctx, "item-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.PriceCents != 450 {
		t.Errorf("PriceCents = %d, want 450", got.PriceCents)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "hot" || got.Tags[1] != "dairy" {
		t.Errorf("Tags = %v, want [hot dairy]", got.Tags)
	}

	featured, err := store.ListFeatured(ctx)
	if err != nil {
		t.Fatalf("ListFeatured: %v", err)
	}
	if len(featured) != 1 || featured[0].ID != "item-1" {
		t.Errorf("ListFeatured = %v, want [item-1]", featured)
	}

	// Unavailable items drop out of featured.
	got.Available = false
	if err := store.UpdateItem(ctx, got); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	featured, err = store.ListFeatured(ctx)
	if err != nil {
		t.Fatalf("ListFeatured: %v", err)
	}
	if len(featured) != 0 {
		t.Errorf("ListFeatured after unavailable = %d items, want 0", len(featured))
	}
}

func TestMenuStore_ItemRequiresCategory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewMenuStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	err := store.CreateItem(ctx, menu.Item{
		ID: "item-1", CategoryID: "missing", Name: "Orphan",
		PriceCents: 100, CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, sqlite.ErrInvalidReference) {
		t.Errorf("CreateItem with missing category error = %v, want ErrInvalidReference", err)
	}
}

func TestMenuStore_DeleteCategoryWithItems(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewMenuStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.CreateCategory(ctx, menu.Category{
		ID: "cat-1", Name: "Coffee", Active: true, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := store.CreateItem(ctx, menu.Item{
		ID: "item-1", CategoryID: "cat-1", Name: "Espresso",
		PriceCents: 300, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := store.DeleteCategory(ctx, "cat-1"); !errors.Is(err, sqlite.ErrInvalidReference) {
		t.Errorf("DeleteCategory with items error = %v, want ErrInvalidReference", err)
	}
}

// -----------------------------------------------------------------------------
// OrderStore Tests
// -----------------------------------------------------------------------------

func TestOrderStore_CreateWithLines(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewOrderStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedUser(t, db, "user-1", "a@example.com")

	o := order.Order{
		ID:     "order-1",
		UserID: "user-1",
		Type:   order.TypeTakeaway,
		Status: order.StatusPending,
		Lines: []order.Line{
			{ItemID: "item-1", Name: "Espresso", PriceCents: 300, Quantity: 2},
			{ItemID: "item-2", Name: "Croissant", PriceCents: 350, Quantity: 1, Note: "warmed"},
		},
		TotalCents: 950,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(got.Lines))
	}
	if got.Lines[0].Name != "Espresso" || got.Lines[1].Note != "warmed" {
		t.Errorf("lines out of order: %+v", got.Lines)
	}
	if got.TotalCents != 950 {
		t.Errorf("TotalCents = %d, want 950", got.TotalCents)
	}
	if got.TableID != "" {
		t.Errorf("TableID = %q, want empty for takeaway", got.TableID)
	}
}

func TestOrderStore_UpdateStatus(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewOrderStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedUser(t, db, "user-1", "a@example.com")

	o := order.Order{
		ID: "order-1", UserID: "user-1", Type: order.TypeTakeaway,
		Status: order.StatusPending,
		Lines:  []order.Line{{ItemID: "item-1", Name: "Espresso", PriceCents: 300, Quantity: 1}},
		TotalCents: 300, CreatedAt: now, UpdatedAt: now,
	}
	if err := store.Create(ctx, o); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.UpdateStatus(ctx, "order-1", order.StatusConfirmed, now); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := store.Get(ctx, "order-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != order.StatusConfirmed {
		t.Errorf("Status = %q, want confirmed", got.Status)
	}

	if err := store.UpdateStatus(ctx, "missing", order.StatusConfirmed, now); !errors.Is(err, sqlite.ErrNotFound) {
		t.Errorf("UpdateStatus missing error = %v, want ErrNotFound", err)
	}
}

func TestOrderStore_ListByUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewOrderStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedUser(t, db, "user-1", "a@example.com")
	seedUser(t, db, "user-2", "b@example.com")

	for i, uid := range []string{"user-1", "user-1", "user-2"} {
		o := order.Order{
			ID: "order-" + string(rune('a'+i)), UserID: uid,
			Type: order.TypeTakeaway, Status: order.StatusPending,
			Lines:      []order.Line{{ItemID: "item-1", Name: "Espresso", PriceCents: 300, Quantity: 1}},
			TotalCents: 300, CreatedAt: now.Add(time.Duration(i) * time.Second), UpdatedAt: now,
		}
		if err := store.Create(ctx, o); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mine, err := store.ListByUser(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("ListByUser returned %d orders, want 2", len(mine))
	}

	count, err := store.Count(ctx, "user-2")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count user-2 = %d, want 1", count)
	}
}

// -----------------------------------------------------------------------------
// ReservationStore Tests
// -----------------------------------------------------------------------------

func TestReservationStore_ActiveByTableWindow(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewReservationStore(db)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	seedUser(t, db, "user-1", "a@example.com")
	seedTable(t, db, "table-1", 1, 4)
	seedTable(t, db, "table-2", 2, 2)

	mk := func(id, tableID string, startsAt time.Time, status reservation.Status) {
		t.Helper()
		err := store.Create(ctx, reservation.Reservation{
			ID: id, UserID: "user-1", TableID: tableID, PartySize: 2,
			StartsAt: startsAt, Duration: time.Hour, Status: status,
			CreatedAt: now, UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	mk("res-overlap", "table-1", now.Add(30*time.Minute), reservation.StatusConfirmed)
	mk("res-cancelled", "table-1", now.Add(30*time.Minute), reservation.StatusCancelled)
	mk("res-later", "table-1", now.Add(3*time.Hour), reservation.StatusConfirmed)
	mk("res-other-table", "table-2", now.Add(30*time.Minute), reservation.StatusConfirmed)

	// Window noon to 1pm on table-1: only the confirmed overlapping one.
	active, err := store.ListActiveByTable(ctx, "table-1", now, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListActiveByTable: %v", err)
	}
	if len(active) != 1 || active[0].ID != "res-overlap" {
		t.Errorf("active = %+v, want [res-overlap]", active)
	}

	// Back-to-back window starting at the overlap's end is free.
	active, err = store.ListActiveByTable(ctx, "table-1", now.Add(90*time.Minute), now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("ListActiveByTable: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("back-to-back window active = %+v, want none", active)
	}
}

func TestReservationStore_RoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewReservationStore(db)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	seedUser(t, db, "user-1", "a@example.com")
	seedTable(t, db, "table-1", 1, 4)

	r := reservation.Reservation{
		ID: "res-1", UserID: "user-1", TableID: "table-1", PartySize: 3,
		StartsAt: now, Duration: 90 * time.Minute,
		Status: reservation.StatusPending, Note: "window seat",
		CreatedAt: now, UpdatedAt: now,
	}
	if err := store.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, "res-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Duration != 90*time.Minute {
		t.Errorf("Duration = %v, want 90m", got.Duration)
	}
	if got.Note != "window seat" {
		t.Errorf("Note = %q, want %q", got.Note, "window seat")
	}

	got.Status = reservation.StatusConfirmed
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = store.Get(ctx, "res-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != reservation.StatusConfirmed {
		t.Errorf("Status = %q, want confirmed", got.Status)
	}
}

// -----------------------------------------------------------------------------
// TableStore Tests
// -----------------------------------------------------------------------------

func TestTableStore_StatusTracking(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewTableStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedTable(t, db, "table-1", 1, 4)
	seedTable(t, db, "table-2", 2, 2)

	if err := store.UpdateStatus(ctx, "table-1", reservation.TableOccupied, now); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	available, err := store.ListByStatus(ctx, reservation.TableAvailable)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(available) != 1 || available[0].ID != "table-2" {
		t.Errorf("available = %+v, want [table-2]", available)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Number != 1 {
		t.Errorf("List = %+v, want two tables ordered by number", all)
	}
}

func TestTableStore_DuplicateNumber(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewTableStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	seedTable(t, db, "table-1", 7, 4)

	err := store.Create(ctx, reservation.Table{
		ID: "table-2", Number: 7, Capacity: 2,
		Status: reservation.TableAvailable, QRCode: "qr-table-2",
		CreatedAt: now, UpdatedAt: now,
	})
	if !errors.Is(err, sqlite.ErrDuplicate) {
		t.Errorf("Create duplicate number error = %v, want ErrDuplicate", err)
	}
}
