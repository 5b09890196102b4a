package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/adapters/clock"
	"github.com/lionscafe/api/adapters/idgen"
	"github.com/lionscafe/api/adapters/sqlite"
	"github.com/lionscafe/api/app"
	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/menu"
	"github.com/lionscafe/api/domain/order"
	"github.com/lionscafe/api/domain/user"
)

func orderFixture(t *testing.T) (*app.OrderService, *sqlite.DB, *clock.Fake) {
	t.Helper()
	db := testDB(t)
	clk := clock.NewFake(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	svc := app.NewOrderService(
		sqlite.NewOrderStore(db),
		sqlite.NewMenuStore(db),
		sqlite.NewTableStore(db),
		clk,
		idgen.NewSequential("order-"),
		zerolog.Nop(),
	)

	ctx := context.Background()
	now := clk.Now()

	users := sqlite.NewUserStore(db)
	if err := users.Create(ctx, user.User{
		ID: "cust-1", Email: "c@example.com", Name: "Customer",
		PasswordHash: []byte("x"), Role: user.RoleCustomer, Active: true,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	menus := sqlite.NewMenuStore(db)
	if err := menus.CreateCategory(ctx, menu.Category{
		ID: "cat-1", Name: "Coffee", Active: true, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	for _, it := range []menu.Item{
		{ID: "item-espresso", CategoryID: "cat-1", Name: "Espresso", PriceCents: 300, Available: true},
		{ID: "item-latte", CategoryID: "cat-1", Name: "Latte", PriceCents: 450, Available: true},
		{ID: "item-offmenu", CategoryID: "cat-1", Name: "Seasonal", PriceCents: 500, Available: false},
	} {
		it.CreatedAt = now
		it.UpdatedAt = now
		if err := menus.CreateItem(ctx, it); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	return svc, db, clk
}

var customer = user.Principal{ID: "cust-1", Email: "c@example.com", Role: user.RoleCustomer, Active: true}
var staff = user.Principal{ID: "staff-1", Email: "s@example.com", Role: user.RoleStaff, Active: true}

func TestOrderService_CreateSnapshotsPrices(t *testing.T) {
	svc, db, _ := orderFixture(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, customer, app.OrderRequest{
		Type: order.TypeTakeaway,
		Lines: []app.OrderLineRequest{
			{ItemID: "item-espresso", Quantity: 2},
			{ItemID: "item-latte", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if o.TotalCents != 1050 {
		t.Errorf("TotalCents = %d, want 1050", o.TotalCents)
	}
	if o.Status != order.StatusPending {
		t.Errorf("Status = %q, want pending", o.Status)
	}

	// Raising the menu price does not change the stored order.
	menus := sqlite.NewMenuStore(db)
	item, _ := menus.GetItem(ctx, "item-espresso")
	item.PriceCents = 900
	if err := menus.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got, err := svc.Get(ctx, customer, o.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TotalCents != 1050 || got.Lines[0].PriceCents != 300 {
		t.Errorf("order changed after menu edit: total=%d line=%d", got.TotalCents, got.Lines[0].PriceCents)
	}
}

func TestOrderService_CreateRejectsBadLines(t *testing.T) {
	svc, _, _ := orderFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, customer, app.OrderRequest{
		Type: order.TypeTakeaway,
		Lines: []app.OrderLineRequest{
			{ItemID: "item-espresso", Quantity: 0},
			{ItemID: "item-missing", Quantity: 1},
			{ItemID: "item-offmenu", Quantity: 1},
		},
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("Create error = %v, want *apperr.Error", err)
	}
	if appErr.Code != apperr.CodeValidation {
		t.Errorf("Code = %s, want VALIDATION_ERROR", appErr.Code)
	}
	if len(appErr.Details) != 3 {
		t.Errorf("got %d details, want 3 (bad quantity, missing item, unavailable item)", len(appErr.Details))
	}
}

func TestOrderService_DineInRequiresTable(t *testing.T) {
	svc, _, _ := orderFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, customer, app.OrderRequest{
		Type:  order.TypeDineIn,
		Lines: []app.OrderLineRequest{{ItemID: "item-espresso", Quantity: 1}},
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code != apperr.CodeValidation {
		t.Errorf("dine-in without table error = %v, want VALIDATION_ERROR", err)
	}
}

func TestOrderService_StatusLifecycle(t *testing.T) {
	svc, _, _ := orderFixture(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, customer, app.OrderRequest{
		Type:  order.TypeTakeaway,
		Lines: []app.OrderLineRequest{{ItemID: "item-espresso", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, next := range []order.Status{
		order.StatusConfirmed, order.StatusPreparing, order.StatusReady, order.StatusCompleted,
	} {
		if _, err := svc.UpdateStatus(ctx, o.ID, next); err != nil {
			t.Fatalf("UpdateStatus(%s): %v", next, err)
		}
	}

	// Completed orders accept no further transitions.
	_, err = svc.UpdateStatus(ctx, o.ID, order.StatusCancelled)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Status != 409 {
		t.Errorf("transition from completed error = %v, want 409", err)
	}
}

func TestOrderService_CancelWindow(t *testing.T) {
	svc, _, _ := orderFixture(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, customer, app.OrderRequest{
		Type:  order.TypeTakeaway,
		Lines: []app.OrderLineRequest{{ItemID: "item-espresso", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, o.ID, order.StatusConfirmed); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	// Still cancellable while confirmed.
	if _, err := svc.Cancel(ctx, customer, o.ID); err != nil {
		t.Fatalf("Cancel while confirmed: %v", err)
	}

	o2, err := svc.Create(ctx, customer, app.OrderRequest{
		Type:  order.TypeTakeaway,
		Lines: []app.OrderLineRequest{{ItemID: "item-espresso", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, next := range []order.Status{order.StatusConfirmed, order.StatusPreparing} {
		if _, err := svc.UpdateStatus(ctx, o2.ID, next); err != nil {
			t.Fatalf("UpdateStatus(%s): %v", next, err)
		}
	}
	// Not cancellable once preparing.
	if _, err := svc.Cancel(ctx, customer, o2.ID); err == nil {
		t.Error("Cancel while preparing succeeded")
	}
}

func TestOrderService_CustomerIsolation(t *testing.T) {
	svc, db, _ := orderFixture(t)
	ctx := context.Background()

	if err := sqlite.NewUserStore(db).Create(ctx, user.User{
		ID: "cust-2", Email: "c2@example.com", Name: "Other",
		PasswordHash: []byte("x"), Role: user.RoleCustomer, Active: true,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	o, err := svc.Create(ctx, customer, app.OrderRequest{
		Type:  order.TypeTakeaway,
		Lines: []app.OrderLineRequest{{ItemID: "item-espresso", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	other := user.Principal{ID: "cust-2", Role: user.RoleCustomer, Active: true}
	_, err = svc.Get(ctx, other, o.ID)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Status != 404 {
		t.Errorf("foreign order Get error = %v, want 404", err)
	}

	// Staff sees everything.
	if _, err := svc.Get(ctx, staff, o.ID); err != nil {
		t.Errorf("staff Get: %v", err)
	}

	page, err := svc.List(ctx, other, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Orders) != 0 || page.Total != 0 {
		t.Errorf("other customer sees %d orders, want 0", len(page.Orders))
	}

	page, err = svc.List(ctx, staff, 10, 0)
	if err != nil {
		t.Fatalf("staff List: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("staff Total = %d, want 1", page.Total)
	}
}
