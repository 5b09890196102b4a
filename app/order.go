package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/order"
	"github.com/lionscafe/api/domain/user"
	"github.com/lionscafe/api/ports"
)

// OrderService creates orders and drives their status lifecycle.
type OrderService struct {
	orders ports.OrderStore
	menu   ports.MenuStore
	tables ports.TableStore
	clock  ports.Clock
	ids    ports.IDGenerator
	logger zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orders ports.OrderStore, menu ports.MenuStore, tables ports.TableStore, clock ports.Clock, ids ports.IDGenerator, logger zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, menu: menu, tables: tables, clock: clock, ids: ids, logger: logger}
}

// OrderRequest is a new order as submitted by a customer.
type OrderRequest struct {
	Type    order.Type
	TableID string
	Note    string
	Lines   []OrderLineRequest
}

// OrderLineRequest is one requested line. Price comes from the menu,
// never from the client.
type OrderLineRequest struct {
	ItemID   string
	Quantity int
	Note     string
}

// Create builds an order from the current menu, snapshotting prices so
// later menu edits never change what the customer owes.
func (s *OrderService) Create(ctx context.Context, principal user.Principal, req OrderRequest) (order.Order, error) {
	if _, ok := order.ParseType(string(req.Type)); !ok {
		return order.Order{}, apperr.Validation("Validation failed", []apperr.FieldError{{
			Field: "type", Message: "Order type must be dine_in, takeaway or qr", RejectedValue: string(req.Type),
		}})
	}
	if len(req.Lines) == 0 {
		return order.Order{}, apperr.Validation("Validation failed", []apperr.FieldError{{
			Field: "items", Message: "Order must contain at least one item",
		}})
	}

	if req.Type != order.TypeTakeaway {
		if req.TableID == "" {
			return order.Order{}, apperr.Validation("Validation failed", []apperr.FieldError{{
				Field: "tableId", Message: "Table is required for dine-in and QR orders",
			}})
		}
		if _, err := s.tables.Get(ctx, req.TableID); err != nil {
			return order.Order{}, storeErr(err, "Table")
		}
	}

	lines := make([]order.Line, 0, len(req.Lines))
	var details []apperr.FieldError
	for idx, lr := range req.Lines {
		if lr.Quantity < 1 {
			details = append(details, apperr.FieldError{
				Field:   fmt.Sprintf("items.%d.quantity", idx),
				Message: "Quantity must be at least 1", RejectedValue: lr.Quantity,
			})
			continue
		}
		item, err := s.menu.GetItem(ctx, lr.ItemID)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				details = append(details, apperr.FieldError{
					Field:   fmt.Sprintf("items.%d.itemId", idx),
					Message: "Menu item not found", RejectedValue: lr.ItemID,
				})
				continue
			}
			return order.Order{}, storeErr(err, "Item")
		}
		if !item.Available {
			details = append(details, apperr.FieldError{
				Field:   fmt.Sprintf("items.%d.itemId", idx),
				Message: fmt.Sprintf("%s is currently unavailable", item.Name), RejectedValue: lr.ItemID,
			})
			continue
		}
		lines = append(lines, order.Line{
			ItemID:     item.ID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Quantity:   lr.Quantity,
			Note:       lr.Note,
		})
	}
	if len(details) > 0 {
		return order.Order{}, apperr.Validation("Validation failed", details)
	}

	now := s.clock.Now()
	o := order.Order{
		ID:         s.ids.New(),
		UserID:     principal.ID,
		TableID:    req.TableID,
		Type:       req.Type,
		Status:     order.StatusPending,
		Lines:      lines,
		TotalCents: order.Total(lines),
		Note:       req.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return order.Order{}, storeErr(err, "Order")
	}

	s.logger.Info().
		Str("order_id", o.ID).
		Str("user_id", o.UserID).
		Str("type", string(o.Type)).
		Int64("total_cents", o.TotalCents).
		Msg("order created")
	return o, nil
}

// Get returns one order. Customers only see their own.
func (s *OrderService) Get(ctx context.Context, principal user.Principal, id string) (order.Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return order.Order{}, storeErr(err, "Order")
	}
	if o.UserID != principal.ID && principal.Role == user.RoleCustomer {
		// Hidden rather than forbidden, so order IDs cannot be probed.
		return order.Order{}, apperr.NotFound("Order")
	}
	return o, nil
}

// OrderPage is a paginated order listing.
type OrderPage struct {
	Orders []order.Order
	Total  int
}

// List returns orders. Customers see their own; staff and above see all.
func (s *OrderService) List(ctx context.Context, principal user.Principal, limit, offset int) (OrderPage, error) {
	var (
		orders []order.Order
		total  int
		err    error
	)
	if principal.Role == user.RoleCustomer {
		orders, err = s.orders.ListByUser(ctx, principal.ID, limit, offset)
		if err == nil {
			total, err = s.orders.Count(ctx, principal.ID)
		}
	} else {
		orders, err = s.orders.List(ctx, limit, offset)
		if err == nil {
			total, err = s.orders.Count(ctx, "")
		}
	}
	if err != nil {
		return OrderPage{}, storeErr(err, "Order")
	}
	return OrderPage{Orders: orders, Total: total}, nil
}

// ListFor returns one user's orders. The HTTP layer guards who may
// ask for whose.
func (s *OrderService) ListFor(ctx context.Context, userID string, limit, offset int) (OrderPage, error) {
	orders, err := s.orders.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return OrderPage{}, storeErr(err, "Order")
	}
	total, err := s.orders.Count(ctx, userID)
	if err != nil {
		return OrderPage{}, storeErr(err, "Order")
	}
	return OrderPage{Orders: orders, Total: total}, nil
}

// UpdateStatus moves an order through its lifecycle. Transitions are
// checked against the state machine before anything is written.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to order.Status) (order.Order, error) {
	if _, ok := order.ParseStatus(string(to)); !ok {
		return order.Order{}, apperr.Validation("Validation failed", []apperr.FieldError{{
			Field: "status", Message: "Unknown order status", RejectedValue: string(to),
		}})
	}

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return order.Order{}, storeErr(err, "Order")
	}
	if !order.CanTransition(o.Status, to) {
		return order.Order{}, apperr.Conflict(
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, to))
	}

	now := s.clock.Now()
	if err := s.orders.UpdateStatus(ctx, id, to, now); err != nil {
		return order.Order{}, storeErr(err, "Order")
	}

	o.Status = to
	o.UpdatedAt = now
	s.logger.Info().
		Str("order_id", id).
		Str("status", string(to)).
		Msg("order status updated")
	return o, nil
}

// Cancel moves a customer's own order to cancelled if still allowed.
func (s *OrderService) Cancel(ctx context.Context, principal user.Principal, id string) (order.Order, error) {
	o, err := s.Get(ctx, principal, id)
	if err != nil {
		return order.Order{}, err
	}
	if !order.CanTransition(o.Status, order.StatusCancelled) {
		return order.Order{}, apperr.Conflict("Order can no longer be cancelled")
	}

	now := s.clock.Now()
	if err := s.orders.UpdateStatus(ctx, id, order.StatusCancelled, now); err != nil {
		return order.Order{}, storeErr(err, "Order")
	}
	o.Status = order.StatusCancelled
	o.UpdatedAt = now
	return o, nil
}
