package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lionscafe/api/domain/order"
	"github.com/lionscafe/api/ports"
)

// OrderStore implements ports.OrderStore using SQLite. Order lines are
// written in the same transaction as the order row.
type OrderStore struct {
	db *DB
}

// NewOrderStore creates a new SQLite order store.
func NewOrderStore(db *DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, user_id, table_id, type, status, total_cents, note, created_at, updated_at`

// Create stores a new order with its lines.
func (s *OrderStore) Create(ctx context.Context, o order.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, nullString(o.TableID), string(o.Type), string(o.Status),
		o.TotalCents, o.Note, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return constraintErr(err)
	}

	for pos, l := range o.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, position, item_id, name, price_cents, quantity, note)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, o.ID, pos, l.ItemID, l.Name, l.PriceCents, l.Quantity, l.Note)
		if err != nil {
			return constraintErr(err)
		}
	}

	return tx.Commit()
}

// Get retrieves an order with its lines.
func (s *OrderStore) Get(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = ?
	`, id)

	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}

	o.Lines, err = s.loadLines(ctx, o.ID)
	return o, err
}

// List returns all orders with pagination, newest first.
func (s *OrderStore) List(ctx context.Context, limit, offset int) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectOrders(ctx, rows)
}

// ListByUser returns one user's orders with pagination, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.collectOrders(ctx, rows)
}

// Count returns the order count, for all users when userID is empty.
func (s *OrderStore) Count(ctx context.Context, userID string) (int, error) {
	var count int
	var err error
	if userID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID).Scan(&count)
	}
	return count, err
}

// UpdateStatus moves an order to a new status.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status order.Status, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), at, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (s *OrderStore) loadLines(ctx context.Context, orderID string) ([]order.Line, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, name, price_cents, quantity, note
		FROM order_lines
		WHERE order_id = ?
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []order.Line
	for rows.Next() {
		var l order.Line
		if err := rows.Scan(&l.ItemID, &l.Name, &l.PriceCents, &l.Quantity, &l.Note); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (s *OrderStore) collectOrders(ctx context.Context, rows *sql.Rows) ([]order.Order, error) {
	var orders []order.Order
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		lines, err := s.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func scanOrder(row *sql.Row) (order.Order, error) {
	var o order.Order
	var tableID sql.NullString
	var typ, status string

	err := row.Scan(
		&o.ID, &o.UserID, &tableID, &typ, &status, &o.TotalCents, &o.Note, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return order.Order{}, ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}

	o.TableID = tableID.String
	o.Type = order.Type(typ)
	o.Status = order.Status(status)
	return o, nil
}

func scanOrderRows(rows *sql.Rows) (order.Order, error) {
	var o order.Order
	var tableID sql.NullString
	var typ, status string

	err := rows.Scan(
		&o.ID, &o.UserID, &tableID, &typ, &status, &o.TotalCents, &o.Note, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}

	o.TableID = tableID.String
	o.Type = order.Type(typ)
	o.Status = order.Status(status)
	return o, nil
}

// Ensure interface compliance.
var _ ports.OrderStore = (*OrderStore)(nil)
