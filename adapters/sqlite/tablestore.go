package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lionscafe/api/domain/reservation"
	"github.com/lionscafe/api/ports"
)

// TableStore implements ports.TableStore using SQLite.
type TableStore struct {
	db *DB
}

// NewTableStore creates a new SQLite table store.
func NewTableStore(db *DB) *TableStore {
	return &TableStore{db: db}
}

const tableColumns = `id, number, capacity, status, qr_code, created_at, updated_at`

// Create stores a new dining table.
func (s *TableStore) Create(ctx context.Context, t reservation.Table) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dining_tables (`+tableColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Number, t.Capacity, string(t.Status), t.QRCode, t.CreatedAt, t.UpdatedAt)
	return constraintErr(err)
}

// Get retrieves a table by ID.
func (s *TableStore) Get(ctx context.Context, id string) (reservation.Table, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+tableColumns+`
		FROM dining_tables
		WHERE id = ?
	`, id)
	return scanTable(row)
}

// List returns all tables ordered by number.
func (s *TableStore) List(ctx context.Context) ([]reservation.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tableColumns+`
		FROM dining_tables
		ORDER BY number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTables(rows)
}

// ListByStatus returns tables in a given status ordered by number.
func (s *TableStore) ListByStatus(ctx context.Context, status reservation.TableStatus) ([]reservation.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tableColumns+`
		FROM dining_tables
		WHERE status = ?
		ORDER BY number
	`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTables(rows)
}

// UpdateStatus moves a table to a new status.
func (s *TableStore) UpdateStatus(ctx context.Context, id string, status reservation.TableStatus, at time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE dining_tables SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), at, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func scanTable(row *sql.Row) (reservation.Table, error) {
	var t reservation.Table
	var status string

	err := row.Scan(&t.ID, &t.Number, &t.Capacity, &status, &t.QRCode, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return reservation.Table{}, ErrNotFound
	}
	if err != nil {
		return reservation.Table{}, err
	}

	t.Status = reservation.TableStatus(status)
	return t, nil
}

func collectTables(rows *sql.Rows) ([]reservation.Table, error) {
	var tables []reservation.Table
	for rows.Next() {
		var t reservation.Table
		var status string
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &status, &t.QRCode, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Status = reservation.TableStatus(status)
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Ensure interface compliance.
var _ ports.TableStore = (*TableStore)(nil)
