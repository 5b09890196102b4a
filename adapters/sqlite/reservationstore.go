package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lionscafe/api/domain/reservation"
	"github.com/lionscafe/api/ports"
)

// ReservationStore implements ports.ReservationStore using SQLite.
type ReservationStore struct {
	db *DB
}

// NewReservationStore creates a new SQLite reservation store.
func NewReservationStore(db *DB) *ReservationStore {
	return &ReservationStore{db: db}
}

const reservationColumns = `id, user_id, table_id, party_size, starts_at, duration_min, status, note, created_at, updated_at`

// Create stores a new reservation.
func (s *ReservationStore) Create(ctx context.Context, r reservation.Reservation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.TableID, r.PartySize, r.StartsAt, int(r.Duration.Minutes()),
		string(r.Status), r.Note, r.CreatedAt, r.UpdatedAt)
	return constraintErr(err)
}

// Get retrieves a reservation by ID.
func (s *ReservationStore) Get(ctx context.Context, id string) (reservation.Reservation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = ?
	`, id)
	return scanReservation(row)
}

// List returns all reservations with pagination, soonest first.
func (s *ReservationStore) List(ctx context.Context, limit, offset int) ([]reservation.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		ORDER BY starts_at
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListByUser returns one user's reservations with pagination.
func (s *ReservationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]reservation.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE user_id = ?
		ORDER BY starts_at
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// Count returns the reservation count, for all users when userID is empty.
func (s *ReservationStore) Count(ctx context.Context, userID string) (int, error) {
	var count int
	var err error
	if userID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations WHERE user_id = ?`, userID).Scan(&count)
	}
	return count, err
}

// Update modifies an existing reservation.
func (s *ReservationStore) Update(ctx context.Context, r reservation.Reservation) error {
	r.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE reservations
		SET table_id = ?, party_size = ?, starts_at = ?, duration_min = ?, status = ?, note = ?, updated_at = ?
		WHERE id = ?
	`, r.TableID, r.PartySize, r.StartsAt, int(r.Duration.Minutes()),
		string(r.Status), r.Note, r.UpdatedAt, r.ID)
	if err != nil {
		return constraintErr(err)
	}
	return requireRow(result)
}

// ListActiveByTable returns reservations holding the table that overlap
// the [from, to) window. Cancelled and finished bookings do not hold
// their table.
func (s *ReservationStore) ListActiveByTable(ctx context.Context, tableID string, from, to time.Time) ([]reservation.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE table_id = ?
		  AND status IN ('pending', 'confirmed', 'seated')
		  AND starts_at < ?
		  AND datetime(starts_at, '+' || duration_min || ' minutes') > ?
	`, tableID, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func scanReservation(row *sql.Row) (reservation.Reservation, error) {
	var r reservation.Reservation
	var durationMin int
	var status string

	err := row.Scan(
		&r.ID, &r.UserID, &r.TableID, &r.PartySize, &r.StartsAt, &durationMin,
		&status, &r.Note, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return reservation.Reservation{}, ErrNotFound
	}
	if err != nil {
		return reservation.Reservation{}, err
	}

	r.Duration = time.Duration(durationMin) * time.Minute
	r.Status = reservation.Status(status)
	return r, nil
}

func collectReservations(rows *sql.Rows) ([]reservation.Reservation, error) {
	var reservations []reservation.Reservation
	for rows.Next() {
		var r reservation.Reservation
		var durationMin int
		var status string
		err := rows.Scan(
			&r.ID, &r.UserID, &r.TableID, &r.PartySize, &r.StartsAt, &durationMin,
			&status, &r.Note, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		r.Duration = time.Duration(durationMin) * time.Minute
		r.Status = reservation.Status(status)
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

// Ensure interface compliance.
var _ ports.ReservationStore = (*ReservationStore)(nil)
