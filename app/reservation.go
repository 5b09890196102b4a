package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/reservation"
	"github.com/lionscafe/api/domain/user"
	"github.com/lionscafe/api/ports"
)

// defaultReservationDuration applies when a request omits one.
const defaultReservationDuration = 2 * time.Hour

// ReservationService books tables and manages table status.
type ReservationService struct {
	reservations ports.ReservationStore
	tables       ports.TableStore
	clock        ports.Clock
	ids          ports.IDGenerator
	logger       zerolog.Logger
}

// NewReservationService creates a new reservation service.
func NewReservationService(reservations ports.ReservationStore, tables ports.TableStore, clock ports.Clock, ids ports.IDGenerator, logger zerolog.Logger) *ReservationService {
	return &ReservationService{reservations: reservations, tables: tables, clock: clock, ids: ids, logger: logger}
}

// ReservationRequest is a new booking as submitted by a customer.
type ReservationRequest struct {
	TableID   string
	PartySize int
	StartsAt  time.Time
	Duration  time.Duration
	Note      string
}

// Create validates a booking, checks capacity and overlap, and stores it.
func (s *ReservationService) Create(ctx context.Context, principal user.Principal, req ReservationRequest) (reservation.Reservation, error) {
	if req.Duration == 0 {
		req.Duration = defaultReservationDuration
	}

	now := s.clock.Now()
	r := reservation.Reservation{
		ID:        s.ids.New(),
		UserID:    principal.ID,
		TableID:   req.TableID,
		PartySize: req.PartySize,
		StartsAt:  req.StartsAt,
		Duration:  req.Duration,
		Status:    reservation.StatusPending,
		Note:      req.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errs := reservation.Validate(r, now); len(errs) > 0 {
		return reservation.Reservation{}, apperr.Validation("Validation failed",
			fieldErrors(errs, []string{"partySize", "startsAt", "duration"}))
	}

	tbl, err := s.tables.Get(ctx, req.TableID)
	if err != nil {
		return reservation.Reservation{}, storeErr(err, "Table")
	}
	if !reservation.Fits(req.PartySize, tbl) {
		return reservation.Reservation{}, apperr.Validation("Validation failed", []apperr.FieldError{{
			Field: "partySize", Message: "Party does not fit the selected table", RejectedValue: req.PartySize,
		}})
	}

	held, err := s.reservations.ListActiveByTable(ctx, req.TableID, r.StartsAt, r.EndsAt())
	if err != nil {
		return reservation.Reservation{}, storeErr(err, "Reservation")
	}
	for _, other := range held {
		if reservation.Overlaps(r, other) {
			return reservation.Reservation{}, apperr.Conflict("Table is already reserved for that time")
		}
	}

	if err := s.reservations.Create(ctx, r); err != nil {
		return reservation.Reservation{}, storeErr(err, "Reservation")
	}

	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("table_id", r.TableID).
		Time("starts_at", r.StartsAt).
		Msg("reservation created")
	return r, nil
}

// Get returns one reservation. Customers only see their own.
func (s *ReservationService) Get(ctx context.Context, principal user.Principal, id string) (reservation.Reservation, error) {
	r, err := s.reservations.Get(ctx, id)
	if err != nil {
		return reservation.Reservation{}, storeErr(err, "Reservation")
	}
	if r.UserID != principal.ID && principal.Role == user.RoleCustomer {
		return reservation.Reservation{}, apperr.NotFound("Reservation")
	}
	return r, nil
}

// ReservationPage is a paginated reservation listing.
type ReservationPage struct {
	Reservations []reservation.Reservation
	Total        int
}

// List returns reservations. Customers see their own; staff see all.
func (s *ReservationService) List(ctx context.Context, principal user.Principal, limit, offset int) (ReservationPage, error) {
	var (
		reservations []reservation.Reservation
		total        int
		err          error
	)
	if principal.Role == user.RoleCustomer {
		reservations, err = s.reservations.ListByUser(ctx, principal.ID, limit, offset)
		if err == nil {
			total, err = s.reservations.Count(ctx, principal.ID)
		}
	} else {
		reservations, err = s.reservations.List(ctx, limit, offset)
		if err == nil {
			total, err = s.reservations.Count(ctx, "")
		}
	}
	if err != nil {
		return ReservationPage{}, storeErr(err, "Reservation")
	}
	return ReservationPage{Reservations: reservations, Total: total}, nil
}

// Update reschedules a reservation, re-running the capacity and overlap
// checks against the new slot.
func (s *ReservationService) Update(ctx context.Context, principal user.Principal, id string, req ReservationRequest) (reservation.Reservation, error) {
	r, err := s.Get(ctx, principal, id)
	if err != nil {
		return reservation.Reservation{}, err
	}
	if !r.Status.Active() {
		return reservation.Reservation{}, apperr.Conflict("Reservation can no longer be changed")
	}

	if req.TableID != "" {
		r.TableID = req.TableID
	}
	if req.PartySize != 0 {
		r.PartySize = req.PartySize
	}
	if !req.StartsAt.IsZero() {
		r.StartsAt = req.StartsAt
	}
	if req.Duration != 0 {
		r.Duration = req.Duration
	}
	if req.Note != "" {
		r.Note = req.Note
	}

	now := s.clock.Now()
	if errs := reservation.Validate(r, now); len(errs) > 0 {
		return reservation.Reservation{}, apperr.Validation("Validation failed",
			fieldErrors(errs, []string{"partySize", "startsAt", "duration"}))
	}

	tbl, err := s.tables.Get(ctx, r.TableID)
	if err != nil {
		return reservation.Reservation{}, storeErr(err, "Table")
	}
	if !reservation.Fits(r.PartySize, tbl) {
		return reservation.Reservation{}, apperr.Validation("Validation failed", []apperr.FieldError{{
			Field: "partySize", Message: "Party does not fit the selected table", RejectedValue: r.PartySize,
		}})
	}

	held, err := s.reservations.ListActiveByTable(ctx, r.TableID, r.StartsAt, r.EndsAt())
	if err != nil {
		return reservation.Reservation{}, storeErr(err, "Reservation")
	}
	for _, other := range held {
		if other.ID != r.ID && reservation.Overlaps(r, other) {
			return reservation.Reservation{}, apperr.Conflict("Table is already reserved for that time")
		}
	}

	if err := s.reservations.Update(ctx, r); err != nil {
		return reservation.Reservation{}, storeErr(err, "Reservation")
	}
	return r, nil
}

// Cancel marks a reservation cancelled, freeing its table slot.
func (s *ReservationService) Cancel(ctx context.Context, principal user.Principal, id string) error {
	r, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}
	if !r.Status.Active() {
		return apperr.Conflict("Reservation is already finished")
	}

	r.Status = reservation.StatusCancelled
	if err := s.reservations.Update(ctx, r); err != nil {
		return storeErr(err, "Reservation")
	}
	s.logger.Info().Str("reservation_id", id).Msg("reservation cancelled")
	return nil
}

// SetStatus moves a reservation through its lifecycle (staff action).
func (s *ReservationService) SetStatus(ctx context.Context, id string, status reservation.Status) (reservation.Reservation, error) {
	if _, ok := reservation.ParseStatus(string(status)); !ok {
		return reservation.Reservation{}, apperr.Validation("Validation failed", []apperr.FieldError{{
			Field: "status", Message: "Unknown reservation status", RejectedValue: string(status),
		}})
	}
	r, err := s.reservations.Get(ctx, id)
	if err != nil {
		return reservation.Reservation{}, storeErr(err, "Reservation")
	}
	r.Status = status
	if err := s.reservations.Update(ctx, r); err != nil {
		return reservation.Reservation{}, storeErr(err, "Reservation")
	}
	return r, nil
}

// ListTables returns all dining tables.
func (s *ReservationService) ListTables(ctx context.Context) ([]reservation.Table, error) {
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, storeErr(err, "Table")
	}
	return tables, nil
}

// ListAvailableTables returns tables currently marked available.
func (s *ReservationService) ListAvailableTables(ctx context.Context) ([]reservation.Table, error) {
	tables, err := s.tables.ListByStatus(ctx, reservation.TableAvailable)
	if err != nil {
		return nil, storeErr(err, "Table")
	}
	return tables, nil
}

// CreateTable registers a new dining table (manager action).
func (s *ReservationService) CreateTable(ctx context.Context, number, capacity int) (reservation.Table, error) {
	var details []apperr.FieldError
	if number < 1 {
		details = append(details, apperr.FieldError{Field: "number", Message: "Table number must be positive", RejectedValue: number})
	}
	if capacity < 1 || capacity > 20 {
		details = append(details, apperr.FieldError{Field: "capacity", Message: "Capacity must be between 1 and 20", RejectedValue: capacity})
	}
	if len(details) > 0 {
		return reservation.Table{}, apperr.Validation("Validation failed", details)
	}

	now := s.clock.Now()
	t := reservation.Table{
		ID:        s.ids.New(),
		Number:    number,
		Capacity:  capacity,
		Status:    reservation.TableAvailable,
		QRCode:    s.ids.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tables.Create(ctx, t); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return reservation.Table{}, apperr.Conflict("Table number already in use")
		}
		return reservation.Table{}, storeErr(err, "Table")
	}

	s.logger.Info().Str("table_id", t.ID).Int("number", number).Msg("table created")
	return t, nil
}

// SetTableStatus updates a table's floor status (staff action).
func (s *ReservationService) SetTableStatus(ctx context.Context, id string, status reservation.TableStatus) (reservation.Table, error) {
	if _, ok := reservation.ParseTableStatus(string(status)); !ok {
		return reservation.Table{}, apperr.Validation("Validation failed", []apperr.FieldError{{
			Field: "status", Message: "Unknown table status", RejectedValue: string(status),
		}})
	}
	if err := s.tables.UpdateStatus(ctx, id, status, s.clock.Now()); err != nil {
		return reservation.Table{}, storeErr(err, "Table")
	}
	t, err := s.tables.Get(ctx, id)
	if err != nil {
		return reservation.Table{}, storeErr(err, "Table")
	}
	return t, nil
}
