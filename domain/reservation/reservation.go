// Package reservation provides reservation and dining table value types
// plus pure scheduling checks.
package reservation

import "time"

// TableStatus is the closed set of dining table states.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableCleaning  TableStatus = "cleaning"
)

// ParseTableStatus validates a table status string.
func ParseTableStatus(s string) (TableStatus, bool) {
	switch TableStatus(s) {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning:
		return TableStatus(s), true
	}
	return "", false
}

// Table is a physical dining table.
type Table struct {
	ID        string
	Number    int
	Capacity  int
	Status    TableStatus
	QRCode    string // opaque token printed on the table for QR ordering
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status is the closed set of reservation states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusSeated    Status = "seated"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// ParseStatus validates a reservation status string.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusSeated,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return Status(s), true
	}
	return "", false
}

// Active reports whether the reservation still holds its table.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusSeated
}

// Reservation is a booking for a table at a point in time.
type Reservation struct {
	ID        string
	UserID    string
	TableID   string
	PartySize int
	StartsAt  time.Time
	Duration  time.Duration
	Status    Status
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndsAt returns the reservation end time.
func (r Reservation) EndsAt() time.Time {
	return r.StartsAt.Add(r.Duration)
}

// Overlaps reports whether two reservations contend for the same table
// slot (pure function). Back-to-back bookings do not overlap.
func Overlaps(a, b Reservation) bool {
	if a.TableID != b.TableID {
		return false
	}
	return a.StartsAt.Before(b.EndsAt()) && b.StartsAt.Before(a.EndsAt())
}

// Fits reports whether the party fits the table (pure function).
func Fits(partySize int, t Table) bool {
	return partySize > 0 && partySize <= t.Capacity
}

// Validate validates a reservation request (pure function).
// now is passed in so the check stays deterministic.
func Validate(r Reservation, now time.Time) map[string]string {
	errs := make(map[string]string)
	if r.PartySize < 1 {
		errs["partySize"] = "Party size must be at least 1"
	} else if r.PartySize > 20 {
		errs["partySize"] = "Party size must be at most 20"
	}
	if r.StartsAt.IsZero() {
		errs["startsAt"] = "Start time is required"
	} else if r.StartsAt.Before(now) {
		errs["startsAt"] = "Reservations cannot be in the past"
	}
	if r.Duration <= 0 {
		errs["duration"] = "Duration must be positive"
	} else if r.Duration > 6*time.Hour {
		errs["duration"] = "Duration must be at most 6 hours"
	}
	return errs
}
