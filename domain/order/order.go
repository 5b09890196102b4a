// Package order provides order value types and the pure status state machine.
package order

import "time"

// Status is the closed set of order states.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status string against the closed set.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusCompleted, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// transitions is the declarative state machine: each status maps to the
// set of statuses it may move to.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady},
	StatusReady:     {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to
// another. Cancellation is only possible before preparation starts.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status admits no further transitions.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Type distinguishes how an order is fulfilled.
type Type string

const (
	TypeDineIn   Type = "dine_in"
	TypeTakeaway Type = "takeaway"
	TypeQR       Type = "qr" // ordered by scanning a table QR code
)

// ParseType validates an order type string.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeDineIn, TypeTakeaway, TypeQR:
		return Type(s), true
	}
	return "", false
}

// Line is a single order line with a price snapshot taken at order time,
// so later menu edits never change what the customer owes.
type Line struct {
	ItemID     string
	Name       string
	PriceCents int64
	Quantity   int
	Note       string
}

// Order is a customer order.
type Order struct {
	ID         string
	UserID     string
	TableID    string // set for dine-in and QR orders
	Type       Type
	Status     Status
	Lines      []Line
	TotalCents int64
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Total sums the line price snapshots (pure function).
func Total(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.PriceCents * int64(l.Quantity)
	}
	return total
}

// ValidateLines validates the order lines (pure function).
func ValidateLines(lines []Line) map[string]string {
	errs := make(map[string]string)
	if len(lines) == 0 {
		errs["items"] = "Order must contain at least one item"
		return errs
	}
	for _, l := range lines {
		if l.Quantity < 1 {
			errs["items"] = "Item quantities must be at least 1"
		}
		if l.ItemID == "" {
			errs["items"] = "Every line must reference a menu item"
		}
	}
	return errs
}
