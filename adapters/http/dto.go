package http

import (
	"time"

	"github.com/lionscafe/api/domain/menu"
	"github.com/lionscafe/api/domain/order"
	"github.com/lionscafe/api/domain/reservation"
	"github.com/lionscafe/api/domain/user"
)

// Wire shapes for domain values. Domain types stay free of transport
// tags; the mapping lives here.

type userJSON struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	Active        bool      `json:"active"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toUserJSON(u user.User) userJSON {
	return userJSON{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toUsersJSON(users []user.User) []userJSON {
	out := make([]userJSON, len(users))
	for i, u := range users {
		out[i] = toUserJSON(u)
	}
	return out
}

type sessionJSON struct {
	User      userJSON  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type categoryJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	SortOrder   int       `json:"sortOrder"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCategoryJSON(c menu.Category) categoryJSON {
	return categoryJSON{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type itemJSON struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"categoryId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Available   bool      `json:"available"`
	Featured    bool      `json:"featured"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toItemJSON(i menu.Item) itemJSON {
	return itemJSON{
		ID:          i.ID,
		CategoryID:  i.CategoryID,
		Name:        i.Name,
		Description: i.Description,
		PriceCents:  i.PriceCents,
		ImageURL:    i.ImageURL,
		Available:   i.Available,
		Featured:    i.Featured,
		Tags:        i.Tags,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toItemsJSON(items []menu.Item) []itemJSON {
	out := make([]itemJSON, len(items))
	for i, it := range items {
		out[i] = toItemJSON(it)
	}
	return out
}

type orderLineJSON struct {
	ItemID     string `json:"itemId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

type orderJSON struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	TableID    string          `json:"tableId,omitempty"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	Lines      []orderLineJSON `json:"items"`
	TotalCents int64           `json:"totalCents"`
	Note       string          `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func toOrderJSON(o order.Order) orderJSON {
	lines := make([]orderLineJSON, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineJSON{
			ItemID:     l.ItemID,
			Name:       l.Name,
			PriceCents: l.PriceCents,
			Quantity:   l.Quantity,
			Note:       l.Note,
		}
	}
	return orderJSON{
		ID:         o.ID,
		UserID:     o.UserID,
		TableID:    o.TableID,
		Type:       string(o.Type),
		Status:     string(o.Status),
		Lines:      lines,
		TotalCents: o.TotalCents,
		Note:       o.Note,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

func toOrdersJSON(orders []order.Order) []orderJSON {
	out := make([]orderJSON, len(orders))
	for i, o := range orders {
		out[i] = toOrderJSON(o)
	}
	return out
}

type reservationJSON struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	TableID     string    `json:"tableId"`
	PartySize   int       `json:"partySize"`
	StartsAt    time.Time `json:"startsAt"`
	DurationMin int       `json:"durationMinutes"`
	Status      string    `json:"status"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toReservationJSON(r reservation.Reservation) reservationJSON {
	return reservationJSON{
		ID:          r.ID,
		UserID:      r.UserID,
		TableID:     r.TableID,
		PartySize:   r.PartySize,
		StartsAt:    r.StartsAt,
		DurationMin: int(r.Duration.Minutes()),
		Status:      string(r.Status),
		Note:        r.Note,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toReservationsJSON(rs []reservation.Reservation) []reservationJSON {
	out := make([]reservationJSON, len(rs))
	for i, r := range rs {
		out[i] = toReservationJSON(r)
	}
	return out
}

type tableJSON struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Capacity  int       `json:"capacity"`
	Status    string    `json:"status"`
	QRCode    string    `json:"qrCode"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toTableJSON(t reservation.Table) tableJSON {
	return tableJSON{
		ID:        t.ID,
		Number:    t.Number,
		Capacity:  t.Capacity,
		Status:    string(t.Status),
		QRCode:    t.QRCode,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toTablesJSON(ts []reservation.Table) []tableJSON {
	out := make([]tableJSON, len(ts))
	for i, t := range ts {
		out[i] = toTableJSON(t)
	}
	return out
}
