// Package menu provides menu value types and pure validation functions.
package menu

import (
	"strings"
	"time"
)

// Category groups menu items for display.
type Category struct {
	ID          string
	Name        string
	Description string
	SortOrder   int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item is a single orderable dish or drink. Prices are integer cents.
type Item struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	PriceCents  int64
	ImageURL    string
	Available   bool
	Featured    bool
	Tags        []string // e.g. "vegetarian", "spicy", "gluten-free"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateCategory validates a category (pure function).
func ValidateCategory(c Category) map[string]string {
	errs := make(map[string]string)
	name := strings.TrimSpace(c.Name)
	if name == "" {
		errs["name"] = "Name is required"
	} else if len(name) > 100 {
		errs["name"] = "Name must be less than 100 characters"
	}
	if len(c.Description) > 500 {
		errs["description"] = "Description must be less than 500 characters"
	}
	return errs
}

// ValidateItem validates an item (pure function).
func ValidateItem(i Item) map[string]string {
	errs := make(map[string]string)
	name := strings.TrimSpace(i.Name)
	if name == "" {
		errs["name"] = "Name is required"
	} else if len(name) > 150 {
		errs["name"] = "Name must be less than 150 characters"
	}
	if i.CategoryID == "" {
		errs["categoryId"] = "Category is required"
	}
	if i.PriceCents <= 0 {
		errs["price"] = "Price must be greater than zero"
	}
	if len(i.Description) > 1000 {
		errs["description"] = "Description must be less than 1000 characters"
	}
	return errs
}
