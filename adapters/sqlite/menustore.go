package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lionscafe/api/domain/menu"
	"github.com/lionscafe/api/ports"
)

// MenuStore implements ports.MenuStore using SQLite.
type MenuStore struct {
	db *DB
}

// NewMenuStore creates a new SQLite menu store.
func NewMenuStore(db *DB) *MenuStore {
	return &MenuStore{db: db}
}

const categoryColumns = `id, name, description, sort_order, active, created_at, updated_at`
const itemColumns = `id, category_id, name, description, price_cents, image_url, available, featured, tags, created_at, updated_at`

// GetCategory retrieves a category by ID.
func (s *MenuStore) GetCategory(ctx context.Context, id string) (menu.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM menu_categories
		WHERE id = ?
	`, id)

	var c menu.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return menu.Category{}, ErrNotFound
	}
	return c, err
}

// ListCategories returns categories ordered for display.
func (s *MenuStore) ListCategories(ctx context.Context, includeInactive bool) ([]menu.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM menu_categories`
	if !includeInactive {
		query += `
		WHERE active = 1`
	}
	query += `
		ORDER BY sort_order, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []menu.Category
	for rows.Next() {
		var c menu.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory stores a new category.
func (s *MenuStore) CreateCategory(ctx context.Context, c menu.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Description, c.SortOrder, c.Active, c.CreatedAt, c.UpdatedAt)
	return constraintErr(err)
}

// UpdateCategory modifies an existing category.
func (s *MenuStore) UpdateCategory(ctx context.Context, c menu.Category) error {
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE menu_categories
		SET name = ?, description = ?, sort_order = ?, active = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Description, c.SortOrder, c.Active, c.UpdatedAt, c.ID)
	if err != nil {
		return constraintErr(err)
	}
	return requireRow(result)
}

// DeleteCategory removes a category. Fails with ErrInvalidReference while
// items still reference it.
func (s *MenuStore) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM menu_categories WHERE id = ?`, id)
	if err != nil {
		return constraintErr(err)
	}
	return requireRow(result)
}

// GetItem retrieves an item by ID.
func (s *MenuStore) GetItem(ctx context.Context, id string) (menu.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM menu_items
		WHERE id = ?
	`, id)
	return scanItem(row)
}

// ListItems returns items with pagination, optionally filtered by category.
func (s *MenuStore) ListItems(ctx context.Context, categoryID string, limit, offset int) ([]menu.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM menu_items`
	args := []any{}
	if categoryID != "" {
		query += `
		WHERE category_id = ?`
		args = append(args, categoryID)
	}
	query += `
		ORDER BY name
		LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// CountItems returns the item count, optionally filtered by category.
func (s *MenuStore) CountItems(ctx context.Context, categoryID string) (int, error) {
	var count int
	var err error
	if categoryID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items WHERE category_id = ?`, categoryID).Scan(&count)
	}
	return count, err
}

// ListFeatured returns available featured items.
func (s *MenuStore) ListFeatured(ctx context.Context) ([]menu.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM menu_items
		WHERE featured = 1 AND available = 1
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// CreateItem stores a new item.
func (s *MenuStore) CreateItem(ctx context.Context, i menu.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO menu_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, i.ID, i.CategoryID, i.Name, i.Description, i.PriceCents, i.ImageURL,
		i.Available, i.Featured, joinTags(i.Tags), i.CreatedAt, i.UpdatedAt)
	return constraintErr(err)
}

// UpdateItem modifies an existing item.
func (s *MenuStore) UpdateItem(ctx context.Context, i menu.Item) error {
	i.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE menu_items
		SET category_id = ?, name = ?, description = ?, price_cents = ?, image_url = ?,
		    available = ?, featured = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`, i.CategoryID, i.Name, i.Description, i.PriceCents, i.ImageURL,
		i.Available, i.Featured, joinTags(i.Tags), i.UpdatedAt, i.ID)
	if err != nil {
		return constraintErr(err)
	}
	return requireRow(result)
}

// DeleteItem removes an item.
func (s *MenuStore) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func scanItem(row *sql.Row) (menu.Item, error) {
	var i menu.Item
	var tags string

	err := row.Scan(
		&i.ID, &i.CategoryID, &i.Name, &i.Description, &i.PriceCents, &i.ImageURL,
		&i.Available, &i.Featured, &tags, &i.CreatedAt, &i.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return menu.Item{}, ErrNotFound
	}
	if err != nil {
		return menu.Item{}, err
	}

	i.Tags = splitTags(tags)
	return i, nil
}

func collectItems(rows *sql.Rows) ([]menu.Item, error) {
	var items []menu.Item
	for rows.Next() {
		var i menu.Item
		var tags string
		err := rows.Scan(
			&i.ID, &i.CategoryID, &i.Name, &i.Description, &i.PriceCents, &i.ImageURL,
			&i.Available, &i.Featured, &tags, &i.CreatedAt, &i.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		i.Tags = splitTags(tags)
		items = append(items, i)
	}
	return items, rows.Err()
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Ensure interface compliance.
var _ ports.MenuStore = (*MenuStore)(nil)
