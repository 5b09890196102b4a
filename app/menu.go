package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/domain/apperr"
	"github.com/lionscafe/api/domain/menu"
	"github.com/lionscafe/api/ports"
)

// MenuService manages menu categories and items.
type MenuService struct {
	store  ports.MenuStore
	clock  ports.Clock
	ids    ports.IDGenerator
	logger zerolog.Logger
}

// NewMenuService creates a new menu service.
func NewMenuService(store ports.MenuStore, clock ports.Clock, ids ports.IDGenerator, logger zerolog.Logger) *MenuService {
	return &MenuService{store: store, clock: clock, ids: ids, logger: logger}
}

// ListCategories returns categories for display. Staff views include
// inactive ones.
func (s *MenuService) ListCategories(ctx context.Context, includeInactive bool) ([]menu.Category, error) {
	categories, err := s.store.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, storeErr(err, "Category")
	}
	return categories, nil
}

// GetCategory returns one category.
func (s *MenuService) GetCategory(ctx context.Context, id string) (menu.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return menu.Category{}, storeErr(err, "Category")
	}
	return c, nil
}

// CreateCategory validates and stores a new category.
func (s *MenuService) CreateCategory(ctx context.Context, c menu.Category) (menu.Category, error) {
	if errs := menu.ValidateCategory(c); len(errs) > 0 {
		return menu.Category{}, apperr.Validation("Validation failed",
			fieldErrors(errs, []string{"name", "description"}))
	}

	now := s.clock.Now()
	c.ID = s.ids.New()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.store.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return menu.Category{}, apperr.Conflict("Category name already in use")
		}
		return menu.Category{}, storeErr(err, "Category")
	}

	s.logger.Info().Str("category_id", c.ID).Str("name", c.Name).Msg("category created")
	return c, nil
}

// UpdateCategory validates and stores category changes.
func (s *MenuService) UpdateCategory(ctx context.Context, c menu.Category) (menu.Category, error) {
	if errs := menu.ValidateCategory(c); len(errs) > 0 {
		return menu.Category{}, apperr.Validation("Validation failed",
			fieldErrors(errs, []string{"name", "description"}))
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return menu.Category{}, apperr.Conflict("Category name already in use")
		}
		return menu.Category{}, storeErr(err, "Category")
	}
	return c, nil
}

// DeleteCategory removes an empty category.
func (s *MenuService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, ports.ErrInvalidReference) {
			return apperr.Conflict("Category still contains items")
		}
		return storeErr(err, "Category")
	}
	s.logger.Info().Str("category_id", id).Msg("category deleted")
	return nil
}

// ItemPage is a paginated item listing.
type ItemPage struct {
	Items []menu.Item
	Total int
}

// ListItems returns items with pagination, optionally scoped to a
// category.
func (s *MenuService) ListItems(ctx context.Context, categoryID string, limit, offset int) (ItemPage, error) {
	items, err := s.store.ListItems(ctx, categoryID, limit, offset)
	if err != nil {
		return ItemPage{}, storeErr(err, "Item")
	}
	total, err := s.store.CountItems(ctx, categoryID)
	if err != nil {
		return ItemPage{}, storeErr(err, "Item")
	}
	return ItemPage{Items: items, Total: total}, nil
}

// GetItem returns one item.
func (s *MenuService) GetItem(ctx context.Context, id string) (menu.Item, error) {
	i, err := s.store.GetItem(ctx, id)
	if err != nil {
		return menu.Item{}, storeErr(err, "Item")
	}
	return i, nil
}

// ListFeatured returns available featured items.
func (s *MenuService) ListFeatured(ctx context.Context) ([]menu.Item, error) {
	items, err := s.store.ListFeatured(ctx)
	if err != nil {
		return nil, storeErr(err, "Item")
	}
	return items, nil
}

// CreateItem validates and stores a new item. The category must exist.
func (s *MenuService) CreateItem(ctx context.Context, i menu.Item) (menu.Item, error) {
	if errs := menu.ValidateItem(i); len(errs) > 0 {
		return menu.Item{}, apperr.Validation("Validation failed",
			fieldErrors(errs, []string{"name", "categoryId", "price", "description"}))
	}

	now := s.clock.Now()
	i.ID = s.ids.New()
	i.CreatedAt = now
	i.UpdatedAt = now
	if err := s.store.CreateItem(ctx, i); err != nil {
		if errors.Is(err, ports.ErrInvalidReference) {
			return menu.Item{}, apperr.New(400, apperr.CodeInvalidRef, "Category does not exist")
		}
		return menu.Item{}, storeErr(err, "Item")
	}

	s.logger.Info().Str("item_id", i.ID).Str("name", i.Name).Msg("item created")
	return i, nil
}

// UpdateItem validates and stores item changes.
func (s *MenuService) UpdateItem(ctx context.Context, i menu.Item) (menu.Item, error) {
	if errs := menu.ValidateItem(i); len(errs) > 0 {
		return menu.Item{}, apperr.Validation("Validation failed",
			fieldErrors(errs, []string{"name", "categoryId", "price", "description"}))
	}
	if err := s.store.UpdateItem(ctx, i); err != nil {
		if errors.Is(err, ports.ErrInvalidReference) {
			return menu.Item{}, apperr.New(400, apperr.CodeInvalidRef, "Category does not exist")
		}
		return menu.Item{}, storeErr(err, "Item")
	}
	return i, nil
}

// SetItemAvailability flips the availability flag without touching the
// rest of the record.
func (s *MenuService) SetItemAvailability(ctx context.Context, id string, available bool) (menu.Item, error) {
	i, err := s.store.GetItem(ctx, id)
	if err != nil {
		return menu.Item{}, storeErr(err, "Item")
	}
	i.Available = available
	if err := s.store.UpdateItem(ctx, i); err != nil {
		return menu.Item{}, storeErr(err, "Item")
	}
	return i, nil
}

// DeleteItem removes an item.
func (s *MenuService) DeleteItem(ctx context.Context, id string) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return storeErr(err, "Item")
	}
	s.logger.Info().Str("item_id", id).Msg("item deleted")
	return nil
}
