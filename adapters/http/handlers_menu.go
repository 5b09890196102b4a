package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lionscafe/api/domain/menu"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	// Staff and above see inactive categories too.
	includeInactive := false
	if p, ok := PrincipalFrom(r.Context()); ok {
		includeInactive = p.Allowed(staffRoles)
	}
	categories, err := s.menu.ListCategories(r.Context(), includeInactive)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	out := make([]categoryJSON, len(categories))
	for i, c := range categories {
		out[i] = toCategoryJSON(c)
	}
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.menu.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toCategoryJSON(c))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	c, err := s.menu.CreateCategory(r.Context(), menu.Category{
		Name:        vStr(body, "name"),
		Description: vStr(body, "description"),
		SortOrder:   vInt(body, "sortOrder"),
		Active:      vBool(body, "active"),
	})
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toCategoryJSON(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	c, err := s.menu.UpdateCategory(r.Context(), menu.Category{
		ID:          chi.URLParam(r, "id"),
		Name:        vStr(body, "name"),
		Description: vStr(body, "description"),
		SortOrder:   vInt(body, "sortOrder"),
		Active:      vBool(body, "active"),
	})
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toCategoryJSON(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.menu.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "Category deleted.")
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	limit, offset, page := pagination(r)
	result, err := s.menu.ListItems(r.Context(), r.URL.Query().Get("categoryId"), limit, offset)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeList(w, toItemsJSON(result.Items), pageMeta(page, limit, result.Total))
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.menu.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toItemJSON(item))
}

func (s *Server) handleListFeatured(w http.ResponseWriter, r *http.Request) {
	items, err := s.menu.ListFeatured(r.Context())
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toItemsJSON(items))
}

func itemFromBody(body map[string]any) menu.Item {
	return menu.Item{
		CategoryID:  vStr(body, "categoryId"),
		Name:        vStr(body, "name"),
		Description: vStr(body, "description"),
		PriceCents:  int64(vInt(body, "priceCents")),
		ImageURL:    vStr(body, "imageUrl"),
		Available:   vBool(body, "available"),
		Featured:    vBool(body, "featured"),
	}
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.menu.CreateItem(r.Context(), itemFromBody(Validated(r.Context(), LocationBody)))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toItemJSON(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	item := itemFromBody(Validated(r.Context(), LocationBody))
	item.ID = chi.URLParam(r, "id")
	updated, err := s.menu.UpdateItem(r.Context(), item)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toItemJSON(updated))
}

func (s *Server) handleItemAvailability(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	item, err := s.menu.SetItemAvailability(r.Context(), chi.URLParam(r, "id"), vBool(body, "available"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toItemJSON(item))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.menu.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "Menu item deleted.")
}
