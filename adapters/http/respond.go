package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Meta carries pagination info on list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type successBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successBody{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, successBody{Success: true, Data: data, Message: message})
}

func writeList(w http.ResponseWriter, data any, meta *Meta) {
	writeJSON(w, http.StatusOK, successBody{Success: true, Data: data, Meta: meta})
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// pagination reads ?page and ?limit, clamping to sane bounds.
// page is 1-based.
func pagination(r *http.Request) (limit, offset, page int) {
	page = 1
	limit = defaultPageLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
		if limit > maxPageLimit {
			limit = maxPageLimit
		}
	}
	return limit, (page - 1) * limit, page
}

func pageMeta(page, limit, total int) *Meta {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Meta{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
