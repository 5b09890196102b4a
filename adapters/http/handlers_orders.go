package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lionscafe/api/app"
	"github.com/lionscafe/api/domain/order"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	body := Validated(r.Context(), LocationBody)

	req := app.OrderRequest{
		Type:    order.Type(vStr(body, "type")),
		TableID: vStr(body, "tableId"),
		Note:    vStr(body, "note"),
	}
	for _, line := range vArr(body, "items") {
		req.Lines = append(req.Lines, app.OrderLineRequest{
			ItemID:   vStr(line, "itemId"),
			Quantity: vInt(line, "quantity"),
			Note:     vStr(line, "note"),
		})
	}

	o, err := s.orders.Create(r.Context(), p, req)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	s.metrics.OrdersCreated.WithLabelValues(string(o.Type)).Inc()
	writeData(w, http.StatusCreated, toOrderJSON(o))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	limit, offset, page := pagination(r)
	result, err := s.orders.List(r.Context(), p, limit, offset)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeList(w, toOrdersJSON(result.Orders), pageMeta(page, limit, result.Total))
}

func (s *Server) handleListUserOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset, page := pagination(r)
	result, err := s.orders.ListFor(r.Context(), chi.URLParam(r, "userId"), limit, offset)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeList(w, toOrdersJSON(result.Orders), pageMeta(page, limit, result.Total))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	o, err := s.orders.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toOrderJSON(o))
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	o, err := s.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(vStr(body, "status")))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toOrderJSON(o))
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	o, err := s.orders.Cancel(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, toOrderJSON(o), "Order cancelled.")
}
