package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lionscafe/api/app"
	"github.com/lionscafe/api/domain/reservation"
)

func reservationRequest(body map[string]any) app.ReservationRequest {
	return app.ReservationRequest{
		TableID:   vStr(body, "tableId"),
		PartySize: vInt(body, "partySize"),
		StartsAt:  vTime(body, "startsAt"),
		Duration:  time.Duration(vInt(body, "durationMinutes")) * time.Minute,
		Note:      vStr(body, "note"),
	}
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	body := Validated(r.Context(), LocationBody)
	res, err := s.reservations.Create(r.Context(), p, reservationRequest(body))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	s.metrics.ReservationsCreated.Inc()
	writeData(w, http.StatusCreated, toReservationJSON(res))
}

func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	limit, offset, page := pagination(r)
	result, err := s.reservations.List(r.Context(), p, limit, offset)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeList(w, toReservationsJSON(result.Reservations), pageMeta(page, limit, result.Total))
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	res, err := s.reservations.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toReservationJSON(res))
}

func (s *Server) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	body := Validated(r.Context(), LocationBody)
	res, err := s.reservations.Update(r.Context(), p, chi.URLParam(r, "id"), reservationRequest(body))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toReservationJSON(res))
}

func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	if err := s.reservations.Cancel(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "Reservation cancelled.")
}

func (s *Server) handleReservationStatus(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	res, err := s.reservations.SetStatus(r.Context(), chi.URLParam(r, "id"),
		reservation.Status(vStr(body, "status")))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toReservationJSON(res))
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.reservations.ListTables(r.Context())
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toTablesJSON(tables))
}

func (s *Server) handleAvailableTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.reservations.ListAvailableTables(r.Context())
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toTablesJSON(tables))
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	t, err := s.reservations.CreateTable(r.Context(), vInt(body, "number"), vInt(body, "capacity"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toTableJSON(t))
}

func (s *Server) handleTableStatus(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	t, err := s.reservations.SetTableStatus(r.Context(), chi.URLParam(r, "id"),
		reservation.TableStatus(vStr(body, "status")))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toTableJSON(t))
}
