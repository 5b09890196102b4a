package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lionscafe/api/app"
	"github.com/lionscafe/api/domain/user"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	u, err := s.users.Get(r.Context(), p.ID)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	body := Validated(r.Context(), LocationBody)
	u, err := s.users.UpdateProfile(r.Context(), p.ID, app.ProfileUpdate{
		Name:  vStr(body, "name"),
		Email: vStr(body, "email"),
	})
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	body := Validated(r.Context(), LocationBody)
	if err := s.users.ChangePassword(r.Context(), p.ID,
		vStr(body, "currentPassword"), vStr(body, "newPassword")); err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "Password changed.")
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset, page := pagination(r)
	result, err := s.users.List(r.Context(), limit, offset)
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeList(w, toUsersJSON(result.Users), pageMeta(page, limit, result.Total))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	u, err := s.users.SetRole(r.Context(), chi.URLParam(r, "id"), user.Role(vStr(body, "role")))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleSetUserActive(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	u, err := s.users.SetActive(r.Context(), chi.URLParam(r, "id"), vBool(body, "active"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toUserJSON(u))
}
