package http

import (
	"net/http"
	"time"

	"kepngern/internal/log"
)

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
	LoggedIn  bool      `json:"loggedIn"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, BadRequest(err.Error()))
		return
	}

	session, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeError(w, r, http.StatusUnauthorized, Unauthorized("no session"))
		return
	}
	resp := SessionResponse{Username: claims.Subject, LoggedIn: true}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Session checked")
	writeJSON(w, r, http.StatusOK, resp)
}
