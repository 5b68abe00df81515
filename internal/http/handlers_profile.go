package http

import (
	"net/http"

	"kepngern/internal/core"
	"kepngern/internal/log"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ledger.Profile())
}

// handleUpdateProfile merges the fields present in the body into the profile.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, BadRequest(err.Error()))
		return
	}

	profile, err := s.ledger.UpdateProfile(r.Context(), req.Update())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Profile updated", log.FieldOperation, log.OpUpdate)
	writeJSON(w, r, http.StatusOK, profile)
}

// ProfileRequest is the body of PATCH /api/profile. Absent fields are left
// unchanged.
type ProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

func (req ProfileRequest) Update() core.ProfileUpdate {
	clean := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := sanitizeInput(*p)
		return &v
	}
	return core.ProfileUpdate{
		FirstName: clean(req.FirstName),
		LastName:  clean(req.LastName),
		Email:     req.Email,
	}
}
