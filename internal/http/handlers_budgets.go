package http

import (
	"net/http"

	"kepngern/internal/log"
)

// AlertsResponse is the body of GET /api/budgets/alerts.
type AlertsResponse struct {
	Alerts []string `json:"alerts"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ledger.Budgets())
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ledger.BudgetStatus())
}

func (s *Server) handleBudgetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := s.alerts()
	if alerts == nil {
		alerts = []string{}
	}
	writeJSON(w, r, http.StatusOK, AlertsResponse{Alerts: alerts})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")

	var req BudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, BadRequest(err.Error()))
		return
	}
	limit, err := req.LimitValue()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.ledger.SetBudget(r.Context(), category, limit); err != nil {
		writeDomainError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Budget set",
		log.FieldOperation, log.OpUpdate, log.FieldCategory, category, log.FieldLimit, limit.String())
	writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	category := pathParam(r, "category")
	s.ledger.DeleteBudget(r.Context(), category)

	log.FromContext(r.Context()).InfoContext(r.Context(), "Budget deleted",
		log.FieldOperation, log.OpDelete, log.FieldCategory, category)
	writeJSON(w, r, http.StatusNoContent, nil)
}
