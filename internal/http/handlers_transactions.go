package http

import (
	"net/http"

	"kepngern/internal/core"
	"kepngern/internal/log"
)

// CategoryReport is the body of GET /api/reports/categories.
type CategoryReport struct {
	Type       core.TransactionType  `json:"type"`
	Categories []core.CategoryAmount `json:"categories"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ledger.Transactions())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := s.transactionInput(w, r)
	if !ok {
		return
	}

	t, err := s.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(t.ID, string(t.Type), t.Category, t.Amount.String()).
			ToSlice()...)
	writeJSON(w, r, http.StatusCreated, t)
}

// handleUpdateTransaction replaces a transaction. Unknown ids are accepted
// and change nothing.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	in, ok := s.transactionInput(w, r)
	if !ok {
		return
	}

	if err := s.ledger.UpdateTransaction(r.Context(), id, in); err != nil {
		writeDomainError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		log.FieldOperation, log.OpUpdate, log.FieldTransactionID, id)
	writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	s.ledger.DeleteTransaction(r.Context(), id)

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTransactionID, id)
	writeJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) transactionInput(w http.ResponseWriter, r *http.Request) (core.TransactionInput, bool) {
	var req TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, BadRequest(err.Error()))
		return core.TransactionInput{}, false
	}
	in, err := req.Input()
	if err != nil {
		writeDomainError(w, r, err)
		return core.TransactionInput{}, false
	}
	return in, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.ledger.FinancialSummary())
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	categories := s.ledger.CategoryTotals(kind)
	if categories == nil {
		categories = []core.CategoryAmount{}
	}
	writeJSON(w, r, http.StatusOK, CategoryReport{Type: kind, Categories: categories})
}
