package http

import (
	"fmt"
	"net/http"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/log"
)

func (s *Server) handleCalculateTax(w http.ResponseWriter, r *http.Request) {
	var req taxRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	gross, err := parseMoney(req.Amount)
	if err != nil {
		s.respondError(w, r, log.OpValidate, fmt.Errorf("amount: %w", err))
		return
	}
	breakdown, err := s.deps.Tax.Calculate(r.Context(), req.Type, gross.Units, req.dependents())
	if err != nil {
		s.respondError(w, r, log.OpValidate, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}
