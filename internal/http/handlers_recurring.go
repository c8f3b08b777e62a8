package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/log"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/services"
)

const (
	defaultListLimit     = 100
	maxListLimit         = 1000
	defaultScheduleRange = 12
)

// handleListRecurring supports offset/limit paging over the ID-ordered list.
func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit, 1, maxListLimit)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	offset, err := queryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}

	txs, err := s.deps.Recurring.List(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	txs = txs[min(offset, len(txs)):]
	txs = txs[:min(limit, len(txs))]

	resp := make([]recurringResponse, 0, len(txs))
	for _, rt := range txs {
		resp = append(resp, newRecurringResponse(rt))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	rt, err := req.toRecurring()
	if err != nil {
		s.respondError(w, r, log.OpValidate, err)
		return
	}
	created, err := s.deps.Recurring.Create(r.Context(), rt)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRecurringResponse(created))
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	rt, err := s.deps.Recurring.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecurringResponse(rt))
}

// handleUpdateRecurring applies the fields present in the body.
func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	var patch recurringPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	current, err := s.deps.Recurring.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	next, err := patch.apply(current)
	if err != nil {
		s.respondError(w, r, log.OpValidate, err)
		return
	}
	updated, err := s.deps.Recurring.Update(r.Context(), next)
	if err != nil {
		s.respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecurringResponse(updated))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	if err := s.deps.Recurring.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRecurringSchedule lists occurrences from ?from=YYYY-MM (default: the
// current month) over ?months= calendar months.
func (s *Server) handleRecurringSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	months, err := queryInt(r, "months", defaultScheduleRange, 1, services.MaxScheduleMonths)
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	from, err := queryMonth(r, "from")
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	occ, err := s.deps.Recurring.Schedule(r.Context(), id, from, months)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

// handleRecurringSummary totals the recurring cash flow for ?month=YYYY-MM.
func (s *Server) handleRecurringSummary(w http.ResponseWriter, r *http.Request) {
	month, err := queryMonth(r, "month")
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}
	flow, err := s.deps.Recurring.Summary(r.Context(), month)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(flow))
}

func queryMonth(r *http.Request, name string) (core.Month, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return core.MonthOf(time.Now()), nil
	}
	return core.ParseMonth(raw)
}
