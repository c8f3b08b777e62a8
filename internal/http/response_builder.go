package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/log"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err, "status", status)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps service and parsing errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidTaxType), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errInvalidBody), core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal errors are logged
// and replaced by a generic message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.structured.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, log.NewFields())
		writeError(w, status, http.StatusText(status))
		return
	}
	writeError(w, status, err.Error())
}

type goalResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	TargetAmount  int64     `json:"target_amount"`
	TargetDate    string    `json:"target_date"`
	CurrentAmount int64     `json:"current_amount"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:            g.ID,
		Title:         g.Title,
		TargetAmount:  g.TargetAmount.Units,
		TargetDate:    g.TargetDate.String(),
		CurrentAmount: g.CurrentAmount.Units,
		Description:   g.Description,
		CreatedAt:     g.CreatedAt,
	}
}

type recurringResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Category    string    `json:"category,omitempty"`
	Type        string    `json:"type"`
	Frequency   string    `json:"frequency"`
	DayOfMonth  *int      `json:"day_of_month"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRecurringResponse(rt core.RecurringTransaction) recurringResponse {
	resp := recurringResponse{
		ID:          rt.ID,
		Description: rt.Description,
		Amount:      rt.Amount.Units,
		Category:    rt.Category,
		Type:        string(rt.Type),
		Frequency:   string(rt.Frequency),
		StartDate:   rt.StartDate.String(),
		CreatedAt:   rt.CreatedAt,
	}
	if rt.DayOfMonth != 0 {
		day := rt.DayOfMonth
		resp.DayOfMonth = &day
	}
	if !rt.EndDate.IsEmpty() {
		end := rt.EndDate.String()
		resp.EndDate = &end
	}
	return resp
}

type categoryResponse struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

type summaryResponse struct {
	Month      core.Month         `json:"month"`
	Income     int64              `json:"income"`
	Expense    int64              `json:"expense"`
	Net        int64              `json:"net"`
	ByCategory []categoryResponse `json:"by_category"`
}

func newSummaryResponse(cf core.CashFlow) summaryResponse {
	resp := summaryResponse{
		Month:      cf.Month,
		Income:     cf.Income.Units,
		Expense:    cf.Expense.Units,
		Net:        cf.Net(),
		ByCategory: make([]categoryResponse, 0, len(cf.ByCategory)),
	}
	for _, c := range cf.ByCategory {
		resp.ByCategory = append(resp.ByCategory, categoryResponse{Name: c.Name, Amount: c.Amount.Units})
	}
	return resp
}
