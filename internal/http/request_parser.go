package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
)

const maxBodyBytes = 1 << 20

var (
	// errBadRequest marks a malformed path or query parameter.
	errBadRequest = errors.New("bad request")
	// errInvalidBody marks a body that is not the expected JSON object.
	errInvalidBody = errors.New("invalid request body")
)

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", errInvalidBody)
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", errInvalidBody)
	}
	return nil
}

// pathID parses the {id} wildcard as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return id, nil
}

// queryInt reads an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s must be an integer between %d and %d", errBadRequest, name, lo, hi)
	}
	return v, nil
}

// parseMoney converts a JSON number to whole currency units. An empty number
// is zero.
func parseMoney(n json.Number) (core.Money, error) {
	if n == "" {
		return core.Money{}, nil
	}
	units, err := core.ParseAmount(n.String())
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: %q", err, n.String())
	}
	return core.Money{Units: units}, nil
}

// parseOptionalDate parses a YYYY-MM-DD string; "" yields the zero date.
func parseOptionalDate(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

type goalRequest struct {
	Title         string      `json:"title"`
	TargetAmount  json.Number `json:"target_amount"`
	TargetDate    string      `json:"target_date"`
	CurrentAmount json.Number `json:"current_amount"`
	Description   string      `json:"description"`
}

func (req goalRequest) toGoal() (core.Goal, error) {
	target, err := parseMoney(req.TargetAmount)
	if err != nil {
		return core.Goal{}, fmt.Errorf("target_amount: %w", err)
	}
	current, err := parseMoney(req.CurrentAmount)
	if err != nil {
		return core.Goal{}, fmt.Errorf("current_amount: %w", err)
	}
	date, err := core.ParseDate(req.TargetDate)
	if err != nil {
		return core.Goal{}, fmt.Errorf("target_date: %w", err)
	}
	return core.Goal{
		Title:         sanitizeInput(req.Title),
		TargetAmount:  target,
		TargetDate:    date,
		CurrentAmount: current,
		Description:   sanitizeInput(req.Description),
	}, nil
}

type recurringRequest struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	Frequency   string      `json:"frequency"`
	DayOfMonth  int         `json:"day_of_month"`
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
}

func (req recurringRequest) toRecurring() (core.RecurringTransaction, error) {
	amount, err := parseMoney(req.Amount)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("amount: %w", err)
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("end_date: %w", err)
	}
	return core.RecurringTransaction{
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Category:    sanitizeInput(req.Category),
		Type:        core.TransactionType(strings.ToLower(strings.TrimSpace(req.Type))),
		Frequency:   core.Frequency(strings.ToLower(strings.TrimSpace(req.Frequency))),
		DayOfMonth:  req.DayOfMonth,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// recurringPatch carries a partial update; nil fields keep their value.
type recurringPatch struct {
	Description *string      `json:"description"`
	Amount      *json.Number `json:"amount"`
	Category    *string      `json:"category"`
	Type        *string      `json:"type"`
	Frequency   *string      `json:"frequency"`
	DayOfMonth  *int         `json:"day_of_month"`
	StartDate   *string      `json:"start_date"`
	EndDate     *string      `json:"end_date"`
}

func (p recurringPatch) apply(rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if p.Description != nil {
		rt.Description = sanitizeInput(*p.Description)
	}
	if p.Amount != nil {
		amount, err := parseMoney(*p.Amount)
		if err != nil {
			return rt, fmt.Errorf("amount: %w", err)
		}
		rt.Amount = amount
	}
	if p.Category != nil {
		rt.Category = sanitizeInput(*p.Category)
	}
	if p.Type != nil {
		rt.Type = core.TransactionType(strings.ToLower(strings.TrimSpace(*p.Type)))
	}
	if p.Frequency != nil {
		rt.Frequency = core.Frequency(strings.ToLower(strings.TrimSpace(*p.Frequency)))
	}
	if p.DayOfMonth != nil {
		rt.DayOfMonth = *p.DayOfMonth
	}
	if p.StartDate != nil {
		start, err := core.ParseDate(*p.StartDate)
		if err != nil {
			return rt, fmt.Errorf("start_date: %w", err)
		}
		rt.StartDate = start
	}
	if p.EndDate != nil {
		end, err := parseOptionalDate(*p.EndDate)
		if err != nil {
			return rt, fmt.Errorf("end_date: %w", err)
		}
		rt.EndDate = end
	}
	return rt, nil
}

type taxRequest struct {
	Amount     json.Number `json:"amount"`
	Type       string      `json:"type"`
	Dependents *int        `json:"dependents"`
}

// defaultDependents counts the earner alone when the field is omitted.
const defaultDependents = 1

func (req taxRequest) dependents() int {
	if req.Dependents == nil {
		return defaultDependents
	}
	return *req.Dependents
}
