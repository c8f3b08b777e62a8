// Package forecast projects recurring cash flows onto calendar months and
// judges savings goals against the resulting balance trajectory.
//
// Every function here is pure: inputs are plain values, nothing is cached and
// no clock is read. Callers pass "now" explicitly.
package forecast

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
)

// weeksPerMonth is the average number of weeks in a calendar month (52.14 / 12).
var weeksPerMonth = decimal.RequireFromString("4.345")

// ContributionStrategy computes the unsigned amount a recurring definition
// contributes to a month it is active in. Activity bounds (start and end
// month) and the income/expense sign are applied by the Expander.
type ContributionStrategy interface {
	Contribution(t core.RecurringTransaction, month core.Month) int64
}

// MonthlyStrategy contributes the full amount every active month.
type MonthlyStrategy struct{}

func (MonthlyStrategy) Contribution(t core.RecurringTransaction, _ core.Month) int64 {
	return t.Amount.Units
}

// YearlyStrategy contributes the full amount in the calendar month of the start date.
type YearlyStrategy struct{}

func (YearlyStrategy) Contribution(t core.RecurringTransaction, month core.Month) int64 {
	if month.Month != t.StartDate.Time.Month() {
		return 0
	}
	return t.Amount.Units
}

// WeeklyStrategy converts a weekly amount to a monthly equivalent by
// multiplying with an average weeks-per-month factor, rounded half away from
// zero to whole units. Individual week boundaries are not simulated, so a
// month with five paydays contributes the same as one with four.
type WeeklyStrategy struct {
	// Factor overrides the default 4.345 weeks per month when non-zero.
	Factor decimal.Decimal
}

func (s WeeklyStrategy) Contribution(t core.RecurringTransaction, _ core.Month) int64 {
	factor := s.Factor
	if factor.IsZero() {
		factor = weeksPerMonth
	}
	return decimal.NewFromInt(t.Amount.Units).Mul(factor).Round(0).IntPart()
}

// Expander maps each frequency to its contribution strategy. The zero value
// uses the standard strategies.
type Expander struct {
	strategies map[core.Frequency]ContributionStrategy
}

// NewExpander returns an Expander with the standard monthly, weekly and
// yearly strategies.
func NewExpander() Expander {
	return Expander{strategies: map[core.Frequency]ContributionStrategy{
		core.Monthly: MonthlyStrategy{},
		core.Weekly:  WeeklyStrategy{},
		core.Yearly:  YearlyStrategy{},
	}}
}

// With returns a copy of e using s for frequency f. e itself is unchanged.
func (e Expander) With(f core.Frequency, s ContributionStrategy) Expander {
	if e.strategies == nil {
		e = defaultExpander
	}
	next := make(map[core.Frequency]ContributionStrategy, len(e.strategies)+1)
	for k, v := range e.strategies {
		next[k] = v
	}
	next[f] = s
	return Expander{strategies: next}
}

// Strategy returns the strategy registered for f.
func (e Expander) Strategy(f core.Frequency) (ContributionStrategy, error) {
	if e.strategies == nil {
		e = defaultExpander
	}
	s, ok := e.strategies[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, f)
	}
	return s, nil
}

// Active reports whether t can contribute anything in month.
func Active(t core.RecurringTransaction, month core.Month) bool {
	if month.Before(t.StartDate.Month()) {
		return false
	}
	if !t.EndDate.IsEmpty() && month.After(t.EndDate.Month()) {
		return false
	}
	return true
}

// MonthlyContribution returns the signed amount t adds to month: positive for
// income, negative for expenses, 0 outside the active window. DayOfMonth has
// no effect on the result. Unknown frequencies contribute 0; validated
// definitions never carry one.
func (e Expander) MonthlyContribution(t core.RecurringTransaction, month core.Month) int64 {
	if !Active(t, month) {
		return 0
	}
	s, err := e.Strategy(t.Frequency)
	if err != nil {
		return 0
	}
	return t.Type.Sign() * s.Contribution(t, month)
}

var defaultExpander = NewExpander()

// MonthlyContribution expands t for month using the standard strategies.
func MonthlyContribution(t core.RecurringTransaction, month core.Month) int64 {
	return defaultExpander.MonthlyContribution(t, month)
}

// OccurrenceDay returns the day within month on which t notionally occurs:
// DayOfMonth when set, otherwise the start date's day, clamped to the month
// length (31 becomes 30, 29 or 28).
func OccurrenceDay(t core.RecurringTransaction, month core.Month) int {
	day := t.DayOfMonth
	if day == 0 {
		day = t.StartDate.Day()
	}
	if last := month.Days(); day > last {
		return last
	}
	return day
}

// Occurrence is one month in which a recurring definition moves money.
type Occurrence struct {
	Month  core.Month `json:"month"`
	Day    int        `json:"day"`
	Amount int64      `json:"amount"`
}

// Schedule lists the months within [from, from+months) in which t contributes.
func (e Expander) Schedule(t core.RecurringTransaction, from core.Month, months int) []Occurrence {
	var out []Occurrence
	for i := 0; i < months; i++ {
		m := from.AddMonths(i)
		amount := e.MonthlyContribution(t, m)
		if amount == 0 {
			continue
		}
		out = append(out, Occurrence{Month: m, Day: OccurrenceDay(t, m), Amount: amount})
	}
	return out
}

// Schedule lists occurrences using the standard strategies.
func Schedule(t core.RecurringTransaction, from core.Month, months int) []Occurrence {
	return defaultExpander.Schedule(t, from, months)
}

// uncategorized labels definitions without a category in summaries.
const uncategorized = "uncategorized"

// Summarize totals the income and expense contributions of txs for month.
// Expense categories are listed largest first, ties by name.
func (e Expander) Summarize(txs []core.RecurringTransaction, month core.Month) core.CashFlow {
	cf := core.CashFlow{Month: month}
	byCategory := make(map[string]int64)
	for _, t := range txs {
		amount := e.MonthlyContribution(t, month)
		switch {
		case amount > 0:
			cf.Income.Units += amount
		case amount < 0:
			cf.Expense.Units -= amount
			name := t.Category
			if name == "" {
				name = uncategorized
			}
			byCategory[name] -= amount
		}
	}
	for name, units := range byCategory {
		cf.ByCategory = append(cf.ByCategory, core.CategoryAmount{Name: name, Amount: core.Money{Units: units}})
	}
	sort.Slice(cf.ByCategory, func(i, j int) bool {
		a, b := cf.ByCategory[i], cf.ByCategory[j]
		if a.Amount.Units != b.Amount.Units {
			return a.Amount.Units > b.Amount.Units
		}
		return a.Name < b.Name
	})
	return cf
}

// Summarize totals contributions using the standard strategies.
func Summarize(txs []core.RecurringTransaction, month core.Month) core.CashFlow {
	return defaultExpander.Summarize(txs, month)
}
