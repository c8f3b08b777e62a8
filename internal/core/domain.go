package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
	Weekly  Frequency = "weekly"

	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type (
	Frequency       string
	TransactionType string

	Date struct {
		time.Time
	}

	// Money is an amount in the smallest whole currency unit.
	Money struct {
		Units int64
	}

	// Goal is a savings target owned by the user.
	Goal struct {
		ID            int64
		Title         string
		TargetAmount  Money
		TargetDate    Date
		CurrentAmount Money // balance already saved towards the goal
		Description   string
		CreatedAt     time.Time
	}

	// RecurringTransaction is a repeating income or expense definition.
	RecurringTransaction struct {
		ID          int64
		Description string
		Amount      Money
		Category    string
		Type        TransactionType
		Frequency   Frequency
		DayOfMonth  int // 0 when unset; display only
		StartDate   Date
		EndDate     Date // zero when open-ended
		CreatedAt   time.Time
	}

	// MonthlyContribution is the signed net amount one definition adds in a month.
	MonthlyContribution struct {
		Month  Month
		Amount int64
	}
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyTitle         = errors.New("empty title")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidDayOfMonth  = errors.New("day of month must be between 1 and 31")
	ErrNegativeBalance    = errors.New("current amount cannot be negative")
	ErrEndBeforeStart     = errors.New("end date must not be before start date")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Month returns the calendar month containing d.
func (d Date) Month() Month {
	return MonthOf(d.Time)
}

// IsEmpty reports whether the optional date is unset.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// MaxAmount is the largest amount accepted from callers. Projections sum
// many amounts over many months, so inputs stay far below the int64 range.
const MaxAmount int64 = 1_000_000_000_000_000

// Validate requires a positive amount no larger than MaxAmount.
func (m Money) Validate() error {
	if m.Units <= 0 || m.Units > MaxAmount {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Sign returns +1 for income and -1 for expenses.
func (t TransactionType) Sign() int64 {
	if t == Expense {
		return -1
	}
	return 1
}

func (f Frequency) Valid() bool {
	switch f {
	case Monthly, Weekly, Yearly:
		return true
	}
	return false
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if len(g.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return fmt.Errorf("target amount: %w", err)
	}
	if g.CurrentAmount.Units < 0 {
		return ErrNegativeBalance
	}
	if g.CurrentAmount.Units > MaxAmount {
		return fmt.Errorf("current amount: %w", ErrInvalidAmount)
	}
	if err := g.TargetDate.Validate(); err != nil {
		return fmt.Errorf("target date: %w", err)
	}
	return nil
}

func (rt RecurringTransaction) Validate() error {
	if err := rt.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}

	if !rt.EndDate.IsEmpty() {
		if err := rt.EndDate.Validate(); err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		if rt.EndDate.Before(rt.StartDate.Time) {
			return ErrEndBeforeStart
		}
	}

	if !rt.Frequency.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, rt.Frequency)
	}
	if !rt.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, rt.Type)
	}

	if rt.DayOfMonth != 0 && (rt.DayOfMonth < 1 || rt.DayOfMonth > 31) {
		return ErrInvalidDayOfMonth
	}

	if len(strings.TrimSpace(rt.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(rt.Description) > 200 {
		return ErrDescriptionTooLong
	}

	return rt.Amount.Validate()
}

var validationErrors = []error{
	ErrInvalidDay, ErrInvalidMonth, ErrInvalidAmount, ErrInvalidDate, ErrEmptyTitle,
	ErrEmptyDescription, ErrInvalidType, ErrInvalidFrequency, ErrInvalidDayOfMonth,
	ErrNegativeBalance, ErrEndBeforeStart, ErrDescriptionTooLong,
}

// IsValidation reports whether err was caused by invalid input.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
