package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthLayout is the wire format for calendar months.
const MonthLayout = "2006-01"

// Month identifies a calendar month independent of day and time zone.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	i := m.index() + n
	return Month{Year: i / 12, Month: time.Month(i%12 + 1)}
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	return m.AddMonths(1)
}

func (m Month) Before(o Month) bool { return m.index() < o.index() }
func (m Month) After(o Month) bool  { return m.index() > o.index() }

// MonthsUntil returns the number of calendar months from m to o; negative when o precedes m.
func (m Month) MonthsUntil(o Month) int {
	return o.index() - m.index()
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// WholeMonthsBetween counts the full calendar months elapsed from "from" to
// "to", comparing calendar dates only. A month counts once the day of month
// of "from" is reached again, so Jan 15 -> Feb 14 is 0 and Jan 15 -> Feb 15
// is 1. The result is negative when "to" precedes "from".
func WholeMonthsBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return -WholeMonthsBetween(end, start)
	}
	n := MonthOf(start).MonthsUntil(MonthOf(end))
	if n > 0 && td < fd {
		n--
	}
	return n
}
