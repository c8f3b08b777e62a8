package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMonthArithmetic(t *testing.T) {
	m := Month{Year: 2026, Month: time.November}
	if got := m.Next(); got != (Month{Year: 2026, Month: time.December}) {
		t.Fatalf("Next() = %v", got)
	}
	if got := m.AddMonths(2); got != (Month{Year: 2027, Month: time.January}) {
		t.Fatalf("AddMonths(2) = %v", got)
	}
	if got := m.AddMonths(-11); got != (Month{Year: 2025, Month: time.December}) {
		t.Fatalf("AddMonths(-11) = %v", got)
	}
	if got := m.MonthsUntil(Month{Year: 2027, Month: time.November}); got != 12 {
		t.Fatalf("MonthsUntil = %d, want 12", got)
	}
	if got := m.MonthsUntil(Month{Year: 2026, Month: time.October}); got != -1 {
		t.Fatalf("MonthsUntil = %d, want -1", got)
	}
	if !m.Before(m.Next()) || !m.Next().After(m) {
		t.Fatal("ordering broken")
	}
}

func TestMonthDays(t *testing.T) {
	cases := []struct {
		m    Month
		want int
	}{
		{Month{2024, time.February}, 29},
		{Month{2025, time.February}, 28},
		{Month{2026, time.April}, 30},
		{Month{2026, time.December}, 31},
	}
	for _, tc := range cases {
		if got := tc.m.Days(); got != tc.want {
			t.Errorf("%s Days() = %d, want %d", tc.m, got, tc.want)
		}
	}
}

func TestMonthJSON(t *testing.T) {
	b, err := json.Marshal(Month{Year: 2026, Month: time.March})
	if err != nil || string(b) != `"2026-03"` {
		t.Fatalf("marshal = %s, %v", b, err)
	}
	var m Month
	if err := json.Unmarshal([]byte(`"2027-12"`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m != (Month{Year: 2027, Month: time.December}) {
		t.Fatalf("unmarshal = %v", m)
	}
	if err := json.Unmarshal([]byte(`"2027-13"`), &m); err == nil {
		t.Fatal("expected error for invalid month")
	}
}

func TestWholeMonthsBetween(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"same day", d(2026, 1, 15), d(2026, 1, 15), 0},
		{"one day short", d(2026, 1, 15), d(2026, 2, 14), 0},
		{"exactly one month", d(2026, 1, 15), d(2026, 2, 15), 1},
		{"twelve months", d(2026, 10, 16), d(2027, 10, 16), 12},
		{"month end into short month", d(2026, 1, 31), d(2026, 2, 28), 0},
		{"time of day ignored", time.Date(2026, 10, 16, 18, 30, 0, 0, time.UTC), d(2027, 10, 16), 12},
		{"past target", d(2026, 3, 10), d(2026, 1, 10), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WholeMonthsBetween(tt.from, tt.to); got != tt.want {
				t.Errorf("WholeMonthsBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}
