package forecast

import "github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"

// Point is the projected balance at the start of a calendar month.
type Point struct {
	Month   core.Month `json:"month"`
	Balance int64      `json:"balance"`
}

// Trajectory is a chronological sequence of projected balances. It always
// has at least one entry.
type Trajectory []Point

// Final returns the last projected balance.
func (t Trajectory) Final() int64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].Balance
}

// Project simulates the balance month by month from "from" to "to" inclusive.
// The first entry carries the unmodified start balance; the contributions of
// month i produce entry i+1. When to precedes from the result is the single
// starting entry. Balances saturate at the int64 limits rather than wrap.
func (e Expander) Project(start int64, txs []core.RecurringTransaction, from, to core.Month) Trajectory {
	k := from.MonthsUntil(to)
	if k < 0 {
		k = 0
	}
	traj := make(Trajectory, 0, k+1)
	balance := start
	traj = append(traj, Point{Month: from, Balance: balance})
	for i := 0; i < k; i++ {
		month := from.AddMonths(i)
		for _, t := range txs {
			balance = core.SaturatingAdd(balance, e.MonthlyContribution(t, month))
		}
		traj = append(traj, Point{Month: month.Next(), Balance: balance})
	}
	return traj
}

// Project runs the projection with the standard strategies.
func Project(start int64, txs []core.RecurringTransaction, from, to core.Month) Trajectory {
	return defaultExpander.Project(start, txs, from, to)
}
