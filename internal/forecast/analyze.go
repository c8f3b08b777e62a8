package forecast

import (
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
)

// Analyze projects the goal's current amount from the month of now to the
// target month and evaluates the outcome.
func (e Expander) Analyze(goal core.Goal, txs []core.RecurringTransaction, now time.Time) Result {
	traj := e.Project(goal.CurrentAmount.Units, txs, core.MonthOf(now), goal.TargetDate.Month())
	return Evaluate(goal, traj, now)
}

// Analyze runs the analysis with the standard strategies.
func Analyze(goal core.Goal, txs []core.RecurringTransaction, now time.Time) Result {
	return defaultExpander.Analyze(goal, txs, now)
}
