package forecast

import (
	"time"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
)

// MonthlyDatum is one trajectory entry in chart-friendly form.
type MonthlyDatum struct {
	Date            string `json:"date"` // YYYY-MM
	ProjectedAmount int64  `json:"projected_amount"`
	TargetLine      int64  `json:"target_line"`
}

// Result is the verdict for one goal.
type Result struct {
	GoalID              int64          `json:"goal_id"`
	FinalAmount         int64          `json:"final_amount"`
	IsAchievable        bool           `json:"is_achievable"`
	Shortfall           int64          `json:"shortfall"`
	MonthlySavingNeeded int64          `json:"monthly_saving_needed"`
	MonthlyData         []MonthlyDatum `json:"monthly_data"`
}

// Evaluate judges goal against a projected trajectory.
//
// The extra monthly saving spreads the shortfall over the whole calendar
// months left between now and the target date, with a floor of one month,
// rounded up to whole units.
func Evaluate(goal core.Goal, traj Trajectory, now time.Time) Result {
	target := goal.TargetAmount.Units
	final := traj.Final()

	res := Result{
		GoalID:       goal.ID,
		FinalAmount:  final,
		IsAchievable: final >= target,
		Shortfall:    core.MaxZero(core.SaturatingSub(target, final)),
		MonthlyData:  make([]MonthlyDatum, 0, len(traj)),
	}
	if res.Shortfall > 0 {
		n := core.WholeMonthsBetween(now, goal.TargetDate.Time)
		if n < 1 {
			n = 1
		}
		res.MonthlySavingNeeded = core.CeilDiv(res.Shortfall, int64(n))
	}
	for _, p := range traj {
		res.MonthlyData = append(res.MonthlyData, MonthlyDatum{
			Date:            p.Month.String(),
			ProjectedAmount: p.Balance,
			TargetLine:      target,
		})
	}
	return res
}
