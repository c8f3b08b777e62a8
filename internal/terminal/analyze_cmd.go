package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/forecast"
)

// planFile is the on-disk description of one goal and the recurring
// transactions that feed it. Amounts are whole currency units.
type planFile struct {
	Goal struct {
		Title         string `json:"title"`
		TargetAmount  int64  `json:"target_amount"`
		TargetDate    string `json:"target_date"`
		CurrentAmount int64  `json:"current_amount"`
	} `json:"goal"`
	Recurring []struct {
		Description string `json:"description"`
		Amount      int64  `json:"amount"`
		Category    string `json:"category"`
		Type        string `json:"type"`
		Frequency   string `json:"frequency"`
		DayOfMonth  int    `json:"day_of_month"`
		StartDate   string `json:"start_date"`
		EndDate     string `json:"end_date"`
	} `json:"recurring"`
}

type AnalyzeCmd struct {
	planPath string
	asOf     string
	format   string
	now      func() time.Time
	reporter *Reporter
}

func NewAnalyzeCmd(reporter *Reporter, now func() time.Time) *cobra.Command {
	ac := &AnalyzeCmd{reporter: reporter, now: now}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Project a savings goal against recurring income and expenses",
		Args:  cobra.NoArgs,
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.planPath, "plan", "", "Path to a plan JSON file (- for stdin)")
	cmd.Flags().StringVar(&ac.asOf, "as-of", "", "Projection start date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&ac.format, "format", FormatText, "Output format (text or json)")

	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	if err := validFormat(ac.format); err != nil {
		return err
	}

	now := ac.now()
	if ac.asOf != "" {
		d, err := core.ParseDate(ac.asOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}
		now = d.Time
	}

	var r io.Reader = cmd.InOrStdin()
	if ac.planPath != "-" {
		f, err := os.Open(ac.planPath)
		if err != nil {
			return fmt.Errorf("open plan: %w", err)
		}
		defer f.Close()
		r = f
	}

	goal, txs, err := readPlan(r)
	if err != nil {
		return err
	}

	res := forecast.Analyze(goal, txs, now)
	return ac.reporter.Analysis(goal, res, ac.format)
}

// readPlan decodes and validates a plan.
func readPlan(r io.Reader) (core.Goal, []core.RecurringTransaction, error) {
	var p planFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return core.Goal{}, nil, fmt.Errorf("decode plan: %w", err)
	}

	goal := core.Goal{
		Title:         p.Goal.Title,
		TargetAmount:  core.Money{Units: p.Goal.TargetAmount},
		CurrentAmount: core.Money{Units: p.Goal.CurrentAmount},
	}
	if p.Goal.TargetDate != "" {
		d, err := core.ParseDate(p.Goal.TargetDate)
		if err != nil {
			return core.Goal{}, nil, fmt.Errorf("goal: %w", err)
		}
		goal.TargetDate = d
	}
	if err := goal.Validate(); err != nil {
		return core.Goal{}, nil, fmt.Errorf("goal: %w", err)
	}

	txs := make([]core.RecurringTransaction, 0, len(p.Recurring))
	for i, in := range p.Recurring {
		rt := core.RecurringTransaction{
			ID:          int64(i + 1),
			Description: in.Description,
			Amount:      core.Money{Units: in.Amount},
			Category:    in.Category,
			Type:        core.TransactionType(in.Type),
			Frequency:   core.Frequency(in.Frequency),
			DayOfMonth:  in.DayOfMonth,
		}
		if rt.Frequency == "" {
			rt.Frequency = core.Monthly
		}
		var err error
		if in.StartDate != "" {
			if rt.StartDate, err = core.ParseDate(in.StartDate); err != nil {
				return core.Goal{}, nil, fmt.Errorf("recurring[%d]: %w", i, err)
			}
		}
		if in.EndDate != "" {
			if rt.EndDate, err = core.ParseDate(in.EndDate); err != nil {
				return core.Goal{}, nil, fmt.Errorf("recurring[%d]: %w", i, err)
			}
		}
		if err := rt.Validate(); err != nil {
			return core.Goal{}, nil, fmt.Errorf("recurring[%d] %q: %w", i, in.Description, err)
		}
		txs = append(txs, rt)
	}
	return goal, txs, nil
}
