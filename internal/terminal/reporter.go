package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/forecast"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/tax"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Reporter renders command results as aligned text or JSON.
type Reporter struct {
	out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func validFormat(format string) error {
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("unsupported output format %q (use %s or %s)", format, FormatText, FormatJSON)
	}
	return nil
}

func (r *Reporter) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Breakdown prints a payroll deduction breakdown.
func (r *Reporter) Breakdown(b tax.Breakdown, format string) error {
	if format == FormatJSON {
		return r.writeJSON(b)
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	rows := []struct {
		label string
		v     int64
	}{
		{"Gross", b.GrossAmount},
		{"National pension", b.Deductions.NationalPension},
		{"Social insurance", b.Deductions.HealthInsurance},
		{"Income tax", b.Deductions.IncomeTax},
		{"Total deduction", b.Deductions.TotalDeduction},
		{"Net", b.NetAmount},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t\n", row.label, core.FormatUnits(row.v))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	keys := make([]string, 0, len(b.Details))
	for k := range b.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(r.out)
	for _, k := range keys {
		fmt.Fprintf(r.out, "%s: %s\n", k, b.Details[k])
	}
	return nil
}

// Analysis prints a goal verdict followed by its monthly trajectory.
func (r *Reporter) Analysis(goal core.Goal, res forecast.Result, format string) error {
	if format == FormatJSON {
		return r.writeJSON(res)
	}

	verdict := "achievable"
	if !res.IsAchievable {
		verdict = "not achievable"
	}
	fmt.Fprintf(r.out, "Goal %q: %s by %s\n", goal.Title, verdict, goal.TargetDate)
	fmt.Fprintf(r.out, "Projected: %s of %s\n", core.FormatUnits(res.FinalAmount), goal.TargetAmount.Format())
	if res.Shortfall > 0 {
		fmt.Fprintf(r.out, "Shortfall: %s (save %s more per month)\n",
			core.FormatUnits(res.Shortfall), core.FormatUnits(res.MonthlySavingNeeded))
	}
	fmt.Fprintln(r.out)

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tPROJECTED\tTARGET\t")
	for _, d := range res.MonthlyData {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", d.Date, core.FormatUnits(d.ProjectedAmount), core.FormatUnits(d.TargetLine))
	}
	return tw.Flush()
}
