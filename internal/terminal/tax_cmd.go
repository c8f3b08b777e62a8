package terminal

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/services"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/tax"
)

type TaxCmd struct {
	amount     string
	kind       string
	dependents int
	tablePath  string
	format     string
	reporter   *Reporter
}

func NewTaxCmd(reporter *Reporter) *cobra.Command {
	tc := &TaxCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Estimate payroll deductions for a gross amount",
		Args:  cobra.NoArgs,
		RunE:  tc.run,
	}

	cmd.Flags().StringVar(&tc.amount, "amount", "", "Gross amount, e.g. 3000000 or 3,000,000")
	cmd.Flags().StringVar(&tc.kind, "type", string(tax.Salary), "Income type (salary or financial)")
	cmd.Flags().IntVar(&tc.dependents, "dependents", 1, "Number of dependents including the earner")
	cmd.Flags().StringVar(&tc.tablePath, "table", "", "Path to a tax table JSON file (default: embedded "+tax.DefaultVersion+")")
	cmd.Flags().StringVar(&tc.format, "format", FormatText, "Output format (text or json)")

	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func (tc *TaxCmd) run(cmd *cobra.Command, args []string) error {
	if err := validFormat(tc.format); err != nil {
		return err
	}
	gross, err := core.ParseAmount(tc.amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", tc.amount, err)
	}

	table, err := tax.LoadTable(tc.tablePath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := services.NewTaxService(table).Calculate(ctx, tc.kind, gross, tc.dependents)
	if err != nil {
		return err
	}
	return tc.reporter.Breakdown(b, tc.format)
}
