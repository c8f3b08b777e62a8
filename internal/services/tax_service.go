package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/tax"
)

// ErrInvalidTaxType is returned for an unsupported income kind.
var ErrInvalidTaxType = errors.New("invalid tax type")

// TaxService computes payroll deductions against one loaded rate table.
type TaxService struct {
	table tax.Table
}

func NewTaxService(table tax.Table) *TaxService {
	return &TaxService{table: table}
}

// TableVersion returns the version of the loaded table.
func (s *TaxService) TableVersion() string {
	return s.table.Version
}

// Calculate parses kind and computes the breakdown. Only the kind can fail;
// amounts and dependents are clamped by the calculator.
func (s *TaxService) Calculate(ctx context.Context, kind string, gross int64, dependents int) (tax.Breakdown, error) {
	k, err := tax.ParseKind(kind)
	if err != nil {
		return tax.Breakdown{}, fmt.Errorf("%w: %v", ErrInvalidTaxType, err)
	}
	b := tax.Calculate(s.table, k, gross, dependents)
	slog.DebugContext(ctx, "Tax calculated",
		"tax_kind", k,
		"tax_table", s.table.Version,
		"gross", gross,
		"total_deduction", b.Deductions.TotalDeduction)
	return b, nil
}
