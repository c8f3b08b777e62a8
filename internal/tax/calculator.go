// Package tax computes statutory payroll deductions from versioned rate tables.
package tax

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Kind selects the income category being taxed.
type Kind string

const (
	Salary    Kind = "salary"
	Financial Kind = "financial"
)

// ParseKind validates a kind received from a caller.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Salary, Financial:
		return k, nil
	}
	return "", fmt.Errorf("unsupported tax type %q", s)
}

// Deductions itemizes the amounts withheld from gross pay. HealthInsurance
// covers social insurance: the health premium, the long-term-care surcharge
// and employment insurance. IncomeTax includes the local income tax.
// Breakdown.Details carries the split.
type Deductions struct {
	NationalPension int64 `json:"national_pension"`
	HealthInsurance int64 `json:"health_insurance"`
	IncomeTax       int64 `json:"income_tax"`
	TotalDeduction  int64 `json:"total_deduction"`
}

// Breakdown is the result of a deduction calculation.
type Breakdown struct {
	GrossAmount int64             `json:"gross_amount"`
	NetAmount   int64             `json:"net_amount"`
	Deductions  Deductions        `json:"deductions"`
	Details     map[string]string `json:"details"`
}

const estimateNote = "estimate based on the simplified withholding table; actual withholding may differ"

// Calculate computes the deductions for gross pay of the given kind. It never
// fails: gross <= 0 yields all zeros, negative dependents count as zero and
// the total is capped at gross. Unknown kinds are treated as salary.
func Calculate(t Table, kind Kind, gross int64, dependents int) Breakdown {
	b := Breakdown{
		GrossAmount: gross,
		Details:     map[string]string{"table_version": t.Version, "kind": string(Salary)},
	}
	if gross <= 0 {
		b.GrossAmount = 0
		if kind == Financial {
			b.Details["kind"] = string(Financial)
		}
		return b
	}

	var d Deductions
	switch kind {
	case Financial:
		b.Details["kind"] = string(Financial)
		d.IncomeTax = financialTax(t, gross, b.Details)
	default:
		d.NationalPension = pension(t, gross, b.Details)
		d.HealthInsurance = health(t, gross, b.Details) + employment(t, gross, b.Details)
		d.IncomeTax = incomeTax(t, gross, dependents, b.Details)
		b.Details["note"] = estimateNote
	}

	capToGross(&d, gross, b.Details)
	d.TotalDeduction = d.NationalPension + d.HealthInsurance + d.IncomeTax
	b.Deductions = d
	b.NetAmount = gross - d.TotalDeduction
	return b
}

func (t Table) truncate(v decimal.Decimal) int64 {
	if !v.IsPositive() {
		return 0
	}
	unit := decimal.NewFromInt(t.TruncationUnit)
	return v.Div(unit).Truncate(0).Mul(unit).IntPart()
}

func percent(r decimal.Decimal) string {
	return r.Mul(decimal.NewFromInt(100)).String() + "%"
}

func pension(t Table, gross int64, details map[string]string) int64 {
	c := t.NationalPension
	details["national_pension_rate"] = percent(c.Rate)
	return t.truncate(decimal.NewFromInt(c.Base(gross)).Mul(c.Rate))
}

func health(t Table, gross int64, details map[string]string) int64 {
	h := t.HealthInsurance
	premium := t.truncate(decimal.NewFromInt(h.Base(gross)).Mul(h.Rate))
	ltc := t.truncate(decimal.NewFromInt(premium).Mul(h.LongTermCareRate))
	details["health_insurance_rate"] = percent(h.Rate)
	details["health_insurance_premium"] = fmt.Sprint(premium)
	details["long_term_care"] = fmt.Sprint(ltc)
	return premium + ltc
}

func employment(t Table, gross int64, details map[string]string) int64 {
	c := t.EmploymentInsurance
	premium := t.truncate(decimal.NewFromInt(c.Base(gross)).Mul(c.Rate))
	details["employment_insurance_rate"] = percent(c.Rate)
	details["employment_insurance"] = fmt.Sprint(premium)
	return premium
}

// maxAnnualized is the largest monthly gross whose annual figure fits in
// int64. Income tax on larger amounts is computed as if earned at this level.
const maxAnnualized = math.MaxInt64 / 12

// dependentRelief returns the annual dependent deduction, saturated at annual.
func dependentRelief(t Table, annual int64, dependents int) int64 {
	if dependents <= 0 || t.DependentDeduction <= 0 {
		return 0
	}
	if int64(dependents) > annual/t.DependentDeduction {
		return annual
	}
	return t.DependentDeduction * int64(dependents)
}

func incomeTax(t Table, gross int64, dependents int, details map[string]string) int64 {
	annual := min(gross, maxAnnualized) * 12
	earned := t.EarnedIncomeDeduction.Apply(annual).IntPart()
	base := annual - earned - dependentRelief(t, annual, dependents)
	if base < 0 {
		base = 0
	}
	annualTax := t.IncomeTaxBrackets.Apply(base)
	national := t.truncate(annualTax.Div(decimal.NewFromInt(12)))
	local := t.truncate(decimal.NewFromInt(national).Mul(t.LocalTaxRate))

	details["taxable_base_annual"] = fmt.Sprint(base)
	details["income_tax_rate"] = percent(t.IncomeTaxBrackets.RateOf(base))
	details["national_income_tax"] = fmt.Sprint(national)
	details["local_income_tax"] = fmt.Sprint(local)
	return national + local
}

func financialTax(t Table, gross int64, details map[string]string) int64 {
	national := t.truncate(decimal.NewFromInt(gross).Mul(t.FinancialIncomeRate))
	local := t.truncate(decimal.NewFromInt(national).Mul(t.LocalTaxRate))
	effective := t.FinancialIncomeRate.Mul(decimal.NewFromInt(1).Add(t.LocalTaxRate))

	details["rate"] = fmt.Sprintf("%s (income tax %s + local tax %s)",
		percent(effective), percent(t.FinancialIncomeRate), percent(t.FinancialIncomeRate.Mul(t.LocalTaxRate)))
	details["national_income_tax"] = fmt.Sprint(national)
	details["local_income_tax"] = fmt.Sprint(local)
	return national + local
}

// capToGross shrinks income tax, then health insurance, then pension until
// the total no longer exceeds gross.
func capToGross(d *Deductions, gross int64, details map[string]string) {
	excess := d.NationalPension + d.HealthInsurance + d.IncomeTax - gross
	if excess <= 0 {
		return
	}
	details["capped"] = "deductions reduced to gross amount"
	for _, v := range []*int64{&d.IncomeTax, &d.HealthInsurance, &d.NationalPension} {
		cut := min(excess, *v)
		*v -= cut
		excess -= cut
		if excess == 0 {
			return
		}
	}
}
