package tax

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed tables/*.json
var tablesFS embed.FS

// DefaultVersion names the table compiled into the binary.
const DefaultVersion = "kr-2024"

// Bracket is one band of a marginal schedule. UpTo is the inclusive upper
// bound of the band; 0 marks the open-ended top band.
type Bracket struct {
	UpTo int64           `json:"up_to,omitempty"`
	Rate decimal.Decimal `json:"rate"`
}

// Schedule is a marginal-rate schedule: each band's rate applies only to the
// part of the amount falling inside it.
type Schedule []Bracket

// Apply returns the schedule's marginal total for amount.
func (s Schedule) Apply(amount int64) decimal.Decimal {
	total := decimal.Zero
	if amount <= 0 {
		return total
	}
	var lower int64
	for _, b := range s {
		upper := b.UpTo
		if upper == 0 || upper > amount {
			upper = amount
		}
		if upper > lower {
			total = total.Add(decimal.NewFromInt(upper - lower).Mul(b.Rate))
		}
		if b.UpTo == 0 || b.UpTo >= amount {
			break
		}
		lower = b.UpTo
	}
	return total
}

// RateOf returns the marginal rate applied to the last unit of amount.
func (s Schedule) RateOf(amount int64) decimal.Decimal {
	for _, b := range s {
		if b.UpTo == 0 || amount <= b.UpTo {
			return b.Rate
		}
	}
	return decimal.Zero
}

func (s Schedule) validate(name string) error {
	if len(s) == 0 {
		return fmt.Errorf("%s: no brackets", name)
	}
	var prev int64
	for i, b := range s {
		if err := validRate(b.Rate); err != nil {
			return fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		last := i == len(s)-1
		switch {
		case last && b.UpTo != 0:
			return fmt.Errorf("%s: top bracket must be open-ended", name)
		case !last && b.UpTo <= prev:
			return fmt.Errorf("%s[%d]: bounds must increase", name, i)
		}
		prev = b.UpTo
	}
	return nil
}

// Contribution is a social-insurance rate applied to a clamped monthly base.
type Contribution struct {
	Rate        decimal.Decimal `json:"rate"`
	BaseFloor   int64           `json:"base_floor"`
	BaseCeiling int64           `json:"base_ceiling"`
}

// Base clamps gross pay into [BaseFloor, BaseCeiling]. A zero ceiling means
// no ceiling.
func (c Contribution) Base(gross int64) int64 {
	base := gross
	if base < c.BaseFloor {
		base = c.BaseFloor
	}
	if c.BaseCeiling > 0 && base > c.BaseCeiling {
		base = c.BaseCeiling
	}
	return base
}

// Health is the health-insurance contribution plus the long-term-care
// surcharge levied as a share of the health premium.
type Health struct {
	Contribution
	LongTermCareRate decimal.Decimal `json:"long_term_care_rate"`
}

// Table is a versioned set of statutory rates. Tables are values: load one
// at startup and pass it to Calculate.
type Table struct {
	Version               string          `json:"version"`
	Currency              string          `json:"currency"`
	TruncationUnit        int64           `json:"truncation_unit"`
	NationalPension       Contribution    `json:"national_pension"`
	HealthInsurance       Health          `json:"health_insurance"`
	EmploymentInsurance   Contribution    `json:"employment_insurance"`
	EarnedIncomeDeduction Schedule        `json:"earned_income_deduction"`
	DependentDeduction    int64           `json:"dependent_deduction"`
	IncomeTaxBrackets     Schedule        `json:"income_tax_brackets"`
	LocalTaxRate          decimal.Decimal `json:"local_tax_rate"`
	FinancialIncomeRate   decimal.Decimal `json:"financial_income_rate"`
}

var errRateRange = errors.New("rate must be between 0 and 1")

func validRate(r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
		return errRateRange
	}
	return nil
}

// Validate checks that the table is internally consistent.
func (t Table) Validate() error {
	var errs []string
	if strings.TrimSpace(t.Version) == "" {
		errs = append(errs, "version is required")
	}
	if t.TruncationUnit < 1 {
		errs = append(errs, "truncation_unit must be at least 1")
	}
	if t.DependentDeduction < 0 {
		errs = append(errs, "dependent_deduction cannot be negative")
	}
	for name, c := range map[string]Contribution{
		"national_pension":     t.NationalPension,
		"health_insurance":     t.HealthInsurance.Contribution,
		"employment_insurance": t.EmploymentInsurance,
	} {
		if err := validRate(c.Rate); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
		if c.BaseFloor < 0 || (c.BaseCeiling > 0 && c.BaseCeiling < c.BaseFloor) {
			errs = append(errs, fmt.Sprintf("%s: invalid base range", name))
		}
	}
	for name, r := range map[string]decimal.Decimal{
		"long_term_care_rate":   t.HealthInsurance.LongTermCareRate,
		"local_tax_rate":        t.LocalTaxRate,
		"financial_income_rate": t.FinancialIncomeRate,
	} {
		if err := validRate(r); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if err := t.EarnedIncomeDeduction.validate("earned_income_deduction"); err != nil {
		errs = append(errs, err.Error())
	}
	if err := t.IncomeTaxBrackets.validate("income_tax_brackets"); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid tax table: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ParseTable decodes and validates a JSON table.
func ParseTable(r io.Reader) (Table, error) {
	var t Table
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return Table{}, fmt.Errorf("decode tax table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// LoadTable reads a table from a JSON file. An empty path yields the
// embedded default.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return EmbeddedTable(DefaultVersion)
	}
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open tax table: %w", err)
	}
	defer f.Close()
	return ParseTable(f)
}

// EmbeddedTable returns a table compiled into the binary by version.
func EmbeddedTable(version string) (Table, error) {
	data, err := tablesFS.ReadFile("tables/" + version + ".json")
	if err != nil {
		return Table{}, fmt.Errorf("unknown tax table %q: %w", version, err)
	}
	return ParseTable(bytes.NewReader(data))
}

// DefaultTable returns the embedded default table. It panics if the embedded
// file is invalid, which the package tests rule out.
func DefaultTable() Table {
	t, err := EmbeddedTable(DefaultVersion)
	if err != nil {
		panic(err)
	}
	return t
}
