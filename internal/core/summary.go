package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// CashFlow is the recurring income and expense total for one calendar month.
type CashFlow struct {
	Month      Month
	Income     Money
	Expense    Money
	ByCategory []CategoryAmount // expense categories, largest first
}

// Net returns income minus expense; negative when spending exceeds income.
func (c CashFlow) Net() int64 {
	return c.Income.Units - c.Expense.Units
}
