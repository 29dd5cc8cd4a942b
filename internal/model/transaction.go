package model

import "time"

// DateLayout is the ISO calendar date format used for stored transaction dates.
const DateLayout = "2006-01-02"

// Transaction is a dated monetary entry attributed to a category.
type Transaction struct {
	Date         time.Time
	UserID       string
	CategoryName string
	Description  string
	// CategoryType is filled from the joined category on reads.
	CategoryType CategoryType
	ID           int64
	Amount       float64 // Always a positive magnitude
}

// SignedAmount returns the amount with the sign implied by its category type.
// Expenses are negative.
func (t Transaction) SignedAmount() float64 {
	if t.CategoryType == CategoryTypeExpense {
		return -t.Amount
	}
	return t.Amount
}

// Sign returns "+" for income and "-" for expense entries.
func (t Transaction) Sign() string {
	if t.CategoryType == CategoryTypeIncome {
		return "+"
	}
	return "-"
}

// FormatDate renders a date in DateLayout.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// ParseDate parses a DateLayout date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
