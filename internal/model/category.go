package model

import (
	"fmt"
	"strings"
)

// CategoryType indicates whether a category holds income or expense entries.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "Income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "Expense"
)

// ParseCategoryType converts user input into a CategoryType.
// Matching is case-insensitive so "income" and "Income" are equivalent.
func ParseCategoryType(s string) (CategoryType, error) {
	switch {
	case equalFold(s, string(CategoryTypeIncome)):
		return CategoryTypeIncome, nil
	case equalFold(s, string(CategoryTypeExpense)):
		return CategoryTypeExpense, nil
	default:
		return "", fmt.Errorf("invalid category type %q: must be %s or %s", s, CategoryTypeIncome, CategoryTypeExpense)
	}
}

// IsValid reports whether the type is one the schema accepts.
func (t CategoryType) IsValid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category is a named bucket of transactions owned by a single user.
// Name and UserID together identify a category.
type Category struct {
	Name    string
	UserID  string
	Type    CategoryType
	Deleted bool
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
