package model

import "time"

// Summary aggregates income and expense totals over an inclusive date window.
type Summary struct {
	Start        time.Time
	End          time.Time
	TotalIncome  float64
	TotalExpense float64
	NetBalance   float64
	Count        int
}
