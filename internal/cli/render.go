package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// FormatAmount renders a transaction's amount with the sign implied by its
// category type, colored for income or expense.
func FormatAmount(txn model.Transaction) string {
	text := fmt.Sprintf("%s%.2f", txn.Sign(), txn.Amount)
	if txn.CategoryType == model.CategoryTypeIncome {
		return IncomeStyle.Render(text)
	}
	return ExpenseStyle.Render(text)
}

// FormatBalance renders a signed balance.
func FormatBalance(balance float64) string {
	if balance < 0 {
		return ExpenseStyle.Render(fmt.Sprintf("%.2f", balance))
	}
	return IncomeStyle.Render(fmt.Sprintf("%.2f", balance))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#333"))).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// RenderCategories renders the user's live categories as a table.
func RenderCategories(categories []model.Category) string {
	if len(categories) == 0 {
		return FormatInfo("No categories yet. Add one with: ledger categories add <name> --type income|expense")
	}

	t := newTable("Name", "Type")
	for _, c := range categories {
		t.Row(c.Name, string(c.Type))
	}
	return t.Render()
}

// RenderTransactions renders transactions newest first as they are given.
func RenderTransactions(transactions []model.Transaction) string {
	if len(transactions) == 0 {
		return FormatInfo("No transactions recorded.")
	}

	t := newTable("ID", "Date", "Category", "Amount", "Description")
	for _, txn := range transactions {
		t.Row(
			fmt.Sprintf("%d", txn.ID),
			model.FormatDate(txn.Date),
			txn.CategoryName,
			FormatAmount(txn),
			txn.Description,
		)
	}
	return t.Render()
}

// RenderSummary renders the totals for a summary window in a box.
func RenderSummary(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Period:        %s to %s\n", model.FormatDate(s.Start), model.FormatDate(s.End))
	fmt.Fprintf(&b, "Transactions:  %d\n", s.Count)
	fmt.Fprintf(&b, "Total income:  %s\n", IncomeStyle.Render(fmt.Sprintf("%.2f", s.TotalIncome)))
	fmt.Fprintf(&b, "Total expense: %s\n", ExpenseStyle.Render(fmt.Sprintf("%.2f", s.TotalExpense)))
	fmt.Fprintf(&b, "Net balance:   %s", FormatBalance(s.NetBalance))

	return RenderBox(ChartIcon+" Summary", b.String())
}
