package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Summarize totals the user's income and expenses dated within [start, end],
// inclusive. Transactions under soft-deleted categories are left out, the
// same as ListTransactions.
func (s *SQLiteStorage) Summarize(ctx context.Context, userID string, start, end time.Time) (model.Summary, error) {
	if err := validateContext(ctx); err != nil {
		return model.Summary{}, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return model.Summary{}, err
	}
	if err := validateDateRange(start, end); err != nil {
		return model.Summary{}, err
	}

	summary := model.Summary{Start: start, End: end}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN c.type = 'Income' THEN t.amount END), 0),
			COALESCE(SUM(CASE WHEN c.type = 'Expense' THEN t.amount END), 0),
			COUNT(t.id)
		FROM transactions t
		JOIN categories c ON t.category_name = c.name AND t.user_id = c.user_id
		WHERE t.user_id = ? AND c.deleted = 0 AND t.date BETWEEN ? AND ?`,
		userID, model.FormatDate(start), model.FormatDate(end),
	).Scan(&summary.TotalIncome, &summary.TotalExpense, &summary.Count)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to query summary: %w", err)
	}

	summary.NetBalance = summary.TotalIncome - summary.TotalExpense

	slog.Debug("computed summary",
		"user", userID,
		"start", model.FormatDate(start),
		"end", model.FormatDate(end),
		"transactions", summary.Count)
	return summary, nil
}
