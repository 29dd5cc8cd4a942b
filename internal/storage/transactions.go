package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// AddTransaction records an entry against one of the user's live categories.
// The amount is stored as a positive magnitude; direction comes from the
// category type at read time.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, userID, categoryName string, amount float64, date time.Time, description string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	txn := model.Transaction{
		UserID:       userID,
		CategoryName: categoryName,
		Amount:       amount,
		Date:         date,
		Description:  description,
	}
	if err := validateTransaction(&txn); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return insertTransactionTx(ctx, tx, &txn)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("recorded transaction",
		"user", userID,
		"id", txn.ID,
		"category", categoryName,
		"amount", amount,
		"date", model.FormatDate(date))
	return &txn, nil
}

// AddTransactions records a batch of entries for the user in a single
// database transaction. Either every entry is stored or none is. Assigned
// IDs and category types are written back into the slice.
func (s *SQLiteStorage) AddTransactions(ctx context.Context, userID string, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i := range transactions {
			transactions[i].UserID = userID
			if err := insertTransactionTx(ctx, tx, &transactions[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("recorded transactions", "user", userID, "count", len(transactions))
	return len(transactions), nil
}

func insertTransactionTx(ctx context.Context, tx *sql.Tx, txn *model.Transaction) error {
	cat, err := getCategoryTx(ctx, tx, txn.UserID, txn.CategoryName)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("category %q: %w", txn.CategoryName, common.ErrNotFound)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (user_id, category_name, amount, date, description)
		VALUES (?, ?, ?, ?, ?)`,
		txn.UserID,
		txn.CategoryName,
		txn.Amount,
		model.FormatDate(txn.Date),
		txn.Description,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", translateError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get transaction ID: %w", err)
	}

	txn.ID = id
	txn.CategoryType = cat.Type
	return nil
}

// ListTransactions returns the user's transactions whose category is still
// live, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.user_id, t.category_name, t.amount, t.date, COALESCE(t.description, ''), c.type
		FROM transactions t
		JOIN categories c ON t.category_name = c.name AND t.user_id = c.user_id
		WHERE t.user_id = ? AND c.deleted = 0
		ORDER BY t.date DESC, t.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// CountTransactionsByCategory returns how many transactions reference the
// category, whether or not it has been deleted.
func (s *SQLiteStorage) CountTransactionsByCategory(ctx context.Context, userID, categoryName string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return 0, err
	}
	if err := validateString(categoryName, "categoryName"); err != nil {
		return 0, err
	}
	return countTransactionsByCategoryTx(ctx, s.db, userID, categoryName)
}

func countTransactionsByCategoryTx(ctx context.Context, q queryable, userID, categoryName string) (int, error) {
	var count int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions
		WHERE user_id = ? AND category_name = ?`,
		userID, categoryName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction count by category: %w", err)
	}
	return count, nil
}

// scanTransactions reads joined transaction rows.
func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var date, categoryType string
		if err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.CategoryName,
			&txn.Amount,
			&date,
			&txn.Description,
			&categoryType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		parsed, err := model.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d has malformed date %q: %w", txn.ID, date, err)
		}
		txn.Date = parsed
		txn.CategoryType = model.CategoryType(categoryType)
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
