package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// AddCategory creates a category for the user. A category with the same name,
// live or soft-deleted, yields common.ErrDuplicateEntry and is left unchanged.
func (s *SQLiteStorage) AddCategory(ctx context.Context, userID, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateCategoryType(categoryType); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, user_id, type, deleted)
		VALUES (?, ?, ?, 0)`,
		name, userID, string(categoryType))
	if err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", name, translateError(err))
	}

	slog.Info("created new category", "user", userID, "name", name, "type", categoryType)
	return &model.Category{
		Name:   name,
		UserID: userID,
		Type:   categoryType,
	}, nil
}

// GetCategory returns the user's live category with the given name, or nil
// if it does not exist or has been deleted.
func (s *SQLiteStorage) GetCategory(ctx context.Context, userID, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return getCategoryTx(ctx, s.db, userID, name)
}

func getCategoryTx(ctx context.Context, q queryable, userID, name string) (*model.Category, error) {
	var cat model.Category
	var categoryType string
	err := q.QueryRowContext(ctx, `
		SELECT name, user_id, type, deleted
		FROM categories
		WHERE user_id = ? AND name = ? AND deleted = 0`,
		userID, name).Scan(&cat.Name, &cat.UserID, &categoryType, &cat.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	cat.Type = model.CategoryType(categoryType)
	return &cat, nil
}

// ListCategories returns the user's live categories in insertion order.
func (s *SQLiteStorage) ListCategories(ctx context.Context, userID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, user_id, type, deleted
		FROM categories
		WHERE user_id = ? AND deleted = 0
		ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var categoryType string
		if err := rows.Scan(&cat.Name, &cat.UserID, &categoryType, &cat.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Type = model.CategoryType(categoryType)
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "user", userID, "count", len(categories))
	return categories, nil
}

// SoftDeleteCategory marks the category deleted. Existing transactions keep
// referencing it but drop out of listings and summaries. Deleting a category
// that is already deleted succeeds without change. It returns
// common.ErrNotFound when the user has no category by that name, and
// common.ErrIntegrityViolation when the delete guard is enabled and the
// category still has transactions.
func (s *SQLiteStorage) SoftDeleteCategory(ctx context.Context, userID, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var deleted bool
		err := tx.QueryRowContext(ctx, `
			SELECT COALESCE(deleted, 0) FROM categories
			WHERE user_id = ? AND name = ?`,
			userID, name).Scan(&deleted)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("category %q: %w", name, common.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to query category: %w", err)
		}
		if deleted {
			slog.Debug("category already deleted", "user", userID, "name", name)
			return nil
		}

		if s.guardDeletes {
			count, err := countTransactionsByCategoryTx(ctx, tx, userID, name)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: category %q has %d transactions", common.ErrIntegrityViolation, name, count)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE categories SET deleted = 1
			WHERE user_id = ? AND name = ?`,
			userID, name); err != nil {
			return fmt.Errorf("failed to delete category %q: %w", name, translateError(err))
		}

		slog.Info("soft-deleted category", "user", userID, "name", name)
		return nil
	})
}
