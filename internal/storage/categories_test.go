package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func TestAddCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("listed exactly once and not deleted", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")

		cat, err := store.AddCategory(ctx, "alice", "Groceries", model.CategoryTypeExpense)
		require.NoError(t, err)
		assert.Equal(t, "Groceries", cat.Name)
		assert.Equal(t, model.CategoryTypeExpense, cat.Type)
		assert.False(t, cat.Deleted)

		categories, err := store.ListCategories(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, model.Category{Name: "Groceries", UserID: "alice", Type: model.CategoryTypeExpense}, categories[0])
	})

	t.Run("duplicate keeps original type", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")

		_, err := store.AddCategory(ctx, "alice", "Consulting", model.CategoryTypeIncome)
		require.NoError(t, err)

		_, err = store.AddCategory(ctx, "alice", "Consulting", model.CategoryTypeExpense)
		require.ErrorIs(t, err, common.ErrDuplicateEntry)

		cat, err := store.GetCategory(ctx, "alice", "Consulting")
		require.NoError(t, err)
		require.NotNil(t, cat)
		assert.Equal(t, model.CategoryTypeIncome, cat.Type)
	})

	t.Run("same name for different users", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")
		createTestUser(t, store, "bob")

		_, err := store.AddCategory(ctx, "alice", "Rent", model.CategoryTypeExpense)
		require.NoError(t, err)
		_, err = store.AddCategory(ctx, "bob", "Rent", model.CategoryTypeIncome)
		require.NoError(t, err)

		bobs, err := store.ListCategories(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, bobs, 1)
		assert.Equal(t, model.CategoryTypeIncome, bobs[0].Type)
	})

	t.Run("re-adding a deleted name is a duplicate", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")

		_, err := store.AddCategory(ctx, "alice", "Gym", model.CategoryTypeExpense)
		require.NoError(t, err)
		require.NoError(t, store.SoftDeleteCategory(ctx, "alice", "Gym"))

		_, err = store.AddCategory(ctx, "alice", "Gym", model.CategoryTypeExpense)
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	})

	t.Run("unknown user violates integrity", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.AddCategory(ctx, "nobody", "Food", model.CategoryTypeExpense)
		assert.ErrorIs(t, err, common.ErrIntegrityViolation)
	})

	t.Run("invalid input", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")

		_, err := store.AddCategory(ctx, "alice", "", model.CategoryTypeExpense)
		assert.ErrorIs(t, err, ErrEmptyString)

		_, err = store.AddCategory(ctx, "alice", "Transfer", model.CategoryType("System"))
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestListCategories_InsertionOrder(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	createTestUser(t, store, "alice")

	names := []string{"Utilities", "Bonus", "Coffee", "Apartment"}
	for _, name := range names {
		_, err := store.AddCategory(ctx, "alice", name, model.CategoryTypeExpense)
		require.NoError(t, err)
	}

	categories, err := store.ListCategories(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, categories, len(names))
	for i, cat := range categories {
		assert.Equal(t, names[i], cat.Name)
	}

	empty, err := store.ListCategories(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSoftDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("hides category and its transactions", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")

		_, err := store.AddCategory(ctx, "alice", "Dining", model.CategoryTypeExpense)
		require.NoError(t, err)
		_, err = store.AddCategory(ctx, "alice", "Salary", model.CategoryTypeIncome)
		require.NoError(t, err)
		_, err = store.AddTransaction(ctx, "alice", "Dining", 42.5, mustDate(t, "2024-03-01"), "dinner")
		require.NoError(t, err)
		_, err = store.AddTransaction(ctx, "alice", "Salary", 3000, mustDate(t, "2024-03-01"), "")
		require.NoError(t, err)

		require.NoError(t, store.SoftDeleteCategory(ctx, "alice", "Dining"))

		categories, err := store.ListCategories(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, "Salary", categories[0].Name)

		txns, err := store.ListTransactions(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, "Salary", txns[0].CategoryName)

		// The row and its transactions are still there.
		count, err := store.CountTransactionsByCategory(ctx, "alice", "Dining")
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		cat, err := store.GetCategory(ctx, "alice", "Dining")
		require.NoError(t, err)
		assert.Nil(t, cat)
	})

	t.Run("missing category", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")

		err := store.SoftDeleteCategory(ctx, "alice", "Nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("deleting twice", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")

		_, err := store.AddCategory(ctx, "alice", "Gym", model.CategoryTypeExpense)
		require.NoError(t, err)
		require.NoError(t, store.SoftDeleteCategory(ctx, "alice", "Gym"))
		assert.NoError(t, store.SoftDeleteCategory(ctx, "alice", "Gym"))

		categories, err := store.ListCategories(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("deleting twice skips the guard", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()
		createTestUser(t, store, "alice")

		_, err := store.AddCategory(ctx, "alice", "Dining", model.CategoryTypeExpense)
		require.NoError(t, err)
		_, err = store.AddTransaction(ctx, "alice", "Dining", 12, mustDate(t, "2024-03-01"), "")
		require.NoError(t, err)
		require.NoError(t, store.SoftDeleteCategory(ctx, "alice", "Dining"))

		store.guardDeletes = true
		assert.NoError(t, store.SoftDeleteCategory(ctx, "alice", "Dining"))
	})

	t.Run("guard blocks categories with transactions", func(t *testing.T) {
		store, cleanup := createTestStorage(t, WithDeleteGuard(true))
		defer cleanup()
		createTestUser(t, store, "alice")

		_, err := store.AddCategory(ctx, "alice", "Dining", model.CategoryTypeExpense)
		require.NoError(t, err)
		_, err = store.AddCategory(ctx, "alice", "Unused", model.CategoryTypeExpense)
		require.NoError(t, err)
		_, err = store.AddTransaction(ctx, "alice", "Dining", 12, mustDate(t, "2024-03-01"), "")
		require.NoError(t, err)

		err = store.SoftDeleteCategory(ctx, "alice", "Dining")
		require.ErrorIs(t, err, common.ErrIntegrityViolation)

		cat, err := store.GetCategory(ctx, "alice", "Dining")
		require.NoError(t, err)
		assert.NotNil(t, cat, "guarded category must remain live")

		assert.NoError(t, store.SoftDeleteCategory(ctx, "alice", "Unused"))
	})
}
