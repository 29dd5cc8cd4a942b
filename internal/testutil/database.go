// Package testutil provides test helpers for working with a seeded ledger database.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
)

// TestDB is a migrated ledger database scoped to a single test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Path    string
	t       *testing.T
}

// BasicCategories is the category set most tests start from.
var BasicCategories = []model.Category{
	{Name: "Salary", Type: model.CategoryTypeIncome},
	{Name: "Groceries", Type: model.CategoryTypeExpense},
	{Name: "Rent", Type: model.CategoryTypeExpense},
}

// SetupTestDB creates a migrated database in a temp directory. It is closed
// automatically when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.CreateUser("alice", "hash")
//	db.AddCategories("alice", testutil.BasicCategories...)
func SetupTestDB(t *testing.T, opts ...storage.Option) *TestDB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	store, err := storage.NewSQLiteStorage(dbPath, opts...)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		Path:    dbPath,
		t:       t,
	}
}

// CreateUser inserts a user row directly with the given hash.
func (db *TestDB) CreateUser(username, passwordHash string) {
	db.t.Helper()
	if err := db.Storage.CreateUser(context.Background(), username, passwordHash); err != nil {
		db.t.Fatalf("failed to seed user %q: %v", username, err)
	}
}

// AddCategories seeds categories for the user.
func (db *TestDB) AddCategories(userID string, cats ...model.Category) {
	db.t.Helper()
	for _, cat := range cats {
		if _, err := db.Storage.AddCategory(context.Background(), userID, cat.Name, cat.Type); err != nil {
			db.t.Fatalf("failed to seed category %q: %v", cat.Name, err)
		}
	}
}

// Date parses a YYYY-MM-DD date or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", s, err)
	}
	return d
}
