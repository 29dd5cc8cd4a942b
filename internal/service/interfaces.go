// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// UserStore persists account records. Password hashing happens above it.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) error
	GetUser(ctx context.Context, username string) (*model.User, error)
}

// CategoryLedger manages a user's categories.
type CategoryLedger interface {
	AddCategory(ctx context.Context, userID, name string, categoryType model.CategoryType) (*model.Category, error)
	GetCategory(ctx context.Context, userID, name string) (*model.Category, error)
	ListCategories(ctx context.Context, userID string) ([]model.Category, error)
	SoftDeleteCategory(ctx context.Context, userID, name string) error
}

// TransactionLedger manages a user's transactions.
type TransactionLedger interface {
	AddTransaction(ctx context.Context, userID, categoryName string, amount float64, date time.Time, description string) (*model.Transaction, error)
	AddTransactions(ctx context.Context, userID string, transactions []model.Transaction) (int, error)
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	CountTransactionsByCategory(ctx context.Context, userID, categoryName string) (int, error)
}

// SummaryEngine aggregates transactions over a date window.
type SummaryEngine interface {
	Summarize(ctx context.Context, userID string, start, end time.Time) (model.Summary, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	UserStore
	CategoryLedger
	TransactionLedger
	SummaryEngine

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}
