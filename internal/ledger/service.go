package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/budgetms/finance_tracker/customErrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MAX_DESCRIPTION_LENGTH   = 255
	MAX_CATEGORY_NAME_LENGTH = 255
	MAX_GOAL_NAME_LENGTH     = 255
)

type FinanceTracker struct {
	storage     Storage
	StorageType string
}

func NewFinanceTracker(s Storage) FinanceTracker {
	return FinanceTracker{
		storage:     s,
		StorageType: s.GetStorageType(),
	}
}

type Storage interface {
	GetCategoryByName(ctx context.Context, name string) (Category, error)
	SaveCategory(ctx context.Context, category Category) (Category, error)
	SaveTransaction(ctx context.Context, t Transaction) error
	UpdateTransaction(ctx context.Context, t Transaction) (int64, error)
	DeleteTransaction(ctx context.Context, id string) (int64, error)
	GetTransactions(ctx context.Context) ([]TransactionRecord, error)
	GetSummary(ctx context.Context, windowStart time.Time, windowEnd time.Time) (Summary, error)
	GetCategorySpend(ctx context.Context, windowStart time.Time, windowEnd time.Time) ([]CategorySpend, error)
	SaveGoal(ctx context.Context, goal SavingsGoal) error
	GetGoals(ctx context.Context) ([]SavingsGoal, error)
	UpdateGoalProgress(ctx context.Context, id string, currentAmount decimal.Decimal) (int64, error)
	GetStorageType() string
}

// resolveCategory returns the identifier of the category with the given name,
// creating it when no exact match exists. The storage layer enforces name
// uniqueness, so two concurrent creates for the same brand-new name collapse
// to a single row and SaveCategory hands back the winner.
func (ft *FinanceTracker) resolveCategory(ctx context.Context, name string) (string, error) {
	category, err := ft.storage.GetCategoryByName(ctx, name)
	if err == nil {
		return category.ID, nil
	}
	if !errors.Is(err, appErrors.ErrNotFound) {
		return "", fmt.Errorf("failed to look up category: %w", err)
	}

	created, err := ft.storage.SaveCategory(ctx, Category{
		ID:   uuid.New().String(),
		Name: name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}
	return created.ID, nil
}
