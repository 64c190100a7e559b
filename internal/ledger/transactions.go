package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/budgetms/finance_tracker/customErrors"
	"github.com/google/uuid"
)

func validateTransactionRequest(req TransactionRequest) error {
	if req.Amount == nil {
		return fmt.Errorf("%w: transaction amount is required", appErrors.ErrInvalidInput)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction amount must be greater than zero", appErrors.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: transaction description is required", appErrors.ErrInvalidInput)
	}
	if len(req.Description) > MAX_DESCRIPTION_LENGTH {
		return fmt.Errorf("%w: description so long, maximum allowed length is: %d", appErrors.ErrInvalidInput, MAX_DESCRIPTION_LENGTH)
	}
	if req.Type != TypeIncome && req.Type != TypeExpense {
		return fmt.Errorf("%w: allowed transaction types are: income and expense", appErrors.ErrInvalidInput)
	}
	if strings.TrimSpace(req.CategoryName) == "" {
		return fmt.Errorf("%w: category name is required", appErrors.ErrInvalidInput)
	}
	if len(req.CategoryName) > MAX_CATEGORY_NAME_LENGTH {
		return fmt.Errorf("%w: category name so long, maximum allowed length is: %d", appErrors.ErrInvalidInput, MAX_CATEGORY_NAME_LENGTH)
	}
	return nil
}

// CreateTransaction validates the request, resolves its category and inserts
// the record with the current instant as occurred_at.
func (ft *FinanceTracker) CreateTransaction(ctx context.Context, req TransactionRequest) (TransactionRecord, error) {
	if err := validateTransactionRequest(req); err != nil {
		return TransactionRecord{}, err
	}

	categoryId, err := ft.resolveCategory(ctx, req.CategoryName)
	if err != nil {
		return TransactionRecord{}, err
	}

	t := Transaction{
		ID:          uuid.New().String(),
		Amount:      *req.Amount,
		Description: req.Description,
		Type:        req.Type,
		CategoryID:  categoryId,
		OccurredAt:  time.Now().UTC(),
	}

	if err := ft.storage.SaveTransaction(ctx, t); err != nil {
		return TransactionRecord{}, fmt.Errorf("failed to save transaction to db: %w", err)
	}

	return TransactionRecord{
		ID:           t.ID,
		Amount:       t.Amount,
		Description:  t.Description,
		Type:         t.Type,
		CategoryName: req.CategoryName,
		OccurredAt:   t.OccurredAt,
	}, nil
}

// UpdateTransaction replaces amount, description, type and category of an
// existing transaction. The category is re-resolved by name, the old category
// row is never touched and occurred_at keeps its original value.
func (ft *FinanceTracker) UpdateTransaction(ctx context.Context, id string, req TransactionRequest) error {
	if err := validateTransactionRequest(req); err != nil {
		return err
	}

	categoryId, err := ft.resolveCategory(ctx, req.CategoryName)
	if err != nil {
		return err
	}

	affected, err := ft.storage.UpdateTransaction(ctx, Transaction{
		ID:          id,
		Amount:      *req.Amount,
		Description: req.Description,
		Type:        req.Type,
		CategoryID:  categoryId,
	})
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction does not exist", appErrors.ErrNotFound)
	}
	return nil
}

func (ft *FinanceTracker) DeleteTransaction(ctx context.Context, id string) error {
	affected, err := ft.storage.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction does not exist", appErrors.ErrNotFound)
	}
	return nil
}

// ListTransactions returns every transaction joined with its category name,
// newest occurred_at first. Ties keep the store's insertion order.
func (ft *FinanceTracker) ListTransactions(ctx context.Context) ([]TransactionRecord, error) {
	records, err := ft.storage.GetTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions from db: %w", err)
	}
	return records, nil
}
