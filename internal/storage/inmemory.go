package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	appErrors "github.com/budgetms/finance_tracker/customErrors"
	"github.com/budgetms/finance_tracker/internal/ledger"
	"github.com/shopspring/decimal"
)

// InMemoryStorage keeps every record in process memory. It exists for tests
// and local runs without a MySQL server; slices keep insertion order, which is
// the tie-break order listings rely on.
type InMemoryStorage struct {
	mu           sync.Mutex
	categories   []ledger.Category
	transactions []ledger.Transaction
	goals        []ledger.SavingsGoal
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return "inmemory"
}

func (inMem *InMemoryStorage) GetCategoryByName(ctx context.Context, name string) (ledger.Category, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, category := range inMem.categories {
		if category.Name == name {
			return category, nil
		}
	}
	return ledger.Category{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "The category does not exist.",
	}
}

func (inMem *InMemoryStorage) SaveCategory(ctx context.Context, category ledger.Category) (ledger.Category, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	// Same contract as the unique index in MySQL: a lost race returns the
	// row that won instead of inserting a duplicate.
	for _, existing := range inMem.categories {
		if existing.Name == category.Name {
			return existing, nil
		}
	}
	inMem.categories = append(inMem.categories, category)
	return category, nil
}

func (inMem *InMemoryStorage) SaveTransaction(ctx context.Context, t ledger.Transaction) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.transactions = append(inMem.transactions, t)
	return nil
}

func (inMem *InMemoryStorage) UpdateTransaction(ctx context.Context, t ledger.Transaction) (int64, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, existing := range inMem.transactions {
		if existing.ID == t.ID {
			inMem.transactions[i].Amount = t.Amount
			inMem.transactions[i].Description = t.Description
			inMem.transactions[i].Type = t.Type
			inMem.transactions[i].CategoryID = t.CategoryID
			// OccurredAt stays untouched.
			return 1, nil
		}
	}
	return 0, nil
}

func (inMem *InMemoryStorage) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, existing := range inMem.transactions {
		if existing.ID == id {
			inMem.transactions = append(inMem.transactions[:i], inMem.transactions[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (inMem *InMemoryStorage) GetTransactions(ctx context.Context) ([]ledger.TransactionRecord, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	records := make([]ledger.TransactionRecord, 0, len(inMem.transactions))
	for _, t := range inMem.transactions {
		records = append(records, ledger.TransactionRecord{
			ID:           t.ID,
			Amount:       t.Amount,
			Description:  t.Description,
			Type:         t.Type,
			CategoryName: inMem.categoryName(t.CategoryID),
			OccurredAt:   t.OccurredAt,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].OccurredAt.After(records[j].OccurredAt)
	})
	return records, nil
}

func (inMem *InMemoryStorage) GetSummary(ctx context.Context, windowStart time.Time, windowEnd time.Time) (ledger.Summary, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	summary := ledger.Summary{
		Balance:  decimal.Zero,
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
	}

	for _, t := range inMem.transactions {
		inWindow := !t.OccurredAt.Before(windowStart) && !t.OccurredAt.After(windowEnd)
		if t.Type == ledger.TypeIncome {
			summary.Balance = summary.Balance.Add(t.Amount)
			if inWindow {
				summary.Income = summary.Income.Add(t.Amount)
			}
		} else {
			summary.Balance = summary.Balance.Sub(t.Amount)
			if inWindow {
				summary.Expenses = summary.Expenses.Add(t.Amount)
			}
		}
	}
	return summary, nil
}

func (inMem *InMemoryStorage) GetCategorySpend(ctx context.Context, windowStart time.Time, windowEnd time.Time) ([]ledger.CategorySpend, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	totals := map[string]decimal.Decimal{}
	order := []string{}

	for _, t := range inMem.transactions {
		if t.Type != ledger.TypeExpense {
			continue
		}
		if t.OccurredAt.Before(windowStart) || t.OccurredAt.After(windowEnd) {
			continue
		}
		name := inMem.categoryName(t.CategoryID)
		if _, seen := totals[name]; !seen {
			order = append(order, name)
		}
		totals[name] = totals[name].Add(t.Amount)
	}

	spend := make([]ledger.CategorySpend, 0, len(order))
	for _, name := range order {
		spend = append(spend, ledger.CategorySpend{
			CategoryName: name,
			TotalSpent:   totals[name],
		})
	}
	sort.SliceStable(spend, func(i, j int) bool {
		return spend[i].TotalSpent.GreaterThan(spend[j].TotalSpent)
	})
	return spend, nil
}

func (inMem *InMemoryStorage) SaveGoal(ctx context.Context, goal ledger.SavingsGoal) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.goals = append(inMem.goals, goal)
	return nil
}

func (inMem *InMemoryStorage) GetGoals(ctx context.Context) ([]ledger.SavingsGoal, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	goals := make([]ledger.SavingsGoal, 0, len(inMem.goals))
	for i := len(inMem.goals) - 1; i >= 0; i-- {
		goals = append(goals, inMem.goals[i])
	}
	return goals, nil
}

func (inMem *InMemoryStorage) UpdateGoalProgress(ctx context.Context, id string, currentAmount decimal.Decimal) (int64, error) {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for i, goal := range inMem.goals {
		if goal.ID == id {
			inMem.goals[i].CurrentAmount = currentAmount
			return 1, nil
		}
	}
	return 0, nil
}

func (inMem *InMemoryStorage) categoryName(categoryId string) string {
	for _, category := range inMem.categories {
		if category.ID == categoryId {
			return category.Name
		}
	}
	return ""
}
