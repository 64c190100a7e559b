package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// MODELS:

type Category struct {
	ID   string
	Name string
}

type Transaction struct {
	ID          string
	Amount      decimal.Decimal
	Description string
	Type        string
	CategoryID  string
	OccurredAt  time.Time
}

// TransactionRecord is a transaction joined with its category name, the shape
// every listing returns.
type TransactionRecord struct {
	ID           string
	Amount       decimal.Decimal
	Description  string
	Type         string
	CategoryName string
	OccurredAt   time.Time
}

type SavingsGoal struct {
	ID            string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	CreatedAt     time.Time
}

// Summary is derived, never persisted. Balance covers every transaction ever
// recorded; Income and Expenses cover the current calendar month only.
type Summary struct {
	Balance  decimal.Decimal
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

type CategorySpend struct {
	CategoryName string
	TotalSpent   decimal.Decimal
}

// REQUESTS START:
// Numeric fields are pointers: an absent field is nil, an explicit zero is a
// zero value. The two must never collapse into one check.

type TransactionRequest struct {
	Amount       *decimal.Decimal
	Description  string
	Type         string
	CategoryName string
}

type GoalRequest struct {
	Name         string
	TargetAmount *decimal.Decimal
}

// REQUESTS END:
