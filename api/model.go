package api

import (
	"errors"
	"time"

	appErrors "github.com/budgetms/finance_tracker/customErrors"
	"github.com/budgetms/finance_tracker/internal/ledger"
	"github.com/shopspring/decimal"
)

// REQUESTS START:
// Amount fields stay pointers so a request that omits the field is told apart
// from one that sends an explicit 0.

type TransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
	Type        string           `json:"type"`
	Category    string           `json:"category"`
}

type CreateGoalRequest struct {
	Name         string           `json:"name"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
}

type UpdateGoalRequest struct {
	CurrentAmount *decimal.Decimal `json:"current_amount"`
}

// REQUESTS END:

// RESPONSES:

type TransactionItem struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	Type         string  `json:"type"`
	CategoryName string  `json:"category_name"`
	OccurredAt   string  `json:"occurred_at"`
}

type TransactionCreatedResponse struct {
	Message     string          `json:"message"`
	Transaction TransactionItem `json:"transaction"`
}

type SummaryResponse struct {
	Balance  float64 `json:"balance"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type CategorySpendItem struct {
	CategoryName string  `json:"category_name"`
	TotalSpent   float64 `json:"total_spent"`
}

type GoalItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	TargetAmount    float64 `json:"target_amount"`
	CurrentAmount   float64 `json:"current_amount"`
	PercentAchieved float64 `json:"percent_achieved"`
	CreatedAt       string  `json:"created_at"`
}

type GoalCreatedResponse struct {
	Message string   `json:"message"`
	Goal    GoalItem `json:"goal"`
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrNotFound):
		return 404 // not found
	case errors.Is(err, appErrors.ErrInvalidInput):
		return 400 // bad request
	case errors.Is(err, appErrors.ErrConflict):
		return 409 // conflict
	default:
		return 500 // internal error
	}
}

func TransactionToHttp(record ledger.TransactionRecord) TransactionItem {
	return TransactionItem{
		ID:           record.ID,
		Amount:       record.Amount.InexactFloat64(),
		Description:  record.Description,
		Type:         record.Type,
		CategoryName: record.CategoryName,
		OccurredAt:   record.OccurredAt.Format(time.RFC3339),
	}
}

// GoalToHttp derives percent-achieved for display. A zero target would divide
// by zero, so it renders as 0 instead of letting the core guard it.
func GoalToHttp(goal ledger.SavingsGoal) GoalItem {
	percent := 0.0
	if !goal.TargetAmount.IsZero() {
		percent = goal.CurrentAmount.Div(goal.TargetAmount).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return GoalItem{
		ID:              goal.ID,
		Name:            goal.Name,
		TargetAmount:    goal.TargetAmount.InexactFloat64(),
		CurrentAmount:   goal.CurrentAmount.InexactFloat64(),
		PercentAchieved: percent,
		CreatedAt:       goal.CreatedAt.Format(time.RFC3339),
	}
}

func CategorySpendToHttp(spend ledger.CategorySpend) CategorySpendItem {
	return CategorySpendItem{
		CategoryName: spend.CategoryName,
		TotalSpent:   spend.TotalSpent.InexactFloat64(),
	}
}
