package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/budgetms/finance_tracker/customErrors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (ft *FinanceTracker) CreateGoal(ctx context.Context, req GoalRequest) (SavingsGoal, error) {
	if strings.TrimSpace(req.Name) == "" {
		return SavingsGoal{}, fmt.Errorf("%w: goal name is required", appErrors.ErrInvalidInput)
	}
	if len(req.Name) > MAX_GOAL_NAME_LENGTH {
		return SavingsGoal{}, fmt.Errorf("%w: goal name so long, maximum allowed length is: %d", appErrors.ErrInvalidInput, MAX_GOAL_NAME_LENGTH)
	}
	if req.TargetAmount == nil {
		return SavingsGoal{}, fmt.Errorf("%w: goal target amount is required", appErrors.ErrInvalidInput)
	}
	if !req.TargetAmount.IsPositive() {
		return SavingsGoal{}, fmt.Errorf("%w: goal target amount must be greater than zero", appErrors.ErrInvalidInput)
	}

	goal := SavingsGoal{
		ID:            uuid.New().String(),
		Name:          req.Name,
		TargetAmount:  *req.TargetAmount,
		CurrentAmount: decimal.Zero,
		CreatedAt:     time.Now().UTC(),
	}

	if err := ft.storage.SaveGoal(ctx, goal); err != nil {
		return SavingsGoal{}, fmt.Errorf("failed to save goal to db: %w", err)
	}
	return goal, nil
}

// ListGoals returns every savings goal, most recently created first.
func (ft *FinanceTracker) ListGoals(ctx context.Context) ([]SavingsGoal, error) {
	goals, err := ft.storage.GetGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals from db: %w", err)
	}
	return goals, nil
}

// SetGoalProgress overwrites current_amount with the supplied value. The value
// is an absolute amount, not a delta, and it is stored as sent: zero is valid,
// and nothing clamps it to [0, target_amount].
func (ft *FinanceTracker) SetGoalProgress(ctx context.Context, id string, currentAmount *decimal.Decimal) error {
	if currentAmount == nil {
		return fmt.Errorf("%w: current amount is required", appErrors.ErrInvalidInput)
	}

	affected, err := ft.storage.UpdateGoalProgress(ctx, id, *currentAmount)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: savings goal does not exist", appErrors.ErrNotFound)
	}
	return nil
}
