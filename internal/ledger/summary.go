package ledger

import (
	"context"
	"fmt"
	"time"
)

// MonthlyWindow returns the first and last instant of the calendar month that
// contains ref, in ref's location. The end instant is the last day of the
// month at 23:59:59.999.
func MonthlyWindow(ref time.Time) (time.Time, time.Time) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// Summarize reports the all-time balance next to the current month's income
// and expense totals. The asymmetry is deliberate: balance answers "how much
// money exists now", the other two answer "how is this month going".
func (ft *FinanceTracker) Summarize(ctx context.Context) (Summary, error) {
	start, end := MonthlyWindow(time.Now().UTC())
	summary, err := ft.storage.GetSummary(ctx, start, end)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to compute summary: %w", err)
	}
	return summary, nil
}

// CategorySpend totals expense transactions of the current month per category,
// largest total first. Categories without expenses in the window are omitted.
func (ft *FinanceTracker) CategorySpend(ctx context.Context) ([]CategorySpend, error) {
	start, end := MonthlyWindow(time.Now().UTC())
	spend, err := ft.storage.GetCategorySpend(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category spending: %w", err)
	}
	return spend, nil
}
