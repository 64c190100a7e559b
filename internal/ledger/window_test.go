package ledger

import (
	"testing"
	"time"
)

func TestMonthlyWindow(t *testing.T) {
	tests := []struct {
		name          string
		reference     time.Time
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		{
			name:          "Mid-month reference",
			reference:     time.Date(2024, time.March, 15, 14, 30, 0, 0, time.UTC),
			expectedStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2024, time.March, 31, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:          "First instant of the month",
			reference:     time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2024, time.June, 30, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:          "December rolls into the next year",
			reference:     time.Date(2023, time.December, 31, 12, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2023, time.December, 31, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:          "Leap-year February",
			reference:     time.Date(2024, time.February, 10, 8, 0, 0, 0, time.UTC),
			expectedStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2024, time.February, 29, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:          "Non-leap February",
			reference:     time.Date(2023, time.February, 28, 23, 59, 59, 0, time.UTC),
			expectedStart: time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
			expectedEnd:   time.Date(2023, time.February, 28, 23, 59, 59, 999000000, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthlyWindow(tt.reference)

			if !start.Equal(tt.expectedStart) {
				t.Errorf("Window start mismatch:\n Got:  %v\n Want: %v", start, tt.expectedStart)
			}
			if !end.Equal(tt.expectedEnd) {
				t.Errorf("Window end mismatch:\n Got:  %v\n Want: %v", end, tt.expectedEnd)
			}
		})
	}
}

func TestMonthlyWindow_ContainsReference(t *testing.T) {
	ref := time.Date(2024, time.August, 31, 23, 59, 59, 999000000, time.UTC)
	start, end := MonthlyWindow(ref)

	if ref.Before(start) || ref.After(end) {
		t.Errorf("Reference %v should fall inside window [%v, %v]", ref, start, end)
	}
}
