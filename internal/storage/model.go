package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type dbTransactionRecord struct {
	ID           string
	Amount       decimal.Decimal
	Description  string
	Type         string
	OccurredAt   time.Time
	CategoryName string
}

type dbCategorySpend struct {
	CategoryName string
	TotalSpent   decimal.Decimal
}

type dbSavingsGoal struct {
	ID            string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	CreatedAt     time.Time
}
