package api

import (
	"encoding/json"
	"fmt"

	"github.com/0xcafe-io/iz"
	"github.com/budgetms/finance_tracker/internal/ledger"
	"github.com/budgetms/finance_tracker/logging"
)

type Api struct {
	Service *ledger.FinanceTracker
}

func NewApi(service *ledger.FinanceTracker) *Api {
	return &Api{
		Service: service,
	}
}

func (api *Api) GetTransactionsHandler(r *iz.Request) iz.Responder {
	records, err := api.Service.ListTransactions(r.Context())
	if err != nil {
		logging.Logger.Errorf("Failed to get transactions: %v", err)
		msg := fmt.Sprintf("failed to get transactions: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	items := make([]TransactionItem, 0, len(records))
	for _, record := range records {
		items = append(items, TransactionToHttp(record))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) SaveTransactionHandler(r *iz.Request) iz.Responder {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	record, err := api.Service.CreateTransaction(r.Context(), ledger.TransactionRequest{
		Amount:       req.Amount,
		Description:  req.Description,
		Type:         req.Type,
		CategoryName: req.Category,
	})
	if err != nil {
		msg := fmt.Sprintf("failed to create transaction: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := TransactionCreatedResponse{
		Message:     "Transaction added successfully",
		Transaction: TransactionToHttp(record),
	}
	return iz.Respond().Status(201).JSON(resp)
}

func (api *Api) UpdateTransactionHandler(r *iz.Request) iz.Responder {
	tId := r.PathValue("id")

	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	err := api.Service.UpdateTransaction(r.Context(), tId, ledger.TransactionRequest{
		Amount:       req.Amount,
		Description:  req.Description,
		Type:         req.Type,
		CategoryName: req.Category,
	})
	if err != nil {
		msg := fmt.Sprintf("failed to update transaction: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("transaction updated successfully")
}

func (api *Api) DeleteTransactionHandler(r *iz.Request) iz.Responder {
	tId := r.PathValue("id")

	if err := api.Service.DeleteTransaction(r.Context(), tId); err != nil {
		msg := fmt.Sprintf("failed to delete transaction: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("transaction deleted successfully")
}

func (api *Api) GetSummaryHandler(r *iz.Request) iz.Responder {
	summary, err := api.Service.Summarize(r.Context())
	if err != nil {
		logging.Logger.Errorf("Failed to get summary: %v", err)
		msg := fmt.Sprintf("failed to get summary: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := SummaryResponse{
		Balance:  summary.Balance.InexactFloat64(),
		Income:   summary.Income.InexactFloat64(),
		Expenses: summary.Expenses.InexactFloat64(),
	}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) GetCategorySpendingHandler(r *iz.Request) iz.Responder {
	spend, err := api.Service.CategorySpend(r.Context())
	if err != nil {
		logging.Logger.Errorf("Failed to get category spending: %v", err)
		msg := fmt.Sprintf("failed to get category spending: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	items := make([]CategorySpendItem, 0, len(spend))
	for _, s := range spend {
		items = append(items, CategorySpendToHttp(s))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) GetGoalsHandler(r *iz.Request) iz.Responder {
	goals, err := api.Service.ListGoals(r.Context())
	if err != nil {
		logging.Logger.Errorf("Failed to get goals: %v", err)
		msg := fmt.Sprintf("failed to get goals: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	items := make([]GoalItem, 0, len(goals))
	for _, goal := range goals {
		items = append(items, GoalToHttp(goal))
	}
	return iz.Respond().Status(200).JSON(items)
}

func (api *Api) SaveGoalHandler(r *iz.Request) iz.Responder {
	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	goal, err := api.Service.CreateGoal(r.Context(), ledger.GoalRequest{
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		msg := fmt.Sprintf("failed to create goal: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := GoalCreatedResponse{
		Message: "Savings goal created successfully",
		Goal:    GoalToHttp(goal),
	}
	return iz.Respond().Status(201).JSON(resp)
}

func (api *Api) UpdateGoalHandler(r *iz.Request) iz.Responder {
	goalId := r.PathValue("id")

	var req UpdateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	if err := api.Service.SetGoalProgress(r.Context(), goalId, req.CurrentAmount); err != nil {
		msg := fmt.Sprintf("failed to update goal: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("savings goal updated successfully")
}
