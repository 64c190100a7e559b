package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/0xcafe-io/iz"
	"github.com/budgetms/finance_tracker/internal/ledger"
	"github.com/budgetms/finance_tracker/internal/storage"
	"github.com/budgetms/finance_tracker/logging"
	"github.com/sirupsen/logrus"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logging.Logger = logrus.New()

	ft := ledger.NewFinanceTracker(storage.NewInMemoryStorage())
	api := NewApi(&ft)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/summary", iz.Bind(api.GetSummaryHandler))
	mux.HandleFunc("GET /api/summary/category-spending", iz.Bind(api.GetCategorySpendingHandler))
	mux.HandleFunc("GET /api/transactions", iz.Bind(api.GetTransactionsHandler))
	mux.HandleFunc("POST /api/transactions", iz.Bind(api.SaveTransactionHandler))
	mux.HandleFunc("PUT /api/transactions/{id}", iz.Bind(api.UpdateTransactionHandler))
	mux.HandleFunc("DELETE /api/transactions/{id}", iz.Bind(api.DeleteTransactionHandler))
	mux.HandleFunc("GET /api/goals", iz.Bind(api.GetGoalsHandler))
	mux.HandleFunc("POST /api/goals", iz.Bind(api.SaveGoalHandler))
	mux.HandleFunc("PUT /api/goals/{id}", iz.Bind(api.UpdateGoalHandler))
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSaveTransactionHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "Success - Valid expense",
			body:           `{"amount": 42.50, "description": "groceries", "type": "expense", "category": "Food"}`,
			expectedStatus: 201,
		},
		{
			name:           "Fail - Missing description",
			body:           `{"amount": 42.50, "type": "expense", "category": "Food"}`,
			expectedStatus: 400,
		},
		{
			name:           "Fail - Omitted amount",
			body:           `{"description": "groceries", "type": "expense", "category": "Food"}`,
			expectedStatus: 400,
		},
		{
			name:           "Fail - Malformed JSON",
			body:           `{"amount":`,
			expectedStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(t)
			rec := doRequest(t, mux, "POST", "/api/transactions", tt.body)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("Status mismatch: got %d, want %d, body: %s", rec.Code, tt.expectedStatus, rec.Body.String())
			}
			if tt.expectedStatus != 201 {
				return
			}

			var resp TransactionCreatedResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Transaction.ID == "" {
				t.Errorf("Expected response to carry the new transaction id")
			}
			if resp.Transaction.CategoryName != "Food" {
				t.Errorf("Expected resolved category name in response, got %q", resp.Transaction.CategoryName)
			}
			if resp.Transaction.Amount != 42.50 {
				t.Errorf("Amount mismatch: got %v", resp.Transaction.Amount)
			}
		})
	}
}

func TestGetTransactionsHandler(t *testing.T) {
	mux := newTestMux(t)

	created := doRequest(t, mux, "POST", "/api/transactions",
		`{"amount": 10, "description": "bus ticket", "type": "expense", "category": "Transport"}`)
	if created.Code != 201 {
		t.Fatalf("Setup create failed with %d: %s", created.Code, created.Body.String())
	}

	rec := doRequest(t, mux, "GET", "/api/transactions", "")
	if rec.Code != 200 {
		t.Fatalf("Status mismatch: got %d, body: %s", rec.Code, rec.Body.String())
	}

	var items []TransactionItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(items))
	}
	if items[0].CategoryName != "Transport" || items[0].Description != "bus ticket" {
		t.Errorf("Listed transaction mismatch: %+v", items[0])
	}
}

func TestDeleteTransactionHandler(t *testing.T) {
	mux := newTestMux(t)

	t.Run("Fail - Unknown id", func(t *testing.T) {
		rec := doRequest(t, mux, "DELETE", "/api/transactions/no-such-id", "")
		if rec.Code != 404 {
			t.Errorf("Status mismatch: got %d, want 404, body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Success", func(t *testing.T) {
		created := doRequest(t, mux, "POST", "/api/transactions",
			`{"amount": 5, "description": "snack", "type": "expense", "category": "Food"}`)
		var resp TransactionCreatedResponse
		if err := json.Unmarshal(created.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Failed to decode create response: %v", err)
		}

		rec := doRequest(t, mux, "DELETE", "/api/transactions/"+resp.Transaction.ID, "")
		if rec.Code != 200 {
			t.Fatalf("Status mismatch: got %d, body: %s", rec.Code, rec.Body.String())
		}

		list := doRequest(t, mux, "GET", "/api/transactions", "")
		var items []TransactionItem
		if err := json.Unmarshal(list.Body.Bytes(), &items); err != nil {
			t.Fatalf("Failed to decode list response: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("Expected empty list after delete, got %d items", len(items))
		}
	})
}

func TestUpdateTransactionHandler(t *testing.T) {
	mux := newTestMux(t)

	rec := doRequest(t, mux, "PUT", "/api/transactions/no-such-id",
		`{"amount": 5, "description": "snack", "type": "expense", "category": "Food"}`)
	if rec.Code != 404 {
		t.Errorf("Status mismatch: got %d, want 404, body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "does not exist") {
		t.Errorf("Expected a not-found message, got: %s", rec.Body.String())
	}
}

func TestGetSummaryHandler(t *testing.T) {
	mux := newTestMux(t)

	doRequest(t, mux, "POST", "/api/transactions",
		`{"amount": 1000, "description": "salary", "type": "income", "category": "Work"}`)
	doRequest(t, mux, "POST", "/api/transactions",
		`{"amount": 400, "description": "rent", "type": "expense", "category": "Housing"}`)

	rec := doRequest(t, mux, "GET", "/api/summary", "")
	if rec.Code != 200 {
		t.Fatalf("Status mismatch: got %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Balance != 600 || resp.Income != 1000 || resp.Expenses != 400 {
		t.Errorf("Summary mismatch: %+v", resp)
	}
}

func TestGetCategorySpendingHandler(t *testing.T) {
	mux := newTestMux(t)

	doRequest(t, mux, "POST", "/api/transactions",
		`{"amount": 300, "description": "weekly shop", "type": "expense", "category": "Groceries"}`)
	doRequest(t, mux, "POST", "/api/transactions",
		`{"amount": 90, "description": "fuel", "type": "expense", "category": "Car"}`)

	rec := doRequest(t, mux, "GET", "/api/summary/category-spending", "")
	if rec.Code != 200 {
		t.Fatalf("Status mismatch: got %d, body: %s", rec.Code, rec.Body.String())
	}

	var items []CategorySpendItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(items))
	}
	if items[0].CategoryName != "Groceries" || items[0].TotalSpent != 300 {
		t.Errorf("Expected the biggest spender first, got %+v", items[0])
	}
}

func TestGoalHandlers(t *testing.T) {
	mux := newTestMux(t)

	created := doRequest(t, mux, "POST", "/api/goals", `{"name": "Vacation", "target_amount": 1500}`)
	if created.Code != 201 {
		t.Fatalf("Status mismatch: got %d, body: %s", created.Code, created.Body.String())
	}
	var resp GoalCreatedResponse
	if err := json.Unmarshal(created.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode create response: %v", err)
	}
	if resp.Goal.ID == "" || resp.Goal.CurrentAmount != 0 {
		t.Errorf("Created goal mismatch: %+v", resp.Goal)
	}

	t.Run("Fail - Missing target amount", func(t *testing.T) {
		rec := doRequest(t, mux, "POST", "/api/goals", `{"name": "Car"}`)
		if rec.Code != 400 {
			t.Errorf("Status mismatch: got %d, want 400, body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Success - Explicit zero progress", func(t *testing.T) {
		rec := doRequest(t, mux, "PUT", "/api/goals/"+resp.Goal.ID, `{"current_amount": 0}`)
		if rec.Code != 200 {
			t.Errorf("Status mismatch: got %d, body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Fail - Omitted progress amount", func(t *testing.T) {
		rec := doRequest(t, mux, "PUT", "/api/goals/"+resp.Goal.ID, `{}`)
		if rec.Code != 400 {
			t.Errorf("Status mismatch: got %d, want 400, body: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("Success - Progress shows percent achieved", func(t *testing.T) {
		update := doRequest(t, mux, "PUT", "/api/goals/"+resp.Goal.ID, `{"current_amount": 750}`)
		if update.Code != 200 {
			t.Fatalf("Update failed: %d, body: %s", update.Code, update.Body.String())
		}

		rec := doRequest(t, mux, "GET", "/api/goals", "")
		var goals []GoalItem
		if err := json.Unmarshal(rec.Body.Bytes(), &goals); err != nil {
			t.Fatalf("Failed to decode list response: %v", err)
		}
		if len(goals) != 1 {
			t.Fatalf("Expected 1 goal, got %d", len(goals))
		}
		if goals[0].CurrentAmount != 750 || goals[0].PercentAchieved != 50 {
			t.Errorf("Goal progress mismatch: %+v", goals[0])
		}
	})
}
