package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xcafe-io/iz"
	"github.com/budgetms/finance_tracker/api"
	"github.com/budgetms/finance_tracker/internal/contextutil"
	"github.com/budgetms/finance_tracker/internal/ledger"
	"github.com/budgetms/finance_tracker/internal/storage"
	"github.com/budgetms/finance_tracker/logging"
	"github.com/google/uuid"
	"github.com/rs/cors"
)

var ft ledger.FinanceTracker // Global

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

// withTraceID stamps every request with an id the storage layer logs with.
func withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := contextutil.WithTraceID(r.Context(), uuid.New().String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func main() {
	if err := logging.Init("debug"); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		return
	}

	logging.Logger.Info("application starting...")

	db, err := storage.Init()
	if err != nil {
		logging.Logger.Errorf("failed to initialize database: %v", err)
		return
	}
	defer db.Close()

	storageInstance := storage.NewMySQLStorage(db)
	ft = ledger.NewFinanceTracker(storageInstance)

	mux := http.NewServeMux()
	api := api.NewApi(&ft)

	// SUMMARY ENDPOINTS.
	mux.HandleFunc("GET /api/summary", iz.Bind(api.GetSummaryHandler))                           // Balance + monthly income/expenses
	mux.HandleFunc("GET /api/summary/category-spending", iz.Bind(api.GetCategorySpendingHandler)) // Monthly spend per category

	// TRANSACTION ENDPOINTS.
	mux.HandleFunc("GET /api/transactions", iz.Bind(api.GetTransactionsHandler))           // List Transactions
	mux.HandleFunc("POST /api/transactions", iz.Bind(api.SaveTransactionHandler))          // Create Transaction
	mux.HandleFunc("PUT /api/transactions/{id}", iz.Bind(api.UpdateTransactionHandler))    // Update Transaction
	mux.HandleFunc("DELETE /api/transactions/{id}", iz.Bind(api.DeleteTransactionHandler)) // Delete Transaction

	// GOAL ENDPOINTS.
	mux.HandleFunc("GET /api/goals", iz.Bind(api.GetGoalsHandler))        // List Goals
	mux.HandleFunc("POST /api/goals", iz.Bind(api.SaveGoalHandler))       // Create Goal
	mux.HandleFunc("PUT /api/goals/{id}", iz.Bind(api.UpdateGoalHandler)) // Set Goal Progress

	port := os.Getenv("APP_PORT")
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: corsConf.Handler(withTraceID(mux)),
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logging.Logger.Infof("shutdown signal received: %s", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Logger.Errorf("server shutdown error: %v", err)
		}
	}()

	fmt.Println("Starting server on port: ", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
	logging.Logger.Info("server stopped gracefully")
}
