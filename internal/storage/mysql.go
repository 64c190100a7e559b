package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	appErrors "github.com/budgetms/finance_tracker/customErrors"
	"github.com/budgetms/finance_tracker/internal/contextutil"
	"github.com/budgetms/finance_tracker/internal/ledger"
	"github.com/budgetms/finance_tracker/logging"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

const mysqlDuplicateEntry = 1062

// --- INIT START --- //

func Init() (*sql.DB, error) {
	var db *sql.DB
	var err error
	var dbname string

	username := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	dbname = os.Getenv("DB_NAME")
	fullDsn := os.Getenv("FULL_DSN")

	if dbname == "" {
		dbname = "finance_tracker"
	}

	var adminDsn string
	if fullDsn != "" {
		parts := strings.Split(fullDsn, "/")
		adminDsn = strings.Join(parts[:len(parts)-1], "/") + "/"
	} else {
		if username == "" || password == "" || host == "" || port == "" {
			return nil, fmt.Errorf("missing required DB environment variables")
		}
		adminDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/?parseTime=true", username, password, host, port)
	}

	logging.Logger.Info("Connecting to MySQL server for initialization...")
	adminDb, err := sql.Open("mysql", adminDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin mysql handle: %v", err)
	}
	connected := false
	for i := 0; i < 15; i++ {
		if err := adminDb.Ping(); err == nil {
			connected = true
			break
		}
		logging.Logger.Warnf("Database not ready, retrying... (%d/15)", i+1)
		time.Sleep(3 * time.Second)
	}
	if !connected {
		return nil, fmt.Errorf("database unreachable after multiple attempts")
	}

	var dbnameExistence string
	checkDbnameExistQuery := "SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?"
	err = adminDb.QueryRow(checkDbnameExistQuery, dbname).Scan(&dbnameExistence)

	if err == sql.ErrNoRows {
		logging.Logger.Infof("Database '%s' does not exist, creating...", dbname)
		createDbSql := fmt.Sprintf("CREATE DATABASE `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_general_ci;", dbname)
		if _, err := adminDb.Exec(createDbSql); err != nil {
			adminDb.Close()
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	} else if err != nil {
		adminDb.Close()
		return nil, fmt.Errorf("failed to check database existence: %v", err)
	}

	adminDb.Close()

	// clientFoundRows makes RowsAffected report matched rows instead of
	// changed rows, otherwise overwriting a goal with its current value would
	// read as "not found".
	var finalDsn string
	if fullDsn != "" {
		finalDsn = fullDsn
	} else {
		finalDsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true", username, password, host, port, dbname)
	}

	logging.Logger.Info("Connecting to database...")
	db, err = sql.Open("mysql", finalDsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %v", err)
	}

	logging.Logger.Info("Connected to database successfully")
	logging.Logger.Info("Running migrations...")

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB) error {
	migrationFiles, err := getMigrationFiles("db/migrations")
	if err != nil {
		return fmt.Errorf("failed to get migration files: %v", err)
	}

	lastAppliedMigration, err := getLastAppliedMigration(db)
	if err != nil {
		return fmt.Errorf("failed to get last applied migration name: %v", err)
	}

	newMigrations := filterNewMigrations(migrationFiles, lastAppliedMigration)

	if len(newMigrations) == 0 {
		logging.Logger.Info("no new migration")
		return nil
	}

	for _, migrationFile := range newMigrations {
		logging.Logger.Info("applying migration: ", migrationFile)
		migrationContent, err := os.ReadFile(filepath.Join("db/migrations/", migrationFile))
		if err != nil {
			return fmt.Errorf("failed to read this '%s' migration file, error: %v", migrationFile, err)
		}

		err = applyMigration(db, migrationFile, string(migrationContent))
		if err != nil {
			return fmt.Errorf("failed to apply this '%s' migration file, error: %v", migrationFile, err)
		}
	}

	logging.Logger.Info("all migrations applied successfully")
	return nil
}

func getMigrationFiles(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var migrationFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)
	return migrationFiles, nil
}

func getLastAppliedMigration(db *sql.DB) (string, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS migration (
        id INT AUTO_INCREMENT PRIMARY KEY,
        migration_name VARCHAR(255) NOT NULL UNIQUE,
        applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`)

	if err != nil {
		return "", err
	}

	var lastMigration string
	err = db.QueryRow("SELECT migration_name FROM migration ORDER BY migration_name DESC LIMIT 1").Scan(&lastMigration)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return lastMigration, err
}

func filterNewMigrations(all []string, lastApplied string) []string {
	if lastApplied == "" {
		return all
	}

	var result []string
	for _, migration := range all {
		if migration > lastApplied {
			result = append(result, migration)
		}
	}
	return result
}

func applyMigration(db *sql.DB, name, sqlContent string) error {
	txn, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	statements := strings.Split(sqlContent, ";")

	for _, statement := range statements {
		trimmedStmt := strings.TrimSpace(statement)
		if trimmedStmt == "" {
			continue
		}

		if _, err := txn.Exec(trimmedStmt); err != nil {
			txn.Rollback()
			return fmt.Errorf("migration statement failed: %w\nStatement: %s", err, trimmedStmt)
		}
	}

	if _, err := txn.Exec("INSERT INTO migration (migration_name) VALUES (?)", name); err != nil {
		txn.Rollback()
		return fmt.Errorf("failed to record migration name: %w", err)
	}

	return txn.Commit()
}

// --- INIT END --- //

type MySQLStorage struct {
	db *sql.DB
}

func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

func (mySql *MySQLStorage) GetStorageType() string {
	return "mysql"
}

func (mySql *MySQLStorage) GetCategoryByName(ctx context.Context, name string) (ledger.Category, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT id, name FROM category WHERE name = ?;"
	var category ledger.Category

	err := mySql.db.QueryRowContext(ctx, query, name).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Category{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "The category does not exist.",
			}
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to look up category in Storage.GetCategoryByName() function | Error: %v", traceID, err)
		return ledger.Category{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to look up category: %v", err),
		}
	}
	return category, nil
}

// SaveCategory inserts the category. The unique index on name turns the
// check-then-act race of two concurrent resolves into a duplicate-key error,
// in which case the row that won is re-read and returned.
func (mySql *MySQLStorage) SaveCategory(ctx context.Context, category ledger.Category) (ledger.Category, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO category (id, name) VALUES (?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, category.ID, category.Name)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return mySql.GetCategoryByName(ctx, category.Name)
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save category in Storage.SaveCategory() function | Error: %v", traceID, err)
		return ledger.Category{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to save the category: %v", err),
		}
	}
	return category, nil
}

func (mySql *MySQLStorage) SaveTransaction(ctx context.Context, t ledger.Transaction) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO transaction (id, amount, description, type, category_id, occurred_at) VALUES (?, ?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, t.ID, t.Amount, t.Description, t.Type, t.CategoryID, t.OccurredAt)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save transaction in Storage.SaveTransaction() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to save transaction: %v", err),
		}
	}
	return nil
}

func (mySql *MySQLStorage) UpdateTransaction(ctx context.Context, t ledger.Transaction) (int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "UPDATE transaction SET amount = ?, description = ?, type = ?, category_id = ? WHERE id = ?;"
	res, err := mySql.db.ExecContext(ctx, query, t.Amount, t.Description, t.Type, t.CategoryID, t.ID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update transaction in Storage.UpdateTransaction() function | Error: %v", traceID, err)
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to update transaction: %v", err),
		}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.UpdateTransaction() function | Error: %v", traceID, err)
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to update transaction: %v", err),
		}
	}
	return affected, nil
}

func (mySql *MySQLStorage) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "DELETE FROM transaction WHERE id = ?;"
	res, err := mySql.db.ExecContext(ctx, query, id)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete transaction in Storage.DeleteTransaction() function | Error: %v", traceID, err)
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to delete transaction: %v", err),
		}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.DeleteTransaction() function | Error: %v", traceID, err)
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to delete transaction: %v", err),
		}
	}
	return affected, nil
}

func (mySql *MySQLStorage) GetTransactions(ctx context.Context) ([]ledger.TransactionRecord, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := `SELECT t.id, t.amount, t.description, t.type, t.occurred_at, c.name AS category_name
		FROM transaction t
		JOIN category c ON t.category_id = c.id
		ORDER BY t.occurred_at DESC;`

	rows, err := mySql.db.QueryContext(ctx, query)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get transactions in Storage.GetTransactions() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to get transactions: %v", err),
		}
	}
	defer rows.Close()

	records := []ledger.TransactionRecord{}
	for rows.Next() {
		var row dbTransactionRecord
		if err := rows.Scan(&row.ID, &row.Amount, &row.Description, &row.Type, &row.OccurredAt, &row.CategoryName); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan transaction row in Storage.GetTransactions() function | Error: %v", traceID, err)
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrInternal,
				Message: fmt.Sprintf("Failed to get transactions: %v", err),
			}
		}
		records = append(records, ledger.TransactionRecord{
			ID:           row.ID,
			Amount:       row.Amount,
			Description:  row.Description,
			Type:         row.Type,
			CategoryName: row.CategoryName,
			OccurredAt:   row.OccurredAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to get transactions: %v", err),
		}
	}
	return records, nil
}

// GetSummary runs its three aggregates inside one read-only transaction so a
// write landing mid-computation cannot skew one figure against the others.
func (mySql *MySQLStorage) GetSummary(ctx context.Context, windowStart time.Time, windowEnd time.Time) (ledger.Summary, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	txn, err := mySql.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to begin read transaction in Storage.GetSummary() function | Error: %v", traceID, err)
		return ledger.Summary{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to compute summary: %v", err),
		}
	}
	defer txn.Rollback()

	var income, expenses, balance decimal.Decimal

	incomeQuery := "SELECT IFNULL(SUM(amount), 0) FROM transaction WHERE type = 'income' AND occurred_at BETWEEN ? AND ?;"
	if err := txn.QueryRowContext(ctx, incomeQuery, windowStart, windowEnd).Scan(&income); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to sum income in Storage.GetSummary() function | Error: %v", traceID, err)
		return ledger.Summary{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to compute summary: %v", err),
		}
	}

	expenseQuery := "SELECT IFNULL(SUM(amount), 0) FROM transaction WHERE type = 'expense' AND occurred_at BETWEEN ? AND ?;"
	if err := txn.QueryRowContext(ctx, expenseQuery, windowStart, windowEnd).Scan(&expenses); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to sum expenses in Storage.GetSummary() function | Error: %v", traceID, err)
		return ledger.Summary{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to compute summary: %v", err),
		}
	}

	balanceQuery := "SELECT IFNULL(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0) FROM transaction;"
	if err := txn.QueryRowContext(ctx, balanceQuery).Scan(&balance); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to sum balance in Storage.GetSummary() function | Error: %v", traceID, err)
		return ledger.Summary{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to compute summary: %v", err),
		}
	}

	if err := txn.Commit(); err != nil {
		return ledger.Summary{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to compute summary: %v", err),
		}
	}

	return ledger.Summary{
		Balance:  balance,
		Income:   income,
		Expenses: expenses,
	}, nil
}

func (mySql *MySQLStorage) GetCategorySpend(ctx context.Context, windowStart time.Time, windowEnd time.Time) ([]ledger.CategorySpend, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := `SELECT c.name AS category_name, SUM(t.amount) AS total_spent
		FROM transaction t
		JOIN category c ON t.category_id = c.id
		WHERE t.type = 'expense' AND t.occurred_at BETWEEN ? AND ?
		GROUP BY c.name
		ORDER BY total_spent DESC;`

	rows, err := mySql.db.QueryContext(ctx, query, windowStart, windowEnd)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get category spending in Storage.GetCategorySpend() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to get category spending: %v", err),
		}
	}
	defer rows.Close()

	spend := []ledger.CategorySpend{}
	for rows.Next() {
		var row dbCategorySpend
		if err := rows.Scan(&row.CategoryName, &row.TotalSpent); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan category spending row in Storage.GetCategorySpend() function | Error: %v", traceID, err)
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrInternal,
				Message: fmt.Sprintf("Failed to get category spending: %v", err),
			}
		}
		spend = append(spend, ledger.CategorySpend{
			CategoryName: row.CategoryName,
			TotalSpent:   row.TotalSpent,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to get category spending: %v", err),
		}
	}
	return spend, nil
}

func (mySql *MySQLStorage) SaveGoal(ctx context.Context, goal ledger.SavingsGoal) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO savings_goal (id, name, target_amount, current_amount, created_at) VALUES (?, ?, ?, ?, ?);"
	_, err := mySql.db.ExecContext(ctx, query, goal.ID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.CreatedAt)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save goal in Storage.SaveGoal() function | Error: %v", traceID, err)
		return appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to save goal: %v", err),
		}
	}
	return nil
}

func (mySql *MySQLStorage) GetGoals(ctx context.Context) ([]ledger.SavingsGoal, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT id, name, target_amount, current_amount, created_at FROM savings_goal ORDER BY created_at DESC;"
	rows, err := mySql.db.QueryContext(ctx, query)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to get goals in Storage.GetGoals() function | Error: %v", traceID, err)
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to get goals: %v", err),
		}
	}
	defer rows.Close()

	goals := []ledger.SavingsGoal{}
	for rows.Next() {
		var row dbSavingsGoal
		if err := rows.Scan(&row.ID, &row.Name, &row.TargetAmount, &row.CurrentAmount, &row.CreatedAt); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan goal row in Storage.GetGoals() function | Error: %v", traceID, err)
			return nil, appErrors.ErrorResponse{
				Code:    appErrors.ErrInternal,
				Message: fmt.Sprintf("Failed to get goals: %v", err),
			}
		}
		goals = append(goals, ledger.SavingsGoal{
			ID:            row.ID,
			Name:          row.Name,
			TargetAmount:  row.TargetAmount,
			CurrentAmount: row.CurrentAmount,
			CreatedAt:     row.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to get goals: %v", err),
		}
	}
	return goals, nil
}

func (mySql *MySQLStorage) UpdateGoalProgress(ctx context.Context, id string, currentAmount decimal.Decimal) (int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "UPDATE savings_goal SET current_amount = ? WHERE id = ?;"
	res, err := mySql.db.ExecContext(ctx, query, currentAmount, id)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update goal progress in Storage.UpdateGoalProgress() function | Error: %v", traceID, err)
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to update goal: %v", err),
		}
	}

	affected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.UpdateGoalProgress() function | Error: %v", traceID, err)
		return 0, appErrors.ErrorResponse{
			Code:    appErrors.ErrInternal,
			Message: fmt.Sprintf("Failed to update goal: %v", err),
		}
	}
	return affected, nil
}
