// Package testing provides test helpers for database tests.
package testing

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SetupTestDB opens an in-memory SQLite database for testing
// and runs all migrations.
func SetupTestDB(t *testing.T) *database.Conn {
	t.Helper()

	conn, err := database.Open(context.Background(), database.Config{Driver: database.DriverSQLite})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.NewMigrator(conn, conn.Dialect()).MigrateUp(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return conn
}

// SetupTestFile creates a migrated SQLite database file in a temporary directory
// and returns the Config that opens it. Unlike :memory:, the file can be opened
// by several connections at once.
func SetupTestFile(t *testing.T) database.Config {
	t.Helper()

	cfg := database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "expensedb.sqlite"),
	}

	conn, err := database.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	defer conn.Close()

	if err := database.NewMigrator(conn, conn.Dialect()).MigrateUp(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return cfg
}

// TeardownTestDB closes the test database connection.
func TeardownTestDB(t *testing.T, conn *database.Conn) {
	t.Helper()

	if err := conn.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// TestData holds seeded test data for use in tests.
type TestData struct {
	User      *models.User
	Groceries *models.ExpenseCategory
	Transport *models.ExpenseCategory
	Expenses  []*models.Expense
	ChatIDs   []int64
}

// SeedTestData inserts one user, two categories, three expenses and two chat messages.
func SeedTestData(t *testing.T, conn *database.Conn) *TestData {
	t.Helper()

	ctx := context.Background()
	data := &TestData{}

	insert := func(query string, args ...any) int64 {
		t.Helper()
		result, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			t.Fatalf("failed to read seeded id: %v", err)
		}
		return id
	}

	data.User = models.NewUser(UniqueName("user"), "hash")
	data.User.ID = insert("INSERT INTO users (username, password, status) VALUES (?, ?, ?)",
		data.User.Username, data.User.Password, data.User.Status)

	data.Groceries = models.NewExpenseCategory("Groceries")
	data.Groceries.ID = insert("INSERT INTO expense_categories (category_name, status) VALUES (?, ?)",
		data.Groceries.Name, data.Groceries.Status)

	data.Transport = models.NewExpenseCategory("Transport")
	data.Transport.ID = insert("INSERT INTO expense_categories (category_name, status) VALUES (?, ?)",
		data.Transport.Name, data.Transport.Status)

	for _, e := range []*models.Expense{
		models.NewExpense(data.User.ID, data.Groceries.ID, "market", decimal.RequireFromString("23.40"), "2024-03"),
		models.NewExpense(data.User.ID, data.Transport.ID, "bus pass", decimal.RequireFromString("50"), "2024-03"),
		models.NewExpense(data.User.ID, data.Groceries.ID, "bakery", decimal.RequireFromString("4.75"), "2024-04"),
	} {
		e.ID = insert(
			"INSERT INTO expenses (expense_name, expense_amount, month_year, user_id, exp_category_id, status) VALUES (?, ?, ?, ?, ?, ?)",
			e.Name, e.Amount, e.MonthYear, e.UserID, e.CategoryID, e.Status,
		)
		data.Expenses = append(data.Expenses, e)
	}

	for _, c := range []*models.ChatHistory{
		models.NewChatHistory(data.User.ID, models.RoleUser, "how much did I spend in March?"),
		models.NewChatHistory(data.User.ID, models.RoleAssistant, "73.40 across 2 expenses"),
	} {
		data.ChatIDs = append(data.ChatIDs, insert(
			"INSERT INTO chats (user_id, role_id, content, status) VALUES (?, ?, ?, ?)",
			c.UserID, c.RoleID, c.Content, c.Status,
		))
	}

	return data
}

// UniqueName returns prefix followed by a random suffix, for columns with unique constraints.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}
