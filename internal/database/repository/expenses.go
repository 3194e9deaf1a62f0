package repository

import (
	"context"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/models"
)

var expensesTable = table[models.Expense]{
	name:     "expenses",
	alias:    "e",
	idColumn: "expense_id",
	columns: []column{
		{"expense_id", "e.expense_id"},
		{"expense_name", "e.expense_name"},
		{"expense_amount", "e.expense_amount"},
		{"month_year", "e.month_year"},
		{"user_id", "e.user_id"},
		{"exp_category_id", "e.exp_category_id"},
		{"category_name", "c.category_name"},
		{"status", "e.status"},
		{"created_at", "e.created_at"},
		{"updated_at", "e.updated_at"},
	},
	join: "JOIN expense_categories c ON c.exp_category_id = e.exp_category_id",
	scan: func(s scanner) (*models.Expense, error) {
		e := &models.Expense{}
		err := s.Scan(
			&e.ID, &e.Name, &e.Amount, &e.MonthYear, &e.UserID,
			&e.CategoryID, &e.CategoryName, &e.Status, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		return e, nil
	},
	insertColumns: []string{"expense_name", "expense_amount", "month_year", "user_id", "exp_category_id", "status"},
	insertValues: func(e *models.Expense) []any {
		return []any{e.Name, e.Amount, e.MonthYear, e.UserID, e.CategoryID, e.Status}
	},
	// user_id is fixed at insert
	updateColumns: []string{"expense_name", "expense_amount", "month_year", "exp_category_id", "status"},
	updateValues: func(e *models.Expense) []any {
		return []any{e.Name, e.Amount, e.MonthYear, e.CategoryID, e.Status}
	},
}

// ExpenseRepository handles expense persistence.
// Reads join expense_categories to fill CategoryName.
type ExpenseRepository struct {
	*Repository[models.Expense]
}

// NewExpenseRepository creates an ExpenseRepository on a caller-owned Querier.
func NewExpenseRepository(db Querier, dialect database.Dialect, opts ...Option) *ExpenseRepository {
	return &ExpenseRepository{newRepository(db, dialect, expensesTable, opts)}
}

// OpenExpenseRepository creates an ExpenseRepository with its own connection.
func OpenExpenseRepository(ctx context.Context, cfg database.Config, opts ...Option) (*ExpenseRepository, error) {
	r, err := openRepository(ctx, cfg, expensesTable, opts)
	if err != nil {
		return nil, err
	}
	return &ExpenseRepository{r}, nil
}
