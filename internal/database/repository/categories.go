package repository

import (
	"context"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/models"
)

var categoriesTable = table[models.ExpenseCategory]{
	name:     "expense_categories",
	idColumn: "exp_category_id",
	columns: []column{
		{"exp_category_id", "exp_category_id"},
		{"category_name", "category_name"},
		{"status", "status"},
		{"created_at", "created_at"},
		{"updated_at", "updated_at"},
	},
	scan: func(s scanner) (*models.ExpenseCategory, error) {
		c := &models.ExpenseCategory{}
		if err := s.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		return c, nil
	},
	insertColumns: []string{"category_name", "status"},
	insertValues: func(c *models.ExpenseCategory) []any {
		return []any{c.Name, c.Status}
	},
	updateColumns: []string{"category_name", "status"},
	updateValues: func(c *models.ExpenseCategory) []any {
		return []any{c.Name, c.Status}
	},
}

// ExpenseCategoryRepository handles expense category persistence.
type ExpenseCategoryRepository struct {
	*Repository[models.ExpenseCategory]
}

// NewExpenseCategoryRepository creates an ExpenseCategoryRepository on a caller-owned Querier.
func NewExpenseCategoryRepository(db Querier, dialect database.Dialect, opts ...Option) *ExpenseCategoryRepository {
	return &ExpenseCategoryRepository{newRepository(db, dialect, categoriesTable, opts)}
}

// OpenExpenseCategoryRepository creates an ExpenseCategoryRepository with its own connection.
func OpenExpenseCategoryRepository(ctx context.Context, cfg database.Config, opts ...Option) (*ExpenseCategoryRepository, error) {
	r, err := openRepository(ctx, cfg, categoriesTable, opts)
	if err != nil {
		return nil, err
	}
	return &ExpenseCategoryRepository{r}, nil
}
