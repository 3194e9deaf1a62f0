package repository

import (
	"context"
	"errors"

	"github.com/bargom/expensedb/internal/database/models"
)

// Repo defines the persistence operations shared by every entity.
type Repo[T any] interface {
	// Get retrieves a record by its identity, or nil when absent.
	Get(ctx context.Context, id int64) (*T, error)
	// GetBy retrieves the records matching every criterion.
	GetBy(ctx context.Context, criteria Criteria) ([]*T, error)
	// GetAll retrieves every record.
	GetAll(ctx context.Context) ([]*T, error)
	// Add inserts a record and returns its new identity.
	Add(ctx context.Context, entity *T) (int64, error)
	// Update overwrites a record's mutable fields.
	Update(ctx context.Context, id int64, entity *T) (bool, error)
	// Delete removes a record.
	Delete(ctx context.Context, id int64) (bool, error)
	// Close releases the repository's connection.
	Close() error
}

// ChatHistoryRepo adds batch writes to the chat history repository.
type ChatHistoryRepo interface {
	Repo[models.ChatHistory]
	// AddBatch inserts messages all-or-nothing and returns the count.
	AddBatch(ctx context.Context, chats []*models.ChatHistory) (int64, error)
	// DeleteBatch removes messages by identity.
	DeleteBatch(ctx context.Context, ids []int64) (bool, error)
}

var (
	_ Repo[models.Expense]         = (*ExpenseRepository)(nil)
	_ Repo[models.ExpenseCategory] = (*ExpenseCategoryRepository)(nil)
	_ Repo[models.User]            = (*UserRepository)(nil)
	_ ChatHistoryRepo              = (*ChatHistoryRepository)(nil)
)

// Repositories holds all repository interfaces for dependency injection.
type Repositories struct {
	Expenses   Repo[models.Expense]
	Categories Repo[models.ExpenseCategory]
	Users      Repo[models.User]
	Chats      ChatHistoryRepo
}

// NewRepositories creates a Repositories instance.
func NewRepositories(expenses *ExpenseRepository, categories *ExpenseCategoryRepository, users *UserRepository, chats *ChatHistoryRepository) *Repositories {
	return &Repositories{
		Expenses:   expenses,
		Categories: categories,
		Users:      users,
		Chats:      chats,
	}
}

// Close closes every repository, returning all errors joined.
func (r *Repositories) Close() error {
	var errs []error
	for _, c := range []interface{ Close() error }{r.Expenses, r.Categories, r.Users, r.Chats} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
