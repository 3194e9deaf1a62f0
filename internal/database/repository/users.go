package repository

import (
	"context"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/models"
)

var usersTable = table[models.User]{
	name:     "users",
	idColumn: "user_id",
	columns: []column{
		{"user_id", "user_id"},
		{"username", "username"},
		{"password", "password"},
		{"status", "status"},
		{"created_at", "created_at"},
		{"updated_at", "updated_at"},
	},
	scan: func(s scanner) (*models.User, error) {
		u := &models.User{}
		if err := s.Scan(&u.ID, &u.Username, &u.Password, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		return u, nil
	},
	insertColumns: []string{"username", "password", "status"},
	insertValues: func(u *models.User) []any {
		return []any{u.Username, u.Password, u.Status}
	},
	updateColumns: []string{"username", "password", "status"},
	updateValues: func(u *models.User) []any {
		return []any{u.Username, u.Password, u.Status}
	},
}

// UserRepository handles user persistence.
type UserRepository struct {
	*Repository[models.User]
}

// NewUserRepository creates a UserRepository on a caller-owned Querier.
func NewUserRepository(db Querier, dialect database.Dialect, opts ...Option) *UserRepository {
	return &UserRepository{newRepository(db, dialect, usersTable, opts)}
}

// OpenUserRepository creates a UserRepository with its own connection.
func OpenUserRepository(ctx context.Context, cfg database.Config, opts ...Option) (*UserRepository, error) {
	r, err := openRepository(ctx, cfg, usersTable, opts)
	if err != nil {
		return nil, err
	}
	return &UserRepository{r}, nil
}
