package repository

import (
	"context"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/models"
)

var chatsTable = table[models.ChatHistory]{
	name:     "chats",
	idColumn: "chat_id",
	columns: []column{
		{"chat_id", "chat_id"},
		{"user_id", "user_id"},
		{"role_id", "role_id"},
		{"content", "content"},
		{"status", "status"},
		{"created_at", "created_at"},
		{"updated_at", "updated_at"},
	},
	scan: func(s scanner) (*models.ChatHistory, error) {
		c := &models.ChatHistory{}
		if err := s.Scan(&c.ID, &c.UserID, &c.RoleID, &c.Content, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		return c, nil
	},
	insertColumns: []string{"user_id", "role_id", "content", "status"},
	insertValues: func(c *models.ChatHistory) []any {
		return []any{c.UserID, c.RoleID, c.Content, c.Status}
	},
	updateColumns: []string{"user_id", "role_id", "content", "status"},
	updateValues: func(c *models.ChatHistory) []any {
		return []any{c.UserID, c.RoleID, c.Content, c.Status}
	},
}

// ChatHistoryRepository handles chat message persistence, including batch writes.
type ChatHistoryRepository struct {
	*Repository[models.ChatHistory]
}

// NewChatHistoryRepository creates a ChatHistoryRepository on a caller-owned Querier.
func NewChatHistoryRepository(db Querier, dialect database.Dialect, opts ...Option) *ChatHistoryRepository {
	return &ChatHistoryRepository{newRepository(db, dialect, chatsTable, opts)}
}

// OpenChatHistoryRepository creates a ChatHistoryRepository with its own connection.
func OpenChatHistoryRepository(ctx context.Context, cfg database.Config, opts ...Option) (*ChatHistoryRepository, error) {
	r, err := openRepository(ctx, cfg, chatsTable, opts)
	if err != nil {
		return nil, err
	}
	return &ChatHistoryRepository{r}, nil
}

// AddBatch inserts all messages and returns how many rows were inserted.
// Batches too large for one statement are split and written in one transaction,
// so either every message is inserted or none is.
// An empty batch inserts nothing and returns 0, which callers cannot tell apart
// from a batch that inserted no rows.
func (r *ChatHistoryRepository) AddBatch(ctx context.Context, chats []*models.ChatHistory) (int64, error) {
	return r.addBatch(ctx, chats)
}

// DeleteBatch removes the messages with the given identities.
// It reports whether any message was removed; unknown identities are ignored.
// Large id lists are split across statements in one transaction.
func (r *ChatHistoryRepository) DeleteBatch(ctx context.Context, ids []int64) (bool, error) {
	return r.deleteBatch(ctx, ids)
}
