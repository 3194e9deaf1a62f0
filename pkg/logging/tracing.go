package logging

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// NewRunID returns a fresh random run ID.
func NewRunID() string {
	return uuid.New().String()
}

// WithRunID returns a context carrying the run ID.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// GetRunID returns the run ID from the context, or "".
func GetRunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// WithUserID returns a context carrying the acting user's ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, strconv.FormatInt(userID, 10))
}

// GetUserID returns the acting user's ID from the context, or "".
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}
