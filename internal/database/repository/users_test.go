package repository

import (
	"context"
	"testing"

	"github.com/bargom/expensedb/internal/database/models"
	dbtest "github.com/bargom/expensedb/internal/database/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Add(t *testing.T) {
	db := dbtest.SetupTestDB(t)
	defer dbtest.TeardownTestDB(t, db)

	repo := NewUserRepository(db, db.Dialect())
	ctx := context.Background()

	t.Run("round trips through get", func(t *testing.T) {
		user := models.NewUser("alice", "$2a$10$opaque")
		user.Status = models.StatusInactive

		id, err := repo.Add(ctx, user)
		require.NoError(t, err)
		assert.Positive(t, id)

		found, err := repo.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, id, found.ID)
		assert.Equal(t, "alice", found.Username)
		assert.Equal(t, "$2a$10$opaque", found.Password)
		assert.Equal(t, models.StatusInactive, found.Status)
	})

	t.Run("fails on duplicate username", func(t *testing.T) {
		_, err := repo.Add(ctx, models.NewUser("bob", "x"))
		require.NoError(t, err)

		_, err = repo.Add(ctx, models.NewUser("bob", "y"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UNIQUE constraint failed")
	})

	t.Run("identities increase", func(t *testing.T) {
		first, err := repo.Add(ctx, models.NewUser(dbtest.UniqueName("u"), "x"))
		require.NoError(t, err)
		second, err := repo.Add(ctx, models.NewUser(dbtest.UniqueName("u"), "x"))
		require.NoError(t, err)
		assert.Greater(t, second, first)
	})
}

func TestUserRepository_UpdateDelete(t *testing.T) {
	db := dbtest.SetupTestDB(t)
	defer dbtest.TeardownTestDB(t, db)

	repo := NewUserRepository(db, db.Dialect())
	ctx := context.Background()

	id, err := repo.Add(ctx, models.NewUser("carol", "old"))
	require.NoError(t, err)

	t.Run("update reports a match", func(t *testing.T) {
		ok, err := repo.Update(ctx, id, &models.User{Username: "carol", Password: "new", Status: models.StatusActive})
		require.NoError(t, err)
		assert.True(t, ok)

		found, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "new", found.Password)
	})

	t.Run("update of missing user reports no match", func(t *testing.T) {
		ok, err := repo.Update(ctx, id+100, models.NewUser("nobody", "x"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete cascades to expenses and chats", func(t *testing.T) {
		data := dbtest.SeedTestData(t, db)

		ok, err := repo.Delete(ctx, data.User.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		expenses, err := NewExpenseRepository(db, db.Dialect()).GetBy(ctx, Criteria{"user_id": data.User.ID})
		require.NoError(t, err)
		assert.Empty(t, expenses)

		chats, err := NewChatHistoryRepository(db, db.Dialect()).GetBy(ctx, Criteria{"user_id": data.User.ID})
		require.NoError(t, err)
		assert.Empty(t, chats)
	})

	t.Run("delete of missing user reports false", func(t *testing.T) {
		ok, err := repo.Delete(ctx, 99999)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
