package repository

import (
	"context"
	"testing"

	"github.com/bargom/expensedb/internal/database/models"
	dbtest "github.com/bargom/expensedb/internal/database/testing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseRepository_Add(t *testing.T) {
	db := dbtest.SetupTestDB(t)
	defer dbtest.TeardownTestDB(t, db)

	data := dbtest.SeedTestData(t, db)
	repo := NewExpenseRepository(db, db.Dialect())
	ctx := context.Background()

	t.Run("round trips through get", func(t *testing.T) {
		expense := models.NewExpense(data.User.ID, data.Transport.ID, "taxi", decimal.RequireFromString("18.90"), "2024-05")
		expense.ID = 777

		id, err := repo.Add(ctx, expense)
		require.NoError(t, err)
		assert.NotEqual(t, int64(777), id, "identity is assigned by the store")

		found, err := repo.Get(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, found)

		assert.Equal(t, id, found.ID)
		assert.Equal(t, "taxi", found.Name)
		assert.True(t, decimal.RequireFromString("18.9").Equal(found.Amount), "amount %s", found.Amount)
		assert.Equal(t, "2024-05", found.MonthYear)
		assert.Equal(t, data.User.ID, found.UserID)
		assert.Equal(t, data.Transport.ID, found.CategoryID)
		assert.Equal(t, "Transport", found.CategoryName)
		assert.Equal(t, models.StatusActive, found.Status)
		assert.False(t, found.CreatedAt.IsZero())
	})

	t.Run("fails on unknown category", func(t *testing.T) {
		expense := models.NewExpense(data.User.ID, 424242, "nowhere", decimal.NewFromInt(1), "2024-05")

		_, err := repo.Add(ctx, expense)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FOREIGN KEY constraint failed")
	})
}

func TestExpenseRepository_GetByCategory(t *testing.T) {
	db := dbtest.SetupTestDB(t)
	defer dbtest.TeardownTestDB(t, db)

	data := dbtest.SeedTestData(t, db)
	repo := NewExpenseRepository(db, db.Dialect())
	ctx := context.Background()

	found, err := repo.GetBy(ctx, Criteria{"exp_category_id": data.Groceries.ID})
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "market", found[0].Name)
	assert.Equal(t, "bakery", found[1].Name)
	for _, e := range found {
		assert.Equal(t, data.Groceries.ID, e.CategoryID)
		assert.Equal(t, "Groceries", e.CategoryName)
	}

	t.Run("filter on joined category name", func(t *testing.T) {
		byName, err := repo.GetBy(ctx, Criteria{"category_name": "Groceries"})
		require.NoError(t, err)
		assert.Equal(t, found, byName)
	})
}

func TestExpenseRepository_Update(t *testing.T) {
	db := dbtest.SetupTestDB(t)
	defer dbtest.TeardownTestDB(t, db)

	data := dbtest.SeedTestData(t, db)
	repo := NewExpenseRepository(db, db.Dialect())
	ctx := context.Background()

	target := data.Expenses[0]

	t.Run("moves expense to another category", func(t *testing.T) {
		changed := *target
		changed.Name = "supermarket"
		changed.Amount = decimal.RequireFromString("30.05")
		changed.CategoryID = data.Transport.ID
		changed.CategoryName = "ignored on write"

		ok, err := repo.Update(ctx, target.ID, &changed)
		require.NoError(t, err)
		assert.True(t, ok)

		found, err := repo.Get(ctx, target.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "supermarket", found.Name)
		assert.True(t, decimal.RequireFromString("30.05").Equal(found.Amount))
		assert.Equal(t, data.Transport.ID, found.CategoryID)
		assert.Equal(t, "Transport", found.CategoryName)
	})

	t.Run("owner is fixed at insert", func(t *testing.T) {
		other := models.NewUser(dbtest.UniqueName("user"), "hash")
		otherID, err := NewUserRepository(db, db.Dialect()).Add(ctx, other)
		require.NoError(t, err)

		changed := *target
		changed.UserID = otherID

		ok, err := repo.Update(ctx, target.ID, &changed)
		require.NoError(t, err)
		assert.True(t, ok)

		found, err := repo.Get(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, data.User.ID, found.UserID)
	})
}

func TestExpenseRepository_Delete(t *testing.T) {
	db := dbtest.SetupTestDB(t)
	defer dbtest.TeardownTestDB(t, db)

	data := dbtest.SeedTestData(t, db)
	repo := NewExpenseRepository(db, db.Dialect())
	ctx := context.Background()

	ok, err := repo.Delete(ctx, data.Expenses[1].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	remaining, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, e := range remaining {
		assert.NotEqual(t, data.Expenses[1].ID, e.ID)
	}
}
