package setup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/models"
	dbtest "github.com/bargom/expensedb/internal/database/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection(t *testing.T) {
	ctx := context.Background()

	t.Run("opens all repositories on one store", func(t *testing.T) {
		cfg := dbtest.SetupTestFile(t)

		conn, err := NewConnection(ctx, cfg)
		require.NoError(t, err)
		defer conn.Close()

		assert.Equal(t, database.DriverSQLite, conn.Driver())

		repos := conn.Repositories()
		require.NotNil(t, repos.Expenses)
		require.NotNil(t, repos.Categories)
		require.NotNil(t, repos.Users)
		require.NotNil(t, repos.Chats)

		userID, err := repos.Users.Add(ctx, models.NewUser("dana", "hash"))
		require.NoError(t, err)

		// written through one connection, visible through another
		n, err := repos.Chats.AddBatch(ctx, []*models.ChatHistory{
			models.NewChatHistory(userID, models.RoleUser, "hi"),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("close releases every repository", func(t *testing.T) {
		cfg := dbtest.SetupTestFile(t)

		conn, err := NewConnection(ctx, cfg)
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		_, err = conn.Repositories().Users.GetAll(ctx)
		assert.Error(t, err)
	})

	t.Run("sqlite without a file path is rejected", func(t *testing.T) {
		for _, path := range []string{"", ":memory:"} {
			conn, err := NewConnection(ctx, database.Config{Driver: database.DriverSQLite, Path: path})
			require.ErrorIs(t, err, ErrInMemorySQLite)
			assert.Nil(t, conn)
		}
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := NewConnection(ctx, database.Config{Driver: "oracle"})
		require.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUnsupportedDriver)
	})

	t.Run("must panics on error", func(t *testing.T) {
		assert.Panics(t, func() {
			MustNewConnection(ctx, database.Config{Driver: "oracle"})
		})
	})
}

func TestNewMigrator(t *testing.T) {
	ctx := context.Background()
	cfg := database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "expenses.db"),
	}

	migrator, conn, err := NewMigrator(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrator.MigrateUp(ctx))

	status, err := migrator.Status(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, status)
	for _, m := range status {
		assert.NotNil(t, m.AppliedAt, "migration %s", m.Version)
	}
}
