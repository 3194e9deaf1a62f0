package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewExpense(t *testing.T) {
	e := NewExpense(7, 3, "groceries", decimal.RequireFromString("42.50"), "2024-03")

	assert.Zero(t, e.ID)
	assert.Equal(t, "groceries", e.Name)
	assert.True(t, decimal.RequireFromString("42.5").Equal(e.Amount))
	assert.Equal(t, "2024-03", e.MonthYear)
	assert.Equal(t, int64(7), e.UserID)
	assert.Equal(t, int64(3), e.CategoryID)
	assert.Empty(t, e.CategoryName)
	assert.Equal(t, StatusActive, e.Status)
	assert.True(t, e.CreatedAt.IsZero())
}

func TestNewExpenseCategory(t *testing.T) {
	c := NewExpenseCategory("Food")

	assert.Zero(t, c.ID)
	assert.Equal(t, "Food", c.Name)
	assert.Equal(t, StatusActive, c.Status)
}

func TestNewUser(t *testing.T) {
	u := NewUser("alice", "hash")

	assert.Zero(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "hash", u.Password)
	assert.Equal(t, StatusActive, u.Status)
}

func TestNewChatHistory(t *testing.T) {
	c := NewChatHistory(7, RoleAssistant, "hello")

	assert.Zero(t, c.ID)
	assert.Equal(t, int64(7), c.UserID)
	assert.Equal(t, RoleAssistant, c.RoleID)
	assert.Equal(t, "hello", c.Content)
	assert.Equal(t, StatusActive, c.Status)
}

func TestMonthYearOf(t *testing.T) {
	assert.Equal(t, "2024-03", MonthYearOf(time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "1999-12", MonthYearOf(time.Date(1999, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, Status(0), StatusInactive)
	assert.Equal(t, Status(1), StatusActive)
	assert.Equal(t, "inactive", StatusInactive.String())
	assert.Equal(t, "active", StatusActive.String())
	assert.Equal(t, "unknown", Status(9).String())
}

func TestRole(t *testing.T) {
	assert.Equal(t, Role(0), RoleUser)
	assert.Equal(t, Role(1), RoleAssistant)
	assert.Equal(t, Role(2), RoleSystem)
	assert.Equal(t, "user", RoleUser.String())
	assert.Equal(t, "assistant", RoleAssistant.String())
	assert.Equal(t, "system", RoleSystem.String())
	assert.Equal(t, "unknown", Role(-1).String())
}
