// Package models defines domain models for the database layer.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthYearLayout is the time layout of Expense.MonthYear ("2024-03").
const MonthYearLayout = "2006-01"

// Status marks a record as active or inactive.
type Status int

const (
	StatusInactive Status = 0
	StatusActive   Status = 1
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	default:
		return "unknown"
	}
}

// Role identifies the author of a chat message.
type Role int

const (
	RoleUser      Role = 0
	RoleAssistant Role = 1
	RoleSystem    Role = 2
)

// String returns the string representation of Role.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	case RoleSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Expense represents a single spending record.
// CategoryName is filled from the category join on reads and ignored on writes.
type Expense struct {
	ID           int64
	Name         string
	Amount       decimal.Decimal
	MonthYear    string
	UserID       int64
	CategoryID   int64
	CategoryName string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExpenseCategory represents a named spending category.
type ExpenseCategory struct {
	ID        int64
	Name      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User represents an account. Password is stored as given.
type User struct {
	ID        int64
	Username  string
	Password  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatHistory represents one message of a conversation.
type ChatHistory struct {
	ID        int64
	UserID    int64
	RoleID    Role
	Content   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MonthYearOf formats t as an Expense.MonthYear value.
func MonthYearOf(t time.Time) string {
	return t.Format(MonthYearLayout)
}

// NewExpense creates a new active Expense.
func NewExpense(userID, categoryID int64, name string, amount decimal.Decimal, monthYear string) *Expense {
	return &Expense{
		Name:       name,
		Amount:     amount,
		MonthYear:  monthYear,
		UserID:     userID,
		CategoryID: categoryID,
		Status:     StatusActive,
	}
}

// NewExpenseCategory creates a new active ExpenseCategory.
func NewExpenseCategory(name string) *ExpenseCategory {
	return &ExpenseCategory{
		Name:   name,
		Status: StatusActive,
	}
}

// NewUser creates a new active User.
func NewUser(username, password string) *User {
	return &User{
		Username: username,
		Password: password,
		Status:   StatusActive,
	}
}

// NewChatHistory creates a new active chat message.
func NewChatHistory(userID int64, role Role, content string) *ChatHistory {
	return &ChatHistory{
		UserID:  userID,
		RoleID:  role,
		Content: content,
		Status:  StatusActive,
	}
}
