package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bargom/expensedb/internal/database/models"
	"github.com/bargom/expensedb/internal/database/repository"
	"github.com/bargom/expensedb/pkg/logging"
)

// field is one named value of a printed record.
type field struct {
	Name  string
	Value string
}

// record is a printable row, fields in column order.
type record []field

// resource reads and deletes the records of one table for the CLI.
type resource interface {
	list(ctx context.Context, criteria repository.Criteria) ([]record, error)
	get(ctx context.Context, id int64) (record, error)
	delete(ctx context.Context, id int64) (bool, error)
}

// repoResource adapts a repository to resource.
type repoResource[T any] struct {
	repo   repository.Repo[T]
	fields func(*T) record
}

func (r repoResource[T]) list(ctx context.Context, criteria repository.Criteria) ([]record, error) {
	entities, err := r.repo.GetBy(ctx, criteria)
	if err != nil {
		return nil, err
	}
	out := make([]record, len(entities))
	for i, e := range entities {
		out[i] = redact(r.fields(e))
	}
	return out, nil
}

func (r repoResource[T]) get(ctx context.Context, id int64) (record, error) {
	e, err := r.repo.Get(ctx, id)
	if err != nil || e == nil {
		return nil, err
	}
	return redact(r.fields(e)), nil
}

func (r repoResource[T]) delete(ctx context.Context, id int64) (bool, error) {
	return r.repo.Delete(ctx, id)
}

// tableAliases maps accepted table names to their canonical name.
var tableAliases = map[string]string{
	"expenses":           "expenses",
	"expense":            "expenses",
	"categories":         "expense_categories",
	"category":           "expense_categories",
	"expense_categories": "expense_categories",
	"users":              "users",
	"user":               "users",
	"chats":              "chats",
	"chat":               "chats",
	"chat_history":       "chats",
}

// tableNames returns the canonical table names, sorted.
func tableNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range tableAliases {
		if !seen[t] {
			seen[t] = true
			names = append(names, t)
		}
	}
	sort.Strings(names)
	return names
}

// resolveResource returns the resource for the named table.
func resolveResource(repos *repository.Repositories, name string) (resource, string, error) {
	table, ok := tableAliases[strings.ToLower(name)]
	if !ok {
		return nil, "", fmt.Errorf("unknown table %q (expected one of %s)", name, strings.Join(tableNames(), ", "))
	}

	switch table {
	case "expenses":
		return repoResource[models.Expense]{repo: repos.Expenses, fields: expenseFields}, table, nil
	case "expense_categories":
		return repoResource[models.ExpenseCategory]{repo: repos.Categories, fields: categoryFields}, table, nil
	case "users":
		return repoResource[models.User]{repo: repos.Users, fields: userFields}, table, nil
	default:
		return repoResource[models.ChatHistory]{repo: repos.Chats, fields: chatFields}, table, nil
	}
}

func expenseFields(e *models.Expense) record {
	return record{
		{"expense_id", itoa(e.ID)},
		{"expense_name", e.Name},
		{"expense_amount", e.Amount.StringFixed(2)},
		{"month_year", e.MonthYear},
		{"user_id", itoa(e.UserID)},
		{"exp_category_id", itoa(e.CategoryID)},
		{"category_name", e.CategoryName},
		{"status", e.Status.String()},
		{"created_at", timestamp(e.CreatedAt)},
		{"updated_at", timestamp(e.UpdatedAt)},
	}
}

func categoryFields(c *models.ExpenseCategory) record {
	return record{
		{"exp_category_id", itoa(c.ID)},
		{"category_name", c.Name},
		{"status", c.Status.String()},
		{"created_at", timestamp(c.CreatedAt)},
		{"updated_at", timestamp(c.UpdatedAt)},
	}
}

func userFields(u *models.User) record {
	return record{
		{"user_id", itoa(u.ID)},
		{"username", u.Username},
		{"password", u.Password},
		{"status", u.Status.String()},
		{"created_at", timestamp(u.CreatedAt)},
		{"updated_at", timestamp(u.UpdatedAt)},
	}
}

func chatFields(c *models.ChatHistory) record {
	return record{
		{"chat_id", itoa(c.ID)},
		{"user_id", itoa(c.UserID)},
		{"role_id", c.RoleID.String()},
		{"content", c.Content},
		{"status", c.Status.String()},
		{"created_at", timestamp(c.CreatedAt)},
		{"updated_at", timestamp(c.UpdatedAt)},
	}
}

// redact masks sensitive fields such as password.
func redact(r record) record {
	for i := range r {
		if logging.IsSensitiveField(r[i].Name) {
			r[i].Value = "[REDACTED]"
		}
	}
	return r
}

// parseCriteria turns field=value arguments into GetBy criteria.
// Integers are bound as integers, status and role names as their codes, and "null" matches NULL.
func parseCriteria(args []string) (repository.Criteria, error) {
	criteria := make(repository.Criteria, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q (expected field=value)", arg)
		}
		if _, dup := criteria[key]; dup {
			return nil, fmt.Errorf("field %q given more than once", key)
		}

		if strings.EqualFold(value, "null") {
			criteria[key] = nil
			continue
		}
		if v := enumValue(key, value); v != nil {
			criteria[key] = v
			continue
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			criteria[key] = n
			continue
		}
		criteria[key] = value
	}
	return criteria, nil
}

// enumValue maps status and role names to their stored values.
func enumValue(key, value string) any {
	switch key {
	case "status":
		for _, s := range []models.Status{models.StatusInactive, models.StatusActive} {
			if strings.EqualFold(s.String(), value) {
				return s
			}
		}
	case "role_id":
		for _, r := range []models.Role{models.RoleUser, models.RoleAssistant, models.RoleSystem} {
			if strings.EqualFold(r.String(), value) {
				return r
			}
		}
	}
	return nil
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
