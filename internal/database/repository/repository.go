// Package repository implements the repository pattern for data access.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/pkg/logging"
	"github.com/bargom/expensedb/pkg/metrics"
)

// ErrUnknownField is returned when GetBy criteria name a field the entity does not have.
var ErrUnknownField = errors.New("unknown field")

// Querier is an interface that can execute queries.
// *sql.DB, *sql.Conn, *sql.Tx and *database.Conn implement this interface.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Criteria maps field names to the exact values a record must match.
// A nil value matches NULL.
type Criteria map[string]any

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// column is one entry of an entity's select list.
type column struct {
	field string // name accepted by GetBy
	expr  string // SQL expression, qualified when the table is aliased
}

// table describes how an entity maps onto its table.
type table[T any] struct {
	name     string
	alias    string
	idColumn string

	// columns is the select list, in the order scan reads it
	columns []column
	join    string
	scan    func(scanner) (*T, error)

	insertColumns []string
	insertValues  func(*T) []any
	updateColumns []string
	updateValues  func(*T) []any
}

func (t table[T]) idExpr() string {
	if t.alias == "" {
		return t.idColumn
	}
	return t.alias + "." + t.idColumn
}

func (t table[T]) from() string {
	from := t.name
	if t.alias != "" {
		from += " " + t.alias
	}
	if t.join != "" {
		from += " " + t.join
	}
	return from
}

// Repository provides get / get-by / get-all / add / update / delete over one table.
// A Repository is meant to be driven by one caller at a time.
type Repository[T any] struct {
	db      Querier
	dialect database.Dialect
	table   table[T]

	selectSQL string
	fields    map[string]string

	// closer is the owned connection, nil when the Querier belongs to the caller
	closer io.Closer

	logger        *logging.Logger
	metrics       *metrics.DBMetrics
	slowThreshold time.Duration
}

func newRepository[T any](db Querier, dialect database.Dialect, t table[T], opts []Option) *Repository[T] {
	o := newOptions(opts)

	cols := make([]string, len(t.columns))
	fields := make(map[string]string, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.expr
		fields[c.field] = c.expr
	}

	return &Repository[T]{
		db:            db,
		dialect:       dialect,
		table:         t,
		selectSQL:     "SELECT " + strings.Join(cols, ", ") + " FROM " + t.from(),
		fields:        fields,
		logger:        o.logger.WithModule("repository").WithTable(t.name),
		metrics:       o.metrics,
		slowThreshold: o.slowThreshold,
	}
}

// openRepository opens a dedicated connection from cfg and builds a Repository that owns it.
func openRepository[T any](ctx context.Context, cfg database.Config, t table[T], opts []Option) (*Repository[T], error) {
	conn, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s repository: %w", t.name, err)
	}

	r := newRepository(conn, conn.Dialect(), t, opts)
	r.closer = conn
	if r.metrics != nil {
		r.metrics.ConnectionOpened(t.name)
	}
	r.logger.Debug("repository opened", "driver", cfg.Driver.String())
	return r, nil
}

// Table returns the name of the table the repository reads and writes.
func (r *Repository[T]) Table() string {
	return r.table.name
}

// Fields returns the field names accepted by GetBy, sorted.
func (r *Repository[T]) Fields() []string {
	out := make([]string, 0, len(r.fields))
	for f := range r.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Get returns the record with the given identity, or nil when there is none.
func (r *Repository[T]) Get(ctx context.Context, id int64) (entity *T, err error) {
	c := r.begin(ctx, metrics.OperationSelect, "get")
	c.entityID = strconv.FormatInt(id, 10)
	defer func() { c.end(err) }()

	query := r.selectSQL + " WHERE " + r.table.idExpr() + " = ?"
	entity, err = r.table.scan(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.rows = 1
	return entity, nil
}

// GetBy returns every record whose fields equal all the given values, ordered by identity.
// Empty criteria return every record.
func (r *Repository[T]) GetBy(ctx context.Context, criteria Criteria) ([]*T, error) {
	if len(criteria) == 0 {
		return r.GetAll(ctx)
	}

	keys := make([]string, 0, len(criteria))
	for k := range criteria {
		if _, ok := r.fields[k]; !ok {
			return nil, fmt.Errorf("%w %q for %s", ErrUnknownField, k, r.table.name)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		v := criteria[k]
		if v == nil {
			clauses = append(clauses, r.fields[k]+" IS NULL")
			continue
		}
		clauses = append(clauses, r.fields[k]+" = ?")
		args = append(args, v)
	}

	if r.logger.Enabled(ctx, slog.LevelDebug) {
		attrs := make([]any, 0, len(criteria))
		for _, a := range logging.SafeAttrs(criteria) {
			attrs = append(attrs, a)
		}
		r.logger.DebugContext(ctx, "get_by", slog.Group("criteria", attrs...))
	}

	query := r.selectSQL + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY " + r.table.idExpr()
	return r.query(ctx, "get_by", query, args...)
}

// GetAll returns every record, ordered by identity.
func (r *Repository[T]) GetAll(ctx context.Context) ([]*T, error) {
	return r.query(ctx, "get_all", r.selectSQL+" ORDER BY "+r.table.idExpr())
}

// Add inserts entity and returns the identity the store assigned to it.
// The entity's own ID and timestamps are ignored.
func (r *Repository[T]) Add(ctx context.Context, entity *T) (id int64, err error) {
	c := r.begin(ctx, metrics.OperationInsert, "add")
	defer func() { c.end(err) }()

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table.name,
		strings.Join(r.table.insertColumns, ", "),
		database.Placeholders(len(r.table.insertColumns)),
	)
	args := r.table.insertValues(entity)

	if r.dialect.ReturnsID() {
		query += " RETURNING " + r.table.idColumn
		if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...).Scan(&id); err != nil {
			return 0, err
		}
		c.rows = 1
		return id, nil
	}

	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.rows = 1
	return id, nil
}

// Update overwrites the mutable fields of the record with the given identity.
// It reports whether a record matched.
func (r *Repository[T]) Update(ctx context.Context, id int64, entity *T) (updated bool, err error) {
	c := r.begin(ctx, metrics.OperationUpdate, "update")
	c.entityID = strconv.FormatInt(id, 10)
	defer func() { c.end(err) }()

	sets := make([]string, 0, len(r.table.updateColumns)+1)
	for _, col := range r.table.updateColumns {
		sets = append(sets, col+" = ?")
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		r.table.name, strings.Join(sets, ", "), r.table.idColumn)
	args := append(r.table.updateValues(entity), id)

	n, err := r.exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	c.rows = n
	return n > 0, nil
}

// Delete removes the record with the given identity and reports whether one was removed.
func (r *Repository[T]) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	c := r.begin(ctx, metrics.OperationDelete, "delete")
	c.entityID = strconv.FormatInt(id, 10)
	defer func() { c.end(err) }()

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", r.table.name, r.table.idColumn)
	n, err := r.exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	c.rows = n
	return n > 0, nil
}

// Close releases the connection the repository owns.
// It is a no-op for repositories built on a caller-owned Querier.
func (r *Repository[T]) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	if r.metrics != nil {
		r.metrics.ConnectionClosed(r.table.name)
	}
	r.logger.Debug("repository closed")
	return err
}

// txBeginner is implemented by Queriers that can start a transaction.
// *sql.DB, *sql.Conn and *database.Conn implement it; *sql.Tx does not.
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// addBatch inserts all entities and returns the number of rows inserted.
// Each statement is a multi-row insert sized to the dialect's parameter limit.
func (r *Repository[T]) addBatch(ctx context.Context, entities []*T) (inserted int64, err error) {
	if len(entities) == 0 {
		return 0, nil
	}

	c := r.begin(ctx, metrics.OperationInsert, "add_batch")
	defer func() { c.end(err) }()

	cols := strings.Join(r.table.insertColumns, ", ")
	row := "(" + database.Placeholders(len(r.table.insertColumns)) + ")"

	n, err := r.inChunks(ctx, len(entities), len(r.table.insertColumns), func(q Querier, start, end int) (int64, error) {
		rows := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*len(r.table.insertColumns))
		for _, e := range entities[start:end] {
			rows = append(rows, row)
			args = append(args, r.table.insertValues(e)...)
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", r.table.name, cols, strings.Join(rows, ", "))
		return r.execOn(ctx, q, query, args...)
	})
	if err != nil {
		return 0, err
	}
	c.rows = n
	return n, nil
}

// deleteBatch removes every record whose identity is in ids and reports whether any was removed.
func (r *Repository[T]) deleteBatch(ctx context.Context, ids []int64) (deleted bool, err error) {
	if len(ids) == 0 {
		return false, nil
	}

	c := r.begin(ctx, metrics.OperationDelete, "delete_batch")
	defer func() { c.end(err) }()

	n, err := r.inChunks(ctx, len(ids), 1, func(q Querier, start, end int) (int64, error) {
		args := make([]any, 0, end-start)
		for _, id := range ids[start:end] {
			args = append(args, id)
		}
		query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
			r.table.name, r.table.idColumn, database.Placeholders(end-start))
		return r.execOn(ctx, q, query, args...)
	})
	if err != nil {
		return false, err
	}
	c.rows = n
	return n > 0, nil
}

// inChunks calls run over consecutive [start, end) ranges of n items so that no
// statement exceeds the dialect's parameter limit, and sums the affected rows.
// More than one chunk runs inside a transaction when the Querier can begin one.
func (r *Repository[T]) inChunks(ctx context.Context, n, paramsPerItem int, run func(q Querier, start, end int) (int64, error)) (int64, error) {
	size := max(r.dialect.MaxParams()/paramsPerItem, 1)
	if n <= size {
		return run(r.db, 0, n)
	}

	b, ok := r.db.(txBeginner)
	if !ok {
		return runChunks(r.db, n, size, run)
	}

	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	total, err := runChunks(tx, n, size, run)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

func runChunks(q Querier, n, size int, run func(q Querier, start, end int) (int64, error)) (int64, error) {
	var total int64
	for start := 0; start < n; start += size {
		affected, err := run(q, start, min(start+size, n))
		if err != nil {
			return 0, err
		}
		total += affected
	}
	return total, nil
}

// query runs a select and scans every row. The result is never nil.
func (r *Repository[T]) query(ctx context.Context, method, query string, args ...any) (out []*T, err error) {
	c := r.begin(ctx, metrics.OperationSelect, method)
	defer func() { c.end(err) }()

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = make([]*T, 0)
	for rows.Next() {
		entity, err := r.table.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	c.rows = int64(len(out))
	return out, nil
}

// exec runs a write and returns the number of rows it affected.
func (r *Repository[T]) exec(ctx context.Context, query string, args ...any) (int64, error) {
	return r.execOn(ctx, r.db, query, args...)
}

func (r *Repository[T]) execOn(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// call tracks one repository method for logging and metrics.
type call struct {
	ctx     context.Context
	observe func(*call, error)
	op      metrics.Operation
	method  string
	start   time.Time
	timer   *metrics.QueryTimer
	rows    int64

	// entityID is set for calls addressing one record
	entityID string
}

func (r *Repository[T]) begin(ctx context.Context, op metrics.Operation, method string) *call {
	c := &call{ctx: ctx, observe: r.observe, op: op, method: method, start: time.Now()}
	if r.metrics != nil {
		c.timer = r.metrics.NewQueryTimer(op, r.table.name)
	}
	return c
}

func (c *call) end(err error) {
	c.observe(c, err)
}

func (r *Repository[T]) observe(c *call, err error) {
	elapsed := time.Since(c.start)

	if c.timer != nil {
		c.timer.Done(err)
		if err == nil {
			r.metrics.RecordRows(c.op, r.table.name, c.rows)
		}
	}

	logger := r.logger
	if c.entityID != "" {
		logger = logger.WithEntity(r.table.name, c.entityID)
	}

	if err != nil {
		logger.DebugContext(c.ctx, "query failed",
			"operation", c.method,
			"duration", elapsed,
			"error", err,
		)
		return
	}

	if r.slowThreshold > 0 && elapsed > r.slowThreshold {
		logger.WarnContext(c.ctx, "slow query",
			"operation", c.method,
			"duration", elapsed,
			"threshold", r.slowThreshold,
			"rows", c.rows,
		)
		return
	}

	logger.DebugContext(c.ctx, "query executed",
		"operation", c.method,
		"duration", elapsed,
		"rows", c.rows,
	)
}
