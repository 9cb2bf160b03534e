package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"
)

// dbtx is the subset of *sql.DB and *sql.Tx the repositories use, so the same
// statement helpers work inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// baseRepository provides query execution with structured logging, shared by
// the SQLite repositories.
type baseRepository struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

func newBaseRepository(db *sql.DB, table string, logger *logrus.Logger) baseRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return baseRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// logQuery logs a query with its execution time
func (r *baseRepository) logQuery(operation, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     query,
		"args":      args,
		"duration":  duration,
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query on q and logs the result
func (r *baseRepository) executeQuery(ctx context.Context, q dbtx, operation, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := q.QueryContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)
	return rows, err
}

// executeQueryRow executes a single-row query on q and logs it
func (r *baseRepository) executeQueryRow(ctx context.Context, q dbtx, operation, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := q.QueryRowContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), nil)
	return row
}

// executeExec executes a non-query statement on q and logs the result
func (r *baseRepository) executeExec(ctx context.Context, q dbtx, operation, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := q.ExecContext(ctx, query, args...)
	r.logQuery(operation, query, args, time.Since(start), err)
	return result, err
}
