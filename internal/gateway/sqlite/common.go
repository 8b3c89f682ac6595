package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"uptask/internal/errors"
	"uptask/internal/gateway"
)

// HandleDatabaseError converts database errors to structured app errors. Deadline
// errors become timeout errors.
func HandleDatabaseError(operation string, err error, timeout time.Duration) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(operation, timeout).WithContext("cause", err.Error())
	}
	if errors.IsAppError(err) {
		return err
	}
	return errors.NewGatewayError(operation, err)
}

// HandleNoRowsError handles sql.ErrNoRows errors consistently
func HandleNoRowsError(err error, entityType string, id string) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(entityType, id)
	}
	return err
}

// ValidateRowsAffected checks if a database operation affected the expected number of rows
func ValidateRowsAffected(result sql.Result, entityType string, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewGatewayError("get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError(entityType, id)
	}
	return nil
}

// ExecuteWithRowsAffected executes a query and validates that rows were affected
func ExecuteWithRowsAffected(ctx context.Context, db execer, query string, entityType string, id string, args ...interface{}) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return ValidateRowsAffected(result, entityType, id)
}

// QuerySingle executes a query that returns a single row and scans it
func QuerySingle(ctx context.Context, db querier, t table, query string, id string, args ...interface{}) (gateway.Record, error) {
	row := db.QueryRowContext(ctx, query, args...)
	rec, err := ScanRecord(t, row)
	if err != nil {
		return nil, HandleNoRowsError(err, t.name, id)
	}
	return rec, nil
}

// QueryMultiple executes a query that returns multiple rows and scans them
func QueryMultiple(ctx context.Context, db querier, t table, query string, args ...interface{}) ([]gateway.Record, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return ScanRecords(t, rows)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
