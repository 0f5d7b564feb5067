// Package dbexec abstracts read-only SQL execution so request handlers can
// run against a fake store in tests.
package dbexec

import (
	"context"
	"database/sql"
)

// Rows is the subset of sql.Rows the scanners need. Columns is part of the
// contract because alignment rows are scanned dynamically from the catalog's
// column set rather than into fixed structs.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

// QueryExecutor runs read-only queries. The API never issues DML; every
// statement is a SELECT built by the planner.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

// PoolExecutor runs queries against the shared database handle.
type PoolExecutor struct {
	db *sql.DB
}

var _ QueryExecutor = (*PoolExecutor)(nil)

// NewPoolExecutor wraps an open database handle.
func NewPoolExecutor(db *sql.DB) *PoolExecutor {
	return &PoolExecutor{db: db}
}

func (e *PoolExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.QueryContext(ctx, query, args...)
}
