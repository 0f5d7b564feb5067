// Package alignments implements the alignment browsing operations: paged
// search, per-document and passage-pair listings, match counts, facet and
// time-series aggregation, and passage-group resolution. Every operation is
// request-scoped and strictly sequential: schema lookup, predicate
// compilation, one primary query, and at most one enrichment query. Nothing
// is cached or retried.
package alignments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tanglisha/text-pair/internal/dbexec"
	"github.com/tanglisha/text-pair/internal/introspection"
	"github.com/tanglisha/text-pair/internal/planner"
	"github.com/tanglisha/text-pair/internal/request"
)

// Service executes alignment queries against one relational store.
type Service struct {
	db dbexec.QueryExecutor
}

// NewService returns a Service backed by db.
func NewService(db dbexec.QueryExecutor) *Service {
	return &Service{db: db}
}

// compile resolves the table's schema and compiles the request's filters
// against it.
func (s *Service) compile(ctx context.Context, table string, filters request.Filters, banality string) (*introspection.TableSchema, *planner.WhereClause, error) {
	schema, err := introspection.FieldTypes(ctx, s.db, table)
	if err != nil {
		return nil, nil, err
	}
	where, err := planner.CompileFilters(filters, schema, banality)
	if err != nil {
		return nil, nil, err
	}
	return schema, where, nil
}

// requireColumn enforces the catalog allow-list for identifiers that reach
// query text.
func requireColumn(schema *introspection.TableSchema, table, column string) error {
	if schema.HasColumn(column) {
		return nil
	}
	return &introspection.SchemaLookupError{
		Table: table,
		Err:   fmt.Errorf("column %q not in catalog", column),
	}
}

// queryRows executes one plan and scans every row into a column-keyed map.
func (s *Service) queryRows(ctx context.Context, op string, plan planner.SQLPlan) ([]map[string]interface{}, error) {
	rows, err := s.db.QueryContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	results, err := scanRows(rows)
	if err != nil {
		return nil, &StoreError{Op: op, Err: err}
	}
	return results, nil
}

// queryScalar executes one plan expected to return a single integer cell.
func (s *Service) queryScalar(ctx context.Context, op string, plan planner.SQLPlan) (int64, error) {
	rows, err := s.db.QueryContext(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return 0, &StoreError{Op: op, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	var value int64
	if rows.Next() {
		if err := rows.Scan(&value); err != nil {
			return 0, &StoreError{Op: op, Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, &StoreError{Op: op, Err: err}
	}
	return value, nil
}

// scanRows materializes rows into maps keyed by result column name. Column
// sets vary per alignment table, so scanning is fully dynamic.
func scanRows(rows dbexec.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			row[column] = convertValue(values[i])
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func convertValue(val interface{}) interface{} {
	if b, ok := val.([]byte); ok {
		return string(b)
	}
	return val
}

// toInt64 coerces the integer-ish values drivers hand back for numeric
// result columns. PostgreSQL numerics arrive as strings through
// database/sql, so string parsing is part of the contract.
func toInt64(val interface{}) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

func rowString(row map[string]interface{}, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}
