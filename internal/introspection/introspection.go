// Package introspection resolves alignment-table field types from
// PostgreSQL's information_schema. The catalog is the single source of truth
// for which identifiers may appear in query text: every table and column name
// interpolated into SQL must first pass through a TableSchema produced here.
package introspection

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tanglisha/text-pair/internal/dbexec"
	"github.com/tanglisha/text-pair/internal/sqltype"
	"github.com/tanglisha/text-pair/internal/sqlutil"
)

// RowIDColumn is the synthetic ordering column present in every schema.
// It does not exist in the catalog but is always filterable as an integer.
const RowIDColumn = "rowid"

// SchemaLookupError reports a failed catalog lookup: an unknown or invalid
// table identifier, or an unreachable catalog. It surfaces as a client error.
type SchemaLookupError struct {
	Table string
	Err   error
}

func (e *SchemaLookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema lookup for table %q: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("schema lookup for table %q failed", e.Table)
}

func (e *SchemaLookupError) Unwrap() error { return e.Err }

// TableSchema holds one table's resolved field types, fetched fresh from the
// catalog for each request. Columns preserves catalog ordinal order with the
// synthetic rowid appended last.
type TableSchema struct {
	Table   string
	Columns []string
	Types   map[string]sqltype.FieldType
}

// FieldType returns the filter category for a column, TypeUnknown when the
// column is not in the catalog.
func (s *TableSchema) FieldType(column string) sqltype.FieldType {
	return s.Types[column]
}

// HasColumn reports whether the column exists in this table's catalog entry
// (including the synthetic rowid). Callers use this as the identifier
// allow-list before interpolating a column name into query text.
func (s *TableSchema) HasColumn(column string) bool {
	_, ok := s.Types[column]
	return ok
}

// Queryer provides query access for catalog lookups.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (dbexec.Rows, error)
}

// FieldTypes looks up the column catalog for table and classifies each
// column's declared type. A table with no catalog rows does not exist and
// yields a SchemaLookupError, as does any catalog query failure.
func FieldTypes(ctx context.Context, db Queryer, table string) (*TableSchema, error) {
	ctx, span := startSpan(ctx, "introspection.field_types",
		attribute.String("db.table", table),
	)
	defer span.End()

	if !sqlutil.ValidIdentifier(table) {
		err := &SchemaLookupError{Table: table, Err: fmt.Errorf("invalid table identifier")}
		recordSpanError(span, err)
		return nil, err
	}

	query := `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position
	`

	rows, err := db.QueryContext(ctx, query, table)
	if err != nil {
		recordSpanError(span, err)
		return nil, &SchemaLookupError{Table: table, Err: err}
	}
	defer func() {
		_ = rows.Close()
	}()

	schema := &TableSchema{
		Table: table,
		Types: make(map[string]sqltype.FieldType),
	}
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			recordSpanError(span, err)
			return nil, &SchemaLookupError{Table: table, Err: err}
		}
		fieldType := sqltype.Classify(dataType)
		if fieldType == sqltype.TypeUnknown {
			slog.DebugContext(ctx, "column type not filterable",
				"table", table, "column", name, "data_type", dataType)
		}
		schema.Columns = append(schema.Columns, name)
		schema.Types[name] = fieldType
	}
	if err := rows.Err(); err != nil {
		recordSpanError(span, err)
		return nil, &SchemaLookupError{Table: table, Err: err}
	}
	if len(schema.Columns) == 0 {
		err := &SchemaLookupError{Table: table, Err: fmt.Errorf("table not found in catalog")}
		recordSpanError(span, err)
		return nil, err
	}

	if _, ok := schema.Types[RowIDColumn]; !ok {
		schema.Columns = append(schema.Columns, RowIDColumn)
		schema.Types[RowIDColumn] = sqltype.TypeInteger
	}

	return schema, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("text-pair/introspection")
	ctx, span := tracer.Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

func recordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
