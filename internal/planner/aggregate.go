package planner

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/tanglisha/text-pair/internal/sqlutil"
)

// PlanCount builds the match-count query for the compiled predicate.
func PlanCount(table string, where *WhereClause) (SQLPlan, error) {
	builder := sq.Select("COUNT(*)").From(sqlutil.QuoteIdentifier(table))
	if !where.Empty() {
		builder = builder.Where(where.Condition)
	}
	return toPlan(builder)
}

// PlanFacet builds the distinct-value count query for one facet column,
// ordered by descending count. The facet column must already be validated
// against the catalog by the caller.
func PlanFacet(table, facetColumn string, where *WhereClause) (SQLPlan, error) {
	quoted := sqlutil.QuoteIdentifier(facetColumn)
	builder := sq.Select(quoted, "COUNT(*)").
		From(sqlutil.QuoteIdentifier(table))
	if !where.Empty() {
		builder = builder.Where(where.Condition)
	}
	builder = builder.GroupBy(quoted).OrderBy("COUNT(*) DESC")
	return toPlan(builder)
}

// PlanTimeSeries buckets the side-selected year column into fixed-width
// intervals and counts rows per interval, ascending. The interval width is a
// validated positive integer; the year column is one of the two fixed side
// columns. Gap-filling happens in the executor, not in SQL.
func PlanTimeSeries(table, yearColumn string, interval int, where *WhereClause) (SQLPlan, error) {
	inner := sq.Select(fmt.Sprintf(
		"floor(%s / %d) * %d AS interval",
		sqlutil.QuoteIdentifier(yearColumn), interval, interval,
	)).From(sqlutil.QuoteIdentifier(table))
	if !where.Empty() {
		inner = inner.Where(where.Condition)
	}

	builder := sq.Select("interval AS year", "COUNT(*)").
		FromSelect(inner, "t").
		GroupBy("interval").
		OrderBy("interval")
	return toPlan(builder)
}

// PlanDocMatches builds the row query backing the per-document listing:
// all rows where the chosen column equals the chosen value, narrowed by the
// compiled predicate. The value is bound, never interpolated.
func PlanDocMatches(table, field string, value interface{}, where *WhereClause) (SQLPlan, error) {
	builder := sq.Select("*").
		From(sqlutil.QuoteIdentifier(table)).
		Where(sq.Eq{sqlutil.QuoteIdentifier(field): value})
	if !where.Empty() {
		builder = builder.Where(where.Condition)
	}
	return toPlan(builder)
}

// PlanMatches builds the unpaged row query for passage-pair listings. An
// empty predicate yields a bare SELECT with no WHERE clause.
func PlanMatches(table string, where *WhereClause) (SQLPlan, error) {
	builder := sq.Select("*").From(sqlutil.QuoteIdentifier(table))
	if !where.Empty() {
		builder = builder.Where(where.Condition)
	}
	return toPlan(builder)
}

// PlanGroupCanonical fetches the canonical passage row of a group.
func PlanGroupCanonical(table string, groupID int64) (SQLPlan, error) {
	builder := sq.Select("*").
		From(sqlutil.QuoteIdentifier(GroupsTable(table))).
		Where(sq.Eq{sqlutil.QuoteIdentifier("group_id"): groupID})
	return toPlan(builder)
}

// PlanGroupMembers fetches every alignment row belonging to a group.
func PlanGroupMembers(table string, groupID int64) (SQLPlan, error) {
	builder := sq.Select("*").
		From(sqlutil.QuoteIdentifier(table)).
		Where(sq.Eq{sqlutil.QuoteIdentifier("group_id"): groupID})
	return toPlan(builder)
}

func toPlan(builder sq.SelectBuilder) (SQLPlan, error) {
	sqlText, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return SQLPlan{}, err
	}
	return SQLPlan{SQL: sqlText, Args: args}, nil
}
