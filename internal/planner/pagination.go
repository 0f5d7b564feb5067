package planner

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/tanglisha/text-pair/internal/sqlutil"
)

// PageSize is the fixed number of alignments per page. It is a contract
// value, not a tunable.
const PageSize = 50

// Auxiliary table naming and the keyset columns, shared by every alignment
// database.
const (
	orderingSuffix = "_ordered"
	groupsSuffix   = "_groups"

	// OrderingKey is the monotonic row-sequence column paging is keyed on.
	OrderingKey = "rowid_ordered"
	// orderingJoin relates an ordering row to its alignment row.
	orderingJoin = "source_year_target_year"
)

// OrderedTable names the auxiliary ordering table of an alignment table.
func OrderedTable(table string) string { return table + orderingSuffix }

// GroupsTable names the groups-index table of an alignment table.
func GroupsTable(table string) string { return table + groupsSuffix }

// SQLPlan is one executable statement with its bound arguments.
type SQLPlan struct {
	SQL  string
	Args []interface{}
}

// PlanPage builds the keyset page query: alignment rows joined with their
// ordering rows, bounded strictly by the anchor. Forward pages take rows
// above the anchor in ascending order; backward pages take rows below it in
// descending order (the executor re-reverses them). The anchor is bound, not
// interpolated.
func PlanPage(table string, where *WhereClause, anchor int, backward bool) (SQLPlan, error) {
	builder := sq.Select("o."+sqlutil.QuoteIdentifier(OrderingKey), "m.*").
		From(sqlutil.QuoteIdentifier(table) + " AS m").
		Join(sqlutil.QuoteIdentifier(OrderedTable(table)) + " AS o ON o." +
			sqlutil.QuoteIdentifier(orderingJoin) + " = m." + sqlutil.QuoteIdentifier("rowid"))

	if !where.Empty() {
		builder = builder.Where(where.Condition)
	}

	orderingColumn := "o." + sqlutil.QuoteIdentifier(OrderingKey)
	if backward {
		builder = builder.Where(sq.Lt{orderingColumn: anchor}).OrderBy(orderingColumn + " DESC")
	} else {
		builder = builder.Where(sq.Gt{orderingColumn: anchor}).OrderBy(orderingColumn)
	}

	sqlText, args, err := builder.Limit(PageSize).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return SQLPlan{}, err
	}
	return SQLPlan{SQL: sqlText, Args: args}, nil
}

// PlanGroupCounts builds the batch member-count lookup for the group IDs
// observed in a page. Callers must not invoke it with an empty ID list; the
// enrichment is skipped entirely when no group IDs were observed.
func PlanGroupCounts(table string, groupIDs []int64) (SQLPlan, error) {
	sqlText, args, err := sq.Select(
		sqlutil.QuoteIdentifier("group_id"),
		sqlutil.QuoteIdentifier("count"),
	).
		From(sqlutil.QuoteIdentifier(GroupsTable(table))).
		Where(sq.Eq{sqlutil.QuoteIdentifier("group_id"): groupIDs}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return SQLPlan{}, err
	}
	return SQLPlan{SQL: sqlText, Args: args}, nil
}
