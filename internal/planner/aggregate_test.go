package planner

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWhere() *WhereClause {
	return &WhereClause{Condition: sq.Expr(`"source_author" ~* ?`, `\mDickens\M`)}
}

func TestPlanCount(t *testing.T) {
	plan, err := PlanCount("dickens_montaigne", nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "dickens_montaigne"`, plan.SQL)
	assert.Empty(t, plan.Args)

	plan, err = PlanCount("dickens_montaigne", testWhere())
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) FROM "dickens_montaigne" WHERE "source_author" ~* $1`, plan.SQL)
	assert.Equal(t, []interface{}{`\mDickens\M`}, plan.Args)
}

func TestPlanFacet(t *testing.T) {
	plan, err := PlanFacet("dickens_montaigne", "source_author", nil)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "source_author", COUNT(*) FROM "dickens_montaigne" `+
			`GROUP BY "source_author" ORDER BY COUNT(*) DESC`,
		plan.SQL)

	plan, err = PlanFacet("dickens_montaigne", "target_author", testWhere())
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "target_author", COUNT(*) FROM "dickens_montaigne" `+
			`WHERE "source_author" ~* $1 GROUP BY "target_author" ORDER BY COUNT(*) DESC`,
		plan.SQL)
	assert.Equal(t, []interface{}{`\mDickens\M`}, plan.Args)
}

func TestPlanTimeSeries(t *testing.T) {
	plan, err := PlanTimeSeries("dickens_montaigne", "source_year", 10, nil)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT interval AS year, COUNT(*) FROM `+
			`(SELECT floor("source_year" / 10) * 10 AS interval FROM "dickens_montaigne") AS t `+
			`GROUP BY interval ORDER BY interval`,
		plan.SQL)
	assert.Empty(t, plan.Args)
}

func TestPlanTimeSeries_FiltersInsideSubquery(t *testing.T) {
	plan, err := PlanTimeSeries("dickens_montaigne", "target_year", 25, testWhere())
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT interval AS year, COUNT(*) FROM `+
			`(SELECT floor("target_year" / 25) * 25 AS interval FROM "dickens_montaigne" `+
			`WHERE "source_author" ~* $1) AS t GROUP BY interval ORDER BY interval`,
		plan.SQL)
	assert.Equal(t, []interface{}{`\mDickens\M`}, plan.Args)
}

func TestPlanDocMatches(t *testing.T) {
	plan, err := PlanDocMatches("dickens_montaigne", "source_doc_id", "12", testWhere())
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT * FROM "dickens_montaigne" WHERE "source_doc_id" = $1 AND "source_author" ~* $2`,
		plan.SQL)
	assert.Equal(t, []interface{}{"12", `\mDickens\M`}, plan.Args)
}

func TestPlanMatches_NoDanglingWhere(t *testing.T) {
	plan, err := PlanMatches("dickens_montaigne", &WhereClause{})
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "dickens_montaigne"`, plan.SQL)
	assert.NotContains(t, plan.SQL, "WHERE")

	plan, err = PlanMatches("dickens_montaigne", testWhere())
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "dickens_montaigne" WHERE "source_author" ~* $1`, plan.SQL)
}

func TestPlanGroupQueries(t *testing.T) {
	plan, err := PlanGroupCanonical("dickens_montaigne", 42)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "dickens_montaigne_groups" WHERE "group_id" = $1`, plan.SQL)
	assert.Equal(t, []interface{}{int64(42)}, plan.Args)

	plan, err = PlanGroupMembers("dickens_montaigne", 42)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "dickens_montaigne" WHERE "group_id" = $1`, plan.SQL)
	assert.Equal(t, []interface{}{int64(42)}, plan.Args)
}
