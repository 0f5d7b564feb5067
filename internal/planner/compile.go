package planner

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tanglisha/text-pair/internal/introspection"
	"github.com/tanglisha/text-pair/internal/sqltype"
	"github.com/tanglisha/text-pair/internal/sqlutil"
)

// BanalityColumn is the always-available exact-match classification filter.
const BanalityColumn = "banality"

// WhereClause is the compiled conjunctive predicate of one request.
// Condition is nil when no filter produced a fragment; query builders add no
// WHERE clause in that case, so a dangling WHERE can never be emitted.
type WhereClause struct {
	Condition sq.Sqlizer
	// UsedColumns lists the catalog columns that contributed fragments,
	// sorted, for tracing and tests.
	UsedColumns []string
}

// Empty reports whether the clause carries no condition.
func (w *WhereClause) Empty() bool {
	return w == nil || w.Condition == nil
}

// CompileFilters turns the request's filter fields into a single conjunctive
// predicate. Fields are visited in sorted order so the emitted SQL is stable.
// Fields absent from the catalog or of non-filterable type are silently
// dropped (documented degradation). A non-empty banality adds an exact-match
// fragment. Filter values are only ever returned through bound arguments.
func CompileFilters(filters map[string]string, schema *introspection.TableSchema, banality string) (*WhereClause, error) {
	fields := make([]string, 0, len(filters))
	for field := range filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var conditions []sq.Sqlizer
	var used []string
	for _, field := range fields {
		raw := strings.TrimSpace(filters[field])
		if raw == "" {
			continue
		}
		if !schema.HasColumn(field) {
			continue
		}
		switch fieldType := schema.FieldType(field); {
		case fieldType == sqltype.TypeText:
			fragments := textFragments(field, raw)
			if len(fragments) == 0 {
				continue
			}
			conditions = append(conditions, fragments...)
		case fieldType.Numeric():
			fragment, err := numericFragment(field, raw)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, fragment)
		default:
			continue
		}
		used = append(used, field)
	}

	if banality != "" {
		conditions = append(conditions, sq.Eq{sqlutil.QuoteIdentifier(BanalityColumn): banality})
		used = append(used, BanalityColumn)
	}

	clause := &WhereClause{UsedColumns: used}
	switch len(conditions) {
	case 0:
	case 1:
		clause.Condition = conditions[0]
	default:
		clause.Condition = sq.And(conditions)
	}
	return clause, nil
}
