// Package sqlutil provides SQL utility functions.
package sqlutil

import "strings"

// QuoteIdentifier quotes a SQL identifier (table name, column name, etc.)
// with double quotes and escapes any double quotes within the identifier,
// following PostgreSQL quoting rules.
func QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, `"`, `""`)
	return `"` + escaped + `"`
}

// QuoteQualified quotes a table-qualified column reference ("table"."column").
func QuoteQualified(table, column string) string {
	return QuoteIdentifier(table) + "." + QuoteIdentifier(column)
}

// ValidIdentifier reports whether name is safe to interpolate into SQL text
// as an identifier: ASCII letters, digits, and underscores only, not starting
// with a digit. Identifiers that fail this check must never reach query text;
// quoting alone is not a substitute because callers also build identifiers
// into regex fragments and derived table names.
func ValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
