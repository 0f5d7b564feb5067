// Package sqltype provides a shared mapping from PostgreSQL data types to
// filterable field categories. This keeps type classification consistent
// between schema introspection and filter compilation.
package sqltype

import "strings"

// FieldType represents the filter category of a catalog column.
type FieldType int

const (
	// TypeUnknown marks columns whose type cannot carry a filter; filters on
	// them are dropped from the compiled predicate.
	TypeUnknown FieldType = iota
	// TypeText represents character types filtered with regex/exact fragments.
	TypeText
	// TypeInteger represents integer numeric types filtered with range forms.
	TypeInteger
	// TypeFloat represents floating-point and fixed-point numeric types.
	TypeFloat
)

// Classify converts an information_schema.columns data_type string to its
// field category. The input is case-insensitive; length specifiers like
// (255) are stripped before matching. data_type reports base type names
// ("character varying", "double precision"), never aliases like varchar(40).
func Classify(dataType string) FieldType {
	if idx := strings.Index(dataType, "("); idx != -1 {
		dataType = dataType[:idx]
	}
	switch strings.ToUpper(strings.TrimSpace(dataType)) {
	case "TEXT", "CHARACTER VARYING", "CHARACTER", "VARCHAR", "CHAR",
		"NAME", "CITEXT":
		return TypeText
	case "INTEGER", "INT", "SMALLINT", "BIGINT", "INT2", "INT4", "INT8",
		"SERIAL", "BIGSERIAL", "SMALLSERIAL":
		return TypeInteger
	case "REAL", "DOUBLE PRECISION", "FLOAT", "NUMERIC", "DECIMAL",
		"FLOAT4", "FLOAT8":
		return TypeFloat
	default:
		// booleans, json, bytea, dates: not filterable through the
		// micro-language, kept visible in metadata listings only.
		return TypeUnknown
	}
}

// Numeric reports whether the type takes the numeric range filter forms.
func (t FieldType) Numeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// String returns the canonical category name.
func (t FieldType) String() string {
	switch t {
	case TypeText:
		return "TEXT"
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}
