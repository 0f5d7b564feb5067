// Package planner compiles user-supplied filter expressions into
// parameterized SQL and builds the statements the alignment API executes.
// Filter values only ever travel through bound arguments; identifiers are
// quoted and must be validated against the schema catalog by callers.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tanglisha/text-pair/internal/sqlutil"
)

// FilterParseError reports a malformed numeric filter value. It surfaces as
// a client error; the filter micro-language accepts no other failure mode.
type FilterParseError struct {
	Field string
	Input string
}

func (e *FilterParseError) Error() string {
	return fmt.Sprintf("filter for %q: malformed numeric value %q", e.Field, e.Input)
}

type tokenKind int

const (
	// tokenBare matches the token as a whole word, case-insensitively.
	tokenBare tokenKind = iota
	// tokenExact requires column equality with the unquoted content.
	tokenExact
	// tokenNegated excludes rows where the token matches as a whole word.
	tokenNegated
)

type textToken struct {
	kind  tokenKind
	value string
}

// tokenizeText splits a raw TEXT filter into its whitespace/quote-delimited
// tokens. A double-quoted run (including the empty "") is an exact-match
// token; NOT followed by a word negates that word; OR is reserved syntax with
// no join logic behind it, so its operand degrades to a bare token. Every
// other word is a bare token.
func tokenizeText(raw string) []textToken {
	var tokens []textToken
	fields := splitQuoted(raw)
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if f.quoted {
			tokens = append(tokens, textToken{kind: tokenExact, value: f.text})
			continue
		}
		switch {
		case f.text == "NOT" && i+1 < len(fields) && !fields[i+1].quoted:
			i++
			tokens = append(tokens, textToken{kind: tokenNegated, value: fields[i].text})
		case f.text == "OR" && i+1 < len(fields) && !fields[i+1].quoted:
			i++
			tokens = append(tokens, textToken{kind: tokenBare, value: fields[i].text})
		default:
			tokens = append(tokens, textToken{kind: tokenBare, value: f.text})
		}
	}
	return tokens
}

type rawField struct {
	text   string
	quoted bool
}

// splitQuoted breaks a string on whitespace while keeping double-quoted runs
// intact. An unterminated quote swallows the remainder of the input.
func splitQuoted(raw string) []rawField {
	var fields []rawField
	var current strings.Builder
	inQuote := false
	flush := func(quoted bool) {
		if quoted || current.Len() > 0 {
			fields = append(fields, rawField{text: current.String(), quoted: quoted})
		}
		current.Reset()
	}
	for _, r := range raw {
		switch {
		case r == '"':
			if inQuote {
				flush(true)
				inQuote = false
			} else {
				flush(false)
				inQuote = true
			}
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush(false)
		default:
			current.WriteRune(r)
		}
	}
	if inQuote {
		flush(true)
	} else {
		flush(false)
	}
	return fields
}

// wordBoundary wraps a token in PostgreSQL's word-boundary anchors so the
// pattern matches the token only as a whole word, never as a substring.
func wordBoundary(token string) string {
	return `\m` + token + `\M`
}

// textFragments builds one predicate fragment per token of a TEXT filter.
// Fragments are later ANDed together, including repeated tokens of the same
// field; OR combination is unimplemented.
func textFragments(column, raw string) []sq.Sqlizer {
	quoted := sqlutil.QuoteIdentifier(column)
	var fragments []sq.Sqlizer
	for _, token := range tokenizeText(raw) {
		switch token.kind {
		case tokenExact:
			fragments = append(fragments, sq.Eq{quoted: token.value})
		case tokenNegated:
			fragments = append(fragments, sq.Expr(quoted+" !~* ?", wordBoundary(token.value)))
		default:
			fragments = append(fragments, sq.Expr(quoted+" ~* ?", wordBoundary(token.value)))
		}
	}
	return fragments
}

// numericFragment parses a numeric filter into one of its four range forms:
// "-N" (at most N), "N-" (at least N), "N-M" (inclusive range), "N" (exact).
// Embedded double quotes are stripped first. Values are bound as given; the
// store casts them to the column type.
func numericFragment(column, raw string) (sq.Sqlizer, error) {
	quoted := sqlutil.QuoteIdentifier(column)
	cleaned := strings.ReplaceAll(raw, `"`, "")

	parseErr := func() error {
		return &FilterParseError{Field: column, Input: raw}
	}
	validate := func(parts ...string) error {
		for _, p := range parts {
			if _, err := strconv.ParseFloat(p, 64); err != nil {
				return parseErr()
			}
		}
		return nil
	}

	if strings.Contains(cleaned, "-") {
		parts := splitOnDash(cleaned)
		switch {
		case len(parts) == 2 && parts[0] == "-":
			if err := validate(parts[1]); err != nil {
				return nil, err
			}
			return sq.LtOrEq{quoted: parts[1]}, nil
		case len(parts) == 2 && parts[1] == "-":
			if err := validate(parts[0]); err != nil {
				return nil, err
			}
			return sq.GtOrEq{quoted: parts[0]}, nil
		case len(parts) == 3 && parts[1] == "-":
			if err := validate(parts[0], parts[2]); err != nil {
				return nil, err
			}
			return sq.Expr(quoted+" BETWEEN ? AND ?", parts[0], parts[2]), nil
		default:
			return nil, parseErr()
		}
	}

	if err := validate(cleaned); err != nil {
		return nil, err
	}
	return sq.Eq{quoted: cleaned}, nil
}

// splitOnDash splits on "-" keeping the separators, dropping empty segments:
// "10-20" becomes ["10","-","20"], "-10" becomes ["-","10"].
func splitOnDash(s string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if r != '-' {
			continue
		}
		if i > start {
			parts = append(parts, s[start:i])
		}
		parts = append(parts, "-")
		start = i + 1
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}
