package planner

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []textToken
	}{
		{
			name:     "single bare token",
			input:    "dog",
			expected: []textToken{{kind: tokenBare, value: "dog"}},
		},
		{
			name:  "multiple bare tokens",
			input: "dog cat",
			expected: []textToken{
				{kind: tokenBare, value: "dog"},
				{kind: tokenBare, value: "cat"},
			},
		},
		{
			name:     "negated token",
			input:    "NOT dog",
			expected: []textToken{{kind: tokenNegated, value: "dog"}},
		},
		{
			name:     "quoted phrase is exact",
			input:    `"the whole phrase"`,
			expected: []textToken{{kind: tokenExact, value: "the whole phrase"}},
		},
		{
			name:     "empty quotes are exact empty string",
			input:    `""`,
			expected: []textToken{{kind: tokenExact, value: ""}},
		},
		{
			name:     "OR is reserved syntax, operand degrades to bare",
			input:    "OR dog",
			expected: []textToken{{kind: tokenBare, value: "dog"}},
		},
		{
			name:     "trailing NOT with no operand is bare",
			input:    "NOT",
			expected: []textToken{{kind: tokenBare, value: "NOT"}},
		},
		{
			name:  "mixed kinds keep input order",
			input: `"exact one" plain NOT banned`,
			expected: []textToken{
				{kind: tokenExact, value: "exact one"},
				{kind: tokenBare, value: "plain"},
				{kind: tokenNegated, value: "banned"},
			},
		},
		{
			name:     "unterminated quote swallows the rest",
			input:    `"abc def`,
			expected: []textToken{{kind: tokenExact, value: "abc def"}},
		},
		{
			name:     "whitespace only yields nothing",
			input:    "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenizeText(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("tokenizeText(%q) = %#v, want %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTextFragments_BareToken(t *testing.T) {
	fragments := textFragments("source_passage", "dog")
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	sqlText, args, err := fragments[0].ToSql()
	if err != nil {
		t.Fatalf("ToSql error: %v", err)
	}
	if sqlText != `"source_passage" ~* ?` {
		t.Errorf("unexpected SQL: %s", sqlText)
	}
	// The pattern must match "dog" only as a whole word: "a dog ran" yes,
	// "dogma" no. \m and \M are the PostgreSQL word-boundary anchors.
	if len(args) != 1 || args[0] != `\mdog\M` {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestTextFragments_NegatedToken(t *testing.T) {
	fragments := textFragments("source_passage", "NOT dog")
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	sqlText, args, err := fragments[0].ToSql()
	if err != nil {
		t.Fatalf("ToSql error: %v", err)
	}
	if sqlText != `"source_passage" !~* ?` {
		t.Errorf("unexpected SQL: %s", sqlText)
	}
	if len(args) != 1 || args[0] != `\mdog\M` {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestTextFragments_ExactToken(t *testing.T) {
	fragments := textFragments("source_author", `"Dickens, Charles"`)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	sqlText, args, err := fragments[0].ToSql()
	if err != nil {
		t.Fatalf("ToSql error: %v", err)
	}
	if sqlText != `"source_author" = ?` {
		t.Errorf("unexpected SQL: %s", sqlText)
	}
	if len(args) != 1 || args[0] != "Dickens, Charles" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestTextFragments_EmptyExact(t *testing.T) {
	fragments := textFragments("source_author", `""`)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	sqlText, args, err := fragments[0].ToSql()
	if err != nil {
		t.Fatalf("ToSql error: %v", err)
	}
	if sqlText != `"source_author" = ?` {
		t.Errorf("unexpected SQL: %s", sqlText)
	}
	if len(args) != 1 || args[0] != "" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestNumericFragment_RangeForms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantSQL  string
		wantArgs []interface{}
	}{
		{"at most", "-10", `"source_year" <= ?`, []interface{}{"10"}},
		{"at least", "10-", `"source_year" >= ?`, []interface{}{"10"}},
		{"inclusive range", "10-20", `"source_year" BETWEEN ? AND ?`, []interface{}{"10", "20"}},
		{"exact", "10", `"source_year" = ?`, []interface{}{"10"}},
		{"quotes stripped", `"1850"-"1860"`, `"source_year" BETWEEN ? AND ?`, []interface{}{"1850", "1860"}},
		{"floats accepted", "0.5-0.9", `"source_year" BETWEEN ? AND ?`, []interface{}{"0.5", "0.9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fragment, err := numericFragment("source_year", tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			sqlText, args, err := fragment.ToSql()
			if err != nil {
				t.Fatalf("ToSql error: %v", err)
			}
			if sqlText != tt.wantSQL {
				t.Errorf("SQL = %q, want %q", sqlText, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestNumericFragment_Malformed(t *testing.T) {
	inputs := []string{"abc", "10-20-30", "-", "--5", "", "ten-twenty", "10-abc"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := numericFragment("source_year", input)
			if err == nil {
				t.Fatalf("expected error for %q", input)
			}
			var parseErr *FilterParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected FilterParseError, got %T: %v", err, err)
			}
			if parseErr.Field != "source_year" {
				t.Errorf("error field = %q, want source_year", parseErr.Field)
			}
		})
	}
}
