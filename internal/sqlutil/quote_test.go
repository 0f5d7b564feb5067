package sqlutil

import "testing"

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"alignments", `"alignments"`},
		{"source_author", `"source_author"`},
		{"select", `"select"`},         // reserved word
		{"first name", `"first name"`}, // space in name
		{`a"b`, `"a""b"`},              // embedded quote
		{`a"b"c`, `"a""b""c"`},         // multiple quotes
		{"", `""`},                     // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := QuoteIdentifier(tt.input)
			if result != tt.expected {
				t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestQuoteQualified(t *testing.T) {
	result := QuoteQualified("alignments", "source_year")
	expected := `"alignments"."source_year"`
	if result != expected {
		t.Errorf("QuoteQualified = %q, want %q", result, expected)
	}
}

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"alignments", true},
		{"source_author", true},
		{"table2", true},
		{"_private", true},
		{"2fast", false},
		{"", false},
		{"drop table", false},
		{"a;b", false},
		{`a"b`, false},
		{"tbl-name", false},
		{"année", false}, // non-ASCII
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ValidIdentifier(tt.input); got != tt.valid {
				t.Errorf("ValidIdentifier(%q) = %v, want %v", tt.input, got, tt.valid)
			}
		})
	}
}
