package cursor

import (
	"net/url"
	"testing"
)

func TestPageURL_ReplacesNavigationParams(t *testing.T) {
	query, err := url.ParseQuery("db_table=dickens&page=2&id_anchor=100&direction=previous&source_author=Dickens")
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}

	got := PageURL("/search_alignments/", query, 3, 250, "next")

	want := "/search_alignments/?db_table=dickens&direction=next&id_anchor=250&page=3&source_author=Dickens"
	if got != want {
		t.Errorf("PageURL = %q, want %q", got, want)
	}
}

func TestPageURL_PreservesRepeatedFilterValues(t *testing.T) {
	query := url.Values{
		"source_title": {"first", "second"},
	}

	got := PageURL("/search_alignments/", query, 1, 0, "next")

	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	values := parsed.Query()
	if len(values["source_title"]) != 2 {
		t.Errorf("expected both source_title values, got %v", values["source_title"])
	}
}

func TestPageLinks_FirstPage(t *testing.T) {
	query := url.Values{"db_table": {"dickens"}}

	links := PageLinks("/search_alignments/", query, 1, 17, 903, true)

	if links.Next == "" {
		t.Fatal("expected next link on a non-empty page")
	}
	if links.Previous != "" {
		t.Errorf("page 1 must not link backward, got %q", links.Previous)
	}

	next, err := url.Parse(links.Next)
	if err != nil {
		t.Fatalf("parse next: %v", err)
	}
	values := next.Query()
	if values.Get("page") != "2" || values.Get("id_anchor") != "903" || values.Get("direction") != "next" {
		t.Errorf("unexpected next params: %v", values)
	}
}

func TestPageLinks_MiddlePage(t *testing.T) {
	query := url.Values{"db_table": {"dickens"}}

	links := PageLinks("/search_alignments/", query, 3, 101, 150, true)

	next, err := url.Parse(links.Next)
	if err != nil {
		t.Fatalf("parse next: %v", err)
	}
	if got := next.Query(); got.Get("page") != "4" || got.Get("id_anchor") != "150" || got.Get("direction") != "next" {
		t.Errorf("unexpected next params: %v", got)
	}

	previous, err := url.Parse(links.Previous)
	if err != nil {
		t.Fatalf("parse previous: %v", err)
	}
	if got := previous.Query(); got.Get("page") != "2" || got.Get("id_anchor") != "101" || got.Get("direction") != "previous" {
		t.Errorf("unexpected previous params: %v", got)
	}
}

func TestPageLinks_EmptyPage(t *testing.T) {
	links := PageLinks("/search_alignments/", url.Values{}, 4, 0, 0, false)

	if links.Next != "" || links.Previous != "" {
		t.Errorf("empty page must not link anywhere, got %+v", links)
	}
}

func TestStartPosition(t *testing.T) {
	tests := []struct {
		page     int
		pageSize int
		want     int
	}{
		{1, 50, 0},
		{2, 50, 50},
		{3, 50, 100},
		{0, 50, 0},
		{-2, 50, 0},
	}

	for _, tt := range tests {
		if got := StartPosition(tt.page, tt.pageSize); got != tt.want {
			t.Errorf("StartPosition(%d, %d) = %d, want %d", tt.page, tt.pageSize, got, tt.want)
		}
	}
}
