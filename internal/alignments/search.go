package alignments

import (
	"context"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tanglisha/text-pair/internal/cursor"
	"github.com/tanglisha/text-pair/internal/planner"
	"github.com/tanglisha/text-pair/internal/request"
	"github.com/tanglisha/text-pair/internal/setutil"
)

// Page is one page of alignment search results with its navigation state.
type Page struct {
	Alignments    []map[string]interface{} `json:"alignments"`
	Page          int                      `json:"page"`
	NextURL       string                   `json:"next_url"`
	PreviousURL   string                   `json:"previous_url"`
	StartPosition int                      `json:"start_position"`
}

// SearchPage runs the keyset page query for one request and shapes the
// response. Rows come back in ascending ordering-key order regardless of
// navigation direction, group member counts are attached where rows carry a
// group_id, and the navigation URLs are derived from requestURL with the
// plain-integer cursor parameters replaced.
func (s *Service) SearchPage(ctx context.Context, requestURL *url.URL, params request.Params, filters request.Filters) (*Page, error) {
	ctx, span := startSpan(ctx, "alignments.search",
		attribute.String("textpair.table", params.DBTable),
		attribute.Int("textpair.page", params.Page),
		attribute.String("textpair.direction", params.Direction),
	)
	defer span.End()

	_, where, err := s.compile(ctx, params.DBTable, filters, params.Banality)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	plan, err := planner.PlanPage(params.DBTable, where, params.IDAnchor, params.Backward())
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	rows, err := s.queryRows(ctx, "search page", plan)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	// Backward pages are read in descending order; present them ascending.
	if params.Backward() {
		setutil.Reverse(rows)
	}

	if err := s.attachGroupCounts(ctx, params.DBTable, rows); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	page := &Page{
		Alignments:    rows,
		Page:          params.Page,
		StartPosition: cursor.StartPosition(params.Page, planner.PageSize),
	}
	if len(rows) > 0 {
		first, _ := toInt64(rows[0][planner.OrderingKey])
		last, _ := toInt64(rows[len(rows)-1][planner.OrderingKey])
		links := cursor.PageLinks(requestURL.Path, requestURL.Query(), params.Page, int(first), int(last), true)
		page.NextURL = links.Next
		page.PreviousURL = links.Previous
	}
	if page.Alignments == nil {
		page.Alignments = []map[string]interface{}{}
	}
	return page, nil
}

// attachGroupCounts runs the page's one enrichment query: a batch
// member-count lookup over the distinct group IDs observed in the page. No
// query is sent when no row carries a group_id.
func (s *Service) attachGroupCounts(ctx context.Context, table string, rows []map[string]interface{}) error {
	var observed []int64
	for _, row := range rows {
		if id, ok := toInt64(row["group_id"]); ok {
			observed = append(observed, id)
		}
	}
	groupIDs := setutil.Distinct(observed)
	if len(groupIDs) == 0 {
		return nil
	}

	plan, err := planner.PlanGroupCounts(table, groupIDs)
	if err != nil {
		return err
	}
	countRows, err := s.queryRows(ctx, "group counts", plan)
	if err != nil {
		return err
	}
	counts := make(map[int64]interface{}, len(countRows))
	for _, row := range countRows {
		if id, ok := toInt64(row["group_id"]); ok {
			counts[id] = row["count"]
		}
	}
	for _, row := range rows {
		id, ok := toInt64(row["group_id"])
		if !ok {
			continue
		}
		if count, ok := counts[id]; ok {
			row["count"] = count
		}
	}
	return nil
}
