package alignments

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tanglisha/text-pair/internal/planner"
	"github.com/tanglisha/text-pair/internal/request"
)

// Column sets stripped from listing responses. Document listings drop the
// passage text, context, filename, and byte-offset columns; passage-pair
// listings keep the offsets but drop the text columns.
var (
	docListingExcluded = map[string]struct{}{
		"source_filename":       {},
		"source_passage":        {},
		"source_context_before": {},
		"source_context_after":  {},
		"source_start_byte":     {},
		"source_end_byte":       {},
		"target_filename":       {},
		"target_passage":        {},
		"target_context_before": {},
		"target_context_after":  {},
		"target_start_byte":     {},
		"target_end_byte":       {},
		"rowid":                 {},
	}
	passagePairExcluded = map[string]struct{}{
		"source_passage":        {},
		"source_context_before": {},
		"source_context_after":  {},
		"source_filename":       {},
		"target_passage":        {},
		"target_context_before": {},
		"target_context_after":  {},
		"target_filename":       {},
	}
)

// RetrieveDocs lists the documents on one side of the alignments matching
// field = value, folded to one record per document with a member count. The
// side is chosen by the field's prefix; returned metadata is limited to that
// side's columns. Documents appear in first-match order.
func (s *Service) RetrieveDocs(ctx context.Context, params request.Params, filters request.Filters) ([]map[string]interface{}, error) {
	ctx, span := startSpan(ctx, "alignments.retrieve_docs",
		attribute.String("textpair.table", params.DBTable),
		attribute.String("textpair.field", params.Field),
	)
	defer span.End()

	schema, where, err := s.compile(ctx, params.DBTable, filters, params.Banality)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := requireColumn(schema, params.DBTable, params.Field); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	side := request.SideTarget + "_"
	if strings.HasPrefix(params.Field, request.SideSource+"_") {
		side = request.SideSource + "_"
	}
	docIDColumn := side + "doc_id"

	var kept []string
	for _, column := range schema.Columns {
		if _, excluded := docListingExcluded[column]; excluded {
			continue
		}
		if strings.HasPrefix(column, side) {
			kept = append(kept, column)
		}
	}

	plan, err := planner.PlanDocMatches(params.DBTable, params.Field, params.Value, where)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	rows, err := s.queryRows(ctx, "retrieve docs", plan)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	docs := make(map[interface{}]map[string]interface{})
	var order []interface{}
	for _, row := range rows {
		id := row[docIDColumn]
		doc, ok := docs[id]
		if !ok {
			doc = make(map[string]interface{}, len(kept)+1)
			for _, column := range kept {
				doc[column] = row[column]
			}
			doc["count"] = int64(0)
			docs[id] = doc
			order = append(order, id)
		}
		doc["count"] = doc["count"].(int64) + 1
	}

	results := make([]map[string]interface{}, 0, len(order))
	for _, id := range order {
		results = append(results, docs[id])
	}
	return results, nil
}

// PassagePairs lists the metadata of every alignment matching the filters,
// with the passage text, context, and filename columns stripped.
func (s *Service) PassagePairs(ctx context.Context, params request.Params, filters request.Filters) ([]map[string]interface{}, error) {
	ctx, span := startSpan(ctx, "alignments.passage_pairs",
		attribute.String("textpair.table", params.DBTable))
	defer span.End()

	schema, where, err := s.compile(ctx, params.DBTable, filters, params.Banality)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	plan, err := planner.PlanMatches(params.DBTable, where)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	rows, err := s.queryRows(ctx, "passage pairs", plan)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	var kept []string
	for _, column := range schema.Columns {
		if _, excluded := passagePairExcluded[column]; !excluded {
			kept = append(kept, column)
		}
	}

	results := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		projected := make(map[string]interface{}, len(kept))
		for _, column := range kept {
			if value, ok := row[column]; ok {
				projected[column] = value
			}
		}
		results = append(results, projected)
	}
	return results, nil
}

// Count returns the number of alignments matching the filters.
func (s *Service) Count(ctx context.Context, params request.Params, filters request.Filters) (int64, error) {
	ctx, span := startSpan(ctx, "alignments.count",
		attribute.String("textpair.table", params.DBTable))
	defer span.End()

	_, where, err := s.compile(ctx, params.DBTable, filters, params.Banality)
	if err != nil {
		recordSpanError(span, err)
		return 0, err
	}
	plan, err := planner.PlanCount(params.DBTable, where)
	if err != nil {
		recordSpanError(span, err)
		return 0, err
	}
	count, err := s.queryScalar(ctx, "count results", plan)
	if err != nil {
		recordSpanError(span, err)
		return 0, err
	}
	return count, nil
}

// Metadata returns the table's queryable column names in catalog order, the
// synthetic rowid last.
func (s *Service) Metadata(ctx context.Context, table string) ([]string, error) {
	ctx, span := startSpan(ctx, "alignments.metadata",
		attribute.String("textpair.table", table))
	defer span.End()

	schema, _, err := s.compile(ctx, table, nil, "")
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return schema.Columns, nil
}
