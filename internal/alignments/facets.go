package alignments

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tanglisha/text-pair/internal/planner"
	"github.com/tanglisha/text-pair/internal/request"
)

// FacetBucket is one distinct value (or length bucket) and its match count.
type FacetBucket struct {
	Field interface{} `json:"field"`
	Count int64       `json:"count"`
}

// FacetResult is the shaped response of one facet query.
type FacetResult struct {
	Facet      string        `json:"facet"`
	Results    []FacetBucket `json:"results"`
	TotalCount int64         `json:"total_count"`
}

// passageLengthBuckets are the fixed rebucketing ranges for passage-length
// facets. Bounds are inclusive, so 25 falls in "1-25" and 26 in "26-100".
var passageLengthBuckets = []struct {
	label string
	max   int64
}{
	{"1-25", 25},
	{"26-100", 100},
	{"101-250", 250},
	{"251-500", 500},
	{"501-1000", 1000},
	{"1001-3000", 3000},
	{"3001-", math.MaxInt64},
}

func lengthBucket(length int64) string {
	for _, bucket := range passageLengthBuckets {
		if length <= bucket.max {
			return bucket.label
		}
	}
	return passageLengthBuckets[len(passageLengthBuckets)-1].label
}

// Facets counts matches per distinct value of the requested column, ordered
// by descending count. Columns ending in passage_length are rebucketed into
// the fixed length ranges before counting; total_count always reflects every
// matching row, bucketed or not.
func (s *Service) Facets(ctx context.Context, params request.Params, filters request.Filters) (*FacetResult, error) {
	ctx, span := startSpan(ctx, "alignments.facets",
		attribute.String("textpair.table", params.DBTable),
		attribute.String("textpair.facet", params.Facet),
	)
	defer span.End()

	schema, where, err := s.compile(ctx, params.DBTable, filters, params.Banality)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := requireColumn(schema, params.DBTable, params.Facet); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	plan, err := planner.PlanFacet(params.DBTable, params.Facet, where)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	rows, err := s.queryRows(ctx, "facets", plan)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	result := &FacetResult{Facet: params.Facet, Results: []FacetBucket{}}
	if !strings.HasSuffix(params.Facet, "passage_length") {
		for _, row := range rows {
			count, _ := toInt64(row["count"])
			result.Results = append(result.Results, FacetBucket{Field: row[params.Facet], Count: count})
			result.TotalCount += count
		}
		return result, nil
	}

	totals := make(map[string]int64, len(passageLengthBuckets))
	for _, row := range rows {
		count, _ := toInt64(row["count"])
		result.TotalCount += count
		length, ok := toInt64(row[params.Facet])
		if !ok {
			continue
		}
		totals[lengthBucket(length)] += count
	}
	for _, bucket := range passageLengthBuckets {
		if count, ok := totals[bucket.label]; ok {
			result.Results = append(result.Results, FacetBucket{Field: bucket.label, Count: count})
		}
	}
	// Stable keeps the range order for equal counts, so the output is
	// deterministic.
	sort.SliceStable(result.Results, func(i, j int) bool {
		return result.Results[i].Count > result.Results[j].Count
	})
	return result, nil
}
