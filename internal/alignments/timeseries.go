package alignments

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tanglisha/text-pair/internal/planner"
	"github.com/tanglisha/text-pair/internal/request"
)

// TimeSeriesPoint is one interval bucket of a time series.
type TimeSeriesPoint struct {
	Year  int64 `json:"year"`
	Count int64 `json:"count"`
}

// TimeSeries is the shaped response of one time-series query.
type TimeSeries struct {
	Counts  int64             `json:"counts"`
	Results []TimeSeriesPoint `json:"results"`
}

// TimeSeries buckets the side-selected year column into fixed-width
// intervals and gap-fills missing intervals with zero counts, so the output
// is contiguous and strictly ascending by interval start. Rows with a null
// year are excluded from both the buckets and the total.
func (s *Service) TimeSeries(ctx context.Context, params request.Params, filters request.Filters) (*TimeSeries, error) {
	yearColumn := params.YearColumn()
	ctx, span := startSpan(ctx, "alignments.time_series",
		attribute.String("textpair.table", params.DBTable),
		attribute.String("textpair.year_column", yearColumn),
		attribute.Int("textpair.interval", params.TimeSeriesInterval),
	)
	defer span.End()

	schema, where, err := s.compile(ctx, params.DBTable, filters, params.Banality)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if err := requireColumn(schema, params.DBTable, yearColumn); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	plan, err := planner.PlanTimeSeries(params.DBTable, yearColumn, params.TimeSeriesInterval, where)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	rows, err := s.queryRows(ctx, "time series", plan)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	series := &TimeSeries{Results: []TimeSeriesPoint{}}
	interval := int64(params.TimeSeriesInterval)
	var nextYear int64
	haveNext := false
	for _, row := range rows {
		year, ok := toInt64(row["year"])
		if !ok {
			continue
		}
		count, _ := toInt64(row["count"])
		if haveNext {
			for year > nextYear {
				series.Results = append(series.Results, TimeSeriesPoint{Year: nextYear})
				nextYear += interval
			}
		}
		series.Results = append(series.Results, TimeSeriesPoint{Year: year, Count: count})
		nextYear = year + interval
		haveNext = true
		series.Counts += count
	}
	return series, nil
}
