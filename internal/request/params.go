// Package request normalizes inbound API parameters: the fixed set of
// control parameters with their documented defaults, and the free filter
// fields that feed the query compiler.
package request

import (
	"net/http"
	"net/url"
	"strconv"
)

// Directions for keyset navigation.
const (
	DirectionNext     = "next"
	DirectionPrevious = "previous"
)

// Sides an alignment can be inspected from.
const (
	SideSource = "source"
	SideTarget = "target"
)

// reservedNames are never treated as filter fields. Every other non-empty
// parameter is a filter keyed by column name.
var reservedNames = map[string]struct{}{
	"facet":              {},
	"direction":          {},
	"source":             {},
	"target":             {},
	"stats_field":        {},
	"db_table":           {},
	"filter_field":       {},
	"filter_value":       {},
	"page":               {},
	"id_anchor":          {},
	"directionSelected":  {},
	"timeSeriesInterval": {},
	"field":              {},
	"value":              {},
	"banality":           {},
}

// Reserved reports whether name is a control parameter.
func Reserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}

// Params holds one request's recognized control parameters. Zero values of
// the numeric and enum fields are replaced by their documented defaults at
// parse time, so absence and default are indistinguishable downstream.
type Params struct {
	DBTable string

	// Pagination. Page starts at 1; IDAnchor 0 with DirectionNext marks the
	// start of the result set.
	Direction string
	IDAnchor  int
	Page      int

	// Aggregation.
	Facet              string
	TimeSeriesInterval int
	DirectionSelected  string
	StatsField         string

	// Document listings.
	Field       string
	Value       string
	FilterField string
	FilterValue string
	Source      string
	Target      string

	// Banality is a first-class exact-match filter on the banality column.
	Banality string
}

// Filters maps filter field names to their raw filter strings.
type Filters map[string]string

// Parse extracts control parameters and filter fields from an HTTP request.
// GET parameters come from the query string; POST parameters come from the
// form body with the query string as fallback.
func Parse(r *http.Request) (Params, Filters, error) {
	if err := r.ParseForm(); err != nil {
		return Params{}, nil, err
	}
	params, filters := FromValues(r.Form)
	return params, filters, nil
}

// FromValues builds Params and Filters from already-decoded parameters.
func FromValues(values url.Values) (Params, Filters) {
	params := Params{
		Direction:          DirectionNext,
		Page:               1,
		TimeSeriesInterval: 1,
		DirectionSelected:  SideSource,
	}
	filters := Filters{}

	for key := range values {
		value := values.Get(key)
		if !Reserved(key) {
			if value != "" {
				filters[key] = value
			}
			continue
		}
		switch key {
		case "page":
			// Unparseable and non-positive values fall back to the default.
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				params.Page = n
			}
		case "id_anchor":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				params.IDAnchor = n
			}
		case "timeSeriesInterval":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				params.TimeSeriesInterval = n
			}
		case "direction":
			if value == DirectionPrevious {
				params.Direction = DirectionPrevious
			}
		case "directionSelected":
			if value == SideTarget {
				params.DirectionSelected = SideTarget
			}
		case "db_table":
			params.DBTable = value
		case "facet":
			params.Facet = value
		case "stats_field":
			params.StatsField = value
		case "field":
			params.Field = value
		case "value":
			params.Value = value
		case "filter_field":
			params.FilterField = value
		case "filter_value":
			params.FilterValue = value
		case "source":
			params.Source = value
		case "target":
			params.Target = value
		case "banality":
			params.Banality = value
		}
	}

	return params, filters
}

// Backward reports whether the request navigates toward lower anchors.
func (p Params) Backward() bool {
	return p.Direction == DirectionPrevious
}

// YearColumn names the side-selected year column for time-series bucketing.
// DirectionSelected is constrained to the two sides at parse time, so the
// result is always a fixed identifier.
func (p Params) YearColumn() string {
	return p.DirectionSelected + "_year"
}
