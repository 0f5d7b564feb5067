// Package api serves the alignment search endpoints over HTTP: parameter
// parsing, service invocation, error-taxonomy mapping, and JSON encoding.
// Route semantics live in internal/alignments; this package only adapts them
// to the wire.
package api

import (
	"context"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/trace"

	"github.com/tanglisha/text-pair/internal/alignments"
	"github.com/tanglisha/text-pair/internal/logging"
	"github.com/tanglisha/text-pair/internal/observability"
	"github.com/tanglisha/text-pair/internal/request"
)

// API exposes the alignment service over HTTP.
type API struct {
	service *alignments.Service
}

// New returns an API backed by service.
func New(service *alignments.Service) *API {
	return &API{service: service}
}

// Register mounts every API route on mux. wrap is applied to each route's
// handler so callers can attach their middleware chain; nil leaves the
// handlers bare.
func (a *API) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(h http.Handler) http.Handler { return h }
	}
	routes := map[string]http.HandlerFunc{
		"GET /search_alignments/{$}":          a.handleSearchAlignments,
		"GET /retrieve_all_docs/{$}":          a.handleRetrieveDocs,
		"GET /retrieve_all_passage_pairs/{$}": a.handlePassagePairs,
		"GET /count_results/{$}":              a.handleCountResults,
		"POST /generate_time_series/{$}":      a.handleTimeSeries,
		"POST /facets/{$}":                    a.handleFacets,
		"GET /metadata/{$}":                   a.handleMetadata,
		"GET /group/{group_id}":               a.handleGroup,
	}
	for pattern, handler := range routes {
		mux.Handle(pattern, wrap(handler))
	}
}

// parseRequest extracts the request's control parameters and filters, stamps
// them on the active span, and folds them into the request-scoped logger.
// The returned context carries the enriched logger for the service call.
func parseRequest(r *http.Request) (context.Context, request.Params, request.Filters, error) {
	ctx := r.Context()
	params, filters, err := request.Parse(r)
	if err != nil {
		return ctx, params, filters, err
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(observability.RequestSpanAttributes(r.URL.Path, &params)...)
	}
	if fields := observability.RequestLogFields(ctx, r.URL.Path, &params); len(fields) > 0 {
		ctx = logging.WithLogger(ctx, logging.FromContext(ctx).WithFields(fields...))
	}

	return ctx, params, filters, nil
}

func (a *API) handleSearchAlignments(w http.ResponseWriter, r *http.Request) {
	ctx, params, filters, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := a.service.SearchPage(ctx, r.URL, params, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordResultsCount(r, len(page.Alignments))
	writeJSON(w, http.StatusOK, page)
}

func (a *API) handleRetrieveDocs(w http.ResponseWriter, r *http.Request) {
	ctx, params, filters, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	docs, err := a.service.RetrieveDocs(ctx, params, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordResultsCount(r, len(docs))
	writeJSON(w, http.StatusOK, docs)
}

func (a *API) handlePassagePairs(w http.ResponseWriter, r *http.Request) {
	ctx, params, filters, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	pairs, err := a.service.PassagePairs(ctx, params, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordResultsCount(r, len(pairs))
	writeJSON(w, http.StatusOK, pairs)
}

// countsResponse mirrors the count_results contract: a single counts field.
type countsResponse struct {
	Counts int64 `json:"counts"`
}

func (a *API) handleCountResults(w http.ResponseWriter, r *http.Request) {
	ctx, params, filters, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	count, err := a.service.Count(ctx, params, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countsResponse{Counts: count})
}

func (a *API) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	ctx, params, filters, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	series, err := a.service.TimeSeries(ctx, params, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordResultsCount(r, len(series.Results))
	writeJSON(w, http.StatusOK, series)
}

func (a *API) handleFacets(w http.ResponseWriter, r *http.Request) {
	ctx, params, filters, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	facets, err := a.service.Facets(ctx, params, filters)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordResultsCount(r, len(facets.Results))
	writeJSON(w, http.StatusOK, facets)
}

func (a *API) handleMetadata(w http.ResponseWriter, r *http.Request) {
	ctx, params, _, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	columns, err := a.service.Metadata(ctx, params.DBTable)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, columns)
}

func (a *API) handleGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(r.PathValue("group_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "group id must be an integer"})
		return
	}
	ctx, params, _, err := parseRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	group, err := a.service.PassageGroup(ctx, params.DBTable, groupID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

// recordResultsCount reports the response size metric when the metrics
// middleware put a recorder in context.
func recordResultsCount(r *http.Request, count int) {
	if metrics := observability.APIMetricsFromContext(r.Context()); metrics != nil {
		metrics.RecordResultsCount(r.Context(), int64(count), r.URL.Path)
	}
}
