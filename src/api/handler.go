package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"groundwater-quality-api/src/catalog"
	"groundwater-quality-api/src/observability"
	"groundwater-quality-api/src/pipeline"
	"groundwater-quality-api/src/types"
)

const (
	RouteGroundwater = "/kualitas-air-tanah"
	RoutePostalCodes = "/kode-pos"
)

const (
	msgCatalogSuccess  = "Unique postal code records retrieved successfully"
	msgCatalogEmpty    = "No records found"
	msgCatalogNoUnique = "No unique postal code records found"
	msgCatalogInternal = "An internal server error occurred while retrieving unique postal code records"
)

var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
}

// Predictor runs the prediction pipeline for a raw kode_pos value.
type Predictor interface {
	Run(ctx context.Context, rawKodePos string) pipeline.Result
}

// PostalCodeLister returns the distinct postal codes in the table.
type PostalCodeLister interface {
	List(ctx context.Context) ([]types.PostalCode, error)
}

// API turns pipeline and catalog outcomes into status codes and JSON envelopes. The
// same API backs both the net/http server and the Lambda handlers.
type API struct {
	predictor Predictor
	catalog   PostalCodeLister
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

func New(predictor Predictor, catalog PostalCodeLister, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *API {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &API{
		predictor: predictor,
		catalog:   catalog,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
	}
}

// GroundwaterQuality serves GET /kualitas-air-tanah.
func (a *API) GroundwaterQuality(ctx context.Context, rawKodePos string) (int, types.APIResponse) {
	res := a.predictor.Run(ctx, rawKodePos)

	switch res.Status {
	case pipeline.StatusSuccess:
		items := make([]map[string]interface{}, len(res.Data))
		for i, r := range res.Data {
			items[i] = r.Item()
		}
		return http.StatusOK, types.APIResponse{Status: "success", Message: res.Message, Data: items}

	case pipeline.StatusMissingParameter, pipeline.StatusInvalidParameter,
		pipeline.StatusNoRecords, pipeline.StatusNoValidRecords:
		return http.StatusBadRequest, errorResponse(res.Message)

	default:
		return http.StatusInternalServerError, errorResponse(pipeline.MsgInternalError)
	}
}

// PostalCodes serves GET /kode-pos.
func (a *API) PostalCodes(ctx context.Context) (int, types.APIResponse) {
	entries, err := a.catalog.List(ctx)

	switch {
	case err == nil:
		a.logger.Info("unique postal code records retrieved", "count", len(entries))
		return http.StatusOK, types.APIResponse{Status: "success", Message: msgCatalogSuccess, Data: entries}

	case errors.Is(err, catalog.ErrEmptyTable):
		a.logger.Warn("table is empty")
		return http.StatusNotFound, errorResponse(msgCatalogEmpty)

	case errors.Is(err, catalog.ErrNoPostCodes):
		a.logger.Warn("no unique postal code records found")
		return http.StatusNotFound, errorResponse(msgCatalogNoUnique)

	default:
		a.logger.Error("failed to list postal codes", "error", err)
		return http.StatusInternalServerError, errorResponse(msgCatalogInternal)
	}
}

// Handler returns the HTTP routes wrapped in CORS and request logging.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+RouteGroundwater, func(w http.ResponseWriter, r *http.Request) {
		status, body := a.GroundwaterQuality(r.Context(), r.URL.Query().Get(types.AttrKodePos))
		writeJSON(w, status, body)
	})
	mux.HandleFunc("GET "+RoutePostalCodes, func(w http.ResponseWriter, r *http.Request) {
		status, body := a.PostalCodes(r.Context())
		writeJSON(w, status, body)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return withCORS(a.requestLogger(mux))
}

func errorResponse(msg string) types.APIResponse {
	return types.APIResponse{Status: "error", Message: msg}
}

func marshalBody(v any) []byte {
	body, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"status":"error","message":"failed to encode response"}`)
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(marshalBody(v)); err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}
