package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"hardware-sim/internal/analytics"
	"hardware-sim/internal/errors"
	"hardware-sim/internal/observability"
	"hardware-sim/internal/services"
	"hardware-sim/internal/simulation"
	"hardware-sim/internal/store"
)

const (
	defaultPreviewRows = 200
	maxPreviewRows     = 5000
	defaultTopProducts = 20
	maxBodyBytes       = 1 << 16
)

type APIHandlers struct {
	analytics *services.Analytics
	defaults  simulation.Params
	logger    *slog.Logger
}

// NewAPIHandlers wires the JSON API. defaults supplies every scenario knob a
// POST /api/scenarios body leaves out.
func NewAPIHandlers(analytics *services.Analytics, defaults simulation.Params, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		defaults:  defaults,
		logger:    logger,
	}
}

// classify maps domain errors onto API error codes.
func classify(err error) *errors.AppError {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, services.ErrNoData), stderrors.Is(err, analytics.ErrNoTransactions):
		return errors.NoData(err)
	case stderrors.Is(err, simulation.ErrInvalidParameter), stderrors.Is(err, analytics.ErrInvalidParameter):
		return errors.ValidationWrap(err, "Invalid parameter")
	case stderrors.Is(err, simulation.ErrEmptyCatalog),
		stderrors.Is(err, simulation.ErrNoCustomers),
		stderrors.Is(err, analytics.ErrUnknownProduct),
		stderrors.Is(err, analytics.ErrDuplicateProduct),
		stderrors.Is(err, store.ErrInvalidRow):
		return errors.UnprocessableWrap(err, "Scenario data cannot be processed")
	default:
		return errors.InternalWrap(err, "An unexpected error occurred")
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := observability.LoggerFrom(r.Context(), h.logger)
	errors.WriteError(w, logger, classify(err), observability.GetRequestID(r.Context()))
}

// intParam reads an optional integer query parameter.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.BadRequest(fmt.Sprintf("query parameter %q must be an integer", name))
	}
	return v, nil
}

// forecastWeeks reads the weeks parameter shared by the JSON and SSE forecast
// routes.
func forecastWeeks(r *http.Request, def int) (int, error) {
	weeks, err := intParam(r, "weeks", def)
	if err != nil {
		return 0, err
	}
	if weeks > services.MaxForecastWeeks {
		return 0, errors.ValidationWrap(
			fmt.Errorf("weeks must be at most %d, got %d", services.MaxForecastWeeks, weeks),
			"Invalid parameter",
		)
	}
	return weeks, nil
}

func cacheHeaders() map[string]string {
	return map[string]string{
		"Cache-Control": "no-cache",
	}
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.KPIs()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders())
}

func (h *APIHandlers) HandleChurn(w http.ResponseWriter, r *http.Request) {
	threshold, err := intParam(r, "threshold", h.analytics.Options().ChurnThresholdDays)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := h.analytics.Churn(threshold)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, map[string]any{
		"threshold_days": threshold,
		"count":          len(data),
		"customers":      data,
	}, cacheHeaders())
}

func (h *APIHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	weeks, err := forecastWeeks(r, h.analytics.Options().ForecastWeeks)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := h.analytics.Forecast(weeks)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders())
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.MonthlySales()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders())
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.CategoryRevenue()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders())
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultTopProducts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := h.analytics.TopProducts(limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders())
}

func (h *APIHandlers) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultPreviewRows)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if limit < 1 || limit > maxPreviewRows {
		h.fail(w, r, errors.BadRequest(fmt.Sprintf("limit must be between 1 and %d", maxPreviewRows)))
		return
	}
	data, err := h.analytics.Transactions(limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, cacheHeaders())
}

func (h *APIHandlers) HandleScenario(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.Scenario()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	errors.WriteSuccess(w, data)
}

type scenarioRequest struct {
	DemandFactor  *float64 `json:"demand_factor"`
	PriceIncrease *float64 `json:"price_increase"`
	Seed          *int64   `json:"seed"`
}

func (h *APIHandlers) HandleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.fail(w, r, errors.Wrap(err, errors.CodeBadRequest, "Request body must be a JSON scenario"))
		return
	}

	p := h.defaults
	if req.DemandFactor != nil {
		p.DemandFactor = *req.DemandFactor
	}
	if req.PriceIncrease != nil {
		p.PriceIncrease = *req.PriceIncrease
	}
	if req.Seed != nil {
		p.Seed = *req.Seed
	}

	res, err := h.analytics.Simulate(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccessWithStatus(w, http.StatusCreated, map[string]any{
		"scenario":          res.Snapshot.Scenario,
		"transaction_count": res.TransactionCount(),
		"duration_ms":       res.Duration.Milliseconds(),
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
