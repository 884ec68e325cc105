package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"hardware-sim/internal/models"
	"hardware-sim/internal/services"
	"hardware-sim/internal/simulation"
)

const maxTableRows = 50

const noDataMessage = "No scenario data available. Run a simulation first."

var funcs = template.FuncMap{
	"money":   func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"pct":     func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"day":     func(t time.Time) string { return t.Format("2006-01-02") },
	"deref":   func(p *int64) int64 { return *p },
	"percent": func(v float64) float64 { return v * 100 },
}

var kpiTemplate = template.Must(template.New("kpis").Funcs(funcs).Parse(`
<div id="kpi-content" class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Total Sales</span><span class="kpi-value">{{money .TotalSales}}</span></div>
<div class="kpi-card"><span class="kpi-label">Total Margin</span><span class="kpi-value">{{money .TotalMargin}}</span></div>
<div class="kpi-card"><span class="kpi-label">Margin %</span><span class="kpi-value">{{pct .MarginPercent}}</span></div>
<div class="kpi-card"><span class="kpi-label">Avg Ticket</span><span class="kpi-value">{{money .AvgTicket}}</span></div>
<div class="kpi-card"><span class="kpi-label">Transactions</span><span class="kpi-value">{{.Transactions}}</span></div>
</div>`))

var churnTemplate = template.Must(template.New("churn").Funcs(funcs).Parse(`
<div id="churn-content">
<p class="table-caption">{{.Total}} customers inactive for more than {{.Threshold}} days</p>
<table class="modern-table">
<thead><tr><th>Client ID</th><th>Name</th><th>Email</th><th>Last Purchase</th><th>Days Inactive</th></tr></thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.ClientID}}</td>
<td>{{.Name}}</td>
<td>{{.Email}}</td>
<td>{{if .LastPurchase}}{{day .LastPurchase}}{{else}}never{{end}}</td>
<td><strong>{{.DaysInactive}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var forecastTemplate = template.Must(template.New("forecast").Funcs(funcs).Parse(`
<div id="forecast-content">
<table class="modern-table">
<thead><tr><th>Week Ending</th><th>Predicted Sales</th></tr></thead>
<tbody>
{{range .}}<tr><td>{{day .Date}}</td><td><strong>{{money .PredictedSales}}</strong></td></tr>{{end}}
</tbody>
</table>
</div>`))

var transactionsTemplate = template.Must(template.New("transactions").Funcs(funcs).Parse(`
<div id="transactions-content">
<table class="modern-table">
<thead><tr><th>Date</th><th>Type</th><th>Client</th><th>Product</th><th>Qty</th><th>Total</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{day .Date}}</td>
<td><span class="category-badge">{{.Type}}</span></td>
<td>{{if .ClientID}}{{deref .ClientID}}{{end}}</td>
<td>{{.ProductID}}</td>
<td>{{.Quantity}}</td>
<td>{{money .TotalAmount}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var scenarioTemplate = template.Must(template.New("scenario").Funcs(funcs).Parse(`
<div id="scenario-content" class="scenario-meta">
<span>Scenario <code>{{.ScenarioID}}</code></span>
<span>demand x{{printf "%.2f" .DemandFactor}}</span>
<span>prices +{{printf "%.0f" (percent .PriceIncrease)}}%</span>
<span>seed {{.Seed}}</span>
<span>{{.TransactionCount}} transactions</span>
</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	defaults  simulation.Params
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, defaults simulation.Params, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		defaults:  defaults,
		logger:    logger,
	}
}

type churnView struct {
	Threshold int
	Total     int
	Rows      []models.AtRiskCustomer
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func placeholder(id, message string) string {
	return fmt.Sprintf(`<div id="%s" class="empty-state">%s</div>`, id, template.HTMLEscapeString(message))
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// patchNoData replaces every widget with guidance when nothing has been
// simulated yet. It reports whether err was the no-data case.
func (h *SSEHandlers) patchNoData(sse *datastar.ServerSentEventGenerator, err error, ids ...string) bool {
	if !stderrors.Is(err, services.ErrNoData) {
		return false
	}
	for _, id := range ids {
		sse.PatchElements(placeholder(id, noDataMessage))
	}
	return true
}

func (h *SSEHandlers) patchError(sse *datastar.ServerSentEventGenerator, err error) {
	h.logger.Error("sse request failed", "error", err)
	msg := "Something went wrong. Check the server logs."
	if appErr := classify(err); appErr.Details != "" {
		msg = appErr.Details
	}
	sse.PatchElements(placeholder("status", msg))
}

func (h *SSEHandlers) kpis(sse *datastar.ServerSentEventGenerator) error {
	kpi, err := h.analytics.KPIs()
	if err != nil {
		return err
	}
	html, err := render(kpiTemplate, kpi)
	if err != nil {
		return err
	}
	return sse.PatchElements(html)
}

func (h *SSEHandlers) churn(sse *datastar.ServerSentEventGenerator, threshold int) error {
	atRisk, err := h.analytics.Churn(threshold)
	if err != nil {
		return err
	}
	view := churnView{Threshold: threshold, Total: len(atRisk), Rows: atRisk}
	if len(view.Rows) > maxTableRows {
		view.Rows = view.Rows[:maxTableRows]
	}
	html, err := render(churnTemplate, view)
	if err != nil {
		return err
	}
	if err := sse.PatchElements(html); err != nil {
		return err
	}
	return h.patchSignals(sse, map[string]any{"atRiskCount": len(atRisk)})
}

func (h *SSEHandlers) forecast(sse *datastar.ServerSentEventGenerator, weeks int) error {
	points, err := h.analytics.Forecast(weeks)
	if err != nil {
		return err
	}
	reports, err := h.analytics.Reports()
	if err != nil {
		return err
	}
	html, err := render(forecastTemplate, points)
	if err != nil {
		return err
	}
	if err := sse.PatchElements(html); err != nil {
		return err
	}
	return h.patchSignals(sse, map[string]any{
		"forecastData": points,
		"weeklyData":   reports.WeeklySales,
	})
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) error {
	data, err := json.Marshal(signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}
	return sse.PatchSignals(data)
}

// refreshAll pushes every dashboard widget in one stream.
func (h *SSEHandlers) refreshAll(sse *datastar.ServerSentEventGenerator) error {
	opts := h.analytics.Options()
	reports, err := h.analytics.Reports()
	if err != nil {
		return err
	}

	html, err := render(scenarioTemplate, reports.Scenario)
	if err != nil {
		return err
	}
	if err := sse.PatchElements(html); err != nil {
		return err
	}
	if err := h.kpis(sse); err != nil {
		return err
	}
	if err := h.churn(sse, opts.ChurnThresholdDays); err != nil {
		return err
	}
	if err := h.forecast(sse, opts.ForecastWeeks); err != nil {
		return err
	}

	txs, err := h.analytics.Transactions(defaultPreviewRows)
	if err != nil {
		return err
	}
	if html, err = render(transactionsTemplate, txs); err != nil {
		return err
	}
	if err := sse.PatchElements(html); err != nil {
		return err
	}

	return h.patchSignals(sse, map[string]any{
		"monthlyData":  reports.MonthlySales,
		"categoryData": reports.CategoryRevenue,
		"productsData": reports.TopProducts,
	})
}

var dashboardWidgets = []string{"scenario-content", "kpi-content", "churn-content", "forecast-content", "transactions-content"}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if err := h.kpis(sse); err != nil && !h.patchNoData(sse, err, "kpi-content") {
		h.patchError(sse, err)
	}
	flush(w)
}

func (h *SSEHandlers) HandleChurn(w http.ResponseWriter, r *http.Request) {
	threshold, err := intParam(r, "threshold", h.analytics.Options().ChurnThresholdDays)
	sse := datastar.NewSSE(w, r)
	if err == nil {
		err = h.churn(sse, threshold)
	}
	if err != nil && !h.patchNoData(sse, err, "churn-content") {
		h.patchError(sse, err)
	}
	flush(w)
}

func (h *SSEHandlers) HandleForecast(w http.ResponseWriter, r *http.Request) {
	weeks, err := forecastWeeks(r, h.analytics.Options().ForecastWeeks)
	sse := datastar.NewSSE(w, r)
	if err == nil {
		err = h.forecast(sse, weeks)
	}
	if err != nil && !h.patchNoData(sse, err, "forecast-content") {
		h.patchError(sse, err)
	}
	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if err := h.refreshAll(sse); err != nil && !h.patchNoData(sse, err, dashboardWidgets...) {
		h.patchError(sse, err)
	}
	flush(w)
}

// simulateSignals are the slider values posted by the dashboard. Inflation
// is an integer percentage.
type simulateSignals struct {
	Demand    *float64 `json:"demand"`
	Inflation *int     `json:"inflation"`
	Seed      *int64   `json:"seed"`
}

func (h *SSEHandlers) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	var signals simulateSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		h.patchError(sse, fmt.Errorf("read signals: %w", err))
		flush(w)
		return
	}

	p := h.defaults
	if signals.Demand != nil {
		p.DemandFactor = *signals.Demand
	}
	if signals.Inflation != nil {
		p.PriceIncrease = float64(*signals.Inflation) / 100
	}
	if signals.Seed != nil {
		p.Seed = *signals.Seed
	}

	res, err := h.analytics.Simulate(r.Context(), p)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.patchError(sse, err)
		flush(w)
		return
	}

	sse.PatchElements(placeholder("status", fmt.Sprintf("Generated %d transactions in %s", res.TransactionCount(), res.Duration.Round(time.Millisecond))))
	if err := h.refreshAll(sse); err != nil {
		h.patchError(sse, err)
	}
	flush(w)
}
