package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hardware-sim/internal/models"
)

func TestNewSSEHandlers(t *testing.T) {
	a := createEmptyAnalytics(t)
	logger := testLogger()

	handlers := NewSSEHandlers(a, testParams(), logger)
	if handlers == nil {
		t.Fatal("NewSSEHandlers() returned nil")
	}
	if handlers.analytics != a {
		t.Error("NewSSEHandlers() should set analytics field")
	}
	if handlers.logger != logger {
		t.Error("NewSSEHandlers() should set logger field")
	}
}

func TestRender_ChurnTable(t *testing.T) {
	last := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	view := churnView{
		Threshold: 90,
		Total:     2,
		Rows: []models.AtRiskCustomer{
			{ClientID: 12345678, Name: "Never Bought LLC", Email: "a@never.test", DaysInactive: 999},
			{ClientID: 87654321, Name: "Slow Builders", Email: "b@slow.test", LastPurchase: &last, DaysInactive: 121},
		},
	}

	html, err := render(churnTemplate, view)
	if err != nil {
		t.Fatalf("render() failed: %v", err)
	}

	expectedContent := []string{
		`<div id="churn-content">`,
		"<th>Days Inactive</th>",
		"2 customers inactive for more than 90 days",
		"12345678",
		"Never Bought LLC",
		"never",
		"2025-09-01",
		"999",
		"121",
	}
	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestRender_TransactionsTable(t *testing.T) {
	client := int64(55555555)
	txs := []models.Transaction{
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Type: models.DocInvoice, ClientID: &client, ProductID: 101, Quantity: 2, TotalAmount: 17},
		{Date: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), Type: models.DocReceipt, ProductID: 105, Quantity: 1, TotalAmount: 5.5},
	}

	html, err := render(transactionsTemplate, txs)
	if err != nil {
		t.Fatalf("render() failed: %v", err)
	}
	for _, content := range []string{"55555555", "Invoice", "Receipt", "$17.00", "$5.50", "2024-01-04"} {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestSSEHandlers_NoData(t *testing.T) {
	handlers := NewSSEHandlers(createEmptyAnalytics(t), testParams(), testLogger())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  string
	}{
		{"kpis", handlers.HandleKPIs, "kpi-content"},
		{"churn", handlers.HandleChurn, "churn-content"},
		{"forecast", handlers.HandleForecast, "forecast-content"},
		{"refresh-all", handlers.HandleRefreshAll, "transactions-content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, "/sse/"+tt.name, nil))

			if w.Code != http.StatusOK {
				t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
			}
			body := w.Body.String()
			if !strings.Contains(body, "Run a simulation first") {
				t.Errorf("expected guidance message, got %q", body)
			}
			if !strings.Contains(body, tt.target) {
				t.Errorf("expected guidance to target #%s", tt.target)
			}
		})
	}
}

func TestSSEHandlers_HandleKPIs(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testParams(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/sse/kpis", nil)
	w := httptest.NewRecorder()
	handlers.HandleKPIs(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("expected content-type to contain 'text/event-stream', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected cache-control 'no-cache', got %q", cc)
	}

	body := w.Body.String()
	for _, content := range []string{"kpi-content", "Total Sales", "Margin %", "Avg Ticket"} {
		if !strings.Contains(body, content) {
			t.Errorf("expected stream to contain %q", content)
		}
	}
}

func TestSSEHandlers_HandleChurn(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testParams(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleChurn(w, httptest.NewRequest(http.MethodGet, "/sse/churn?threshold=30", nil))

	body := w.Body.String()
	if !strings.Contains(body, "more than 30 days") {
		t.Error("expected caption with the requested threshold")
	}
	if !strings.Contains(body, "atRiskCount") {
		t.Error("expected atRiskCount signal")
	}
}

func TestSSEHandlers_HandleForecast(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testParams(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleForecast(w, httptest.NewRequest(http.MethodGet, "/sse/forecast", nil))

	body := w.Body.String()
	for _, content := range []string{"forecast-content", "forecastData", "weeklyData", "predicted_sales"} {
		if !strings.Contains(body, content) {
			t.Errorf("expected stream to contain %q", content)
		}
	}
}

func TestSSEHandlers_HandleForecastRejectsLongHorizon(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testParams(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleForecast(w, httptest.NewRequest(http.MethodGet, "/sse/forecast?weeks=5000", nil))

	body := w.Body.String()
	if !strings.Contains(body, "weeks must be at most 52") {
		t.Errorf("expected horizon error in stream, got %q", body)
	}
	if strings.Contains(body, "<tr>") || strings.Contains(body, "forecastData") {
		t.Error("rejected horizon must not render forecast rows")
	}
}

func TestSSEHandlers_HandleRefreshAll(t *testing.T) {
	handlers := NewSSEHandlers(createTestAnalytics(t), testParams(), testLogger())

	w := httptest.NewRecorder()
	handlers.HandleRefreshAll(w, httptest.NewRequest(http.MethodGet, "/sse/refresh-all", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := w.Body.String()
	expected := []string{
		"scenario-content",
		"kpi-content",
		"churn-content",
		"forecast-content",
		"transactions-content",
		"monthlyData",
		"categoryData",
		"productsData",
	}
	for _, content := range expected {
		if !strings.Contains(body, content) {
			t.Errorf("expected stream to contain %q", content)
		}
	}
}

func TestSSEHandlers_HandleSimulate(t *testing.T) {
	a := createEmptyAnalytics(t)
	handlers := NewSSEHandlers(a, testParams(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/sse/simulate", strings.NewReader(`{"demand":1.5,"inflation":10}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handlers.HandleSimulate(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "Generated 600 transactions") {
		t.Errorf("expected status message, got %q", body)
	}
	if !strings.Contains(body, "kpi-content") {
		t.Error("expected dashboard refresh after simulation")
	}

	sc, err := a.Scenario()
	if err != nil {
		t.Fatal(err)
	}
	if sc.DemandFactor != 1.5 || sc.PriceIncrease != 0.1 {
		t.Errorf("scenario = %+v, want demand 1.5 and price increase 0.1", sc)
	}
}

func TestSSEHandlers_HandleSimulateInvalid(t *testing.T) {
	a := createEmptyAnalytics(t)
	handlers := NewSSEHandlers(a, testParams(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/sse/simulate", strings.NewReader(`{"demand":1.0,"inflation":80}`))
	w := httptest.NewRecorder()
	handlers.HandleSimulate(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "price increase") {
		t.Errorf("expected validation detail in stream, got %q", body)
	}
	if _, err := a.Scenario(); err == nil {
		t.Error("invalid run must not install a scenario")
	}
}
