package server

import (
	"log/slog"
	"net/http"

	"hardware-sim/internal/handlers"
	"hardware-sim/internal/metrics"
	"hardware-sim/internal/services"
	"hardware-sim/internal/simulation"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
	routes      []string
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

// NewServer builds the route table. defaults are the scenario parameters used
// for any knob a simulate request leaves out.
func NewServer(analytics *services.Analytics, defaults simulation.Params, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, defaults, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, defaults, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) handle(method, path string, h http.HandlerFunc) {
	s.mux.HandleFunc(method+" "+path, h)
	s.routes = append(s.routes, path)
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard and ops
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.routes = append(s.routes, "/")
	s.handle(http.MethodGet, "/health", s.apiHandlers.HandleHealth)
	s.handle(http.MethodGet, "/admin/stats", s.apiHandlers.HandleStats)
	s.handle(http.MethodGet, "/metrics", metrics.Handler())

	// REST API
	s.handle(http.MethodGet, "/api/kpis", s.apiHandlers.HandleKPIs)
	s.handle(http.MethodGet, "/api/churn", s.apiHandlers.HandleChurn)
	s.handle(http.MethodGet, "/api/forecast", s.apiHandlers.HandleForecast)
	s.handle(http.MethodGet, "/api/monthly-sales", s.apiHandlers.HandleMonthlySales)
	s.handle(http.MethodGet, "/api/categories", s.apiHandlers.HandleCategories)
	s.handle(http.MethodGet, "/api/top-products", s.apiHandlers.HandleTopProducts)
	s.handle(http.MethodGet, "/api/transactions", s.apiHandlers.HandleTransactions)
	s.handle(http.MethodGet, "/api/scenario", s.apiHandlers.HandleScenario)
	s.handle(http.MethodPost, "/api/scenarios", s.apiHandlers.HandleCreateScenario)

	// Datastar SSE
	s.handle(http.MethodGet, "/sse/kpis", s.sseHandlers.HandleKPIs)
	s.handle(http.MethodGet, "/sse/churn", s.sseHandlers.HandleChurn)
	s.handle(http.MethodGet, "/sse/forecast", s.sseHandlers.HandleForecast)
	s.handle(http.MethodGet, "/sse/refresh-all", s.sseHandlers.HandleRefreshAll)
	s.handle(http.MethodPost, "/sse/simulate", s.sseHandlers.HandleSimulate)
}

// Routes lists the registered paths, for metric labelling.
func (s *Server) Routes() []string {
	return s.routes
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
