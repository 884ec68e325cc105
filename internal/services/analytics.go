package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"hardware-sim/internal/analytics"
	"hardware-sim/internal/cache"
	"hardware-sim/internal/config"
	"hardware-sim/internal/metrics"
	"hardware-sim/internal/models"
	"hardware-sim/internal/observability"
	"hardware-sim/internal/simulation"
	"hardware-sim/internal/store"
)

const (
	maxWorkers = 4

	// MaxForecastWeeks bounds on-demand forecast horizons.
	MaxForecastWeeks = 52
)

// ErrNoData means no complete scenario is available to report on.
var ErrNoData = errors.New("no scenario data available")

// Reports are the precomputed dashboard views of one scenario, computed with
// the service's default churn threshold and forecast horizon.
type Reports struct {
	Scenario        models.Scenario          `json:"scenario"`
	KPI             models.KPIReport         `json:"kpi"`
	AtRisk          []models.AtRiskCustomer  `json:"at_risk"`
	Forecast        []models.ForecastPoint   `json:"forecast"`
	WeeklySales     []models.WeeklySales     `json:"weekly_sales"`
	MonthlySales    []models.MonthlyData     `json:"monthly_sales"`
	CategoryRevenue []models.CategoryRevenue `json:"category_revenue"`
	TopProducts     []models.ProductSales    `json:"top_products"`
	ComputedAt      time.Time                `json:"computed_at"`
}

type Options struct {
	ChurnThresholdDays  int
	ForecastWeeks       int
	ForecastWindowWeeks int
}

func OptionsFromConfig(c config.AnalyticsConfig) Options {
	return Options{
		ChurnThresholdDays:  c.ChurnThresholdDays,
		ForecastWeeks:       c.ForecastWeeks,
		ForecastWindowWeeks: c.ForecastWindowWeeks,
	}
}

// cacheVariant distinguishes reports of one scenario computed with different
// options.
func (o Options) cacheVariant() string {
	return fmt.Sprintf("churn=%d,weeks=%d,window=%d", o.ChurnThresholdDays, o.ForecastWeeks, o.ForecastWindowWeeks)
}

func DefaultOptions() Options {
	return Options{
		ChurnThresholdDays:  analytics.DefaultChurnThresholdDays,
		ForecastWeeks:       analytics.DefaultForecastWeeks,
		ForecastWindowWeeks: analytics.DefaultWindowWeeks,
	}
}

type Analytics struct {
	mu       sync.RWMutex
	snapshot *models.Snapshot
	reports  *Reports

	// runMu serializes Simulate so concurrent runs cannot interleave their
	// table writes.
	runMu sync.Mutex

	store   store.Store
	runner  *simulation.Runner
	cache   *cache.ReportCache
	opts    Options
	logger  *slog.Logger
	reloads atomic.Int64
}

func NewAnalytics(st store.Store, reportCache *cache.ReportCache, opts Options, logger *slog.Logger) *Analytics {
	if reportCache == nil {
		reportCache = cache.Disabled()
	}
	return &Analytics{
		store:  st,
		runner: simulation.NewRunner(st, logger),
		cache:  reportCache,
		opts:   opts,
		logger: logger,
	}
}

// Simulate generates and stores a new scenario, then reloads the dashboard
// from the store.
func (a *Analytics) Simulate(ctx context.Context, p simulation.Params) (*simulation.Result, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	start := time.Now()
	res, err := a.runner.Run(ctx, p)
	switch {
	case errors.Is(err, simulation.ErrInvalidParameter):
		metrics.ScenarioRuns.WithLabelValues("rejected").Inc()
		return nil, err
	case err != nil:
		metrics.ScenarioRuns.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.ScenarioRuns.WithLabelValues("success").Inc()
	metrics.ScenarioDuration.Observe(time.Since(start).Seconds())
	metrics.TransactionsGenerated.Set(float64(res.TransactionCount()))

	if err := a.Reload(ctx); err != nil {
		return nil, fmt.Errorf("reload after simulation: %w", err)
	}
	return res, nil
}

// Reload reads the current tables back from the store and recomputes the
// reports. When the store has nothing, or the tables cannot be reported on,
// the previous state is dropped rather than served stale.
func (a *Analytics) Reload(ctx context.Context) error {
	a.reloads.Add(1)

	snap, err := store.LoadSnapshot(ctx, a.store)
	if err != nil {
		a.clear()
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return fmt.Errorf("load snapshot: %w", err)
	}

	key := cache.ReportsKey(snap.Scenario.ScenarioID, a.opts.cacheVariant())
	var cached Reports
	if a.cache.Get(ctx, key, &cached) {
		a.install(snap, &cached)
		a.logger.Info("reports loaded from cache", "scenario_id", snap.Scenario.ScenarioID)
		return nil
	}

	reports, err := a.compute(ctx, snap)
	if err != nil {
		a.clear()
		if errors.Is(err, analytics.ErrNoTransactions) {
			return fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return err
	}
	a.install(snap, reports)

	if err := a.cache.Set(ctx, key, reports); err != nil {
		a.logger.Warn("failed to cache reports", "error", err)
	}
	return nil
}

// SetSnapshot installs an in-memory snapshot without going through the store.
func (a *Analytics) SetSnapshot(ctx context.Context, snap *models.Snapshot) error {
	reports, err := a.compute(ctx, snap)
	if err != nil {
		return err
	}
	a.install(snap, reports)
	return nil
}

func (a *Analytics) install(snap *models.Snapshot, reports *Reports) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot = snap
	a.reports = reports
}

func (a *Analytics) clear() {
	a.install(nil, nil)
}

func (a *Analytics) compute(ctx context.Context, snap *models.Snapshot) (*Reports, error) {
	ctx, span := observability.StartSpan(ctx, "analytics.compute")
	defer span.Finish(a.logger)
	span.SetTag("scenario_id", snap.Scenario.ScenarioID)

	start := time.Now()
	r := &Reports{Scenario: snap.Scenario}
	txs, products, customers := snap.Transactions, snap.Products, snap.Customers

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	task := func(name string, fn func() error) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defer metrics.ObserveReport(name, time.Now())
			if err := fn(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}

	task("kpi", func() (err error) {
		r.KPI, err = analytics.KPIs(txs, products)
		return err
	})
	task("churn", func() (err error) {
		r.AtRisk, err = analytics.Churn(txs, customers, a.opts.ChurnThresholdDays)
		return err
	})
	task("forecast", func() (err error) {
		r.Forecast, err = analytics.ForecastWindow(txs, a.opts.ForecastWeeks, a.opts.ForecastWindowWeeks)
		r.WeeklySales = analytics.WeeklySales(txs)
		return err
	})
	task("monthly_sales", func() error {
		r.MonthlySales = analytics.MonthlySales(txs)
		return nil
	})
	task("category_revenue", func() (err error) {
		r.CategoryRevenue, err = analytics.CategoryRevenue(txs, products)
		return err
	})
	task("top_products", func() (err error) {
		r.TopProducts, err = analytics.TopProducts(txs, products, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("compute reports: %w", err)
	}

	r.ComputedAt = time.Now().UTC()
	a.logger.Info("reports computed",
		"scenario_id", snap.Scenario.ScenarioID,
		"transactions", len(txs),
		"at_risk", len(r.AtRisk),
		"duration", time.Since(start),
	)
	return r, nil
}

func (a *Analytics) current() (*models.Snapshot, *Reports, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.snapshot == nil || a.reports == nil {
		return nil, nil, ErrNoData
	}
	return a.snapshot, a.reports, nil
}

func (a *Analytics) Reports() (*Reports, error) {
	_, r, err := a.current()
	return r, err
}

func (a *Analytics) Scenario() (models.Scenario, error) {
	_, r, err := a.current()
	if err != nil {
		return models.Scenario{}, err
	}
	return r.Scenario, nil
}

func (a *Analytics) KPIs() (models.KPIReport, error) {
	_, r, err := a.current()
	if err != nil {
		return models.KPIReport{}, err
	}
	return r.KPI, nil
}

// Churn returns the at-risk list. A non-default threshold is computed on
// demand from the loaded snapshot.
func (a *Analytics) Churn(thresholdDays int) ([]models.AtRiskCustomer, error) {
	snap, r, err := a.current()
	if err != nil {
		return nil, err
	}
	if thresholdDays == a.opts.ChurnThresholdDays {
		return r.AtRisk, nil
	}
	return analytics.Churn(snap.Transactions, snap.Customers, thresholdDays)
}

func (a *Analytics) Forecast(weeks int) ([]models.ForecastPoint, error) {
	snap, r, err := a.current()
	if err != nil {
		return nil, err
	}
	if weeks == a.opts.ForecastWeeks {
		return r.Forecast, nil
	}
	if weeks > MaxForecastWeeks {
		return nil, fmt.Errorf("%w: forecast horizon must be at most %d weeks, got %d", analytics.ErrInvalidParameter, MaxForecastWeeks, weeks)
	}
	return analytics.ForecastWindow(snap.Transactions, weeks, a.opts.ForecastWindowWeeks)
}

func (a *Analytics) MonthlySales() ([]models.MonthlyData, error) {
	_, r, err := a.current()
	if err != nil {
		return nil, err
	}
	return r.MonthlySales, nil
}

func (a *Analytics) CategoryRevenue() ([]models.CategoryRevenue, error) {
	_, r, err := a.current()
	if err != nil {
		return nil, err
	}
	return r.CategoryRevenue, nil
}

func (a *Analytics) TopProducts(limit int) ([]models.ProductSales, error) {
	_, r, err := a.current()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || len(r.TopProducts) <= limit {
		return r.TopProducts, nil
	}
	return r.TopProducts[:limit], nil
}

// Transactions returns the first limit rows of the transaction table.
func (a *Analytics) Transactions(limit int) ([]models.Transaction, error) {
	snap, _, err := a.current()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || len(snap.Transactions) <= limit {
		return snap.Transactions, nil
	}
	return snap.Transactions[:limit], nil
}

func (a *Analytics) Options() Options {
	return a.opts
}

// Stats reports service state for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := map[string]any{
		"loaded":        a.snapshot != nil,
		"reloads":       a.reloads.Load(),
		"cache_enabled": a.cache.Enabled(),
	}
	if a.snapshot != nil {
		stats["scenario_id"] = a.snapshot.Scenario.ScenarioID
		stats["transactions"] = len(a.snapshot.Transactions)
		stats["customers"] = len(a.snapshot.Customers)
		stats["products"] = len(a.snapshot.Products)
		stats["at_risk"] = len(a.reports.AtRisk)
		stats["computed_at"] = a.reports.ComputedAt
	}
	return stats
}
