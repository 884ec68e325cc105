package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hardware-sim/internal/config"
	"hardware-sim/internal/models"
	"hardware-sim/internal/store"
)

const (
	MinDemandFactor  = 0.5
	MaxDemandFactor  = 2.0
	MinPriceIncrease = 0.0
	MaxPriceIncrease = 0.5
	DefaultSeed      = 42
)

// Params are the knobs of one scenario run.
type Params struct {
	DemandFactor     float64
	PriceIncrease    float64
	Seed             int64
	Customers        int
	BaseTransactions int
	B2BShare         float64
	Policy           models.AssignmentPolicy
	// Now anchors the customer signup window.
	Now time.Time
}

func DefaultParams() Params {
	return Params{
		DemandFactor:     1.0,
		PriceIncrease:    0,
		Seed:             DefaultSeed,
		Customers:        DefaultCustomers,
		BaseTransactions: DefaultBaseTransactions,
		B2BShare:         DefaultB2BShare,
		Policy:           models.AssignInvoiceOnly,
	}
}

// Validate rejects parameters outside the scenario domain before anything
// is generated.
func (p Params) Validate() error {
	if !(p.DemandFactor >= MinDemandFactor && p.DemandFactor <= MaxDemandFactor) {
		return fmt.Errorf("%w: demand factor %v outside [%v, %v]", ErrInvalidParameter, p.DemandFactor, MinDemandFactor, MaxDemandFactor)
	}
	if !(p.PriceIncrease >= MinPriceIncrease && p.PriceIncrease <= MaxPriceIncrease) {
		return fmt.Errorf("%w: price increase %v outside [%v, %v]", ErrInvalidParameter, p.PriceIncrease, MinPriceIncrease, MaxPriceIncrease)
	}
	if p.Customers <= 0 {
		return fmt.Errorf("%w: customer count must be positive, got %d", ErrInvalidParameter, p.Customers)
	}
	if p.Now.IsZero() {
		return fmt.Errorf("%w: generation time is not set", ErrInvalidParameter)
	}
	return p.transactionOptions().validate()
}

func (p Params) transactionOptions() TransactionOptions {
	return TransactionOptions{
		BaseCount:    p.BaseTransactions,
		DemandFactor: p.DemandFactor,
		B2BShare:     p.B2BShare,
		Policy:       p.Policy,
	}
}

// Generate builds a full snapshot from p without touching storage.
func Generate(p Params) (*models.Snapshot, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r := NewRand(p.Seed)

	products, err := Catalog(p.PriceIncrease)
	if err != nil {
		return nil, fmt.Errorf("generate catalog: %w", err)
	}
	customers, err := GenerateCustomers(r, p.Customers, p.Now)
	if err != nil {
		return nil, fmt.Errorf("generate customers: %w", err)
	}
	txs, err := GenerateTransactions(r, products, customers, p.transactionOptions())
	if err != nil {
		return nil, fmt.Errorf("generate transactions: %w", err)
	}

	return &models.Snapshot{
		Scenario: models.Scenario{
			ScenarioID:       uuid.NewString(),
			Seed:             p.Seed,
			DemandFactor:     p.DemandFactor,
			PriceIncrease:    p.PriceIncrease,
			AssignmentPolicy: p.Policy,
			TransactionCount: len(txs),
			CustomerCount:    len(customers),
			GeneratedAt:      p.Now.UTC(),
		},
		Products:     products,
		Customers:    customers,
		Transactions: txs,
	}, nil
}

type Result struct {
	Snapshot *models.Snapshot
	Duration time.Duration
}

// TransactionCount is the number of transactions the run generated.
func (r *Result) TransactionCount() int {
	return len(r.Snapshot.Transactions)
}

// Runner generates scenarios and replaces the stored tables with them.
type Runner struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewRunner(st store.Store, logger *slog.Logger) *Runner {
	return &Runner{store: st, logger: logger, now: time.Now}
}

func (r *Runner) Run(ctx context.Context, p Params) (*Result, error) {
	if p.Now.IsZero() {
		p.Now = r.now()
	}
	start := time.Now()

	r.logger.Info("starting simulation",
		"demand_factor", p.DemandFactor,
		"price_increase", p.PriceIncrease,
		"seed", p.Seed,
		"policy", p.Policy,
	)

	snap, err := Generate(p)
	if err != nil {
		return nil, err
	}
	if err := store.SaveSnapshot(ctx, r.store, snap); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	res := &Result{Snapshot: snap, Duration: time.Since(start)}
	r.logger.Info("simulation completed",
		"scenario_id", snap.Scenario.ScenarioID,
		"products", len(snap.Products),
		"customers", len(snap.Customers),
		"transactions", res.TransactionCount(),
		"duration", res.Duration,
	)
	return res, nil
}

// Run generates one scenario into st using the default logger.
func Run(ctx context.Context, st store.Store, p Params) (*Result, error) {
	return NewRunner(st, slog.Default()).Run(ctx, p)
}

// ParamsFromConfig builds the default run parameters from configuration.
func ParamsFromConfig(c config.SimulationConfig) Params {
	return Params{
		DemandFactor:     c.DefaultDemand,
		PriceIncrease:    c.DefaultPriceIncrease,
		Seed:             c.Seed,
		Customers:        c.Customers,
		BaseTransactions: c.BaseTransactions,
		B2BShare:         c.B2BShare,
		Policy:           models.AssignmentPolicy(c.AssignmentPolicy),
	}
}
