package simulation

import (
	"context"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardware-sim/internal/models"
	"hardware-sim/internal/store"
)

var testNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func testParams() Params {
	p := DefaultParams()
	p.Customers = 20
	p.BaseTransactions = 1000
	p.Now = testNow
	return p
}

func TestCatalog_PricesScaled(t *testing.T) {
	tests := []struct {
		name string
		rate float64
	}{
		{"list prices", 0},
		{"ten percent", 0.1},
		{"fifty percent", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := Catalog(tt.rate)
			require.NoError(t, err)
			require.Len(t, products, 12)

			base := BaseCatalog()
			for i, p := range products {
				assert.Equal(t, base[i].ProductID, p.ProductID)
				assert.Equal(t, base[i].Cost, p.Cost, "cost must not change")
				assert.InDelta(t, base[i].Price*(1+tt.rate), p.Price, 1e-9)
			}
		})
	}
}

func TestCatalog_InvalidRate(t *testing.T) {
	for _, rate := range []float64{-1, -2, math.NaN(), math.Inf(1)} {
		_, err := Catalog(rate)
		assert.ErrorIs(t, err, ErrInvalidParameter, "rate %v", rate)
	}
}

func TestBaseCatalog_IsCopy(t *testing.T) {
	products := BaseCatalog()
	products[0].Price = 0
	assert.NotZero(t, BaseCatalog()[0].Price)
}

func TestCatalog_CategoriesCovered(t *testing.T) {
	seen := map[models.Category]int{}
	for _, p := range BaseCatalog() {
		seen[p.Category]++
	}
	for _, c := range models.Categories {
		assert.Equal(t, 4, seen[c], "category %s", c)
	}
}

func TestGenerateCustomers(t *testing.T) {
	customers, err := GenerateCustomers(NewRand(1), 500, testNow)
	require.NoError(t, err)
	require.Len(t, customers, 500)

	day := truncateDay(testNow)
	earliest, latest := day.AddDate(-3, 0, 0), day.AddDate(-2, 0, 0)

	ids := make(map[int64]struct{}, len(customers))
	for _, c := range customers {
		assert.GreaterOrEqual(t, c.ClientID, int64(10_000_000))
		assert.LessOrEqual(t, c.ClientID, int64(99_999_999))
		ids[c.ClientID] = struct{}{}

		assert.NotEmpty(t, c.Name)
		assert.Contains(t, c.Email, "@")
		assert.False(t, c.SignupDate.Before(earliest), "signup %v before window", c.SignupDate)
		assert.False(t, c.SignupDate.After(latest), "signup %v after window", c.SignupDate)
	}
	assert.Len(t, ids, 500, "client ids must be unique")
}

func TestGenerateCustomers_InvalidCount(t *testing.T) {
	_, err := GenerateCustomers(NewRand(1), 0, testNow)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestTransactionCount(t *testing.T) {
	tests := []struct {
		base   int
		demand float64
		want   int
	}{
		{5000, 1.0, 5000},
		{5000, 0.5, 2500},
		{5000, 2.0, 10000},
		{5000, 1.5, 7500},
		{3, 0.5, 2},
		{1000, 1.25, 1250},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TransactionCount(tt.base, tt.demand), "base %d demand %v", tt.base, tt.demand)
	}
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 17.0, LineTotal(2, 8.5))
	assert.Equal(t, 0.85, LineTotal(1, 0.85))
	assert.Equal(t, 1599.8, LineTotal(20, 79.99))
	assert.Equal(t, 8.8, LineTotal(1, 8.8))
}

func generate(t *testing.T, opts TransactionOptions) ([]models.Product, []models.Customer, []models.Transaction) {
	t.Helper()
	r := NewRand(42)
	products, err := Catalog(0.1)
	require.NoError(t, err)
	customers, err := GenerateCustomers(r, 25, testNow)
	require.NoError(t, err)
	txs, err := GenerateTransactions(r, products, customers, opts)
	require.NoError(t, err)
	return products, customers, txs
}

func TestGenerateTransactions_Invariants(t *testing.T) {
	opts := DefaultTransactionOptions()
	opts.BaseCount = 2000
	products, customers, txs := generate(t, opts)

	require.Len(t, txs, 2000)

	byID := models.ProductIndex(products)
	clients := map[int64]struct{}{}
	for _, c := range customers {
		clients[c.ClientID] = struct{}{}
	}

	invoices := 0
	for i, tx := range txs {
		p, ok := byID[tx.ProductID]
		require.True(t, ok, "row %d references unknown product %d", i, tx.ProductID)

		assert.GreaterOrEqual(t, tx.Quantity, models.MinQuantity)
		assert.LessOrEqual(t, tx.Quantity, models.MaxQuantity)
		assert.InDelta(t, float64(tx.Quantity)*p.Price, tx.TotalAmount, 0.005+1e-9)

		assert.False(t, tx.Date.Before(WindowStart))
		assert.False(t, tx.Date.After(WindowEnd))
		if i > 0 {
			assert.False(t, tx.Date.Before(txs[i-1].Date), "rows must be sorted by date")
		}

		switch tx.Type {
		case models.DocInvoice:
			invoices++
			require.NotNil(t, tx.ClientID)
			_, known := clients[*tx.ClientID]
			assert.True(t, known, "invoice references unknown client")
		case models.DocReceipt:
			assert.Nil(t, tx.ClientID, "receipt rows carry no client under invoice-only")
		default:
			t.Fatalf("unexpected document type %q", tx.Type)
		}
	}

	share := float64(invoices) / float64(len(txs))
	assert.InDelta(t, DefaultB2BShare, share, 0.05)
}

func TestGenerateTransactions_AlwaysAssign(t *testing.T) {
	opts := DefaultTransactionOptions()
	opts.BaseCount = 500
	opts.Policy = models.AssignAlways
	_, _, txs := generate(t, opts)

	for _, tx := range txs {
		assert.NotNil(t, tx.ClientID)
	}
}

func TestGenerateTransactions_DemandScalesCount(t *testing.T) {
	for _, demand := range []float64{0.5, 1.0, 1.5, 2.0} {
		opts := DefaultTransactionOptions()
		opts.BaseCount = 400
		opts.DemandFactor = demand
		_, _, txs := generate(t, opts)
		assert.Len(t, txs, TransactionCount(400, demand))
	}
}

func TestGenerateTransactions_Preconditions(t *testing.T) {
	r := NewRand(1)
	products := BaseCatalog()
	customers, err := GenerateCustomers(r, 3, testNow)
	require.NoError(t, err)

	_, err = GenerateTransactions(r, nil, customers, DefaultTransactionOptions())
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = GenerateTransactions(r, products, nil, DefaultTransactionOptions())
	assert.ErrorIs(t, err, ErrNoCustomers)

	bad := DefaultTransactionOptions()
	bad.Policy = "sometimes"
	_, err = GenerateTransactions(r, products, customers, bad)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	unnumbered := []models.Product{{ProductID: 0, Name: "Loose nails", Category: models.CategoryStructural, Cost: 1, Price: 2}}
	_, err = GenerateTransactions(r, unnumbered, customers, DefaultTransactionOptions())
	assert.ErrorContains(t, err, "product id must be positive")
}

func TestGenerate_Reproducible(t *testing.T) {
	a, err := Generate(testParams())
	require.NoError(t, err)
	b, err := Generate(testParams())
	require.NoError(t, err)

	assert.Equal(t, a.Products, b.Products)
	assert.Equal(t, a.Customers, b.Customers)
	assert.Equal(t, a.Transactions, b.Transactions)
	assert.NotEqual(t, a.Scenario.ScenarioID, b.Scenario.ScenarioID, "each run gets its own id")

	p := testParams()
	p.Seed = 43
	c, err := Generate(p)
	require.NoError(t, err)
	assert.NotEqual(t, a.Transactions, c.Transactions)
}

func TestGenerate_ScenarioMetadata(t *testing.T) {
	p := testParams()
	p.DemandFactor = 1.5
	p.PriceIncrease = 0.2

	snap, err := Generate(p)
	require.NoError(t, err)

	sc := snap.Scenario
	assert.NotEmpty(t, sc.ScenarioID)
	assert.Equal(t, p.Seed, sc.Seed)
	assert.Equal(t, 1.5, sc.DemandFactor)
	assert.Equal(t, 0.2, sc.PriceIncrease)
	assert.Equal(t, 1500, sc.TransactionCount)
	assert.Equal(t, 20, sc.CustomerCount)
	assert.Equal(t, testNow, sc.GeneratedAt)
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"demand below range", func(p *Params) { p.DemandFactor = 0.49 }},
		{"demand above range", func(p *Params) { p.DemandFactor = 2.01 }},
		{"demand NaN", func(p *Params) { p.DemandFactor = math.NaN() }},
		{"negative price increase", func(p *Params) { p.PriceIncrease = -0.01 }},
		{"price increase above range", func(p *Params) { p.PriceIncrease = 0.51 }},
		{"no customers", func(p *Params) { p.Customers = 0 }},
		{"no base count", func(p *Params) { p.BaseTransactions = 0 }},
		{"zero time", func(p *Params) { p.Now = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)
		})
	}

	for _, demand := range []float64{MinDemandFactor, 1, MaxDemandFactor} {
		p := testParams()
		p.DemandFactor = demand
		assert.NoError(t, p.Validate(), "demand %v is in range", demand)
	}
}

func TestRunner_Run(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	st, err := store.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)

	runner := NewRunner(st, logger)
	runner.now = func() time.Time { return testNow }

	p := testParams()
	p.Now = time.Time{}
	res, err := runner.Run(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1000, res.TransactionCount())

	loaded, err := store.LoadSnapshot(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, res.Snapshot.Scenario.ScenarioID, loaded.Scenario.ScenarioID)
	assert.Len(t, loaded.Transactions, 1000)
	assert.Len(t, loaded.Customers, 20)
	assert.Len(t, loaded.Products, 12)
}

func TestRunner_InvalidParamsStoreNothing(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	st, err := store.NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)

	p := testParams()
	p.PriceIncrease = 0.9
	_, err = NewRunner(st, logger).Run(context.Background(), p)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = store.LoadSnapshot(context.Background(), st)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1.0, p.DemandFactor)
	assert.Equal(t, int64(DefaultSeed), p.Seed)
	assert.Equal(t, models.AssignInvoiceOnly, p.Policy)
}
