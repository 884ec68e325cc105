package store

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardware-sim/internal/metrics"
	"hardware-sim/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleSnapshot() *models.Snapshot {
	client := int64(10000001)
	return &models.Snapshot{
		Scenario: models.Scenario{
			ScenarioID:       "4b1c0a52-1f0e-4f4c-9d8e-2a7f3c9d0b11",
			Seed:             42,
			DemandFactor:     1.5,
			PriceIncrease:    0.1,
			AssignmentPolicy: models.AssignInvoiceOnly,
			TransactionCount: 3,
			CustomerCount:    1,
			GeneratedAt:      time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC),
		},
		Products: []models.Product{
			{ProductID: 1, Name: "Cement", Category: models.CategoryStructural, Cost: 6, Price: 10},
			{ProductID: 2, Name: "Hammer", Category: models.CategoryTools, Cost: 3, Price: 5.5},
		},
		Customers: []models.Customer{
			{ClientID: client, Name: "Acme Builders", Email: "ops@acme.test", SignupDate: day(2023, 3, 1)},
		},
		Transactions: []models.Transaction{
			{Date: day(2024, 2, 1), Type: models.DocReceipt, ProductID: 2, Quantity: 2, TotalAmount: 11},
			{Date: day(2024, 1, 5), Type: models.DocInvoice, ClientID: &client, ProductID: 1, Quantity: 3, TotalAmount: 30},
			{Date: day(2024, 1, 20), Type: models.DocReceipt, ProductID: 1, Quantity: 1, TotalAmount: 10},
		},
	}
}

// normalize strips location differences drivers may introduce on round trip.
func normalize(snap *models.Snapshot) {
	snap.Scenario.GeneratedAt = snap.Scenario.GeneratedAt.UTC()
	for i := range snap.Customers {
		snap.Customers[i].SignupDate = snap.Customers[i].SignupDate.UTC()
	}
	for i := range snap.Transactions {
		snap.Transactions[i].Date = snap.Transactions[i].Date.UTC()
	}
}

func newFileStore(t *testing.T) Store {
	t.Helper()
	st, err := NewFileStore(t.TempDir(), testLogger())
	require.NoError(t, err)
	return st
}

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	st, err := OpenSQL("sqlite", filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

var drivers = []struct {
	name string
	open func(t *testing.T) Store
}{
	{"file", newFileStore},
	{"sqlite", newSQLiteStore},
}

func TestStore_Contract(t *testing.T) {
	for _, d := range drivers {
		t.Run(d.name, func(t *testing.T) {
			t.Run("missing table", func(t *testing.T) {
				st := d.open(t)
				var rows []models.Product
				err := st.LoadTable(context.Background(), TableProducts, &rows)
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("replace semantics", func(t *testing.T) {
				st := d.open(t)
				ctx := context.Background()
				first := []models.Product{
					{ProductID: 1, Name: "A", Category: models.CategoryTools, Cost: 1, Price: 2},
					{ProductID: 2, Name: "B", Category: models.CategoryTools, Cost: 1, Price: 2},
				}
				second := []models.Product{
					{ProductID: 9, Name: "Z", Category: models.CategoryFinishing, Cost: 4, Price: 8},
				}
				require.NoError(t, st.StoreTable(ctx, TableProducts, first))
				require.NoError(t, st.StoreTable(ctx, TableProducts, second))

				var got []models.Product
				require.NoError(t, st.LoadTable(ctx, TableProducts, &got))
				assert.Equal(t, second, got)
			})

			t.Run("empty table", func(t *testing.T) {
				st := d.open(t)
				ctx := context.Background()
				require.NoError(t, st.StoreTable(ctx, TableCustomers, []models.Customer{}))

				var got []models.Customer
				require.NoError(t, st.LoadTable(ctx, TableCustomers, &got))
				assert.Empty(t, got)
			})

			t.Run("snapshot round trip", func(t *testing.T) {
				st := d.open(t)
				ctx := context.Background()
				want := sampleSnapshot()
				require.NoError(t, SaveSnapshot(ctx, st, want))

				got, err := LoadSnapshot(ctx, st)
				require.NoError(t, err)
				normalize(got)

				assert.Equal(t, want.Scenario, got.Scenario)
				assert.Equal(t, want.Products, got.Products)
				assert.Equal(t, want.Customers, got.Customers)

				require.Len(t, got.Transactions, 3)
				for i := 1; i < len(got.Transactions); i++ {
					assert.False(t, got.Transactions[i].Date.Before(got.Transactions[i-1].Date), "transactions sorted by date")
				}
				invoice := got.Transactions[0]
				assert.Equal(t, models.DocInvoice, invoice.Type)
				require.NotNil(t, invoice.ClientID)
				assert.Equal(t, int64(10000001), *invoice.ClientID)
				assert.Nil(t, got.Transactions[1].ClientID, "receipts keep a null client")
				assert.Equal(t, 11.0, got.Transactions[2].TotalAmount)
			})
		})
	}
}

func TestStore_Validation(t *testing.T) {
	st := newFileStore(t)
	ctx := context.Background()

	err := st.StoreTable(ctx, "orders", []models.Product{})
	assert.ErrorIs(t, err, ErrUnknownTable)

	err = st.StoreTable(ctx, TableProducts, []models.Customer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects []Product")

	var products []models.Product
	err = st.LoadTable(ctx, TableCustomers, &products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loads into *[]Customer")

	err = st.LoadTable(ctx, TableProducts, products)
	assert.Error(t, err, "dest must be a pointer")
}

func TestStore_CancelledContext(t *testing.T) {
	st := newFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.StoreTable(ctx, TableProducts, []models.Product{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadSnapshot_NoScenario(t *testing.T) {
	st := newFileStore(t)
	ctx := context.Background()
	require.NoError(t, st.StoreTable(ctx, TableProducts, sampleSnapshot().Products))

	_, err := LoadSnapshot(ctx, st)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSnapshot_RejectsInvalidRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Snapshot)
		want   string
	}{
		{"quantity above range", func(s *models.Snapshot) { s.Transactions[0].Quantity = 25 }, "transactions row"},
		{"unknown document type", func(s *models.Snapshot) { s.Transactions[1].Type = "Refund" }, "transactions row"},
		{"product not in catalog", func(s *models.Snapshot) { s.Transactions[2].ProductID = 77 }, "unknown product_id 77"},
		{"non-positive price", func(s *models.Snapshot) { s.Products[1].Price = 0 }, "products row 1"},
		{"unnamed customer", func(s *models.Snapshot) { s.Customers[0].Name = "" }, "customers row 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newFileStore(t)
			ctx := context.Background()
			snap := sampleSnapshot()
			tt.mutate(snap)
			require.NoError(t, SaveSnapshot(ctx, st, snap))

			_, err := LoadSnapshot(ctx, st)
			assert.ErrorIs(t, err, ErrInvalidRow)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuildDialector_Unsupported(t *testing.T) {
	_, err := buildDialector("oracle", "")
	assert.ErrorContains(t, err, "unsupported SQL driver")
}

func TestInstrument(t *testing.T) {
	st := Instrument(newFileStore(t), "instrumented-test")
	ctx := context.Background()

	require.NoError(t, st.StoreTable(ctx, TableScenario, []models.Scenario{sampleSnapshot().Scenario}))
	var rows []models.Scenario
	require.NoError(t, st.LoadTable(ctx, TableScenario, &rows))
	assert.Len(t, rows, 1)
	var missing []models.Product
	require.Error(t, st.LoadTable(ctx, TableProducts, &missing))

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`driver="instrumented-test",operation="store",status="ok",table="scenario"`,
		`driver="instrumented-test",operation="load",status="error",table="products"`,
	} {
		assert.True(t, strings.Contains(body, want), "metrics missing %s", want)
	}
}
