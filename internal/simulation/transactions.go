package simulation

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"hardware-sim/internal/models"
)

const (
	DefaultBaseTransactions = 5000
	DefaultB2BShare         = 0.3
)

var (
	WindowStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	WindowEnd   = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
)

type TransactionOptions struct {
	BaseCount    int
	DemandFactor float64
	B2BShare     float64
	Policy       models.AssignmentPolicy
}

func DefaultTransactionOptions() TransactionOptions {
	return TransactionOptions{
		BaseCount:    DefaultBaseTransactions,
		DemandFactor: 1.0,
		B2BShare:     DefaultB2BShare,
		Policy:       models.AssignInvoiceOnly,
	}
}

func (o TransactionOptions) validate() error {
	if o.BaseCount <= 0 {
		return fmt.Errorf("%w: base transaction count must be positive, got %d", ErrInvalidParameter, o.BaseCount)
	}
	if !(o.DemandFactor > 0) || math.IsInf(o.DemandFactor, 0) {
		return fmt.Errorf("%w: demand factor must be positive, got %v", ErrInvalidParameter, o.DemandFactor)
	}
	if o.B2BShare < 0 || o.B2BShare > 1 {
		return fmt.Errorf("%w: b2b share must be within [0, 1], got %v", ErrInvalidParameter, o.B2BShare)
	}
	if !o.Policy.Valid() {
		return fmt.Errorf("%w: unknown assignment policy %q", ErrInvalidParameter, o.Policy)
	}
	return nil
}

// TransactionCount is round(base * demand).
func TransactionCount(base int, demand float64) int {
	return int(math.Round(float64(base) * demand))
}

// LineTotal is quantity * unitPrice rounded to cents.
func LineTotal(quantity int, unitPrice float64) float64 {
	return decimal.NewFromFloat(unitPrice).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// GenerateTransactions draws TransactionCount(BaseCount, DemandFactor) sales
// against the given catalog and customers, sorted ascending by date. Rows with
// equal dates keep their generation order.
func GenerateTransactions(r *Rand, products []models.Product, customers []models.Customer, opts TransactionOptions) ([]models.Transaction, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(customers) == 0 {
		return nil, ErrNoCustomers
	}

	windowDays := daysBetween(WindowStart, WindowEnd)
	total := TransactionCount(opts.BaseCount, opts.DemandFactor)
	txs := make([]models.Transaction, 0, total)

	for range total {
		date := WindowStart.AddDate(0, 0, r.intBetween(0, windowDays))

		docType := models.DocReceipt
		isB2B := r.chance(opts.B2BShare)
		if isB2B {
			docType = models.DocInvoice
		}

		var clientID *int64
		if isB2B || opts.Policy == models.AssignAlways {
			id := customers[r.rng.IntN(len(customers))].ClientID
			clientID = &id
		}

		product := products[r.rng.IntN(len(products))]
		qty := r.intBetween(models.MinQuantity, models.MaxQuantity)

		tx := models.Transaction{
			Date:        date,
			Type:        docType,
			ClientID:    clientID,
			ProductID:   product.ProductID,
			Quantity:    qty,
			TotalAmount: LineTotal(qty, product.Price),
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("transactions: %w", err)
		}
		txs = append(txs, tx)
	}

	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return txs, nil
}
