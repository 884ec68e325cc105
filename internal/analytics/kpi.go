// Package analytics derives dashboard reports from a scenario's tables.
// Every function is a pure computation over its arguments and never mutates
// them, so callers may run them concurrently on a shared snapshot.
package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hardware-sim/internal/models"
)

var hundred = decimal.NewFromInt(100)

// joinProducts indexes products by id, rejecting duplicates so each
// transaction joins to exactly one row.
func joinProducts(products []models.Product) (map[int]models.Product, error) {
	index := make(map[int]models.Product, len(products))
	for _, p := range products {
		if _, dup := index[p.ProductID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateProduct, p.ProductID)
		}
		index[p.ProductID] = p
	}
	return index, nil
}

func lookup(index map[int]models.Product, row int, tx models.Transaction) (models.Product, error) {
	p, ok := index[tx.ProductID]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: row %d, product_id %d", ErrUnknownProduct, row, tx.ProductID)
	}
	return p, nil
}

// KPIs joins transactions to products and reports revenue, cost, margin and
// average ticket. An empty transaction table yields ErrNoTransactions since
// the average ticket is undefined.
func KPIs(txs []models.Transaction, products []models.Product) (models.KPIReport, error) {
	if len(txs) == 0 {
		return models.KPIReport{}, ErrNoTransactions
	}
	index, err := joinProducts(products)
	if err != nil {
		return models.KPIReport{}, err
	}

	sales, cost := decimal.Zero, decimal.Zero
	for i, tx := range txs {
		p, err := lookup(index, i, tx)
		if err != nil {
			return models.KPIReport{}, err
		}
		sales = sales.Add(decimal.NewFromFloat(tx.TotalAmount))
		cost = cost.Add(decimal.NewFromFloat(p.Cost).Mul(decimal.NewFromInt(int64(tx.Quantity))))
	}

	margin := sales.Sub(cost)
	marginPercent := decimal.Zero
	if sales.IsPositive() {
		marginPercent = margin.Div(sales).Mul(hundred)
	}

	return models.KPIReport{
		TotalSales:    sales.InexactFloat64(),
		TotalCost:     cost.InexactFloat64(),
		TotalMargin:   margin.InexactFloat64(),
		MarginPercent: marginPercent.InexactFloat64(),
		AvgTicket:     sales.Div(decimal.NewFromInt(int64(len(txs)))).InexactFloat64(),
		Transactions:  len(txs),
	}, nil
}
