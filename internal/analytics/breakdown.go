package analytics

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"hardware-sim/internal/models"
)

// MonthlySales sums revenue per calendar month, oldest month first.
func MonthlySales(txs []models.Transaction) []models.MonthlyData {
	groups := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		month := tx.Date.Format("2006-01")
		groups[month] = groups[month].Add(decimal.NewFromFloat(tx.TotalAmount))
	}

	result := make([]models.MonthlyData, 0, len(groups))
	for month, volume := range groups {
		result = append(result, models.MonthlyData{Month: month, Volume: volume.InexactFloat64()})
	}
	slices.SortFunc(result, func(a, b models.MonthlyData) int {
		return strings.Compare(a.Month, b.Month)
	})
	return result
}

type categoryTotals struct {
	revenue, cost decimal.Decimal
	units         int
}

// CategoryRevenue reports revenue, cost, margin and units per category,
// highest revenue first.
func CategoryRevenue(txs []models.Transaction, products []models.Product) ([]models.CategoryRevenue, error) {
	index, err := joinProducts(products)
	if err != nil {
		return nil, err
	}

	groups := make(map[models.Category]*categoryTotals)
	for i, tx := range txs {
		p, err := lookup(index, i, tx)
		if err != nil {
			return nil, err
		}
		g := groups[p.Category]
		if g == nil {
			g = &categoryTotals{}
			groups[p.Category] = g
		}
		g.revenue = g.revenue.Add(decimal.NewFromFloat(tx.TotalAmount))
		g.cost = g.cost.Add(decimal.NewFromFloat(p.Cost).Mul(decimal.NewFromInt(int64(tx.Quantity))))
		g.units += tx.Quantity
	}

	result := make([]models.CategoryRevenue, 0, len(groups))
	for category, g := range groups {
		result = append(result, models.CategoryRevenue{
			Category: category,
			Revenue:  g.revenue.InexactFloat64(),
			Cost:     g.cost.InexactFloat64(),
			Margin:   g.revenue.Sub(g.cost).InexactFloat64(),
			Units:    g.units,
		})
	}
	slices.SortFunc(result, func(a, b models.CategoryRevenue) int {
		return compareDesc(a.Revenue, b.Revenue)
	})
	return result, nil
}

// TopProducts ranks products by revenue. limit <= 0 returns all of them.
func TopProducts(txs []models.Transaction, products []models.Product, limit int) ([]models.ProductSales, error) {
	index, err := joinProducts(products)
	if err != nil {
		return nil, err
	}

	revenue := make(map[int]decimal.Decimal)
	groups := make(map[int]*models.ProductSales)
	for i, tx := range txs {
		p, err := lookup(index, i, tx)
		if err != nil {
			return nil, err
		}
		g := groups[p.ProductID]
		if g == nil {
			g = &models.ProductSales{ProductID: p.ProductID, Name: p.Name, Category: p.Category}
			groups[p.ProductID] = g
		}
		g.Units += tx.Quantity
		g.Transactions++
		revenue[p.ProductID] = revenue[p.ProductID].Add(decimal.NewFromFloat(tx.TotalAmount))
	}

	result := make([]models.ProductSales, 0, len(groups))
	for id, g := range groups {
		g.Revenue = revenue[id].InexactFloat64()
		result = append(result, *g)
	}
	slices.SortFunc(result, func(a, b models.ProductSales) int {
		if c := compareDesc(a.Revenue, b.Revenue); c != 0 {
			return c
		}
		return a.ProductID - b.ProductID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
