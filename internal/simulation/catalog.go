package simulation

import (
	"fmt"
	"math"

	"hardware-sim/internal/models"
)

var baseCatalog = []models.Product{
	{ProductID: 101, Name: "Portland Cement 50lb", Category: models.CategoryStructural, Cost: 5.00, Price: 8.50},
	{ProductID: 102, Name: "Red Clay Brick", Category: models.CategoryStructural, Cost: 0.50, Price: 0.85},
	{ProductID: 103, Name: "Rebar 1/2 inch", Category: models.CategoryStructural, Cost: 6.00, Price: 9.50},
	{ProductID: 104, Name: "Construction Sand 1 ton", Category: models.CategoryStructural, Cost: 25.00, Price: 40.00},
	{ProductID: 105, Name: "Hammer Drill 700W", Category: models.CategoryTools, Cost: 45.00, Price: 79.99},
	{ProductID: 106, Name: `Angle Grinder 4.5"`, Category: models.CategoryTools, Cost: 30.00, Price: 55.00},
	{ProductID: 107, Name: "Screwdriver Set Pro", Category: models.CategoryTools, Cost: 15.00, Price: 24.99},
	{ProductID: 108, Name: "Claw Hammer", Category: models.CategoryTools, Cost: 8.00, Price: 14.50},
	{ProductID: 109, Name: "White Enamel Paint 1gal", Category: models.CategoryFinishing, Cost: 20.00, Price: 35.00},
	{ProductID: 110, Name: "Grey Floor Tiles Box", Category: models.CategoryFinishing, Cost: 12.00, Price: 19.99},
	{ProductID: 111, Name: "Waterproof Grout", Category: models.CategoryFinishing, Cost: 4.00, Price: 7.50},
	{ProductID: 112, Name: "Paint Brush 2 inch", Category: models.CategoryFinishing, Cost: 2.00, Price: 4.50},
}

// BaseCatalog returns a copy of the catalog at list prices.
func BaseCatalog() []models.Product {
	out := make([]models.Product, len(baseCatalog))
	copy(out, baseCatalog)
	return out
}

// Catalog returns the fixed product table with every price scaled by
// (1 + inflationRate). Costs are left untouched.
func Catalog(inflationRate float64) ([]models.Product, error) {
	if math.IsNaN(inflationRate) || math.IsInf(inflationRate, 0) || inflationRate <= -1 {
		return nil, fmt.Errorf("%w: inflation rate %v would make prices non-positive", ErrInvalidParameter, inflationRate)
	}

	products := BaseCatalog()
	for i := range products {
		products[i].Price *= 1 + inflationRate
		if err := products[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	return products, nil
}
