package models

import (
	"fmt"
	"slices"
)

type Category string

const (
	CategoryStructural Category = "Structural"
	CategoryTools      Category = "Tools"
	CategoryFinishing  Category = "Finishing"
)

var Categories = []Category{CategoryStructural, CategoryTools, CategoryFinishing}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Product is one catalog row. Price is the post-inflation sale price of the
// scenario that produced it.
type Product struct {
	ProductID int      `json:"product_id" gorm:"column:product_id;not null"`
	Name      string   `json:"name" gorm:"column:name;not null"`
	Category  Category `json:"category" gorm:"column:category;not null"`
	Cost      float64  `json:"cost" gorm:"column:cost;not null"`
	Price     float64  `json:"price" gorm:"column:price;not null"`
}

func (p Product) Validate() error {
	if p.ProductID <= 0 {
		return fmt.Errorf("product id must be positive, got %d", p.ProductID)
	}
	if p.Name == "" {
		return fmt.Errorf("product %d: name is empty", p.ProductID)
	}
	if !p.Category.Valid() {
		return fmt.Errorf("product %d: unknown category %q", p.ProductID, p.Category)
	}
	if p.Cost <= 0 {
		return fmt.Errorf("product %d: cost must be positive, got %v", p.ProductID, p.Cost)
	}
	if p.Price <= 0 {
		return fmt.Errorf("product %d: price must be positive, got %v", p.ProductID, p.Price)
	}
	return nil
}

// ProductIndex maps product_id to its row.
func ProductIndex(products []Product) map[int]Product {
	index := make(map[int]Product, len(products))
	for _, p := range products {
		index[p.ProductID] = p
	}
	return index
}
