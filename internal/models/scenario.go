package models

import "time"

// Scenario describes the run that produced the currently stored tables.
type Scenario struct {
	ScenarioID       string           `json:"id" gorm:"column:scenario_id;not null"`
	Seed             int64            `json:"seed" gorm:"column:seed;not null"`
	DemandFactor     float64          `json:"demand_factor" gorm:"column:demand_factor;not null"`
	PriceIncrease    float64          `json:"price_increase" gorm:"column:price_increase;not null"`
	AssignmentPolicy AssignmentPolicy `json:"assignment_policy" gorm:"column:assignment_policy;not null"`
	TransactionCount int              `json:"transaction_count" gorm:"column:transaction_count;not null"`
	CustomerCount    int              `json:"customer_count" gorm:"column:customer_count;not null"`
	GeneratedAt      time.Time        `json:"generated_at" gorm:"column:generated_at;not null"`
}

// Snapshot is one scenario's full set of tables.
type Snapshot struct {
	Scenario     Scenario
	Products     []Product
	Customers    []Customer
	Transactions []Transaction
}
