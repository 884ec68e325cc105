package models

import "time"

type KPIReport struct {
	TotalSales    float64 `json:"total_sales"`
	TotalCost     float64 `json:"total_cost"`
	TotalMargin   float64 `json:"total_margin"`
	MarginPercent float64 `json:"margin_percent"`
	AvgTicket     float64 `json:"avg_ticket"`
	Transactions  int     `json:"transactions"`
}

// AtRiskCustomer is a churn candidate. LastPurchase is nil for customers
// with no Invoice history.
type AtRiskCustomer struct {
	ClientID     int64      `json:"client_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	SignupDate   time.Time  `json:"signup_date"`
	LastPurchase *time.Time `json:"last_purchase,omitempty"`
	DaysInactive int        `json:"days_inactive"`
}

type WeeklySales struct {
	WeekEnding time.Time `json:"week_ending"`
	Sales      float64   `json:"sales"`
}

type ForecastPoint struct {
	Date           time.Time `json:"date"`
	PredictedSales float64   `json:"predicted_sales"`
}

type MonthlyData struct {
	Month  string  `json:"month"`
	Volume float64 `json:"volume"`
}

type CategoryRevenue struct {
	Category Category `json:"category"`
	Revenue  float64  `json:"revenue"`
	Cost     float64  `json:"cost"`
	Margin   float64  `json:"margin"`
	Units    int      `json:"units"`
}

type ProductSales struct {
	ProductID    int      `json:"product_id"`
	Name         string   `json:"name"`
	Category     Category `json:"category"`
	Units        int      `json:"units"`
	Revenue      float64  `json:"revenue"`
	Transactions int      `json:"transactions"`
}
