package analytics

import (
	"fmt"
	"math"
	"slices"
	"time"

	"hardware-sim/internal/models"
)

const (
	DefaultChurnThresholdDays = 90
	// NeverPurchasedDays is reported for customers without any Invoice.
	NeverPurchasedDays = 999
)

// ReferenceDate is the latest transaction date in the table, the dataset's
// notion of "today".
func ReferenceDate(txs []models.Transaction) (time.Time, error) {
	if len(txs) == 0 {
		return time.Time{}, ErrNoTransactions
	}
	latest := txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.After(latest) {
			latest = tx.Date
		}
	}
	return latest, nil
}

// LastInvoiceDates returns the most recent Invoice date per client.
func LastInvoiceDates(txs []models.Transaction) map[int64]time.Time {
	last := make(map[int64]time.Time)
	for _, tx := range txs {
		if tx.Type != models.DocInvoice || tx.ClientID == nil {
			continue
		}
		if prev, ok := last[*tx.ClientID]; !ok || tx.Date.After(prev) {
			last[*tx.ClientID] = tx.Date
		}
	}
	return last
}

// AtRisk lists customers whose last Invoice is more than thresholdDays before
// reference, most inactive first. Customers without any Invoice are included
// with NeverPurchasedDays whatever the threshold.
func AtRisk(txs []models.Transaction, customers []models.Customer, thresholdDays int, reference time.Time) ([]models.AtRiskCustomer, error) {
	if thresholdDays < 0 {
		return nil, fmt.Errorf("%w: churn threshold must not be negative, got %d", ErrInvalidParameter, thresholdDays)
	}

	last := LastInvoiceDates(txs)
	out := make([]models.AtRiskCustomer, 0)
	for _, c := range customers {
		row := models.AtRiskCustomer{
			ClientID:     c.ClientID,
			Name:         c.Name,
			Email:        c.Email,
			SignupDate:   c.SignupDate,
			DaysInactive: NeverPurchasedDays,
		}
		date, ok := last[c.ClientID]
		if !ok {
			out = append(out, row)
			continue
		}
		row.LastPurchase = &date
		row.DaysInactive = daysBetween(date, reference)
		if row.DaysInactive > thresholdDays {
			out = append(out, row)
		}
	}

	slices.SortStableFunc(out, func(a, b models.AtRiskCustomer) int {
		return b.DaysInactive - a.DaysInactive
	})
	return out, nil
}

// Churn runs AtRisk against the table's own reference date.
func Churn(txs []models.Transaction, customers []models.Customer, thresholdDays int) ([]models.AtRiskCustomer, error) {
	ref, err := ReferenceDate(txs)
	if err != nil {
		return nil, err
	}
	return AtRisk(txs, customers, thresholdDays, ref)
}

// daysBetween counts calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(math.Round(dayOf(b).Sub(dayOf(a)).Hours() / 24))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
