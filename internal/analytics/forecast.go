package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hardware-sim/internal/models"
)

const (
	DefaultForecastWeeks = 4
	DefaultWindowWeeks   = 8

	week = 7 * 24 * time.Hour
)

// WeekEnding returns the Sunday closing the week that contains t.
func WeekEnding(t time.Time) time.Time {
	d := dayOf(t)
	return d.AddDate(0, 0, (7-int(d.Weekday()))%7)
}

// WeeklySales sums total_amount into Sunday-ending weeks, from the first to
// the last week with sales. Weeks without sales inside that span are zero.
func WeeklySales(txs []models.Transaction) []models.WeeklySales {
	if len(txs) == 0 {
		return nil
	}

	sums := make(map[time.Time]decimal.Decimal)
	first, last := WeekEnding(txs[0].Date), WeekEnding(txs[0].Date)
	for _, tx := range txs {
		w := WeekEnding(tx.Date)
		sums[w] = sums[w].Add(decimal.NewFromFloat(tx.TotalAmount))
		if w.Before(first) {
			first = w
		}
		if w.After(last) {
			last = w
		}
	}

	out := make([]models.WeeklySales, 0, int(last.Sub(first)/week)+1)
	for w := first; !w.After(last); w = w.AddDate(0, 0, 7) {
		out = append(out, models.WeeklySales{WeekEnding: w, Sales: sums[w].InexactFloat64()})
	}
	return out
}

// Forecast projects the mean of the trailing DefaultWindowWeeks weekly sums
// flat over the next weeks.
func Forecast(txs []models.Transaction, weeks int) ([]models.ForecastPoint, error) {
	return ForecastWindow(txs, weeks, DefaultWindowWeeks)
}

// ForecastWindow is Forecast with a custom trailing window. With less
// history than window weeks the mean covers whatever is available.
func ForecastWindow(txs []models.Transaction, weeks, window int) ([]models.ForecastPoint, error) {
	if weeks < 1 {
		return nil, fmt.Errorf("%w: forecast horizon must be at least one week, got %d", ErrInvalidParameter, weeks)
	}
	if window < 1 {
		return nil, fmt.Errorf("%w: averaging window must be at least one week, got %d", ErrInvalidParameter, window)
	}

	history := WeeklySales(txs)
	if len(history) == 0 {
		return nil, ErrNoTransactions
	}

	trailing := history[max(0, len(history)-window):]
	sum := decimal.Zero
	for _, w := range trailing {
		sum = sum.Add(decimal.NewFromFloat(w.Sales))
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(trailing)))).InexactFloat64()

	lastWeek := history[len(history)-1].WeekEnding
	points := make([]models.ForecastPoint, weeks)
	for i := range points {
		points[i] = models.ForecastPoint{
			Date:           lastWeek.AddDate(0, 0, 7*(i+1)),
			PredictedSales: avg,
		}
	}
	return points, nil
}
