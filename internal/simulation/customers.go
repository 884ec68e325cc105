package simulation

import (
	"fmt"
	"strings"
	"time"

	"hardware-sim/internal/models"
)

const (
	DefaultCustomers = 50

	minClientID int64 = 10_000_000
	maxClientID int64 = 99_999_999
)

// GenerateCustomers returns count B2B accounts with pairwise-unique 8-digit
// client ids. Signup dates fall between three and two years before now.
func GenerateCustomers(r *Rand, count int, now time.Time) ([]models.Customer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: customer count must be positive, got %d", ErrInvalidParameter, count)
	}

	day := truncateDay(now)
	windowStart := day.AddDate(-3, 0, 0)
	windowDays := daysBetween(windowStart, day.AddDate(-2, 0, 0))

	issued := make(map[int64]struct{}, count)
	customers := make([]models.Customer, 0, count)
	for len(customers) < count {
		id := r.int64Between(minClientID, maxClientID)
		if _, dup := issued[id]; dup {
			continue
		}
		issued[id] = struct{}{}

		c := models.Customer{
			ClientID:   id,
			Name:       r.faker.Company(),
			Email:      companyEmail(r),
			SignupDate: windowStart.AddDate(0, 0, r.intBetween(0, windowDays)),
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func companyEmail(r *Rand) string {
	return strings.ToLower(r.faker.FirstName()) + "@" + r.faker.DomainName()
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
