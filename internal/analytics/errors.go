package analytics

import "errors"

var (
	// ErrNoTransactions is returned when a report is undefined on an empty
	// transaction table.
	ErrNoTransactions   = errors.New("no transactions")
	ErrUnknownProduct   = errors.New("transaction references unknown product")
	ErrDuplicateProduct = errors.New("duplicate product id in catalog")
	ErrInvalidParameter = errors.New("invalid analytics parameter")
)
