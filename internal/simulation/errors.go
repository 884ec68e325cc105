package simulation

import "errors"

var (
	ErrInvalidParameter = errors.New("invalid scenario parameter")
	ErrEmptyCatalog     = errors.New("product catalog is empty")
	ErrNoCustomers      = errors.New("customer set is empty")
)
