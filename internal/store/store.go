// Package store persists the generated scenario tables. Every driver
// implements whole-table replace: readers observe either the previous table
// or the new one, never a partial write.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"hardware-sim/internal/models"
)

const (
	TableProducts     = "products"
	TableCustomers    = "customers"
	TableTransactions = "transactions"
	TableScenario     = "scenario"
)

var (
	ErrNotFound     = errors.New("table not found")
	ErrUnknownTable = errors.New("unknown table")
	// ErrInvalidRow is returned by LoadSnapshot when stored rows break the
	// model invariants.
	ErrInvalidRow = errors.New("invalid stored row")
)

var tableTypes = map[string]reflect.Type{
	TableProducts:     reflect.TypeOf(models.Product{}),
	TableCustomers:    reflect.TypeOf(models.Customer{}),
	TableTransactions: reflect.TypeOf(models.Transaction{}),
	TableScenario:     reflect.TypeOf(models.Scenario{}),
}

// Store is the storage collaborator. rows must be a slice of the table's
// record type and dest a pointer to one.
type Store interface {
	StoreTable(ctx context.Context, name string, rows any) error
	LoadTable(ctx context.Context, name string, dest any) error
	Close() error
}

func checkRows(name string, rows any) (int, error) {
	elem, ok := tableTypes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice || v.Type().Elem() != elem {
		return 0, fmt.Errorf("table %q expects []%s, got %T", name, elem.Name(), rows)
	}
	return v.Len(), nil
}

func checkDest(name string, dest any) error {
	elem, ok := tableTypes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	t := reflect.TypeOf(dest)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Slice || t.Elem().Elem() != elem {
		return fmt.Errorf("table %q loads into *[]%s, got %T", name, elem.Name(), dest)
	}
	return nil
}

func prototype(name string) any {
	return reflect.New(tableTypes[name]).Interface()
}

// SaveSnapshot writes the three data tables and then the scenario row, so a
// scenario row is only visible once its tables are in place.
func SaveSnapshot(ctx context.Context, st Store, snap *models.Snapshot) error {
	if err := st.StoreTable(ctx, TableProducts, snap.Products); err != nil {
		return fmt.Errorf("store products: %w", err)
	}
	if err := st.StoreTable(ctx, TableCustomers, snap.Customers); err != nil {
		return fmt.Errorf("store customers: %w", err)
	}
	if err := st.StoreTable(ctx, TableTransactions, snap.Transactions); err != nil {
		return fmt.Errorf("store transactions: %w", err)
	}
	if err := st.StoreTable(ctx, TableScenario, []models.Scenario{snap.Scenario}); err != nil {
		return fmt.Errorf("store scenario: %w", err)
	}
	return nil
}

// LoadSnapshot reads back all tables of the current scenario. It returns an
// error wrapping ErrNotFound when no scenario has been stored yet.
func LoadSnapshot(ctx context.Context, st Store) (*models.Snapshot, error) {
	var scenarios []models.Scenario
	if err := st.LoadTable(ctx, TableScenario, &scenarios); err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	if len(scenarios) != 1 {
		return nil, fmt.Errorf("load scenario: expected 1 row, got %d", len(scenarios))
	}

	snap := &models.Snapshot{Scenario: scenarios[0]}
	if err := st.LoadTable(ctx, TableProducts, &snap.Products); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if err := st.LoadTable(ctx, TableCustomers, &snap.Customers); err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	if err := st.LoadTable(ctx, TableTransactions, &snap.Transactions); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	// SQL backends give no ordering guarantee without ORDER BY.
	slices.SortStableFunc(snap.Transactions, func(a, b models.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return snap, nil
}

// validateSnapshot rejects rows that were written by something other than
// the generators, including transactions whose product is not in the catalog.
func validateSnapshot(snap *models.Snapshot) error {
	for i, p := range snap.Products {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %s row %d: %w", ErrInvalidRow, TableProducts, i, err)
		}
	}
	for i, c := range snap.Customers {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: %s row %d: %w", ErrInvalidRow, TableCustomers, i, err)
		}
	}
	catalog := models.ProductIndex(snap.Products)
	for i, tx := range snap.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: %s row %d: %w", ErrInvalidRow, TableTransactions, i, err)
		}
		if _, ok := catalog[tx.ProductID]; !ok {
			return fmt.Errorf("%w: %s row %d: unknown product_id %d", ErrInvalidRow, TableTransactions, i, tx.ProductID)
		}
	}
	return nil
}
