package store

import (
	"context"
	"time"

	"hardware-sim/internal/metrics"
)

type instrumented struct {
	Store
	driver string
}

// Instrument records the latency and outcome of every table operation.
func Instrument(st Store, driver string) Store {
	return &instrumented{Store: st, driver: driver}
}

func (s *instrumented) StoreTable(ctx context.Context, name string, rows any) error {
	start := time.Now()
	err := s.Store.StoreTable(ctx, name, rows)
	metrics.ObserveStoreOp(s.driver, "store", name, start, err)
	return err
}

func (s *instrumented) LoadTable(ctx context.Context, name string, dest any) error {
	start := time.Now()
	err := s.Store.LoadTable(ctx, name, dest)
	metrics.ObserveStoreOp(s.driver, "load", name, start, err)
	return err
}
