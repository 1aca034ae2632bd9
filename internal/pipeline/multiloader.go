package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/printerm420/SalmonFlow/internal/domain"
)

// MultiLoader fans one batch out to several loaders, typically the sink
// topic producer and the daily archive. Every loader sees every batch
// even when an earlier one fails; errors are joined so one failing
// destination does not hide another.
type MultiLoader struct {
	loaders []BatchLoader
}

// NewMultiLoader creates a MultiLoader over the given destinations.
func NewMultiLoader(loaders ...BatchLoader) *MultiLoader {
	return &MultiLoader{loaders: loaders}
}

func (m *MultiLoader) LoadBatch(ctx context.Context, readings []domain.FlowReading) error {
	var errs []error
	for i, loader := range m.loaders {
		if err := loader.LoadBatch(ctx, readings); err != nil {
			errs = append(errs, fmt.Errorf("loader %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// StoreLoader adapts a daily-flow archiver to the BatchLoader interface.
type StoreLoader struct {
	archiver DailyArchiver
}

// DailyArchiver is the slice of the store the pipeline writes to.
type DailyArchiver interface {
	UpsertDailyFlows(ctx context.Context, readings []domain.FlowReading) error
}

// NewStoreLoader wraps an archiver as a pipeline destination.
func NewStoreLoader(archiver DailyArchiver) *StoreLoader {
	return &StoreLoader{archiver: archiver}
}

func (s *StoreLoader) LoadBatch(ctx context.Context, readings []domain.FlowReading) error {
	return s.archiver.UpsertDailyFlows(ctx, readings)
}
