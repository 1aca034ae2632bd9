package pipeline

import (
	"context"
	"log/slog"

	"github.com/printerm420/SalmonFlow/internal/domain"
)

// CeilingFunc returns the gauge ceiling in CFS for a site. Rivers differ
// wildly in size, so the dial's full-scale value is per site.
type CeilingFunc func(site string) float64

// FlowTransformer implements Transformer using the domain transform
// functions with optional site-directory enrichment.
type FlowTransformer struct {
	directory domain.SiteDirectory
	ceiling   CeilingFunc
	sweep     domain.Sweep
	logger    *slog.Logger
}

// NewTransformer creates a FlowTransformer. Pass a nil directory to disable
// site metadata enrichment.
func NewTransformer(directory domain.SiteDirectory, ceiling CeilingFunc, sweep domain.Sweep, logger *slog.Logger) *FlowTransformer {
	return &FlowTransformer{
		directory: directory,
		ceiling:   ceiling,
		sweep:     sweep,
		logger:    logger,
	}
}

func (t *FlowTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.FlowReading, error) {
	reading, err := domain.ParseRawReading(raw)
	if err != nil {
		return domain.FlowReading{}, err
	}

	reading = domain.EnrichFlowReading(reading, t.ceiling(reading.Site), t.sweep)
	reading = domain.EnrichWithSiteInfo(ctx, reading, t.directory, t.logger)

	return reading, nil
}
