package pipeline_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/printerm420/SalmonFlow/internal/domain"
	"github.com/printerm420/SalmonFlow/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The mock week mirrors real USGS instantaneous values for Clear Creek at
// Golden plus a handful of degraded rows from a bigger river. Regenerate
// with cmd/genmock.
const mockWeekPath = "gauge_readings_240422_week.json"

func readMockRecords(t *testing.T) []domain.RawGaugeRecord {
	t.Helper()

	path := filepath.Join("..", "..", "data", "mock", mockWeekPath)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []domain.RawGaugeRecord
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func transformRecords(t *testing.T, records []domain.RawGaugeRecord) []domain.FlowReading {
	t.Helper()

	tfm := pipeline.NewTransformer(nil,
		func(string) float64 { return domain.DefaultMaxGaugeCFS },
		domain.HalfSweep, slog.Default())

	readings := make([]domain.FlowReading, 0, len(records))
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		require.NoError(t, err)

		reading, err := tfm.Transform(context.Background(), domain.RawEvent{
			Key:   []byte(rec.Site),
			Value: payload,
		})
		require.NoError(t, err)
		readings = append(readings, reading)
	}
	return readings
}

func filterBySite(readings []domain.FlowReading, site string) []domain.FlowReading {
	out := make([]domain.FlowReading, 0, len(readings))
	for _, r := range readings {
		if r.Site == site {
			out = append(out, r)
		}
	}
	return out
}

func TestFlowTransformer_WithMockWeek(t *testing.T) {
	records := readMockRecords(t)
	require.Len(t, records, 10)

	readings := transformRecords(t, records)
	require.Len(t, readings, 10, "every mock row transforms without error")

	for i, r := range readings {
		assert.NotEmpty(t, r.ID, "row %d gets a deterministic id", i)
		assert.NotEmpty(t, r.Zone.Label, "row %d is classified", i)
		assert.False(t, r.Timestamp.IsZero(), "row %d keeps its observation time", i)
		assert.GreaterOrEqual(t, r.CFS, 0.0, "row %d is normalized", i)
	}
}

func TestMockWeek_ClearCreekAggregates(t *testing.T) {
	week := filterBySite(transformRecords(t, readMockRecords(t)), "06719505")
	require.Len(t, week, 7)

	stats := domain.AggregateWeek(week)

	assert.Equal(t, 543, stats.AvgFlow)
	assert.Equal(t, 745.0, stats.PeakFlow)
	assert.Equal(t, "Thu", stats.PeakDay)
	assert.Equal(t, 385.0, stats.LowestFlow)
	assert.Equal(t, "Tue", stats.LowestDay)
	assert.Equal(t, 7, stats.DaysInZone[domain.ZonePrime])
	assert.Equal(t, domain.VolatilityModerate, stats.Volatility)
	assert.Equal(t, domain.TrendRising, stats.WeekTrend)
	assert.Equal(t, 31, stats.WeekTrendPercent)

	assert.Equal(t,
		"Prime flows all week. Flows are climbing, up 31% week over week. The week peaked at 745 CFS on Thu.",
		domain.ComposeInsight(stats))
}

func TestMockWeek_DegradedRowsNormalize(t *testing.T) {
	kremmling := filterBySite(transformRecords(t, readMockRecords(t)), "09058000")
	require.Len(t, kremmling, 3)

	assert.Equal(t, 1350.0, kremmling[0].CFS)
	assert.Equal(t, domain.ZoneBlownOut, kremmling[0].Zone.Label)

	// USGS no-data sentinel reads as zero with a missing qualifier.
	assert.Zero(t, kremmling[1].CFS)
	assert.Equal(t, domain.QualifierMissing, kremmling[1].Qualifier)
	assert.Equal(t, domain.ZoneLow, kremmling[1].Zone.Label)

	// "UNK" discharge parses to zero but keeps the upstream qualifier.
	assert.Zero(t, kremmling[2].CFS)
	assert.Equal(t, "P", kremmling[2].Qualifier)
}

func TestMockWeek_IDsAreStableAcrossRuns(t *testing.T) {
	first := transformRecords(t, readMockRecords(t))
	second := transformRecords(t, readMockRecords(t))

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}
