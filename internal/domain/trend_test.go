package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weekOf builds a chronological window of daily readings starting on a
// Monday, one reading per day.
func weekOf(cfs ...float64) []FlowReading {
	start := time.Date(2024, time.April, 22, 8, 0, 0, 0, time.UTC) // a Monday
	readings := make([]FlowReading, len(cfs))
	for i, v := range cfs {
		ts := start.AddDate(0, 0, i)
		readings[i] = FlowReading{
			Site:      "06719505",
			CFS:       v,
			Timestamp: ts,
			DayLabel:  ts.Format("Mon"),
		}
	}
	return readings
}

func TestAggregateWeek_FullWeek(t *testing.T) {
	stats := AggregateWeek(weekOf(420, 385, 520, 745, 680, 542, 510))

	want := WeekStats{
		AvgFlow:    543, // 543.14 rounds down
		PeakFlow:   745,
		PeakDay:    "Thu",
		LowestFlow: 385,
		LowestDay:  "Tue",
		FlowRange:  360,
		DaysInZone: map[string]int{
			ZoneLow:      0,
			ZonePrime:    7,
			ZoneCaution:  0,
			ZoneBlownOut: 0,
		},
		Volatility:       VolatilityModerate,
		WeekTrend:        TrendRising, // first half 441.67, second half 577.33 → +30.7%
		WeekTrendPercent: 31,
		PrimePercentage:  100,
		TotalDays:        7,
	}

	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("AggregateWeek mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateWeek_ExtremesFirstOccurrenceWins(t *testing.T) {
	stats := AggregateWeek(weekOf(500, 500, 100, 100, 900, 200, 300))

	assert.Equal(t, 900.0, stats.PeakFlow)
	assert.Equal(t, "Fri", stats.PeakDay) // index 4
	assert.Equal(t, 100.0, stats.LowestFlow)
	assert.Equal(t, "Wed", stats.LowestDay) // index 2, not index 3
}

func TestAggregateWeek_DaysInZoneSumToTotal(t *testing.T) {
	readings := weekOf(0, 349.99, 350, 750, 1199, 1200, 5000)
	stats := AggregateWeek(readings)

	sum := 0
	for _, n := range stats.DaysInZone {
		sum += n
	}
	assert.Equal(t, len(readings), sum)
	assert.Equal(t, 2, stats.DaysInZone[ZoneLow])
	assert.Equal(t, 1, stats.DaysInZone[ZonePrime])
	assert.Equal(t, 2, stats.DaysInZone[ZoneCaution])
	assert.Equal(t, 2, stats.DaysInZone[ZoneBlownOut])
}

func TestAggregateWeek_Volatility(t *testing.T) {
	cases := []struct {
		name      string
		flowRange float64
		want      string
	}{
		{"stable", 150, VolatilityStable},
		{"stable at boundary", 200, VolatilityStable},
		{"moderate", 300, VolatilityModerate},
		{"moderate at boundary", 400, VolatilityModerate},
		{"volatile", 450, VolatilityVolatile},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Flat week except one peak that sets the range.
			base := 500.0
			stats := AggregateWeek(weekOf(base, base, base, base+tc.flowRange, base, base, base))
			require.Equal(t, tc.flowRange, stats.FlowRange)
			assert.Equal(t, tc.want, stats.Volatility)
		})
	}
}

func TestAggregateWeek_Trend(t *testing.T) {
	cases := []struct {
		name        string
		cfs         []float64
		wantTrend   string
		wantPercent int
	}{
		{
			// first half 400, second half 460 → +15%
			name:        "rising",
			cfs:         []float64{400, 400, 400, 999, 460, 460, 460},
			wantTrend:   TrendRising,
			wantPercent: 15,
		},
		{
			name:        "falling",
			cfs:         []float64{500, 500, 500, 123, 400, 400, 400},
			wantTrend:   TrendFalling,
			wantPercent: 20,
		},
		{
			// +10% exactly is inside the stable band.
			name:        "stable at band edge",
			cfs:         []float64{400, 400, 400, 999, 440, 440, 440},
			wantTrend:   TrendStable,
			wantPercent: 10,
		},
		{
			name:        "flat",
			cfs:         []float64{400, 400, 400, 400, 400, 400, 400},
			wantTrend:   TrendStable,
			wantPercent: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stats := AggregateWeek(weekOf(tc.cfs...))
			assert.Equal(t, tc.wantTrend, stats.WeekTrend)
			assert.Equal(t, tc.wantPercent, stats.WeekTrendPercent)
		})
	}
}

// A zero first-half average has no defined percent change; the aggregator
// must report stable instead of dividing by zero.
func TestAggregateWeek_ZeroFirstHalf(t *testing.T) {
	stats := AggregateWeek(weekOf(0, 0, 0, 100, 400, 400, 400))
	assert.Equal(t, TrendStable, stats.WeekTrend)
	assert.Equal(t, 0, stats.WeekTrendPercent)
}

func TestAggregateWeek_AllZeroReadings(t *testing.T) {
	stats := AggregateWeek(weekOf(0, 0, 0, 0, 0, 0, 0))
	assert.Equal(t, TrendStable, stats.WeekTrend)
	assert.Equal(t, VolatilityStable, stats.Volatility)
	assert.Equal(t, 7, stats.DaysInZone[ZoneLow])
	assert.Equal(t, 0, stats.PrimePercentage)
}

func TestAggregateWeek_Empty(t *testing.T) {
	stats := AggregateWeek(nil)
	assert.Equal(t, 0, stats.TotalDays)
	assert.Equal(t, TrendStable, stats.WeekTrend)
	assert.Equal(t, VolatilityStable, stats.Volatility)
	assert.Equal(t, 0, stats.AvgFlow)
	assert.Empty(t, stats.PeakDay)
}

func TestAggregateWeek_ShortWindow(t *testing.T) {
	// 4 readings → halves of 2: first 400, last 500 → +25%.
	stats := AggregateWeek(weekOf(400, 400, 500, 500))
	assert.Equal(t, TrendRising, stats.WeekTrend)
	assert.Equal(t, 25, stats.WeekTrendPercent)
	assert.Equal(t, 4, stats.TotalDays)

	// A single reading has no trend halves.
	single := AggregateWeek(weekOf(650))
	assert.Equal(t, TrendStable, single.WeekTrend)
	assert.Equal(t, 650.0, single.PeakFlow)
	assert.Equal(t, "Mon", single.PeakDay)
}

func TestAggregateWeek_NegativeReadingsClamped(t *testing.T) {
	stats := AggregateWeek(weekOf(-100, 400, 400, 400, 400, 400, 400))
	assert.Equal(t, 0.0, stats.LowestFlow)
	assert.Equal(t, "Mon", stats.LowestDay)
	assert.Equal(t, 1, stats.DaysInZone[ZoneLow])
}
