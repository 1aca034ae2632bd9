package domain

import "math"

// Volatility buckets, derived from the week's flow range.
const (
	VolatilityStable   = "stable"
	VolatilityModerate = "moderate"
	VolatilityVolatile = "volatile"
)

// Trend directions, derived from the first-half / second-half comparison.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Volatility thresholds in CFS of flow range, and the percent band inside
// which a week-over-week change still counts as stable.
const (
	stableRangeMaxCFS   = 200.0
	moderateRangeMaxCFS = 400.0
	trendBandPercent    = 10.0
	halfWindowDays      = 3
)

// WeekStats summarizes a chronological window of daily flow readings.
type WeekStats struct {
	AvgFlow          int            `json:"avg_flow"`
	PeakFlow         float64        `json:"peak_flow"`
	PeakDay          string         `json:"peak_day"`
	LowestFlow       float64        `json:"lowest_flow"`
	LowestDay        string         `json:"lowest_day"`
	FlowRange        float64        `json:"flow_range"`
	DaysInZone       map[string]int `json:"days_in_zone"`
	Volatility       string         `json:"volatility"`
	WeekTrend        string         `json:"week_trend"`
	WeekTrendPercent int            `json:"week_trend_percent"`
	PrimePercentage  int            `json:"prime_percentage"`
	TotalDays        int            `json:"total_days"`
}

// AggregateWeek computes weekly summary statistics over readings ordered
// oldest first. It does not re-sort. The window is expected to hold 7 daily
// readings, but the function is total over any input: shorter windows get
// proportionally smaller trend halves, and an empty window yields stable
// zero-value stats. It never returns NaN or Inf and never panics.
func AggregateWeek(readings []FlowReading) WeekStats {
	stats := WeekStats{
		DaysInZone: zeroZoneCounts(),
		Volatility: VolatilityStable,
		WeekTrend:  TrendStable,
		TotalDays:  len(readings),
	}
	if len(readings) == 0 {
		return stats
	}

	var sum float64
	peakIdx, lowIdx := 0, 0
	for i, r := range readings {
		cfs := clampCFS(r.CFS)
		sum += cfs
		// Strict comparisons so the earliest extreme wins ties.
		if cfs > clampCFS(readings[peakIdx].CFS) {
			peakIdx = i
		}
		if cfs < clampCFS(readings[lowIdx].CFS) {
			lowIdx = i
		}
		stats.DaysInZone[ClassifyFlow(cfs).Label]++
	}

	stats.AvgFlow = int(math.Round(sum / float64(len(readings))))
	stats.PeakFlow = clampCFS(readings[peakIdx].CFS)
	stats.PeakDay = dayLabel(readings[peakIdx])
	stats.LowestFlow = clampCFS(readings[lowIdx].CFS)
	stats.LowestDay = dayLabel(readings[lowIdx])
	stats.FlowRange = stats.PeakFlow - stats.LowestFlow
	stats.Volatility = classifyVolatility(stats.FlowRange)
	stats.WeekTrend, stats.WeekTrendPercent = classifyTrend(readings)
	stats.PrimePercentage = int(math.Round(float64(stats.DaysInZone[ZonePrime]) / float64(len(readings)) * 100))

	return stats
}

func zeroZoneCounts() map[string]int {
	counts := make(map[string]int, len(zoneTable))
	for _, z := range zoneTable {
		counts[z.Label] = 0
	}
	return counts
}

func classifyVolatility(flowRange float64) string {
	switch {
	case flowRange <= stableRangeMaxCFS:
		return VolatilityStable
	case flowRange <= moderateRangeMaxCFS:
		return VolatilityModerate
	default:
		return VolatilityVolatile
	}
}

// classifyTrend compares the mean of the leading readings against the mean
// of the trailing readings, three days each for a full week and half the
// window for shorter ones. A zero first-half average has no defined percent
// change, so it reports stable at 0% rather than dividing by zero.
func classifyTrend(readings []FlowReading) (string, int) {
	half := halfWindowDays
	if len(readings) < 2*half {
		half = len(readings) / 2
	}
	if half == 0 {
		return TrendStable, 0
	}

	firstAvg := meanCFS(readings[:half])
	secondAvg := meanCFS(readings[len(readings)-half:])
	if firstAvg == 0 {
		return TrendStable, 0
	}

	percentDiff := (secondAvg - firstAvg) / firstAvg * 100
	percent := int(math.Round(math.Abs(percentDiff)))
	switch {
	case percentDiff > trendBandPercent:
		return TrendRising, percent
	case percentDiff < -trendBandPercent:
		return TrendFalling, percent
	default:
		return TrendStable, percent
	}
}

func meanCFS(readings []FlowReading) float64 {
	var sum float64
	for _, r := range readings {
		sum += clampCFS(r.CFS)
	}
	return sum / float64(len(readings))
}

// dayLabel returns the reading's display day, preferring the enriched label
// over deriving one from the timestamp.
func dayLabel(r FlowReading) string {
	if r.DayLabel != "" {
		return r.DayLabel
	}
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.UTC().Format("Mon")
}
