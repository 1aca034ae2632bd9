package domain

import (
	"fmt"
	"math"
	"strings"
)

// ComposeInsight builds a short condition summary from weekly stats. It is
// pure string assembly from fixed phrase templates: identical stats always
// produce the identical sentence.
func ComposeInsight(stats WeekStats) string {
	if stats.TotalDays == 0 {
		return "No readings this week."
	}

	parts := []string{
		primeClause(stats),
		trendClause(stats),
		peakClause(stats),
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func primeClause(stats WeekStats) string {
	prime := stats.DaysInZone[ZonePrime]
	total := stats.TotalDays
	switch {
	case prime == total:
		return "Prime flows all week."
	case prime >= 5:
		return fmt.Sprintf("Prime flows %d of %d days.", prime, total)
	case prime >= 3:
		return fmt.Sprintf("A solid window, with prime flows %d of %d days.", prime, total)
	case prime >= 1:
		return fmt.Sprintf("Limited prime water, just %d of %d days.", prime, total)
	default:
		return fmt.Sprintf("No prime flows in the last %d days.", total)
	}
}

func trendClause(stats WeekStats) string {
	switch stats.WeekTrend {
	case TrendRising:
		return fmt.Sprintf("Flows are climbing, up %d%% week over week.", stats.WeekTrendPercent)
	case TrendFalling:
		return fmt.Sprintf("Flows are dropping, down %d%% week over week.", stats.WeekTrendPercent)
	default:
		return "Flows are holding steady."
	}
}

func peakClause(stats WeekStats) string {
	if stats.PeakFlow <= 0 || stats.PeakDay == "" {
		return ""
	}
	return fmt.Sprintf("The week peaked at %d CFS on %s.", int(math.Round(stats.PeakFlow)), stats.PeakDay)
}
