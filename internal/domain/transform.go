package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// usgsNoDataValue is the USGS sentinel for a gauge that reported nothing.
const usgsNoDataValue = -999999.0

// QualifierMissing marks a reading whose discharge was the no-data sentinel.
const QualifierMissing = "missing"

// ParseRawReading deserializes a RawEvent's value into a FlowReading.
// It expects the flat JSON produced by the collector service.
func ParseRawReading(raw RawEvent) (FlowReading, error) {
	var rec RawGaugeRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return FlowReading{}, fmt.Errorf("parse raw reading: %w", err)
	}

	cfs := parseFloatOrZero(rec.Discharge)
	ts := parseObservationTime(raw.Timestamp, rec.DateTime)

	return FlowReading{
		ID:           generateID(rec.Site, ts, cfs),
		Site:         strings.TrimSpace(rec.Site),
		SiteName:     strings.TrimSpace(rec.SiteName),
		CFS:          cfs,
		GageHeightFt: parseFloatOrZero(rec.GageHeight),
		WaterTempC:   parseFloatOrZero(rec.WaterTemp),
		Qualifier:    strings.TrimSpace(rec.Qualifier),
		Timestamp:    ts,

		RawPayload: raw.Value,
	}, nil
}

// parseFloatOrZero parses a string as float64, treating the empty string,
// "UNK", and unparsable input as zero (unmeasured).
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "UNK") {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseObservationTime parses the collector's RFC 3339 observation time,
// falling back to the Kafka message timestamp when absent or malformed.
func parseObservationTime(fallback time.Time, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback.UTC()
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fallback.UTC()
	}
	return t.UTC()
}

// generateID produces a deterministic ID from the reading's key fields.
// Deterministic IDs enable idempotent upserts and replay safety:
// reprocessing the same raw event produces the same ID.
func generateID(site string, ts time.Time, cfs float64) string {
	input := fmt.Sprintf("%s|%s|%g", site, ts.UTC().Format(time.RFC3339), cfs)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if site == "" {
		return short
	}
	return site + "-" + short
}

// EnrichFlowReading normalizes and classifies a parsed reading: it corrects
// the no-data sentinel and negative discharge, derives the condition zone
// and gauge projection, assigns the display day label and hourly time
// bucket, and stamps the processing time. maxCfs and sweep configure the
// gauge; pass 0 and HalfSweep for the defaults.
func EnrichFlowReading(reading FlowReading, maxCfs float64, sweep Sweep) FlowReading {
	reading.CFS, reading.Qualifier = normalizeDischarge(reading.CFS, reading.Qualifier)
	reading.Zone = ClassifyFlow(reading.CFS)
	reading.Gauge = Project(reading.CFS, maxCfs, sweep)
	reading.DayLabel = deriveDayLabel(reading.Timestamp)
	reading.TimeBucket = deriveTimeBucket(reading.Timestamp)
	reading.ProcessedAt = clock.Now()
	return reading
}

// normalizeDischarge corrects known bad values in upstream data. The USGS
// no-data sentinel becomes 0 with the "missing" qualifier; negative and
// non-finite discharge clamps to 0 so the reading stays classifiable.
func normalizeDischarge(cfs float64, qualifier string) (float64, string) {
	if cfs <= usgsNoDataValue {
		return 0, QualifierMissing
	}
	if cfs < 0 || math.IsNaN(cfs) || math.IsInf(cfs, 0) {
		return 0, qualifier
	}
	return cfs, qualifier
}

// deriveDayLabel returns the short weekday name in UTC, empty for zero time.
func deriveDayLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Mon")
}

// deriveTimeBucket truncates the observation time to the hour in UTC.
// Returns zero time if the input is zero.
func deriveTimeBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Hour)
}
