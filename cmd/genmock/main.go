// Command genmock reads a CSV of daily gauge observations and generates the
// JSON fixtures used by the test suites. It runs the actual domain transforms
// so the enriched output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -csv data/mock/gauge_readings_240422_week.csv \
//	  -raw-out data/mock/gauge_readings_240422_week.json \
//	  -enriched-out data/mock/flow_readings_240422_enriched.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/printerm420/SalmonFlow/internal/domain"
)

// frozenNow keeps ProcessedAt reproducible across regenerations.
var frozenNow = time.Date(2024, time.April, 29, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "CSV file of daily gauge observations")
	rawOut := flag.String("raw-out", "", "output path for the raw JSON fixture")
	enrichedOut := flag.String("enriched-out", "", "output path for the enriched JSON fixture")
	flag.Parse()

	if *csvPath == "" || *rawOut == "" || *enrichedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -csv, -raw-out, -enriched-out")
	}

	domain.SetClock(clockwork.NewFakeClockAt(frozenNow))
	defer domain.SetClock(nil)

	records, readings, err := processCSV(*csvPath)
	if err != nil {
		return fmt.Errorf("processing %s: %w", *csvPath, err)
	}
	log.Printf("total: %d records", len(records))

	if err := writeJSON(*rawOut, records); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*enrichedOut, readings); err != nil {
		return fmt.Errorf("writing enriched fixture: %w", err)
	}
	log.Printf("wrote enriched fixture: %s", *enrichedOut)

	printStats(readings)
	return nil
}

func processCSV(path string) ([]domain.RawGaugeRecord, []domain.FlowReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[h] = i
	}

	var records []domain.RawGaugeRecord
	var readings []domain.FlowReading

	for _, row := range rows[1:] {
		if len(row) < len(header) {
			continue
		}

		rec := domain.RawGaugeRecord{
			Site:       get(row, colIdx, "Site"),
			SiteName:   get(row, colIdx, "SiteName"),
			DateTime:   get(row, colIdx, "DateTime"),
			Discharge:  get(row, colIdx, "Discharge"),
			GageHeight: get(row, colIdx, "GageHeight"),
			WaterTemp:  get(row, colIdx, "WaterTemp"),
			Qualifier:  get(row, colIdx, "Qualifier"),
		}
		records = append(records, rec)

		// Run the actual domain transformation.
		payload, err := json.Marshal(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal record: %w", err)
		}

		reading, err := domain.ParseRawReading(domain.RawEvent{
			Key:   []byte(rec.Site),
			Value: payload,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("parse raw reading: %w", err)
		}

		reading = domain.EnrichFlowReading(reading, domain.DefaultMaxGaugeCFS, domain.HalfSweep)
		readings = append(readings, reading)
	}

	return records, readings, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(readings []domain.FlowReading) {
	zoneCounts := map[string]int{}
	siteCounts := map[string]int{}
	bySite := map[string][]domain.FlowReading{}
	for _, r := range readings {
		zoneCounts[r.Zone.Label]++
		siteCounts[r.Site]++
		bySite[r.Site] = append(bySite[r.Site], r)
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(readings))
	fmt.Printf("By zone: LOW=%d, PRIME=%d, CAUTION=%d, BLOWN_OUT=%d\n",
		zoneCounts[domain.ZoneLow], zoneCounts[domain.ZonePrime],
		zoneCounts[domain.ZoneCaution], zoneCounts[domain.ZoneBlownOut])

	sites := make([]string, 0, len(bySite))
	for site := range bySite {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	for _, site := range sites {
		week := bySite[site]
		sort.Slice(week, func(i, j int) bool { return week[i].Timestamp.Before(week[j].Timestamp) })
		stats := domain.AggregateWeek(week)

		fmt.Printf("\nSite %s (%d readings):\n", site, len(week))
		fmt.Printf("  AvgFlow: %d, Peak: %g on %s, Lowest: %g on %s\n",
			stats.AvgFlow, stats.PeakFlow, stats.PeakDay, stats.LowestFlow, stats.LowestDay)
		fmt.Printf("  Volatility: %s, Trend: %s %d%%\n", stats.Volatility, stats.WeekTrend, stats.WeekTrendPercent)
		fmt.Printf("  Insight: %s\n", domain.ComposeInsight(stats))
		fmt.Printf("  First ID: %s\n", week[0].ID)
	}
}
