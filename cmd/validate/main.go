// Command validate performs end-to-end integrity checks across the mock data
// fixtures: the source CSV, the raw JSON fixture, and the domain transforms
// themselves. It verifies row parity, transform determinism, classification
// totality, gauge projection bounds, and weekly aggregation consistency.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/mock/gauge_readings_240422_week.csv \
//	  -raw-json data/mock/gauge_readings_240422_week.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/printerm420/SalmonFlow/internal/domain"
)

// Matches the genmock clock so regenerated IDs stay comparable.
var frozenNow = time.Date(2024, time.April, 29, 6, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "source CSV of daily gauge observations")
	rawJSON := flag.String("raw-json", "", "path to the raw JSON fixture")
	flag.Parse()

	if *csvPath == "" || *rawJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, *rawJSON); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath, rawJSONPath string) int {
	domain.SetClock(clockwork.NewFakeClockAt(frozenNow))
	defer domain.SetClock(nil)

	fmt.Println("=== Gauge Fixture Integrity Validation ===")
	fmt.Println()

	csvRows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	rawRecords, err := loadJSON[domain.RawGaugeRecord](rawJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	readings, transformPhase := transformAll(rawRecords)

	phases := []*phase{
		validateSourceParity(csvRows, rawRecords),
		transformPhase,
		validateClassification(readings),
		validateGaugeProjection(readings),
		validateWeeklyAggregation(readings),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-46s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d CSV, %d raw JSON, %d transformed\n",
		len(csvRows), len(rawRecords), len(readings))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// csvRow is a parsed CSV row with field values keyed by header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	var rows []csvRow
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[h] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return rows, nil
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Phase 1: the committed raw JSON fixture must match the source CSV
// field for field.

func validateSourceParity(rows []csvRow, raw []domain.RawGaugeRecord) *phase {
	p := &phase{name: "Phase 1: Source Parity (CSV vs raw JSON)"}

	if len(rows) != len(raw) {
		p.errorf("CSV has %d rows, raw JSON has %d records", len(rows), len(raw))
		return p
	}

	for i, row := range rows {
		rec := raw[i]
		checks := map[string]struct{ csv, js string }{
			"Site":       {row.fields["Site"], rec.Site},
			"SiteName":   {row.fields["SiteName"], rec.SiteName},
			"DateTime":   {row.fields["DateTime"], rec.DateTime},
			"Discharge":  {row.fields["Discharge"], rec.Discharge},
			"GageHeight": {row.fields["GageHeight"], rec.GageHeight},
			"WaterTemp":  {row.fields["WaterTemp"], rec.WaterTemp},
			"Qualifier":  {row.fields["Qualifier"], rec.Qualifier},
		}
		for col, v := range checks {
			if v.csv != v.js {
				p.errorf("line %d: column %q: csv=%q, json=%q", row.lineNum, col, v.csv, v.js)
			}
		}
	}
	return p
}

// Phase 2: every raw record must transform cleanly, and re-running the
// transform must produce identical IDs.

func transformAll(raw []domain.RawGaugeRecord) ([]domain.FlowReading, *phase) {
	p := &phase{name: "Phase 2: Transform Determinism"}

	readings := make([]domain.FlowReading, 0, len(raw))
	for i, rec := range raw {
		first, err := transformOne(rec)
		if err != nil {
			p.errorf("record %d (%s): %v", i, rec.Site, err)
			continue
		}
		second, err := transformOne(rec)
		if err != nil {
			p.errorf("record %d (%s) on retry: %v", i, rec.Site, err)
			continue
		}
		if first.ID != second.ID {
			p.errorf("record %d (%s): ID not deterministic: %s vs %s", i, rec.Site, first.ID, second.ID)
		}
		if first.ID == "" {
			p.errorf("record %d (%s): empty ID", i, rec.Site)
		}
		readings = append(readings, first)
	}
	return readings, p
}

func transformOne(rec domain.RawGaugeRecord) (domain.FlowReading, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return domain.FlowReading{}, err
	}
	reading, err := domain.ParseRawReading(domain.RawEvent{
		Key:   []byte(rec.Site),
		Value: payload,
	})
	if err != nil {
		return domain.FlowReading{}, err
	}
	return domain.EnrichFlowReading(reading, domain.DefaultMaxGaugeCFS, domain.HalfSweep), nil
}

// Phase 3: every reading must land in exactly one zone whose bounds
// contain its normalized discharge.

func validateClassification(readings []domain.FlowReading) *phase {
	p := &phase{name: "Phase 3: Zone Classification Totality"}

	zones := domain.Zones()
	for i, r := range readings {
		if r.CFS < 0 {
			p.errorf("reading %d (%s): negative CFS %g survived normalization", i, r.Site, r.CFS)
		}

		matches := 0
		for _, z := range zones {
			if r.CFS >= z.MinCFS && r.CFS < z.MaxCFS {
				matches++
				if z.Label != r.Zone.Label {
					p.errorf("reading %d (%s): %g CFS classified %s, bounds say %s",
						i, r.Site, r.CFS, r.Zone.Label, z.Label)
				}
			}
		}
		if matches != 1 {
			p.errorf("reading %d (%s): %g CFS matched %d zone bands", i, r.Site, r.CFS, matches)
		}
	}
	return p
}

// Phase 4: gauge angles must stay within the sweep and increase
// monotonically with discharge.

func validateGaugeProjection(readings []domain.FlowReading) *phase {
	p := &phase{name: "Phase 4: Gauge Projection Bounds"}

	sweep := domain.HalfSweep
	lo, hi := sweep.StartDeg, sweep.EndDeg
	if lo > hi {
		lo, hi = hi, lo
	}

	sorted := make([]domain.FlowReading, len(readings))
	copy(sorted, readings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CFS < sorted[j].CFS })

	for i, r := range sorted {
		g := r.Gauge
		if g.AngleDeg < lo-1e-9 || g.AngleDeg > hi+1e-9 {
			p.errorf("%s at %g CFS: angle %g outside sweep [%g, %g]", r.Site, r.CFS, g.AngleDeg, lo, hi)
		}
		if g.Ratio < 0 || g.Ratio > 1 {
			p.errorf("%s at %g CFS: ratio %g outside [0, 1]", r.Site, r.CFS, g.Ratio)
		}
		if math.Abs(g.ClampedCFS-math.Min(r.CFS, domain.DefaultMaxGaugeCFS)) > 1e-9 {
			p.errorf("%s at %g CFS: clamped value %g", r.Site, r.CFS, g.ClampedCFS)
		}
		if i > 0 && g.AngleDeg < sorted[i-1].Gauge.AngleDeg-1e-9 {
			p.errorf("%s at %g CFS: angle %g below previous %g (not monotonic)",
				r.Site, r.CFS, g.AngleDeg, sorted[i-1].Gauge.AngleDeg)
		}
	}
	return p
}

// Phase 5: weekly aggregates must stay internally consistent and insights
// must be deterministic.

func validateWeeklyAggregation(readings []domain.FlowReading) *phase {
	p := &phase{name: "Phase 5: Weekly Aggregation Consistency"}

	bySite := map[string][]domain.FlowReading{}
	for _, r := range readings {
		bySite[r.Site] = append(bySite[r.Site], r)
	}

	for site, week := range bySite {
		sort.Slice(week, func(i, j int) bool { return week[i].Timestamp.Before(week[j].Timestamp) })
		stats := domain.AggregateWeek(week)

		if stats.TotalDays != len(week) {
			p.errorf("%s: TotalDays %d, want %d", site, stats.TotalDays, len(week))
		}

		inZone := 0
		for _, n := range stats.DaysInZone {
			if n < 0 {
				p.errorf("%s: negative zone count %d", site, n)
			}
			inZone += n
		}
		if inZone != stats.TotalDays {
			p.errorf("%s: DaysInZone sums to %d, want %d", site, inZone, stats.TotalDays)
		}

		if stats.LowestFlow > stats.PeakFlow {
			p.errorf("%s: lowest %g above peak %g", site, stats.LowestFlow, stats.PeakFlow)
		}
		if stats.FlowRange != stats.PeakFlow-stats.LowestFlow {
			p.errorf("%s: range %g, want %g", site, stats.FlowRange, stats.PeakFlow-stats.LowestFlow)
		}

		switch {
		case stats.FlowRange <= 200 && stats.Volatility != domain.VolatilityStable:
			p.errorf("%s: range %g should be stable, got %s", site, stats.FlowRange, stats.Volatility)
		case stats.FlowRange > 200 && stats.FlowRange <= 400 && stats.Volatility != domain.VolatilityModerate:
			p.errorf("%s: range %g should be moderate, got %s", site, stats.FlowRange, stats.Volatility)
		case stats.FlowRange > 400 && stats.Volatility != domain.VolatilityVolatile:
			p.errorf("%s: range %g should be volatile, got %s", site, stats.FlowRange, stats.Volatility)
		}

		first := domain.ComposeInsight(stats)
		second := domain.ComposeInsight(stats)
		if first != second {
			p.errorf("%s: insight not deterministic", site)
		}
		if first == "" {
			p.errorf("%s: empty insight for %d readings", site, len(week))
		}
	}
	return p
}
