package domain

import (
	"context"
	"time"
)

// RawGaugeRecord represents the flat JSON structure produced by the collector.
// All numeric fields arrive as strings exactly as USGS serves them.
type RawGaugeRecord struct {
	Site       string `json:"Site"`       // USGS site number, e.g. "06719505"
	SiteName   string `json:"SiteName"`   // optional, collector may omit
	DateTime   string `json:"DateTime"`   // RFC 3339 observation time
	Discharge  string `json:"Discharge"`  // CFS, "-999999" = no data
	GageHeight string `json:"GageHeight"` // stage in feet
	WaterTemp  string `json:"WaterTemp"`  // °C
	Qualifier  string `json:"Qualifier"`  // "P" provisional, "A" approved
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// FlowReading is the domain-rich representation after parsing and enrichment.
type FlowReading struct {
	ID           string    `json:"id"`
	Site         string    `json:"site"`
	SiteName     string    `json:"site_name,omitempty"`
	River        string    `json:"river,omitempty"`
	CFS          float64   `json:"cfs"`
	GageHeightFt float64   `json:"gage_height_ft,omitempty"`
	WaterTempC   float64   `json:"water_temp_c,omitempty"`
	Qualifier    string    `json:"qualifier,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	DayLabel     string    `json:"day_label,omitempty"` // "Mon".."Sun"
	TimeBucket   time.Time `json:"time_bucket,omitempty"`

	Zone  Zone            `json:"zone"`
	Gauge GaugeProjection `json:"gauge"`

	// Site directory enrichment fields.
	Lat        float64 `json:"lat,omitempty"`
	Lon        float64 `json:"lon,omitempty"`
	SiteSource string  `json:"site_source,omitempty"` // "collector", "directory", "failed"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}
