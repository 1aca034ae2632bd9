package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/printerm420/SalmonFlow/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// USGS site directory configuration.
	USGSEnabled   bool
	USGSTimeout   time.Duration
	USGSCacheSize int

	// Gauge display configuration.
	GaugeSweep  domain.Sweep
	MaxGaugeCFS float64

	// Reading archive configuration. Empty path disables archiving.
	StorePath string

	// Monitored site roster, loaded from the YAML sites file.
	SitesFile string
	Sites     []Site
}

// Load reads configuration from environment variables, applying defaults
// where unset, and loads the sites file when one is configured.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	usgsTimeout, err := parsePositiveDuration("USGS_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("USGS_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	sweep, err := parseSweep(envOrDefault("GAUGE_SWEEP", "half"))
	if err != nil {
		return nil, err
	}

	maxGaugeCFS := domain.DefaultMaxGaugeCFS
	if s := os.Getenv("MAX_GAUGE_CFS"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return nil, errors.New("invalid MAX_GAUGE_CFS")
		}
		maxGaugeCFS = v
	}

	usgsEnabled := true
	if v := os.Getenv("USGS_ENABLED"); v != "" {
		usgsEnabled, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid USGS_ENABLED %q", v)
		}
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-gauge-readings"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "river-conditions"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "salmonflow"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		USGSEnabled:   usgsEnabled,
		USGSTimeout:   usgsTimeout,
		USGSCacheSize: cacheSize,

		GaugeSweep:  sweep,
		MaxGaugeCFS: maxGaugeCFS,

		StorePath: os.Getenv("STORE_PATH"),
		SitesFile: os.Getenv("SITES_FILE"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	if cfg.SitesFile != "" {
		sites, err := LoadSites(cfg.SitesFile)
		if err != nil {
			return nil, err
		}
		cfg.Sites = sites
	}

	return cfg, nil
}

// SiteCeiling returns the gauge ceiling for a site: its configured max_cfs
// when the roster has one, the service-wide ceiling otherwise.
func (c *Config) SiteCeiling(site string) float64 {
	for _, s := range c.Sites {
		if s.Site == site && s.MaxCFS > 0 {
			return s.MaxCFS
		}
	}
	return c.MaxGaugeCFS
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseSweep(style string) (domain.Sweep, error) {
	switch style {
	case "half":
		return domain.HalfSweep, nil
	case "wide":
		return domain.WideSweep, nil
	default:
		return domain.Sweep{}, fmt.Errorf("invalid GAUGE_SWEEP %q (want half or wide)", style)
	}
}
