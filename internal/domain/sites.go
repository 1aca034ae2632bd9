package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrNoData reports that a site directory answered but had no discharge
// observations for the site. Callers can distinguish this from a zero-CFS
// reading and fall back to archived data.
var ErrNoData = errors.New("no discharge data for site")

// SiteInfo contains gauge site metadata returned by a site directory.
type SiteInfo struct {
	Site  string
	Name  string
	River string
	Lat   float64
	Lon   float64
}

// LiveReading is the most recent discharge observation for a site.
type LiveReading struct {
	Site      string
	SiteName  string
	CFS       float64
	Timestamp time.Time
}

// SiteDirectory resolves gauge site metadata and live discharge values.
type SiteDirectory interface {
	// LookupSite returns metadata for a USGS site number.
	LookupSite(ctx context.Context, site string) (SiteInfo, error)

	// LatestDischarge returns the most recent discharge observation.
	LatestDischarge(ctx context.Context, site string) (LiveReading, error)
}

// EnrichWithSiteInfo attempts to fill in site metadata from a directory.
// If the directory is nil or the lookup fails, the reading is returned with
// SiteSource set accordingly (graceful degradation).
func EnrichWithSiteInfo(ctx context.Context, reading FlowReading, dir SiteDirectory, logger *slog.Logger) FlowReading {
	if dir == nil {
		return reading
	}

	// The collector's own metadata wins when complete.
	if reading.SiteName != "" && (reading.Lat != 0 || reading.Lon != 0) {
		reading.SiteSource = "collector"
		return reading
	}

	info, err := dir.LookupSite(ctx, reading.Site)
	if err != nil {
		logger.Warn("site lookup failed",
			"reading_id", reading.ID,
			"site", reading.Site,
			"error", err,
		)
		reading.SiteSource = "failed"
		return reading
	}

	if info.Name == "" {
		reading.SiteSource = "collector"
		return reading
	}

	if reading.SiteName == "" {
		reading.SiteName = info.Name
	}
	reading.River = info.River
	reading.Lat = info.Lat
	reading.Lon = info.Lon
	reading.SiteSource = "directory"
	return reading
}
