package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/printerm420/SalmonFlow/internal/config"
	"github.com/printerm420/SalmonFlow/internal/domain"
	"github.com/printerm420/SalmonFlow/internal/store"
)

type siteSummary struct {
	Site   string  `json:"site"`
	Name   string  `json:"name"`
	River  string  `json:"river"`
	MaxCFS float64 `json:"max_cfs"`
}

type sitesResponse struct {
	Sites []siteSummary `json:"sites"`
	Zones []domain.Zone `json:"zones"`
}

type conditionsResponse struct {
	Site      string                 `json:"site"`
	Name      string                 `json:"name"`
	River     string                 `json:"river"`
	CFS       float64                `json:"cfs"`
	Zone      domain.Zone            `json:"zone"`
	Gauge     domain.GaugeProjection `json:"gauge"`
	Arcs      []domain.ZoneArc       `json:"arcs"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"` // "live" or "archive"
}

type weekDay struct {
	Date     string  `json:"date"` // "2006-01-02", UTC
	DayLabel string  `json:"day_label"`
	CFS      float64 `json:"cfs"`
	Zone     string  `json:"zone"`
}

type weekResponse struct {
	Site    string           `json:"site"`
	Name    string           `json:"name"`
	River   string           `json:"river"`
	Stats   domain.WeekStats `json:"stats"`
	Insight string           `json:"insight"`
	Days    []weekDay        `json:"days"`
}

// handleSites returns the configured site roster along with the zone band
// table, so clients can draw legends without hardcoding boundaries.
func (s *Server) handleSites(w http.ResponseWriter, _ *http.Request) {
	sites := make([]siteSummary, 0, len(s.cfg.Sites))
	for _, site := range s.cfg.Sites {
		sites = append(sites, siteSummary{
			Site:   site.Site,
			Name:   site.Name,
			River:  site.River,
			MaxCFS: s.cfg.SiteCeiling(site.Site),
		})
	}
	writeJSON(w, http.StatusOK, sitesResponse{Sites: sites, Zones: domain.Zones()})
}

// handleConditions serves the current reading for a site, preferring the
// live USGS value and falling back to the newest archived reading when the
// upstream service is unreachable.
func (s *Server) handleConditions(w http.ResponseWriter, r *http.Request) {
	site, ok := s.rosterSite(r.PathValue("site"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}

	cfs, ts, source, ok := s.currentFlow(r, site.Site)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no readings available for site")
		return
	}

	ceiling := s.cfg.SiteCeiling(site.Site)
	writeJSON(w, http.StatusOK, conditionsResponse{
		Site:      site.Site,
		Name:      site.Name,
		River:     site.River,
		CFS:       cfs,
		Zone:      domain.ClassifyFlow(cfs),
		Gauge:     domain.Project(cfs, ceiling, s.cfg.GaugeSweep),
		Arcs:      domain.ZoneArcs(ceiling, s.cfg.GaugeSweep),
		Timestamp: ts,
		Source:    source,
	})
}

// handleWeek serves the 7-day aggregate for a site from the archive.
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	site, ok := s.rosterSite(r.PathValue("site"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown site")
		return
	}

	readings, err := s.archive.GetWeek(r.Context(), site.Site, time.Now().UTC())
	if err != nil {
		s.logger.Error("archive week query failed", "site", site.Site, "error", err)
		writeError(w, http.StatusInternalServerError, "archive unavailable")
		return
	}

	stats := domain.AggregateWeek(readings)
	days := make([]weekDay, 0, len(readings))
	for _, reading := range readings {
		days = append(days, weekDay{
			Date:     reading.Timestamp.UTC().Format("2006-01-02"),
			DayLabel: reading.Timestamp.UTC().Format("Mon"),
			CFS:      reading.CFS,
			Zone:     reading.Zone.Label,
		})
	}

	writeJSON(w, http.StatusOK, weekResponse{
		Site:    site.Site,
		Name:    site.Name,
		River:   site.River,
		Stats:   stats,
		Insight: domain.ComposeInsight(stats),
		Days:    days,
	})
}

// rosterSite resolves a path parameter against the configured site roster.
func (s *Server) rosterSite(site string) (config.Site, bool) {
	for _, candidate := range s.cfg.Sites {
		if candidate.Site == site {
			return candidate, true
		}
	}
	return config.Site{}, false
}

// currentFlow returns the freshest discharge for a site. Live lookups win;
// the archive covers USGS outages and gauges with no current data. The bool
// reports whether any source had a reading.
func (s *Server) currentFlow(r *http.Request, site string) (cfs float64, ts time.Time, source string, ok bool) {
	ctx := r.Context()

	if s.directory != nil {
		live, err := s.directory.LatestDischarge(ctx, site)
		if err == nil && !live.Timestamp.IsZero() {
			return live.CFS, live.Timestamp, "live", true
		}
		if err != nil && !errors.Is(err, domain.ErrNoData) {
			s.logger.Warn("live discharge lookup failed, trying archive", "site", site, "error", err)
		}
	}

	archived, err := s.archive.LatestFlow(ctx, site)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("archive lookup failed", "site", site, "error", err)
		}
		return 0, time.Time{}, "", false
	}
	return archived.CFS, archived.Timestamp, "archive", true
}
