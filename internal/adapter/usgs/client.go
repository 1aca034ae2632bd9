package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/printerm420/SalmonFlow/internal/domain"
	"github.com/printerm420/SalmonFlow/internal/observability"
)

// parameterDischarge is the USGS parameter code for discharge in CFS.
const parameterDischarge = "00060"

// Client implements domain.SiteDirectory using the USGS Water Services
// instantaneous-values API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a USGS Water Services client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://waterservices.usgs.gov/nwis/iv/",
		metrics: metrics,
		logger:  logger,
	}
}

// LookupSite returns gauge metadata for a USGS site number.
func (c *Client) LookupSite(ctx context.Context, site string) (domain.SiteInfo, error) {
	resp, err := c.doRequest(ctx, site, "site")
	if err != nil {
		return domain.SiteInfo{}, err
	}

	series := firstDischargeSeries(resp)
	if series == nil {
		return domain.SiteInfo{}, nil
	}

	info := domain.SiteInfo{
		Site:  siteCode(series.SourceInfo),
		Name:  series.SourceInfo.SiteName,
		River: riverFromSiteName(series.SourceInfo.SiteName),
		Lat:   series.SourceInfo.GeoLocation.GeogLocation.Latitude,
		Lon:   series.SourceInfo.GeoLocation.GeogLocation.Longitude,
	}
	if info.Site == "" {
		info.Site = site
	}
	return info, nil
}

// LatestDischarge returns the most recent discharge observation for a site.
func (c *Client) LatestDischarge(ctx context.Context, site string) (domain.LiveReading, error) {
	resp, err := c.doRequest(ctx, site, "discharge")
	if err != nil {
		return domain.LiveReading{}, err
	}

	series := firstDischargeSeries(resp)
	if series == nil || len(series.Values) == 0 || len(series.Values[0].Value) == 0 {
		return domain.LiveReading{}, fmt.Errorf("site %s: %w", site, domain.ErrNoData)
	}

	points := series.Values[0].Value
	latest := points[len(points)-1]

	cfs, err := strconv.ParseFloat(latest.Value, 64)
	if err != nil {
		return domain.LiveReading{}, fmt.Errorf("parse discharge %q: %w", latest.Value, err)
	}

	ts, err := time.Parse(time.RFC3339, latest.DateTime)
	if err != nil {
		return domain.LiveReading{}, fmt.Errorf("parse observation time %q: %w", latest.DateTime, err)
	}

	return domain.LiveReading{
		Site:      site,
		SiteName:  series.SourceInfo.SiteName,
		CFS:       cfs,
		Timestamp: ts.UTC(),
	}, nil
}

func (c *Client) doRequest(ctx context.Context, site, method string) (*response, error) {
	params := url.Values{
		"format":      {"json"},
		"sites":       {site},
		"parameterCd": {parameterDischarge},
		"siteStatus":  {"all"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.USGSAPIDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.USGSRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.USGSRequests.WithLabelValues(method, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	var usgsResp response
	if err := json.NewDecoder(resp.Body).Decode(&usgsResp); err != nil {
		c.metrics.USGSRequests.WithLabelValues(method, "error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(usgsResp.Value.TimeSeries) == 0 {
		c.metrics.USGSRequests.WithLabelValues(method, "empty").Inc()
	} else {
		c.metrics.USGSRequests.WithLabelValues(method, "success").Inc()
	}
	return &usgsResp, nil
}

// firstDischargeSeries picks the discharge time series from a response,
// preferring an exact parameter-code match.
func firstDischargeSeries(resp *response) *timeSeries {
	for i := range resp.Value.TimeSeries {
		ts := &resp.Value.TimeSeries[i]
		for _, vc := range ts.Variable.VariableCode {
			if vc.Value == parameterDischarge {
				return ts
			}
		}
	}
	if len(resp.Value.TimeSeries) > 0 {
		return &resp.Value.TimeSeries[0]
	}
	return nil
}

func siteCode(si sourceInfo) string {
	if len(si.SiteCode) > 0 {
		return si.SiteCode[0].Value
	}
	return ""
}

// riverFromSiteName extracts the river portion of a USGS site name, which
// conventionally reads "<river> AT <place>" (or NEAR/ABV/BLW/NR).
func riverFromSiteName(name string) string {
	upper := strings.ToUpper(name)
	for _, sep := range []string{" AT ", " NEAR ", " ABV ", " BLW ", " NR "} {
		if i := strings.Index(upper, sep); i > 0 {
			return strings.TrimSpace(name[:i])
		}
	}
	return strings.TrimSpace(name)
}

// USGS Water Services response types.

type response struct {
	Value struct {
		TimeSeries []timeSeries `json:"timeSeries"`
	} `json:"value"`
}

type timeSeries struct {
	SourceInfo sourceInfo `json:"sourceInfo"`
	Variable   struct {
		VariableCode []struct {
			Value string `json:"value"`
		} `json:"variableCode"`
	} `json:"variable"`
	Values []struct {
		Value []point `json:"value"`
	} `json:"values"`
}

type sourceInfo struct {
	SiteName string `json:"siteName"`
	SiteCode []struct {
		Value string `json:"value"`
	} `json:"siteCode"`
	GeoLocation struct {
		GeogLocation struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"geogLocation"`
	} `json:"geoLocation"`
}

type point struct {
	Value    string `json:"value"`
	DateTime string `json:"dateTime"`
}
