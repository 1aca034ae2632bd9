package usgs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/printerm420/SalmonFlow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingDirectory struct {
	lookupCalls int
	liveCalls   int
	info        domain.SiteInfo
	live        domain.LiveReading
	liveErr     error
}

func (m *countingDirectory) LookupSite(_ context.Context, _ string) (domain.SiteInfo, error) {
	m.lookupCalls++
	return m.info, nil
}

func (m *countingDirectory) LatestDischarge(_ context.Context, _ string) (domain.LiveReading, error) {
	m.liveCalls++
	if m.liveErr != nil {
		return domain.LiveReading{}, m.liveErr
	}
	return m.live, nil
}

// --- CachedDirectory tests ---

func TestCachedDirectory_LookupCacheHit(t *testing.T) {
	inner := &countingDirectory{
		info: domain.SiteInfo{Site: "06719505", Name: "CLEAR CREEK AT GOLDEN, CO"},
	}
	cached := NewCachedDirectory(inner, 10, testMetrics())

	r1, err := cached.LookupSite(context.Background(), "06719505")
	require.NoError(t, err)
	assert.Equal(t, "CLEAR CREEK AT GOLDEN, CO", r1.Name)

	r2, err := cached.LookupSite(context.Background(), "06719505")
	require.NoError(t, err)
	assert.Equal(t, "CLEAR CREEK AT GOLDEN, CO", r2.Name)

	assert.Equal(t, 1, inner.lookupCalls, "should only call inner once")
}

func TestCachedDirectory_EmptyResultNotCached(t *testing.T) {
	inner := &countingDirectory{} // lookups succeed but return nothing
	cached := NewCachedDirectory(inner, 10, testMetrics())

	_, _ = cached.LookupSite(context.Background(), "00000000")
	_, _ = cached.LookupSite(context.Background(), "00000000")

	assert.Equal(t, 2, inner.lookupCalls, "empty results must be retried")
}

func TestCachedDirectory_DifferentSitesMiss(t *testing.T) {
	inner := &countingDirectory{
		info: domain.SiteInfo{Name: "SOME GAUGE"},
	}
	cached := NewCachedDirectory(inner, 10, testMetrics())

	_, _ = cached.LookupSite(context.Background(), "06719505")
	_, _ = cached.LookupSite(context.Background(), "09361500")

	assert.Equal(t, 2, inner.lookupCalls)
}

func TestCachedDirectory_DischargeAlwaysFresh(t *testing.T) {
	inner := &countingDirectory{
		live: domain.LiveReading{Site: "06719505", CFS: 543, Timestamp: time.Now()},
	}
	cached := NewCachedDirectory(inner, 10, testMetrics())

	_, err := cached.LatestDischarge(context.Background(), "06719505")
	require.NoError(t, err)
	_, err = cached.LatestDischarge(context.Background(), "06719505")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.liveCalls, "live discharge is never served from cache while upstream is healthy")
}

func TestCachedDirectory_DischargeFallsBackToLastValue(t *testing.T) {
	ts := time.Date(2024, time.April, 22, 21, 10, 0, 0, time.UTC)
	inner := &countingDirectory{
		live: domain.LiveReading{Site: "06719505", CFS: 543, Timestamp: ts},
	}
	cached := NewCachedDirectory(inner, 10, testMetrics())

	// Prime the last-value cache, then break the upstream.
	_, err := cached.LatestDischarge(context.Background(), "06719505")
	require.NoError(t, err)

	inner.liveErr = errors.New("upstream down")
	live, err := cached.LatestDischarge(context.Background(), "06719505")
	require.NoError(t, err, "last successful value masks the outage")
	assert.Equal(t, 543.0, live.CFS)
	assert.Equal(t, ts, live.Timestamp)
}

func TestCachedDirectory_DischargeNoDataServesLastValue(t *testing.T) {
	ts := time.Date(2024, time.April, 22, 21, 10, 0, 0, time.UTC)
	inner := &countingDirectory{
		live: domain.LiveReading{Site: "06719505", CFS: 543, Timestamp: ts},
	}
	cached := NewCachedDirectory(inner, 10, testMetrics())

	_, err := cached.LatestDischarge(context.Background(), "06719505")
	require.NoError(t, err)

	// The gauge goes quiet but the upstream still answers 200.
	inner.liveErr = domain.ErrNoData
	live, err := cached.LatestDischarge(context.Background(), "06719505")
	require.NoError(t, err)
	assert.Equal(t, 543.0, live.CFS)
	assert.Equal(t, ts, live.Timestamp)
}

func TestCachedDirectory_DischargeErrorWithNoLastValue(t *testing.T) {
	inner := &countingDirectory{liveErr: errors.New("upstream down")}
	cached := NewCachedDirectory(inner, 10, testMetrics())

	_, err := cached.LatestDischarge(context.Background(), "06719505")
	require.Error(t, err)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	_, ok := c.get("a")
	assert.False(t, ok)

	c.put("a", domain.SiteInfo{Name: "A"})
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", v.Name)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.SiteInfo{Name: "A"})
	c.put("b", domain.SiteInfo{Name: "B"})

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", domain.SiteInfo{Name: "C"})

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_UpdateExistingKey(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.SiteInfo{Name: "A"})
	c.put("a", domain.SiteInfo{Name: "A2"})

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", v.Name)
}

func TestLRUCache_CapacityOne(t *testing.T) {
	c := newLRUCache(1)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("k%d", i)
		c.put(key, domain.SiteInfo{Name: key})
	}

	_, ok := c.get("k3")
	assert.False(t, ok)
	v, ok := c.get("k4")
	require.True(t, ok)
	assert.Equal(t, "k4", v.Name)
}
