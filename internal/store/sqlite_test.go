package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/printerm420/SalmonFlow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func readingAt(site string, ts time.Time, cfs float64) domain.FlowReading {
	return domain.FlowReading{
		ID:        site + "-" + ts.Format("20060102T1504"),
		Site:      site,
		SiteName:  "CLEAR CREEK AT GOLDEN, CO",
		River:     "CLEAR CREEK",
		CFS:       cfs,
		Timestamp: ts,
	}
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	require.Error(t, err)
}

func TestSQLiteStore_LatestFlow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	day1 := time.Date(2024, 4, 22, 15, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	err := s.UpsertDailyFlows(ctx, []domain.FlowReading{
		readingAt("06719505", day1, 420),
		readingAt("06719505", day2, 543),
	})
	require.NoError(t, err)

	latest, err := s.LatestFlow(ctx, "06719505")
	require.NoError(t, err)
	assert.Equal(t, 543.0, latest.CFS)
	assert.Equal(t, day2, latest.Timestamp)
	assert.Equal(t, domain.ZonePrime, latest.Zone.Label)
	assert.Equal(t, "Tue", latest.DayLabel)
}

func TestSQLiteStore_LatestFlow_UnknownSite(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LatestFlow(context.Background(), "00000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_UpsertReplacesSameDay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	morning := time.Date(2024, 4, 22, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 4, 22, 20, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertDailyFlows(ctx, []domain.FlowReading{readingAt("06719505", morning, 400)}))
	require.NoError(t, s.UpsertDailyFlows(ctx, []domain.FlowReading{readingAt("06719505", evening, 520)}))

	latest, err := s.LatestFlow(ctx, "06719505")
	require.NoError(t, err)
	assert.Equal(t, 520.0, latest.CFS, "newer observation for the same day replaces the row")

	week, err := s.GetWeek(ctx, "06719505", evening)
	require.NoError(t, err)
	assert.Len(t, week, 1, "one row per site per day")
}

func TestSQLiteStore_UpsertIgnoresStaleReplay(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	morning := time.Date(2024, 4, 22, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 4, 22, 20, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpsertDailyFlows(ctx, []domain.FlowReading{readingAt("06719505", evening, 520)}))
	require.NoError(t, s.UpsertDailyFlows(ctx, []domain.FlowReading{readingAt("06719505", morning, 400)}))

	latest, err := s.LatestFlow(ctx, "06719505")
	require.NoError(t, err)
	assert.Equal(t, 520.0, latest.CFS, "replayed older offset must not roll the archive back")
}

func TestSQLiteStore_GetWeek(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Ten consecutive days; the window should keep only the last seven.
	start := time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)
	var readings []domain.FlowReading
	for i := 0; i < 10; i++ {
		readings = append(readings, readingAt("06719505", start.AddDate(0, 0, i), 300+float64(i)*50))
	}
	require.NoError(t, s.UpsertDailyFlows(ctx, readings))

	end := start.AddDate(0, 0, 9)
	week, err := s.GetWeek(ctx, "06719505", end)
	require.NoError(t, err)
	require.Len(t, week, 7)

	assert.Equal(t, 450.0, week[0].CFS, "window starts six days before end")
	assert.Equal(t, 750.0, week[6].CFS)
	for i := 1; i < len(week); i++ {
		assert.True(t, week[i].Timestamp.After(week[i-1].Timestamp), "oldest first")
	}
}

func TestSQLiteStore_GetWeek_SparseDays(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	end := time.Date(2024, 4, 28, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertDailyFlows(ctx, []domain.FlowReading{
		readingAt("06719505", end.AddDate(0, 0, -6), 380),
		readingAt("06719505", end.AddDate(0, 0, -2), 610),
		readingAt("06719505", end, 540),
	}))

	week, err := s.GetWeek(ctx, "06719505", end)
	require.NoError(t, err)
	assert.Len(t, week, 3, "days without readings are absent, not zero-filled")
}

func TestSQLiteStore_GetWeek_IsolatesSites(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ts := time.Date(2024, 4, 22, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertDailyFlows(ctx, []domain.FlowReading{
		readingAt("06719505", ts, 543),
		readingAt("09058000", ts, 1250),
	}))

	week, err := s.GetWeek(ctx, "06719505", ts)
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, "06719505", week[0].Site)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	ts := time.Date(2024, 4, 22, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertDailyFlows(ctx, []domain.FlowReading{readingAt("06719505", ts, 543)}))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	latest, err := reopened.LatestFlow(ctx, "06719505")
	require.NoError(t, err)
	assert.Equal(t, 543.0, latest.CFS)
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	ctx := context.Background()

	require.NoError(t, s.UpsertDailyFlows(ctx, []domain.FlowReading{{Site: "06719505"}}))

	week, err := s.GetWeek(ctx, "06719505", time.Now())
	require.NoError(t, err)
	assert.Empty(t, week)

	_, err = s.LatestFlow(ctx, "06719505")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Close())
}
