package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/printerm420/SalmonFlow/internal/domain"
)

// ErrNotFound is returned when a site has no archived readings.
var ErrNotFound = errors.New("store: no readings for site")

const dayFormat = "2006-01-02"

// SQLiteStore archives daily flows in a single-file database. One writer
// connection keeps modernc.org/sqlite free of SQLITE_BUSY errors.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the archive at path and runs
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS daily_flows (
			site TEXT NOT NULL,
			day TEXT NOT NULL,
			reading_id TEXT NOT NULL,
			cfs REAL NOT NULL,
			gage_height_ft REAL NOT NULL,
			water_temp_c REAL NOT NULL,
			qualifier TEXT NOT NULL,
			site_name TEXT NOT NULL,
			river TEXT NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			observed_at TEXT NOT NULL,
			archived_at TEXT NOT NULL,
			PRIMARY KEY (site, day)
		);`,
		`CREATE INDEX IF NOT EXISTS daily_flows_site_observed
			ON daily_flows (site, observed_at DESC);`,
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}

// UpsertDailyFlows writes each reading under (site, UTC day). When a day
// already holds a reading, the row is replaced only if the incoming
// observation is at least as new, so replayed Kafka offsets cannot roll an
// archive backwards.
func (s *SQLiteStore) UpsertDailyFlows(ctx context.Context, readings []domain.FlowReading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_flows (
			site, day, reading_id, cfs, gage_height_ft, water_temp_c,
			qualifier, site_name, river, lat, lon, observed_at, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(site, day) DO UPDATE SET
			reading_id = excluded.reading_id,
			cfs = excluded.cfs,
			gage_height_ft = excluded.gage_height_ft,
			water_temp_c = excluded.water_temp_c,
			qualifier = excluded.qualifier,
			site_name = excluded.site_name,
			river = excluded.river,
			lat = excluded.lat,
			lon = excluded.lon,
			observed_at = excluded.observed_at,
			archived_at = excluded.archived_at
		WHERE excluded.observed_at >= daily_flows.observed_at
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range readings {
		r := readings[i]
		observed := r.Timestamp.UTC()
		_, err = stmt.ExecContext(
			ctx,
			r.Site,
			observed.Format(dayFormat),
			r.ID,
			r.CFS,
			r.GageHeightFt,
			r.WaterTempC,
			r.Qualifier,
			r.SiteName,
			r.River,
			r.Lat,
			r.Lon,
			observed.Format(time.RFC3339),
			now.Format(time.RFC3339),
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetWeek returns archived readings for the 7 UTC days ending at end,
// oldest first. Missing days are absent rather than zero-filled so the
// aggregation sees only real observations.
func (s *SQLiteStore) GetWeek(ctx context.Context, site string, end time.Time) ([]domain.FlowReading, error) {
	endDay := end.UTC().Format(dayFormat)
	startDay := end.UTC().AddDate(0, 0, -6).Format(dayFormat)

	rows, err := s.db.QueryContext(ctx, `
		SELECT reading_id, site, site_name, river, cfs, gage_height_ft,
		       water_temp_c, qualifier, lat, lon, observed_at
		FROM daily_flows
		WHERE site = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`, site, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []domain.FlowReading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// LatestFlow returns the newest archived reading for a site.
func (s *SQLiteStore) LatestFlow(ctx context.Context, site string) (domain.FlowReading, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT reading_id, site, site_name, river, cfs, gage_height_ft,
		       water_temp_c, qualifier, lat, lon, observed_at
		FROM daily_flows
		WHERE site = ?
		ORDER BY observed_at DESC
		LIMIT 1
	`, site)

	r, err := scanReading(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FlowReading{}, ErrNotFound
	}
	if err != nil {
		return domain.FlowReading{}, err
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanReading rebuilds a FlowReading from an archive row. Zone and day
// label are recomputed rather than stored, so a boundary change applies
// retroactively to old rows.
func scanReading(row rowScanner) (domain.FlowReading, error) {
	var (
		r          domain.FlowReading
		observedAt string
	)
	err := row.Scan(
		&r.ID, &r.Site, &r.SiteName, &r.River, &r.CFS, &r.GageHeightFt,
		&r.WaterTempC, &r.Qualifier, &r.Lat, &r.Lon, &observedAt,
	)
	if err != nil {
		return domain.FlowReading{}, err
	}

	ts, err := time.Parse(time.RFC3339, observedAt)
	if err != nil {
		return domain.FlowReading{}, fmt.Errorf("parse observed_at %q: %w", observedAt, err)
	}
	r.Timestamp = ts
	r.DayLabel = ts.UTC().Format("Mon")
	r.Zone = domain.ClassifyFlow(r.CFS)
	return r, nil
}
