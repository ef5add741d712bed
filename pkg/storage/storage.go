package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/quotescope/quotescope/pkg/cache"
	"github.com/quotescope/quotescope/pkg/quote"
)

const timeLayout = "2006-01-02 15:04:05.000"

type DB struct {
	sql   *sql.DB
	runID string
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("empty database path")
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS calculations (
  id           INTEGER PRIMARY KEY,
  run_id       TEXT NOT NULL,
  occurred_at  TEXT NOT NULL,
  company      TEXT NOT NULL,
  request_key  TEXT,
  vehicle      TEXT,
  success      INTEGER NOT NULL CHECK (success IN (0,1)),
  cached       INTEGER NOT NULL CHECK (cached IN (0,1)),
  total_price  REAL,
  oc_price     REAL,
  ac_price     REAL,
  error        TEXT,
  duration_ms  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_calc_time ON calculations(occurred_at);
CREATE INDEX IF NOT EXISTS idx_calc_company ON calculations(company, occurred_at);
    `); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{sql: db, runID: uuid.NewString()}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// RunID identifies this process's rows in the history.
func (d *DB) RunID() string { return d.runID }

// Record stores a settled calculation. It satisfies orchestrator.Recorder.
func (d *DB) Record(ctx context.Context, req quote.CalculationRequest, result quote.ScraperResult) error {
	c := Calculation{
		RunID:      d.runID,
		OccurredAt: time.Now(),
		Company:    quote.NormalizeCompany(req.InsuranceCompany),
		Vehicle:    vehicleLabel(req.Vehicle),
		Success:    result.Success,
		Cached:     result.Cached,
		Error:      result.Error,
		Duration:   result.ExecutionTime.Duration(),
	}
	if key, err := cache.Key(req); err == nil {
		c.RequestKey = key
	}
	if result.Quote != nil {
		c.TotalPrice = quote.Float(result.Quote.TotalPrice)
		c.OCPrice = result.Quote.OCPrice
		c.ACPrice = result.Quote.ACPrice
	}
	_, err := d.Insert(ctx, c)
	return err
}

// Insert appends c to the history and returns its row id.
func (d *DB) Insert(ctx context.Context, c Calculation) (int64, error) {
	if c.Company == "" {
		return 0, errors.New("calculation without company")
	}
	if c.RunID == "" {
		c.RunID = d.runID
	}
	if c.OccurredAt.IsZero() {
		c.OccurredAt = time.Now()
	}
	res, err := d.sql.ExecContext(ctx, `INSERT INTO calculations(run_id, occurred_at, company, request_key, vehicle, success, cached, total_price, oc_price, ac_price, error, duration_ms) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.RunID, c.OccurredAt.UTC().Format(timeLayout), c.Company, nullIfEmpty(c.RequestKey), nullIfEmpty(c.Vehicle),
		boolToInt(c.Success), boolToInt(c.Cached), nullFloat(c.TotalPrice), nullFloat(c.OCPrice), nullFloat(c.ACPrice),
		nullIfEmpty(c.Error), c.Duration.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("insert calculation: %w", err)
	}
	return res.LastInsertId()
}

// ListOptions controls selection when listing calculations.
type ListOptions struct {
	Company     string
	Since       time.Time
	SuccessOnly bool
	Limit       int
}

// ListRecent returns the most recent calculations matching opts, newest first.
func (d *DB) ListRecent(ctx context.Context, opts ListOptions) ([]Calculation, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if opts.Company != "" && opts.Company != "all" {
		where += " AND company = ?"
		args = append(args, quote.NormalizeCompany(opts.Company))
	}
	if opts.SuccessOnly {
		where += " AND success = 1"
	}
	if !opts.Since.IsZero() {
		where += " AND occurred_at >= ?"
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	q := "SELECT id, run_id, occurred_at, company, request_key, vehicle, success, cached, total_price, oc_price, ac_price, error, duration_ms FROM calculations " + where + " ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Calculation{}
	for rows.Next() {
		var (
			c                   Calculation
			occurredAt          string
			key, vehicle, errNS sql.NullString
			success, cached     int
			total, oc, ac       sql.NullFloat64
			durationMs          int64
		)
		if err := rows.Scan(&c.ID, &c.RunID, &occurredAt, &c.Company, &key, &vehicle, &success, &cached, &total, &oc, &ac, &errNS, &durationMs); err != nil {
			return nil, err
		}
		c.OccurredAt = parseTimestamp(occurredAt)
		c.RequestKey = key.String
		c.Vehicle = vehicle.String
		c.Error = errNS.String
		c.Success = success == 1
		c.Cached = cached == 1
		c.TotalPrice = floatPtr(total)
		c.OCPrice = floatPtr(oc)
		c.ACPrice = floatPtr(ac)
		c.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStats aggregates the history per company.
func (d *DB) GetStats(ctx context.Context) ([]CompanyStats, error) {
	query := `
		SELECT
			company,
			COUNT(*),
			SUM(success),
			SUM(cached),
			MIN(CASE WHEN success = 1 THEN total_price END),
			AVG(CASE WHEN success = 1 THEN total_price END),
			AVG(duration_ms),
			MAX(occurred_at)
		FROM
			calculations
		GROUP BY
			company
		ORDER BY
			company;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []CompanyStats
	for rows.Next() {
		var (
			s           CompanyStats
			minP, avgP  sql.NullFloat64
			avgDuration sql.NullFloat64
			lastRun     string
		)
		if err := rows.Scan(&s.Company, &s.Calculations, &s.Successes, &s.Cached, &minP, &avgP, &avgDuration, &lastRun); err != nil {
			return nil, err
		}
		s.MinPrice = floatPtr(minP)
		s.AvgPrice = floatPtr(avgP)
		if avgDuration.Valid {
			s.AvgDuration = time.Duration(avgDuration.Float64) * time.Millisecond
		}
		s.LastRun = parseTimestamp(lastRun)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Prune deletes calculations older than before and reports how many went.
func (d *DB) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM calculations WHERE occurred_at < ?", before.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
