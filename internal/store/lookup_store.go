package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/pincode/internal/model"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// DailyCount is the number of lookups made on one day
type DailyCount struct {
	Date  time.Time
	Count int
}

// LookupStore handles database operations for the lookup history
type LookupStore struct {
	db *sql.DB
}

// NewLookupStore creates a new LookupStore
func NewLookupStore(db *sql.DB) *LookupStore {
	return &LookupStore{db: db}
}

// Record inserts a completed lookup and sets its ID and CreatedAt
func (s *LookupStore) Record(ctx context.Context, rec *model.LookupRecord) error {
	query := `
		INSERT INTO lookups (pincode, outcome, record_count, message, failure_kind, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		rec.Pincode,
		string(rec.Outcome),
		rec.RecordCount,
		rec.Message,
		rec.FailureKind,
		rec.Duration.Milliseconds(),
	).Scan(&rec.ID, &rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record lookup for %s: %w", rec.Pincode, err)
	}

	return nil
}

// Recent returns the most recent lookups, newest first
func (s *LookupStore) Recent(ctx context.Context, limit int) ([]model.LookupRecord, error) {
	query := `
		SELECT id, pincode, outcome, record_count, message, failure_kind, duration_ms, created_at
		FROM lookups
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	return s.queryRecords(ctx, query, clampLimit(limit))
}

// GetByPincode returns every lookup of one pincode, newest first
func (s *LookupStore) GetByPincode(ctx context.Context, pincode string) ([]model.LookupRecord, error) {
	query := `
		SELECT id, pincode, outcome, record_count, message, failure_kind, duration_ms, created_at
		FROM lookups
		WHERE pincode = $1
		ORDER BY created_at DESC, id DESC
	`
	return s.queryRecords(ctx, query, pincode)
}

func (s *LookupStore) queryRecords(ctx context.Context, query string, args ...any) ([]model.LookupRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get lookups: %w", err)
	}
	defer rows.Close()

	var records []model.LookupRecord
	for rows.Next() {
		var r model.LookupRecord
		var outcome string
		var durationMs int64
		err := rows.Scan(
			&r.ID,
			&r.Pincode,
			&outcome,
			&r.RecordCount,
			&r.Message,
			&r.FailureKind,
			&durationMs,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}
		r.Outcome = model.Outcome(outcome)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, r)
	}

	return records, rows.Err()
}

// CountLookups returns the number of stored lookups
func (s *LookupStore) CountLookups(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lookups`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return count, nil
}

// GetDailyCounts returns lookup counts per day, newest first
func (s *LookupStore) GetDailyCounts(ctx context.Context, days int) ([]DailyCount, error) {
	query := `
		SELECT date_trunc('day', created_at) AS day, COUNT(*)
		FROM lookups
		WHERE created_at >= NOW() - make_interval(days => $1)
		GROUP BY day
		ORDER BY day DESC
	`
	rows, err := s.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily counts: %w", err)
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}
		counts = append(counts, dc)
	}

	return counts, rows.Err()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}
