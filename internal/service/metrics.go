package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jjenkins/pincode/internal/model"
)

// MetricsService calculates aggregate statistics over the lookup history
type MetricsService struct {
	db *sql.DB
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(db *sql.DB) *MetricsService {
	return &MetricsService{db: db}
}

// Calculate computes the current lookup statistics
func (m *MetricsService) Calculate(ctx context.Context) (*model.LookupStats, error) {
	stats := &model.LookupStats{}

	countQuery := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = 'success'),
			COUNT(*) FILTER (WHERE outcome = 'empty'),
			COUNT(*) FILTER (WHERE outcome = 'failure'),
			COUNT(DISTINCT pincode),
			COALESCE(AVG(record_count) FILTER (WHERE outcome = 'success'), 0)
		FROM lookups
	`
	err := m.db.QueryRowContext(ctx, countQuery).Scan(
		&stats.Total,
		&stats.Successes,
		&stats.Empties,
		&stats.Failures,
		&stats.DistinctPincodes,
		&stats.AverageRecords,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate lookup counts: %w", err)
	}

	// Most looked-up pincode
	topQuery := `
		SELECT pincode, COUNT(*) AS n
		FROM lookups
		GROUP BY pincode
		ORDER BY n DESC, pincode
		LIMIT 1
	`
	err = m.db.QueryRowContext(ctx, topQuery).Scan(
		&stats.TopPincode,
		&stats.TopPincodeCount,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to find top pincode: %w", err)
	}

	return stats, nil
}
