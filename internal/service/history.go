package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jjenkins/pincode/internal/model"
)

// Recorder persists completed lookups
type Recorder interface {
	Record(ctx context.Context, rec *model.LookupRecord) error
}

// NewLookupRecord builds the history row for a finished lookup
func NewLookupRecord(code model.PostalCode, result model.QueryResult, elapsed time.Duration) *model.LookupRecord {
	rec := &model.LookupRecord{
		Pincode:     code.String(),
		Outcome:     result.Outcome,
		RecordCount: len(result.Records),
		Message:     result.Message,
		Duration:    elapsed,
	}
	if kind := KindOf(result.Err); kind != "" {
		rec.FailureKind = sql.NullString{String: string(kind), Valid: true}
	}
	return rec
}
