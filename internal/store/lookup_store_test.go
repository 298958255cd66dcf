package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jjenkins/pincode/internal/model"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultRecentLimit},
		{-3, defaultRecentLimit},
		{10, 10},
		{maxRecentLimit, maxRecentLimit},
		{maxRecentLimit + 1, maxRecentLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// openTestDB connects to PINCODE_TEST_DATABASE_URL or skips the test
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PINCODE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PINCODE_TEST_DATABASE_URL not set")
	}

	db, err := NewDB(dsn)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE lookups RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func TestLookupStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	s := NewLookupStore(db)
	ctx := context.Background()

	first := &model.LookupRecord{Pincode: "500013", Outcome: model.OutcomeSuccess, RecordCount: 2, Duration: 120 * time.Millisecond}
	second := &model.LookupRecord{
		Pincode:     "999999",
		Outcome:     model.OutcomeFailure,
		Message:     model.FetchErrorMessage,
		FailureKind: sql.NullString{String: "status", Valid: true},
	}

	for _, rec := range []*model.LookupRecord{first, second} {
		if err := s.Record(ctx, rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if rec.ID == 0 || rec.CreatedAt.IsZero() {
			t.Errorf("Record() did not set ID/CreatedAt: %+v", rec)
		}
	}

	count, err := s.CountLookups(ctx)
	if err != nil || count != 2 {
		t.Fatalf("CountLookups() = %d, %v", count, err)
	}

	recent, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Pincode != "999999" {
		t.Fatalf("Recent() = %+v", recent)
	}
	if recent[0].FailureKind.String != "status" {
		t.Errorf("failure kind = %+v", recent[0].FailureKind)
	}
	if recent[1].Duration != 120*time.Millisecond {
		t.Errorf("duration = %v", recent[1].Duration)
	}

	byCode, err := s.GetByPincode(ctx, "500013")
	if err != nil || len(byCode) != 1 || byCode[0].RecordCount != 2 {
		t.Errorf("GetByPincode() = %+v, %v", byCode, err)
	}

	daily, err := s.GetDailyCounts(ctx, 7)
	if err != nil || len(daily) != 1 || daily[0].Count != 2 {
		t.Errorf("GetDailyCounts() = %+v, %v", daily, err)
	}
}
