package model

import (
	"database/sql"
	"time"
)

// LookupRecord is one persisted lookup in the history table
type LookupRecord struct {
	ID          int
	Pincode     string
	Outcome     Outcome
	RecordCount int
	Message     string
	FailureKind sql.NullString
	Duration    time.Duration
	CreatedAt   time.Time
}

// LookupStats summarises the lookup history
type LookupStats struct {
	Total            int
	Successes        int
	Empties          int
	Failures         int
	DistinctPincodes int
	TopPincode       string
	TopPincodeCount  int
	AverageRecords   float64
}

// SuccessRate returns the percentage of lookups that returned post offices
func (s LookupStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Total) * 100
}
