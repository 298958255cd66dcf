package model

// Outcome tags a QueryResult
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeEmpty   Outcome = "empty"
	OutcomeFailure Outcome = "failure"
)

const (
	// NoDataMessage is used when the service reports no data without a message
	NoDataMessage = "No data found"
	// FetchErrorMessage is the user-visible reason for every transport or parse failure
	FetchErrorMessage = "Error fetching data"
)

// QueryResult is the outcome of a single lookup.
//
// Records is set only for OutcomeSuccess. Message holds the service message
// for OutcomeEmpty and the fixed failure reason for OutcomeFailure. Err keeps
// the underlying cause of a failure for logging; it is never shown to users.
type QueryResult struct {
	Outcome Outcome      `json:"outcome"`
	Records []PostOffice `json:"records,omitempty"`
	Message string       `json:"message,omitempty"`
	Err     error        `json:"-"`
}

// Success builds a successful result
func Success(records []PostOffice) QueryResult {
	return QueryResult{Outcome: OutcomeSuccess, Records: records}
}

// Empty builds a result for a lookup the service answered without postal data
func Empty(message string) QueryResult {
	if message == "" {
		message = NoDataMessage
	}
	return QueryResult{Outcome: OutcomeEmpty, Message: message}
}

// Failure builds a result for a lookup that could not be completed
func Failure(err error) QueryResult {
	return QueryResult{Outcome: OutcomeFailure, Message: FetchErrorMessage, Err: err}
}

// IsSuccess reports whether the lookup returned post offices
func (r QueryResult) IsSuccess() bool {
	return r.Outcome == OutcomeSuccess
}
