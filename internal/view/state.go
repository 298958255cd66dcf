// Package view holds the lookup form's state machine.
//
// Every transition is a pure function from a State (plus an event payload)
// to a new State, so the whole workflow can be tested without a rendering
// surface. Controller wraps the machine with the asynchronous lookup.
package view

import (
	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/service"
)

// Phase is the visible stage of the form
type Phase int

const (
	AwaitingInput Phase = iota
	Loading
	ResultsShown
)

func (p Phase) String() string {
	switch p {
	case AwaitingInput:
		return "awaiting_input"
	case Loading:
		return "loading"
	case ResultsShown:
		return "results_shown"
	default:
		return "unknown"
	}
}

// NoMatchesMessage is shown when the filter leaves no post offices
const NoMatchesMessage = "Couldn’t find the postal data you’re looking for…"

// State is a snapshot of the form. The zero value is a fresh form.
type State struct {
	Phase Phase
	// Input is the raw text last submitted or being edited
	Input string
	// Code is the validated pincode of the current or last lookup
	Code model.PostalCode
	// Error is the inline validation message shown while awaiting input
	Error      string
	Result     model.QueryResult
	FilterText string
	Filtered   []model.PostOffice
	// Generation identifies the lookup a completion belongs to
	Generation uint64
}

// Submit validates input and moves to Loading. It returns false when the
// state does not accept a submission; validation failures are accepted and
// reported through Error.
func Submit(s State, input string) (State, bool) {
	if s.Phase != AwaitingInput {
		return s, false
	}

	s.Input = input
	code, err := service.Validate(input)
	if err != nil {
		s.Error = err.Error()
		return s, true
	}

	s.Phase = Loading
	s.Code = code
	s.Error = ""
	s.Result = model.QueryResult{}
	s.FilterText = ""
	s.Filtered = nil
	s.Generation++
	return s, true
}

// Complete stores the result of the lookup identified by generation.
// Completions for any other generation, or outside Loading, are dropped.
func Complete(s State, generation uint64, result model.QueryResult) State {
	if s.Phase != Loading || generation != s.Generation {
		return s
	}

	s.Phase = ResultsShown
	s.Result = result
	s.FilterText = ""
	if result.IsSuccess() {
		s.Filtered = service.Filter(result.Records, "")
	} else {
		s.Filtered = []model.PostOffice{}
	}
	return s
}

// SetFilter recomputes the filtered view from the full result set
func SetFilter(s State, text string) State {
	if s.Phase != ResultsShown || !s.Result.IsSuccess() {
		return s
	}
	s.FilterText = text
	s.Filtered = service.Filter(s.Result.Records, text)
	return s
}

// Cancel abandons an in-flight lookup and returns to the input stage
func Cancel(s State) State {
	if s.Phase != Loading {
		return s
	}
	s.Phase = AwaitingInput
	s.Generation++
	return s
}

// Reset returns from the results to the input stage, keeping the last input
func Reset(s State) State {
	if s.Phase != ResultsShown {
		return s
	}
	return State{
		Phase:      AwaitingInput,
		Input:      s.Input,
		Generation: s.Generation,
	}
}

// Count is the number of post offices currently visible
func (s State) Count() int {
	return len(s.Filtered)
}

// Message returns the service message or failure reason of a result that
// carries no post offices
func (s State) Message() string {
	if s.Phase != ResultsShown || s.Result.IsSuccess() {
		return ""
	}
	return s.Result.Message
}

// NoMatches reports whether a successful result is filtered down to nothing
func (s State) NoMatches() bool {
	return s.Phase == ResultsShown && s.Result.IsSuccess() && len(s.Filtered) == 0
}
