package templates

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/store"
	"github.com/jjenkins/pincode/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func resultsState(t *testing.T) view.State {
	t.Helper()
	s, _ := view.Submit(view.State{}, "500013")
	return view.Complete(s, s.Generation, model.Success([]model.PostOffice{
		{Name: "Ramanthapur S.O", BranchType: "Sub Post Office", DeliveryStatus: "Non-Delivery", District: "Hyderabad", Division: "Hyderabad City"},
		{Name: "Ramnagar S.O", BranchType: "Sub Post Office", DeliveryStatus: "Delivery", District: "Hyderabad", Division: "Hyderabad City"},
	}))
}

func TestLookupPageAwaitingInput(t *testing.T) {
	s, _ := view.Submit(view.State{}, "12<b>")
	html := render(t, Lookup(s, false))

	for _, want := range []string{"<title>Pincode Lookup</title>", "Enter Pincode", `maxlength="6"`, "Pincode must be 6 digits!", `value="12&lt;b&gt;"`} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(html, `href="/history"`) {
		t.Error("history link shown while history is disabled")
	}
}

func TestLookupRegionLoading(t *testing.T) {
	s, _ := view.Submit(view.State{}, "560001")
	html := render(t, LookupRegion(s))

	for _, want := range []string{"Pincode: 560001", "Loading...", `hx-get="/state"`, "Cancel"} {
		if !strings.Contains(html, want) {
			t.Errorf("region missing %q", want)
		}
	}
	if strings.Contains(html, `name="pincode"`) {
		t.Error("code entry shown while loading")
	}
}

func TestLookupPageLoadingRefreshesWithoutScripts(t *testing.T) {
	s, _ := view.Submit(view.State{}, "560001")
	html := render(t, Lookup(s, false))

	if !strings.Contains(html, `<noscript><meta http-equiv="refresh" content="1"></noscript>`) {
		t.Error("loading page has no refresh fallback")
	}

	done := view.Complete(s, s.Generation, model.Empty("No records found"))
	if strings.Contains(render(t, Lookup(done, false)), `http-equiv="refresh"`) {
		t.Error("results page keeps refreshing")
	}
}

func TestLookupRegionResults(t *testing.T) {
	html := render(t, LookupRegion(resultsState(t)))

	for _, want := range []string{
		"Message: Number of pincode(s) found: 2",
		"<strong>Name:</strong> Ramanthapur S.O",
		"<strong>Branch Type:</strong> Sub Post Office",
		"<strong>Delivery Status:</strong> Delivery",
		"<strong>District:</strong> Hyderabad",
		"<strong>Division:</strong> Hyderabad City",
		`placeholder="Filter"`,
		`<form method="get" action="/filter">`,
		"New search",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("region missing %q", want)
		}
	}
	if strings.Contains(html, `hx-trigger="every`) {
		t.Error("results region keeps polling")
	}
}

func TestResultsNoMatches(t *testing.T) {
	s := view.SetFilter(resultsState(t), "xyz")
	html := render(t, Results(s))

	if !strings.Contains(html, "Number of pincode(s) found: 0") {
		t.Error("count line missing")
	}
	if !strings.Contains(html, "Couldn’t find the postal data you’re looking for…") {
		t.Error("no-matches message missing")
	}
	if strings.Contains(html, `class="card"`) {
		t.Error("cards rendered for an empty filter result")
	}
}

func TestLookupRegionEmptyResult(t *testing.T) {
	s, _ := view.Submit(view.State{}, "999999")
	s = view.Complete(s, s.Generation, model.Empty("No records found"))
	html := render(t, LookupRegion(s))

	if !strings.Contains(html, `<p class="error">No records found</p>`) {
		t.Errorf("message not rendered:\n%s", html)
	}
	if strings.Contains(html, "Number of pincode(s) found") {
		t.Error("count line shown for an empty result")
	}
}

func TestHistory(t *testing.T) {
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	html := render(t, History(HistoryPage{
		Stats: &model.LookupStats{Total: 4, Successes: 3, Failures: 1, DistinctPincodes: 2, TopPincode: "560001", TopPincodeCount: 3},
		Daily: []store.DailyCount{{Date: day, Count: 4}},
		Days:  7,
		Records: []model.LookupRecord{{
			Pincode:     "123456",
			Outcome:     model.OutcomeFailure,
			Message:     model.FetchErrorMessage,
			FailureKind: sql.NullString{String: "status", Valid: true},
			CreatedAt:   day,
		}},
	}))

	for _, want := range []string{"Lookups: 4", "Success rate: 75.0%", "Most searched: 560001 (3 lookups)", "2026-10-17", "failure (status)", `href="/history"`} {
		if !strings.Contains(html, want) {
			t.Errorf("history missing %q", want)
		}
	}
}

func TestHistoryForOnePincode(t *testing.T) {
	html := render(t, History(HistoryPage{
		Pincode: "500013",
		Records: []model.LookupRecord{{Pincode: "500013", Outcome: model.OutcomeSuccess, RecordCount: 2, Duration: 120 * time.Millisecond}},
	}))

	for _, want := range []string{"Lookups of 500013", `href="/history?pincode=500013"`, "120ms"} {
		if !strings.Contains(html, want) {
			t.Errorf("history missing %q", want)
		}
	}
	if strings.Contains(html, "Recent lookups") {
		t.Error("per-pincode history titled as recent lookups")
	}
}
