package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/pincode/internal/model"
	"github.com/jjenkins/pincode/internal/store"
	"github.com/jjenkins/pincode/internal/view"
)

type stubLooker struct {
	results map[model.PostalCode]model.QueryResult
}

func (s stubLooker) Lookup(ctx context.Context, code model.PostalCode) model.QueryResult {
	if r, ok := s.results[code]; ok {
		return r
	}
	return model.Empty("No records found")
}

func newStubLooker() stubLooker {
	return stubLooker{results: map[model.PostalCode]model.QueryResult{
		"500013": model.Success([]model.PostOffice{
			{Name: "Ramanthapur S.O", BranchType: "Sub Post Office", DeliveryStatus: "Non-Delivery", District: "Hyderabad", Division: "Hyderabad City"},
			{Name: "Ramnagar S.O", BranchType: "Sub Post Office", DeliveryStatus: "Delivery", District: "Hyderabad", Division: "Hyderabad City"},
		}),
		"123456": model.Failure(errors.New("connection refused")),
	}}
}

type testClient struct {
	t      *testing.T
	app    *fiber.App
	cookie *http.Cookie
}

func newTestApp(t *testing.T, cfg AppConfig) (*testClient, *FormRegistry) {
	t.Helper()
	looker := newStubLooker()
	forms := NewFormRegistry(func() *view.Controller { return view.NewController(looker) }, time.Hour)
	t.Cleanup(forms.Close)

	cfg.Forms = forms
	if cfg.Looker == nil {
		cfg.Looker = looker
	}
	return &testClient{t: t, app: NewApp(cfg)}, forms
}

func (tc *testClient) do(req *http.Request, htmx bool) (int, string) {
	tc.t.Helper()
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	if tc.cookie != nil {
		req.AddCookie(tc.cookie)
	}

	resp, err := tc.app.Test(req, -1)
	if err != nil {
		tc.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			tc.cookie = c
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tc.t.Fatalf("reading body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func (tc *testClient) get(path string, htmx bool) (int, string) {
	return tc.do(httptest.NewRequest(http.MethodGet, path, nil), htmx)
}

func (tc *testClient) post(path string, form url.Values, htmx bool) (int, string) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return tc.do(req, htmx)
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestLookupWorkflow(t *testing.T) {
	tc, forms := newTestApp(t, AppConfig{})

	status, body := tc.get("/", false)
	if status != fiber.StatusOK {
		t.Fatalf("GET / status = %d", status)
	}
	assertContains(t, body, "Enter Pincode", `maxlength="6"`)
	if tc.cookie == nil {
		t.Fatal("no session cookie issued")
	}

	_, body = tc.post("/lookup", url.Values{"pincode": {"56A001"}}, true)
	assertContains(t, body, "Pincode must be 6 digits!", "Enter Pincode")

	_, body = tc.post("/lookup", url.Values{"pincode": {"500013"}}, true)
	assertContains(t, body, "Pincode: 500013", "Loading...")

	forms.Wait()

	_, body = tc.get("/state", true)
	assertContains(t, body, "Message: Number of pincode(s) found: 2", "Ramanthapur S.O", "Ramnagar S.O")

	_, body = tc.get("/filter?q=RAMN", true)
	assertContains(t, body, "Number of pincode(s) found: 1", "Ramnagar S.O")
	if strings.Contains(body, "Ramanthapur") {
		t.Error("filtered results still contain Ramanthapur")
	}

	_, body = tc.get("/filter?q=xyz", true)
	assertContains(t, body, "Couldn’t find the postal data you’re looking for…")

	status, _ = tc.post("/lookup", url.Values{"pincode": {"110001"}}, true)
	if status != fiber.StatusConflict {
		t.Errorf("submit while results shown status = %d, want 409", status)
	}

	_, body = tc.post("/reset", nil, true)
	assertContains(t, body, "Enter Pincode", `value="500013"`)
}

func TestLookupFailureShownInline(t *testing.T) {
	tc, forms := newTestApp(t, AppConfig{})

	tc.post("/lookup", url.Values{"pincode": {"123456"}}, true)
	forms.Wait()

	_, body := tc.get("/", false)
	assertContains(t, body, "Pincode: 123456", "Error fetching data")
	if strings.Contains(body, "Number of pincode(s) found") {
		t.Error("count line shown for a failed lookup")
	}
}

func TestPlainFormPostRedirects(t *testing.T) {
	tc, forms := newTestApp(t, AppConfig{})

	status, _ := tc.post("/lookup", url.Values{"pincode": {"999999"}}, false)
	if status != fiber.StatusSeeOther {
		t.Errorf("status = %d, want 303", status)
	}
	forms.Wait()

	_, body := tc.get("/", false)
	assertContains(t, body, "No records found")
}

func TestSessionsAreIndependent(t *testing.T) {
	tc, forms := newTestApp(t, AppConfig{})
	tc.post("/lookup", url.Values{"pincode": {"500013"}}, true)
	forms.Wait()

	other := &testClient{t: t, app: tc.app}
	_, body := other.get("/", false)
	assertContains(t, body, "Enter Pincode")

	if forms.Len() != 2 {
		t.Errorf("forms = %d, want 2", forms.Len())
	}
}

func TestSessionStateSurvivesOtherRequests(t *testing.T) {
	tc, forms := newTestApp(t, AppConfig{})
	tc.post("/lookup", url.Values{"pincode": {"500013"}}, true)
	forms.Wait()
	tc.get("/filter?q=ramn", true)

	other := &testClient{t: t, app: tc.app}
	for i := 0; i < 20; i++ {
		other.post("/lookup", url.Values{"pincode": {"ZZZZZZ"}}, true)
		other.get("/filter?q=QQQQ", true)
		other.post("/reset", nil, true)
	}

	_, body := tc.get("/", false)
	assertContains(t, body, "Pincode: 500013", `value="ramn"`, "Number of pincode(s) found: 1", "Ramnagar S.O")
	for _, leaked := range []string{"ZZZZZZ", "QQQQ"} {
		if strings.Contains(body, leaked) {
			t.Errorf("first session shows %q from another session", leaked)
		}
	}
}

func TestPlainFilterRedirects(t *testing.T) {
	tc, forms := newTestApp(t, AppConfig{})
	tc.post("/lookup", url.Values{"pincode": {"500013"}}, true)
	forms.Wait()

	status, _ := tc.get("/filter?q=ramn", false)
	if status != fiber.StatusSeeOther {
		t.Errorf("status = %d, want 303", status)
	}

	_, body := tc.get("/", false)
	assertContains(t, body, "<!DOCTYPE html>", `value="ramn"`, "Number of pincode(s) found: 1")
}

func TestFormRegistrySweep(t *testing.T) {
	tc, forms := newTestApp(t, AppConfig{})
	tc.get("/", false)

	time.Sleep(10 * time.Millisecond)
	if n := forms.Sweep(5 * time.Millisecond); n != 1 {
		t.Errorf("Sweep() removed %d forms, want 1", n)
	}
	if forms.Len() != 0 {
		t.Errorf("forms = %d after sweep", forms.Len())
	}
}

func TestAPILookup(t *testing.T) {
	tc, _ := newTestApp(t, AppConfig{})

	status, body := tc.get("/api/pincode/56A001", false)
	if status != fiber.StatusBadRequest {
		t.Errorf("invalid code status = %d", status)
	}
	assertContains(t, body, "Pincode must be 6 digits!")

	status, body = tc.get("/api/pincode/500013?q=ramn", false)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var resp lookupResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Outcome != model.OutcomeSuccess || resp.Count != 1 || resp.Records[0].Name != "Ramnagar S.O" {
		t.Errorf("response = %+v", resp)
	}

	status, body = tc.get("/api/pincode/123456", false)
	if status != fiber.StatusBadGateway {
		t.Errorf("failure status = %d, want 502", status)
	}
	assertContains(t, body, `"message":"Error fetching data"`, `"records":[]`)
}

type stubHistory struct {
	records []model.LookupRecord
	err     error
}

func (s stubHistory) Recent(ctx context.Context, limit int) ([]model.LookupRecord, error) {
	return s.records, s.err
}

func (s stubHistory) GetByPincode(ctx context.Context, pincode string) ([]model.LookupRecord, error) {
	var out []model.LookupRecord
	for _, r := range s.records {
		if r.Pincode == pincode {
			out = append(out, r)
		}
	}
	return out, s.err
}

func (s stubHistory) GetDailyCounts(ctx context.Context, days int) ([]store.DailyCount, error) {
	return nil, nil
}

type stubStats struct{}

func (stubStats) Calculate(ctx context.Context) (*model.LookupStats, error) {
	return &model.LookupStats{Total: 2, Successes: 1, Empties: 1, DistinctPincodes: 2}, nil
}

func TestHistory(t *testing.T) {
	history := stubHistory{records: []model.LookupRecord{{Pincode: "500013", Outcome: model.OutcomeSuccess, RecordCount: 2, CreatedAt: time.Now()}}}
	tc, _ := newTestApp(t, AppConfig{History: history, Metrics: stubStats{}})

	status, body := tc.get("/history", false)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	assertContains(t, body, "Lookup history", "Lookups: 2", "500013")

	_, body = tc.get("/", false)
	assertContains(t, body, `href="/history"`)
}

func TestHistoryForPincode(t *testing.T) {
	history := stubHistory{records: []model.LookupRecord{
		{Pincode: "500013", Outcome: model.OutcomeSuccess, RecordCount: 2, CreatedAt: time.Now()},
		{Pincode: "110001", Outcome: model.OutcomeEmpty, Message: "No records found", CreatedAt: time.Now()},
	}}
	tc, _ := newTestApp(t, AppConfig{History: history, Metrics: stubStats{}})

	status, body := tc.get("/history?pincode=110001", false)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	assertContains(t, body, "Lookups of 110001", "No records found")
	if strings.Contains(body, `href="/history?pincode=500013"`) {
		t.Error("lookups of other pincodes listed")
	}
}

func TestHistoryError(t *testing.T) {
	tc, _ := newTestApp(t, AppConfig{History: stubHistory{err: errors.New("db down")}, Metrics: stubStats{}})

	status, _ := tc.get("/history", false)
	if status != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
}

func TestHistoryDisabledWithoutDatabase(t *testing.T) {
	tc, _ := newTestApp(t, AppConfig{})

	status, _ := tc.get("/history", false)
	if status != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}
