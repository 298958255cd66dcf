package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jjenkins/pincode/internal/model"
)

const (
	// DefaultBaseURL is the public India Post pincode API
	DefaultBaseURL = "https://api.postalpincode.in"

	statusSuccess = "Success"
)

// FailureKind classifies why a lookup could not be completed
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureDecode    FailureKind = "decode"
)

// LookupError is the diagnostic cause behind a Failure result
type LookupError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.Kind == FailureStatus {
		return fmt.Sprintf("lookup %s: unexpected status code: %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("lookup %s: %v", e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// KindOf returns the FailureKind of err, or "" when err is not a LookupError
func KindOf(err error) FailureKind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// PincodeClient handles communication with the postal pincode API
type PincodeClient struct {
	client  *http.Client
	baseURL string
}

// NewPincodeClient creates a new client. A zero timeout leaves requests
// bounded only by the caller's context.
func NewPincodeClient(baseURL string, timeout time.Duration) *PincodeClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &PincodeClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// pincodeResponse is one element of the API's top-level array
type pincodeResponse struct {
	Message    string           `json:"Message"`
	Status     string           `json:"Status"`
	PostOffice []postOfficeJSON `json:"PostOffice"`
}

type postOfficeJSON struct {
	Name           string `json:"Name"`
	BranchType     string `json:"BranchType"`
	DeliveryStatus string `json:"DeliveryStatus"`
	District       string `json:"District"`
	Division       string `json:"Division"`
}

// Lookup fetches the post offices for code. It never returns an error:
// every failure is folded into the returned QueryResult.
func (c *PincodeClient) Lookup(ctx context.Context, code model.PostalCode) model.QueryResult {
	url := fmt.Sprintf("%s/pincode/%s", c.baseURL, code)

	body, err := c.fetch(ctx, url)
	if err != nil {
		return model.Failure(err)
	}

	var resp []*pincodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Failure(&LookupError{Kind: FailureDecode, Err: fmt.Errorf("failed to parse pincode response: %w", err)})
	}
	if len(resp) == 0 {
		return model.Failure(&LookupError{Kind: FailureDecode, Err: errors.New("empty response array")})
	}
	if resp[0] == nil {
		return model.Failure(&LookupError{Kind: FailureDecode, Err: errors.New("null response element")})
	}

	first := resp[0]
	if first.Status != statusSuccess || first.PostOffice == nil {
		return model.Empty(first.Message)
	}

	records := make([]model.PostOffice, len(first.PostOffice))
	for i, p := range first.PostOffice {
		records[i] = model.PostOffice{
			Name:           p.Name,
			BranchType:     p.BranchType,
			DeliveryStatus: p.DeliveryStatus,
			District:       p.District,
			Division:       p.Division,
		}
	}

	return model.Success(records)
}

// fetch performs a single HTTP GET without retries
func (c *PincodeClient) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LookupError{Kind: FailureTransport, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &LookupError{Kind: FailureTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LookupError{Kind: FailureTransport, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LookupError{Kind: FailureStatus, StatusCode: resp.StatusCode}
	}

	return body, nil
}

var _ Looker = (*PincodeClient)(nil)
