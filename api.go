package gatekeep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// GridAPI is the remote tabular store consumed by the sync core.
//
// FetchRange returns the row-major cell matrix for an A1 range, with
// cells typed as the service returned them (string, bool or number).
// UpdateRange overwrites the given range with raw values. Both fail
// with a *RemoteError on any non-2xx response.
type GridAPI interface {
	FetchRange(ctx context.Context, sheetID, rng string) ([][]any, error)
	UpdateRange(ctx context.Context, sheetID, rng string, values [][]any) error
}

// SheetsAPI is the HTTP implementation of GridAPI against the
// spreadsheet values service. It holds no grid state; every call is
// network I/O only.
type SheetsAPI struct {
	Token  string       // Bearer token for the values API.
	client *http.Client // client is shared among requests.
}

// Transport is a custom RoundTripper implementation.
type Transport struct {
	Transport http.RoundTripper // Transport is the underlying RoundTripper.
	Headers   map[string]string // Headers contains custom headers to be added to the requests.
}

// RoundTrip executes a single HTTP request and returns its response.
// It adds the custom headers before delegating to the underlying Transport.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	for key, value := range t.Headers {
		req.Header.Set(key, value)
	}

	return t.Transport.RoundTrip(req)
}

// NewSheetsAPI creates a SheetsAPI that authenticates every request
// with the given bearer token.
func NewSheetsAPI(token string) *SheetsAPI {
	transport := &Transport{
		Transport: http.DefaultTransport,
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
			"Content-Type":  "application/json",
		},
	}

	return &SheetsAPI{
		Token: token,
		client: &http.Client{
			Transport: transport,
			Timeout:   API_TIMEOUT,
		},
	}
}

// valueRange mirrors the wire shape of the values API.
type valueRange struct {
	Range  string  `json:"range,omitempty"`
	Values [][]any `json:"values"`
}

// apiError is the error envelope returned by the values API.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// FetchRange retrieves the cell matrix for the specified A1 range.
func (api *SheetsAPI) FetchRange(ctx context.Context, sheetID, rng string) ([][]any, error) {
	endpoint := fmt.Sprintf(API_VALUES_GET, url.PathEscape(sheetID), url.PathEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	res, err := api.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch range %q: %w", rng, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read fetch response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, remoteErrorFrom(res.StatusCode, body)
	}

	var vr valueRange
	if err = json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("decode fetch response: %w", err)
	}

	return vr.Values, nil
}

// UpdateRange writes the given values over the specified A1 range.
// Values are sent raw, without any cell parsing on the remote side.
func (api *SheetsAPI) UpdateRange(ctx context.Context, sheetID, rng string, values [][]any) error {
	endpoint := fmt.Sprintf(API_VALUES_UPDATE, url.PathEscape(sheetID), url.PathEscape(rng))

	payload, err := json.Marshal(valueRange{Range: rng, Values: values})
	if err != nil {
		return fmt.Errorf("encode update payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}

	res, err := api.client.Do(req)
	if err != nil {
		return fmt.Errorf("update range %q: %w", rng, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read update response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return remoteErrorFrom(res.StatusCode, body)
	}

	return nil
}

// remoteErrorFrom builds a RemoteError from a non-2xx response,
// preferring the service's own message when the body parses.
func remoteErrorFrom(code int, body []byte) *RemoteError {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		return &RemoteError{Code: code, Message: ae.Error.Message}
	}

	return &RemoteError{Code: code, Message: http.StatusText(code)}
}
