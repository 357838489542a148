// Package upstream holds the HTTP plumbing shared by every third-party integration:
// a client with bounded redirects, browser-like headers and uniform error classification.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"soundbex/internal/core"
)

const (
	// UserAgent is the user agent string used for all outbound requests.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// AcceptJSON is the accept header used for JSON APIs.
	AcceptJSON = "application/json, text/plain, */*"
	// DefaultMaxReadSize caps how much of a response body is read.
	DefaultMaxReadSize = 2 << 20
	// maxHTTPRedirects is the maximum number of HTTP redirects to follow.
	maxHTTPRedirects = 3
)

var (
	// ErrTooManyRedirects is returned when too many redirects are encountered.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// StatusError reports a non-2xx answer. It unwraps to core.ErrUpstreamUnavailable.
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return core.ErrUpstreamUnavailable
}

// NewHTTPClient creates an HTTP client with the given timeout and redirect validation.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxHTTPRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// NewFormRequest builds a POST request with an url-encoded body.
func NewFormRequest(ctx context.Context, endpoint string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	return req, nil
}

// Fetch executes req and returns the body of a 2xx response, read up to maxReadSize bytes.
//
// Transport failures and non-2xx statuses wrap core.ErrUpstreamUnavailable.
func Fetch(client *http.Client, req *http.Request, service string, maxReadSize int64) ([]byte, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", AcceptJSON)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrUpstreamUnavailable, service, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxReadSize))
		return nil, &StatusError{Service: service, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to read response body: %v", core.ErrUpstreamUnavailable, service, err)
	}

	return body, nil
}

// ShapeError wraps core.ErrUpstreamShape with the service name and a description.
func ShapeError(service, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", core.ErrUpstreamShape, service, fmt.Sprintf(format, args...))
}
