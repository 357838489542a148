package resolver

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"soundbex/internal/upstream"
)

const maxStrategyReadSize = 1 << 20

// getJSON fetches endpoint and returns its body as a parsed gjson document.
func getJSON(ctx context.Context, client *http.Client, service, endpoint string) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return gjson.Result{}, err
	}
	return doJSON(client, req, service)
}

// postForm submits form to endpoint and returns the body as a parsed gjson document.
func postForm(ctx context.Context, client *http.Client, service, endpoint string, form url.Values) (gjson.Result, error) {
	req, err := upstream.NewFormRequest(ctx, endpoint, form)
	if err != nil {
		return gjson.Result{}, err
	}
	return doJSON(client, req, service)
}

func doJSON(client *http.Client, req *http.Request, service string) (gjson.Result, error) {
	body, err := upstream.Fetch(client, req, service, maxStrategyReadSize)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, upstream.ShapeError(service, "invalid JSON")
	}
	return gjson.ParseBytes(body), nil
}

// requireURL returns the non-empty string at path or an upstream shape error.
func requireURL(doc gjson.Result, service, path string) (string, error) {
	value := doc.Get(path).String()
	if value == "" {
		return "", upstream.ShapeError(service, "missing %s", path)
	}
	return value, nil
}

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
