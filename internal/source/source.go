package source

import (
    "context"
    "net/http"
)

// Result is the normalized shape returned by all sources for one query.
// Keep the price as a string to avoid float rounding while formatting.
// All fields besides Source and Found are undefined when Found is false.
type Result struct {
    Source      string   `json:"source"`
    Found       bool     `json:"found"`
    Name        string   `json:"name,omitempty"`
    Price       string   `json:"price,omitempty"`
    Currency    string   `json:"currency,omitempty"`
    Platforms   []string `json:"platforms,omitempty"`
    EarlyAccess bool     `json:"early_access,omitempty"`
    URL         string   `json:"url,omitempty"`
}

// NotFound is the placeholder recorded for a source that produced nothing,
// failed, or timed out.
func NotFound(id string) Result { return Result{Source: id} }

// Source looks up one product in one external catalogue.
// A malformed or empty upstream payload is not an error: it degrades to
// Found=false with a nil error. Transport failures return an error; callers
// map it to NotFound and keep the error for logging only.
type Source interface {
    Name() string
    Search(ctx context.Context, query string) (Result, error)
}

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=humble_test -destination=humble/mock_http_client_test.go -source=source.go HTTPClient
type HTTPClient interface {
    Do(req *http.Request) (*http.Response, error)
}
