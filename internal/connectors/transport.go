package connectors

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Request is one external API call: method, path, query, headers, optional
// JSON body.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    interface{}
}

// Response is the raw outcome of a transport call. Status handling stays with
// the adapter; the transport only reports what came back.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport is the minimal HTTP surface adapters talk through. Abstracting it
// keeps adapters testable without network calls and lets timeout, retry and
// rate limiting live in one place.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

const (
	requestTimeout = 30 * time.Second
	retryCount     = 2

	// requestsPerSecond is conservative enough for every supported API's
	// published rate limit.
	requestsPerSecond = 2
	burstSize         = 4
)

// HTTPTransport is the resty-backed Transport all adapters share in
// production.
type HTTPTransport struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func NewHTTPTransport(baseURL string, defaultHeaders map[string]string) *HTTPTransport {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetRetryCount(retryCount).
		SetHeader("Content-Type", "application/json")

	for k, v := range defaultHeaders {
		client.SetHeader(k, v)
	}

	return &HTTPTransport{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
	}
}

func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	r := t.client.R().SetContext(ctx)
	if req.Query != nil {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Headers != nil {
		r.SetHeaders(req.Headers)
	}
	if req.Body != nil {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %s %s: %w", req.Method, req.Path, err)
	}

	return &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}, nil
}
