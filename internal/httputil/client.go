// Package httputil provides a security-hardened HTTP client, the fetcher used by
// providers to reach upstream APIs, and URL validation helpers.
package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 10 * 1024 * 1024

// NewClient creates a hardened HTTP client with secure defaults.
// Per-request deadlines come from FetchRequest.Timeout, so the client itself
// only carries a generous upper bound.
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        50,
			IdleConnTimeout:     30 * time.Second,
			DisableCompression:  false,
			MaxIdleConnsPerHost: 5,
		},
	}
}

// FetchRequest describes a single upstream GET.
type FetchRequest struct {
	URL     string
	Header  http.Header
	Timeout time.Duration
}

// FetchResponse is what a Fetcher hands back: status, the final request URI
// (after redirects), and the body.
type FetchResponse struct {
	StatusCode int
	RequestURI string
	Body       []byte
}

// Fetcher issues one HTTP GET. Providers depend only on this shape, so tests
// substitute it freely.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req FetchRequest) (*FetchResponse, error)

// Fetch calls f(ctx, req).
func (f FetcherFunc) Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error) {
	return f(ctx, req)
}

// ClientFetcher is the default Fetcher, backed by an *http.Client.
type ClientFetcher struct {
	client *http.Client
}

// NewFetcher wraps client. A nil client gets NewClient().
func NewFetcher(client *http.Client) *ClientFetcher {
	if client == nil {
		client = NewClient()
	}
	return &ClientFetcher{client: client}
}

// Fetch performs the GET, honoring req.Timeout as a deadline on ctx.
// Any status code is returned as a response; only transport failures are errors.
func (f *ClientFetcher) Fetch(ctx context.Context, req FetchRequest) (*FetchResponse, error) {
	if err := ValidateURL(req.URL); err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	requestURI := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		requestURI = resp.Request.URL.String()
	}

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		RequestURI: requestURI,
		Body:       body,
	}, nil
}
