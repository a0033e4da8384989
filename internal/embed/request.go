// Package embed defines the per-call unit of work shared by providers and the engine:
// the input URL, its options, and the eventual result, error and timing.
package embed

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"urlembed/internal/httputil"
)

// StubMarkup is the html present on a request before it has been resolved.
const StubMarkup = "<!-- default embed markup -->"

// Options holds per-request parameters forwarded to the provider.
type Options struct {
	MaxWidth  int               `json:"maxWidth,omitempty"`
	MaxHeight int               `json:"maxHeight,omitempty"`
	Params    map[string]string `json:"params,omitempty"` // Extra query parameters for the provider API
}

// Request is a single URL resolution: input URL and options plus the result,
// error and timing populated while it is resolved.
type Request struct {
	ID      string
	Options Options

	// Result always carries a string "html" entry, stub markup until resolved.
	Result Result

	// Err is set exactly when resolution failed.
	Err error

	// Provider is the name of the provider that handled the request.
	Provider string

	// ResolverURL is the upstream API URL that was requested, if any.
	ResolverURL string

	StartedAt  time.Time
	FinishedAt time.Time

	url string
}

// NewRequest creates a request for rawURL.
// It fails with a *ValidationError if the URL is empty or not an absolute http(s) URL.
func NewRequest(rawURL string, opts Options) (*Request, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, &ValidationError{Reason: "url is required"}
	}
	if err := httputil.ValidateURL(rawURL); err != nil {
		return nil, &ValidationError{URL: rawURL, Reason: err.Error()}
	}

	return &Request{
		ID:      uuid.NewString(),
		Options: opts,
		Result:  Result{"html": StubMarkup},
		url:     rawURL,
	}, nil
}

// URL returns the URL being resolved.
func (r *Request) URL() string {
	return r.url
}

// Fail records err and replaces the result html with markup.
func (r *Request) Fail(err error, markup string) {
	r.Err = err
	if r.Result == nil {
		r.Result = Result{}
	}
	if markup == "" {
		markup = LinkMarkup(r.url)
	}
	r.Result.SetHTML(markup)
}

// MarkStarted timestamps the beginning of resolution.
func (r *Request) MarkStarted() {
	r.StartedAt = time.Now()
	r.FinishedAt = time.Time{}
}

// MarkFinished timestamps the end of resolution.
// Calling it before MarkStarted is invalid and returns ErrNotStarted without
// touching the request.
func (r *Request) MarkFinished() error {
	if r.StartedAt.IsZero() {
		return ErrNotStarted
	}
	r.FinishedAt = time.Now()
	return nil
}

// Elapsed is the resolution time. Zero until both MarkStarted and MarkFinished ran.
func (r *Request) Elapsed() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ElapsedMs is Elapsed in whole milliseconds.
func (r *Request) ElapsedMs() int64 {
	return r.Elapsed().Milliseconds()
}

// HTML is a shortcut for r.Result.HTML().
func (r *Request) HTML() string {
	return r.Result.HTML()
}

// MarshalJSON renders the request in the shape handed to consumers.
func (r *Request) MarshalJSON() ([]byte, error) {
	out := struct {
		ID          string     `json:"id"`
		URL         string     `json:"url"`
		Options     Options    `json:"options"`
		Result      Result     `json:"result"`
		Error       string     `json:"error,omitempty"`
		Provider    string     `json:"provider,omitempty"`
		StartedAt   *time.Time `json:"startedAt,omitempty"`
		FinishedAt  *time.Time `json:"finishedAt,omitempty"`
		ElapsedMs   int64      `json:"elapsedMs"`
		ResolverURL string     `json:"resolverURL,omitempty"`
	}{
		ID:          r.ID,
		URL:         r.url,
		Options:     r.Options,
		Result:      r.Result,
		Provider:    r.Provider,
		ElapsedMs:   r.ElapsedMs(),
		ResolverURL: r.ResolverURL,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	if !r.StartedAt.IsZero() {
		out.StartedAt = &r.StartedAt
	}
	if !r.FinishedAt.IsZero() {
		out.FinishedAt = &r.FinishedAt
	}
	return json.Marshal(out)
}
