package embed

import (
	"errors"
	"fmt"
)

// ErrNotStarted is returned by MarkFinished when MarkStarted was never called.
var ErrNotStarted = errors.New("embed: MarkFinished called before MarkStarted")

// ValidationError reports a request that cannot be constructed.
type ValidationError struct {
	URL    string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.URL == "" {
		return "invalid embed request: " + e.Reason
	}
	return fmt.Sprintf("invalid embed request %q: %s", e.URL, e.Reason)
}

// UnknownProviderError means no registered provider matched the URL.
type UnknownProviderError struct {
	URL string
}

func (e *UnknownProviderError) Error() string {
	return "unknown embed provider for url: " + e.URL
}

// TransportError wraps a failed upstream HTTP call (DNS, timeout, reset, cancellation).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("requesting %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnexpectedStatusError means the provider API answered with a non-200 status.
type UnexpectedStatusError struct {
	URL        string
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("HTTP status %d for embed provider URL: %s", e.StatusCode, e.URL)
}

// ParseError means the response body could not be decoded in the declared format.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProviderLogicError wraps a failure raised by provider or engine hooks
// (filters, renderers, custom resolvers), including recovered panics.
type ProviderLogicError struct {
	Provider string
	Err      error
}

func (e *ProviderLogicError) Error() string {
	return fmt.Sprintf("provider=%s: %v", e.Provider, e.Err)
}

func (e *ProviderLogicError) Unwrap() error { return e.Err }

// Kind returns a short classification of err for logs and history rows.
func Kind(err error) string {
	var (
		validation *ValidationError
		unknown    *UnknownProviderError
		transport  *TransportError
		status     *UnexpectedStatusError
		parse      *ParseError
		logic      *ProviderLogicError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &unknown):
		return "unknown_provider"
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &status):
		return "unexpected_status"
	case errors.As(err, &parse):
		return "parse"
	case errors.As(err, &logic):
		return "provider_logic"
	default:
		return "error"
	}
}
