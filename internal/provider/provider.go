// Package provider defines the interface for embed providers and the composed
// Generic implementation covering static templates and oEmbed APIs.
package provider

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"urlembed/internal/embed"
	"urlembed/internal/httputil"
)

// Provider claims ownership of certain URL shapes and turns a matching URL into markup.
type Provider interface {
	// Name is the registry key. Registering another provider with the same name replaces this one.
	Name() string

	// IsMatch reports whether any of the provider's URL patterns matches url.
	IsMatch(url string) bool

	// Configure captures engine-wide options. Called once, before first use.
	Configure(opts Options)

	// Resolve populates req.Result, or req.Err plus error markup. It never panics.
	Resolve(ctx context.Context, req *embed.Request)
}

// Options are the engine-wide settings handed to every provider's Configure.
type Options struct {
	Timeout   time.Duration
	Referrer  string
	UserAgent string
	Extra     map[string]string // Provider-specific keys
}

// Version is reported in the default User-Agent. Set at build time via ldflags.
var Version = "dev"

// UserAgent returns the identifying User-Agent for the given version.
func UserAgent(version string) string {
	return "URLEmbed Module HTTP Agent " + version
}

// DefaultTimeout is the per-request upstream timeout when none is configured.
const DefaultTimeout = 2000 * time.Millisecond

// Strategy selects how a Generic provider produces its result.
type Strategy int

const (
	StaticTemplate Strategy = iota
	OEmbedJSON
	OEmbedXML
)

func (s Strategy) String() string {
	switch s {
	case StaticTemplate:
		return "static"
	case OEmbedJSON:
		return "oembed-json"
	case OEmbedXML:
		return "oembed-xml"
	default:
		return "unknown"
	}
}

// Format is the oEmbed response format requested from the API ("json" or "xml").
func (s Strategy) Format() string {
	if s == OEmbedXML {
		return FormatXML
	}
	return FormatJSON
}

// StrategyForFormat maps an oEmbed format name to its strategy.
func StrategyForFormat(format string) (Strategy, error) {
	switch format {
	case FormatJSON, "":
		return OEmbedJSON, nil
	case FormatXML:
		return OEmbedXML, nil
	default:
		return 0, fmt.Errorf("unsupported format %q (valid: json, xml)", format)
	}
}

// MarkupFunc produces the html shown for a failed request.
type MarkupFunc func(req *embed.Request, err error) string

// RenderFunc produces markup for a static-template provider. match holds the
// submatches of the first pattern that matched the URL.
type RenderFunc func(rawURL string, match []string) (string, error)

// Hooks are the per-provider override points. Nil hooks use the defaults.
type Hooks struct {
	// FilterData post-processes a successful result before the engine's own filter.
	FilterData func(embed.Result) error

	// ErrorMarkup replaces the default anchor fallback.
	ErrorMarkup MarkupFunc

	// StatusMarkup maps upstream HTTP status codes to dedicated markup.
	// Codes without an entry use ErrorMarkup.
	StatusMarkup map[int]MarkupFunc
}

// Factory constructs a provider. Defaults and config-defined providers are
// registered through factories, in order.
type Factory struct {
	Name string
	New  func() (Provider, error)
}

// sharedFetcher backs every provider that was not given its own Fetcher.
var sharedFetcher httputil.Fetcher = httputil.NewFetcher(nil)

// Generic is the single Provider implementation: a pattern list, a strategy,
// and hooks composed in.
type Generic struct {
	name      string
	patterns  []*regexp.Regexp
	strategy  Strategy
	render    RenderFunc
	apiURL    string
	timeout   time.Duration
	pinned    bool // timeout set explicitly, engine options do not override it
	userAgent string
	params    map[string]string
	fetcher   httputil.Fetcher
	hooks     Hooks
	configure func(g *Generic, opts Options)
}

// Option customizes a Generic provider at construction.
type Option func(*Generic)

// WithFetcher swaps the transport used for API calls.
func WithFetcher(f httputil.Fetcher) Option {
	return func(g *Generic) { g.fetcher = f }
}

// WithTimeout sets the per-request upstream timeout. It takes precedence over
// the engine-wide timeout passed to Configure.
func WithTimeout(d time.Duration) Option {
	return func(g *Generic) {
		g.timeout = d
		g.pinned = true
	}
}

// WithQueryParams adds fixed query parameters to every API call.
func WithQueryParams(params map[string]string) Option {
	return func(g *Generic) {
		for k, v := range params {
			g.SetQueryParam(k, v)
		}
	}
}

// WithHooks installs override hooks.
func WithHooks(h Hooks) Option {
	return func(g *Generic) { g.hooks = h }
}

// WithConfigure runs fn after the default configuration, once per registration.
func WithConfigure(fn func(g *Generic, opts Options)) Option {
	return func(g *Generic) { g.configure = fn }
}

// NewOEmbed creates a provider that resolves through an oEmbed API at apiURL.
func NewOEmbed(name, apiURL, format string, patterns []string, opts ...Option) (*Generic, error) {
	strategy, err := StrategyForFormat(format)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", name, err)
	}
	if err := httputil.ValidateURL(apiURL); err != nil {
		return nil, fmt.Errorf("provider %q: api url: %w", name, err)
	}
	g, err := newGeneric(name, strategy, patterns, opts)
	if err != nil {
		return nil, err
	}
	g.apiURL = apiURL
	return g, nil
}

// NewStatic creates a provider that renders markup locally without a network call.
func NewStatic(name string, patterns []string, render RenderFunc, opts ...Option) (*Generic, error) {
	if render == nil {
		return nil, fmt.Errorf("provider %q: render function is required", name)
	}
	g, err := newGeneric(name, StaticTemplate, patterns, opts)
	if err != nil {
		return nil, err
	}
	g.render = render
	return g, nil
}

func newGeneric(name string, strategy Strategy, patterns []string, opts []Option) (*Generic, error) {
	if name == "" {
		return nil, fmt.Errorf("provider name cannot be empty")
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("provider %q: at least one url pattern is required", name)
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("provider %q: compiling pattern %q: %w", name, p, err)
		}
		compiled = append(compiled, re)
	}

	g := &Generic{
		name:      name,
		patterns:  compiled,
		strategy:  strategy,
		timeout:   DefaultTimeout,
		userAgent: UserAgent(Version),
		fetcher:   sharedFetcher,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Name returns the provider's registry key.
func (g *Generic) Name() string { return g.name }

// Strategy returns how the provider resolves.
func (g *Generic) Strategy() Strategy { return g.strategy }

// APIURL is the oEmbed endpoint, empty for static providers.
func (g *Generic) APIURL() string { return g.apiURL }

// Timeout is the current per-request upstream timeout.
func (g *Generic) Timeout() time.Duration { return g.timeout }

// Patterns returns the source of each URL pattern, in order.
func (g *Generic) Patterns() []string {
	out := make([]string, len(g.patterns))
	for i, re := range g.patterns {
		out[i] = re.String()
	}
	return out
}

// QueryParam returns a fixed query parameter set on the provider.
func (g *Generic) QueryParam(key string) string {
	return g.params[key]
}

// SetQueryParam sets a fixed query parameter sent with every API call.
func (g *Generic) SetQueryParam(key, value string) {
	if g.params == nil {
		g.params = make(map[string]string)
	}
	g.params[key] = value
}

// IsMatch reports whether any pattern finds a match in url.
func (g *Generic) IsMatch(url string) bool {
	return g.match(url) != nil
}

// match returns the submatches of the first pattern that matches url.
func (g *Generic) match(url string) []string {
	for _, re := range g.patterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m
		}
	}
	return nil
}

// Configure captures the timeout and user agent, then runs any custom configure function.
func (g *Generic) Configure(opts Options) {
	if opts.Timeout > 0 && !g.pinned {
		g.timeout = opts.Timeout
	}
	if opts.UserAgent != "" {
		g.userAgent = opts.UserAgent
	}
	if g.configure != nil {
		g.configure(g, opts)
	}
}
