// Package engine resolves URLs to embeds through an ordered registry of providers.
//
// Providers are registered during setup; the first provider whose patterns
// match a URL handles it. Registering while resolutions are in flight is not
// supported.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"urlembed/internal/embed"
	"urlembed/internal/provider"
)

// FilterFunc post-processes every matched result after the provider's own filter.
type FilterFunc func(embed.Result) error

// Engine owns the provider registry and dispatches resolutions.
type Engine struct {
	opts      provider.Options
	providers []provider.Provider

	filter      FilterFunc
	noMatch     func(*embed.Request) string
	observer    func(*embed.Request)
	concurrency int
	log         *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithFilter installs the global post-processing hook.
func WithFilter(f FilterFunc) Option {
	return func(e *Engine) { e.filter = f }
}

// WithNoMatchMarkup replaces the markup used when no provider matches.
func WithNoMatchMarkup(fn func(*embed.Request) string) Option {
	return func(e *Engine) { e.noMatch = fn }
}

// WithObserver is called with every request once it has finished resolving.
// In ResolveMany it runs on the resolving goroutine, so it must be safe for concurrent use.
func WithObserver(fn func(*embed.Request)) Option {
	return func(e *Engine) { e.observer = fn }
}

// WithConcurrency caps how many requests ResolveMany runs at once. Zero or less means no cap.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// New creates an engine with no providers registered.
// opts is passed to each provider's Configure on registration.
func New(opts provider.Options, options ...Option) *Engine {
	e := &Engine{
		opts: opts,
		log:  zap.NewNop(),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Register configures p once and adds it to the registry.
// A provider with the same name is replaced in place; otherwise p is appended.
func (e *Engine) Register(p provider.Provider) {
	p.Configure(e.opts)

	for i, existing := range e.providers {
		if existing.Name() == p.Name() {
			e.providers[i] = p
			e.log.Debug("provider replaced", zap.String("provider", p.Name()), zap.Int("index", i))
			return
		}
	}
	e.providers = append(e.providers, p)
	e.log.Debug("provider registered", zap.String("provider", p.Name()), zap.Int("index", len(e.providers)-1))
}

// RegisterDefaults builds and registers each factory in order.
// Later factories with a duplicate name replace earlier ones.
func (e *Engine) RegisterDefaults(factories ...provider.Factory) error {
	for _, f := range factories {
		p, err := f.New()
		if err != nil {
			return fmt.Errorf("building provider %q: %w", f.Name, err)
		}
		e.Register(p)
	}
	return nil
}

// Providers returns the registered providers in registration order.
func (e *Engine) Providers() []provider.Provider {
	out := make([]provider.Provider, len(e.providers))
	copy(out, e.providers)
	return out
}

// Lookup returns the first registered provider matching url.
func (e *Engine) Lookup(url string) (provider.Provider, bool) {
	for _, p := range e.providers {
		if p.IsMatch(url) {
			return p, true
		}
	}
	return nil, false
}

// Resolve dispatches req to the first matching provider and returns it settled.
// It never fails: errors are recorded on req.Err with fallback markup in req.Result.
func (e *Engine) Resolve(ctx context.Context, req *embed.Request) *embed.Request {
	req.MarkStarted()

	if e.dispatch(ctx, req) {
		e.applyFilter(req)
	}
	ensureMarkup(req)

	if err := req.MarkFinished(); err != nil {
		// Unreachable: MarkStarted ran above.
		e.log.Error("finishing request", zap.String("id", req.ID), zap.Error(err))
	}
	e.logResult(req)
	if e.observer != nil {
		e.observer(req)
	}
	return req
}

// ResolveMany resolves every request concurrently and returns them in input
// order once all have settled. One failure never affects the others.
func (e *Engine) ResolveMany(ctx context.Context, reqs []*embed.Request) []*embed.Request {
	results := make([]*embed.Request, len(reqs))

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i] = e.Resolve(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ResolveManyFunc runs ResolveMany in the background and calls done exactly
// once with the ordered results.
func (e *Engine) ResolveManyFunc(ctx context.Context, reqs []*embed.Request, done func([]*embed.Request)) {
	go func() {
		done(e.ResolveMany(ctx, reqs))
	}()
}

// dispatch hands req to the first matching provider and reports whether one matched.
// A panic in matching or resolving fails the request instead of escaping.
func (e *Engine) dispatch(ctx context.Context, req *embed.Request) (matched bool) {
	name := ""
	defer func() {
		if r := recover(); r != nil {
			if req.Provider == "" {
				req.Provider = name
			}
			req.Fail(&embed.ProviderLogicError{Provider: name, Err: fmt.Errorf("panic: %v", r)}, embed.LinkMarkup(req.URL()))
			matched = false
		}
	}()

	p, ok := e.Lookup(req.URL())
	if !ok {
		req.Fail(&embed.UnknownProviderError{URL: req.URL()}, e.noMatchMarkup(req))
		return false
	}
	name = p.Name()
	p.Resolve(ctx, req)
	return true
}

// ensureMarkup gives a request whose html was left empty the usual fallback.
func ensureMarkup(req *embed.Request) {
	if req.Result == nil {
		req.Result = embed.Result{}
	}
	req.Result.Normalize(req.URL())
}

func (e *Engine) applyFilter(req *embed.Request) {
	if e.filter == nil {
		return
	}
	if req.Result == nil {
		req.Result = embed.Result{}
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return e.filter(req.Result)
	}()
	if err == nil {
		return
	}
	if req.Err != nil {
		// Keep the provider's error; only the markup changes.
		req.Result.SetHTML(embed.LinkMarkup(req.URL()))
		return
	}
	req.Fail(&embed.ProviderLogicError{Provider: "engine", Err: err}, embed.LinkMarkup(req.URL()))
}

func (e *Engine) noMatchMarkup(req *embed.Request) string {
	if e.noMatch == nil {
		return embed.LinkMarkup(req.URL())
	}
	return e.noMatch(req)
}

func (e *Engine) logResult(req *embed.Request) {
	fields := []zap.Field{
		zap.String("id", req.ID),
		zap.String("url", req.URL()),
		zap.String("provider", req.Provider),
		zap.Int64("elapsed_ms", req.ElapsedMs()),
	}
	if req.Err != nil {
		fields = append(fields, zap.String("kind", embed.Kind(req.Err)), zap.Error(req.Err))
		e.log.Warn("embed resolved with error", fields...)
		return
	}
	e.log.Debug("embed resolved", fields...)
}
