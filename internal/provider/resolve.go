package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"urlembed/internal/embed"
	"urlembed/internal/httputil"
)

// Resolve populates req according to the provider's strategy. Failures of any
// kind, panics included, end up in req.Err with error markup in req.Result.
func (g *Generic) Resolve(ctx context.Context, req *embed.Request) {
	req.Provider = g.name

	defer func() {
		if r := recover(); r != nil {
			g.fail(req, &embed.ProviderLogicError{Provider: g.name, Err: fmt.Errorf("panic: %v", r)}, nil)
		}
	}()

	if g.strategy == StaticTemplate {
		g.resolveStatic(req)
		return
	}
	g.resolveOEmbed(ctx, req)
}

func (g *Generic) resolveStatic(req *embed.Request) {
	markup, err := g.render(req.URL(), g.match(req.URL()))
	if err != nil {
		g.fail(req, &embed.ProviderLogicError{Provider: g.name, Err: err}, nil)
		return
	}

	req.Result = embed.Result{"html": markup, "type": "rich", "provider_name": g.name}
	req.Result.Normalize(req.URL())
	g.filter(req)
}

func (g *Generic) resolveOEmbed(ctx context.Context, req *embed.Request) {
	apiURL, err := g.buildAPIURL(req)
	if err != nil {
		g.fail(req, &embed.ProviderLogicError{Provider: g.name, Err: err}, nil)
		return
	}
	req.ResolverURL = apiURL

	resp, err := g.fetcher.Fetch(ctx, httputil.FetchRequest{
		URL:     apiURL,
		Header:  g.header(),
		Timeout: g.timeout,
	})
	if err != nil {
		g.fail(req, &embed.TransportError{URL: apiURL, Err: err}, nil)
		return
	}
	if resp.RequestURI != "" {
		req.ResolverURL = resp.RequestURI
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &embed.UnexpectedStatusError{URL: apiURL, StatusCode: resp.StatusCode}
		g.fail(req, statusErr, g.hooks.StatusMarkup[resp.StatusCode])
		return
	}

	result, err := Parse(g.strategy.Format(), resp.Body)
	if err != nil {
		g.fail(req, err, nil)
		return
	}
	result.Normalize(req.URL())
	req.Result = result
	g.filter(req)
}

// buildAPIURL assembles the oEmbed query: url, format, size limits, request
// params and the provider's fixed params, in increasing precedence.
func (g *Generic) buildAPIURL(req *embed.Request) (string, error) {
	q := url.Values{}
	q.Set("url", req.URL())
	q.Set("format", g.strategy.Format())
	if req.Options.MaxWidth > 0 {
		q.Set("maxwidth", strconv.Itoa(req.Options.MaxWidth))
	}
	if req.Options.MaxHeight > 0 {
		q.Set("maxheight", strconv.Itoa(req.Options.MaxHeight))
	}
	for k, v := range req.Options.Params {
		q.Set(k, v)
	}
	for k, v := range g.params {
		q.Set(k, v)
	}
	return httputil.BuildURL(g.apiURL, q)
}

func (g *Generic) header() http.Header {
	h := http.Header{}
	h.Set("User-Agent", g.userAgent)
	if g.strategy == OEmbedXML {
		h.Set("Accept", "text/xml, application/xml;q=0.9, */*;q=0.5")
	} else {
		h.Set("Accept", "application/json, */*;q=0.5")
	}
	return h
}

// filter runs the FilterData hook on a successful result. A hook that blanks
// the html gets the same fallback as a result that never had any.
func (g *Generic) filter(req *embed.Request) {
	if g.hooks.FilterData == nil {
		return
	}
	if err := g.hooks.FilterData(req.Result); err != nil {
		g.fail(req, &embed.ProviderLogicError{Provider: g.name, Err: err}, nil)
		return
	}
	req.Result.Normalize(req.URL())
}

// fail records err on req with markup from fn, the ErrorMarkup hook, or the link fallback.
func (g *Generic) fail(req *embed.Request, err error, fn MarkupFunc) {
	if fn == nil {
		fn = g.hooks.ErrorMarkup
	}
	req.Fail(err, safeMarkup(fn, req, err))
}

// safeMarkup calls fn, falling back to the link markup if it is nil, panics, or returns "".
func safeMarkup(fn MarkupFunc, req *embed.Request, err error) (markup string) {
	if fn == nil {
		return embed.LinkMarkup(req.URL())
	}
	defer func() {
		if r := recover(); r != nil {
			markup = embed.LinkMarkup(req.URL())
		}
	}()
	markup = fn(req, err)
	if markup == "" {
		markup = embed.LinkMarkup(req.URL())
	}
	return markup
}
