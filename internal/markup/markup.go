// Package markup rewrites embed html fragments with goquery.
package markup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"urlembed/internal/embed"
)

// Rewrite edits a parsed fragment in place.
type Rewrite func(doc *goquery.Selection)

var registry = map[string]Rewrite{
	"lazy-iframes":  LazyIframes,
	"strip-scripts": StripScripts,
	"no-referrer":   NoReferrer,
}

// Names lists the available filters, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LazyIframes defers loading of iframes and images that don't already set a loading policy.
func LazyIframes(doc *goquery.Selection) {
	doc.Find("iframe, img").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("loading"); !ok {
			s.SetAttr("loading", "lazy")
		}
	})
}

// StripScripts removes script elements. Embeds relying on a widget script
// (twitter, instagram) degrade to their static blockquote.
func StripScripts(doc *goquery.Selection) {
	doc.Find("script").Remove()
}

// NoReferrer stops iframes from sending the embedding page as referrer.
func NoReferrer(doc *goquery.Selection) {
	doc.Find("iframe").SetAttr("referrerpolicy", "no-referrer")
}

// Apply parses fragment, runs each rewrite over it and renders it back.
func Apply(fragment string, rewrites ...Rewrite) (string, error) {
	if strings.TrimSpace(fragment) == "" || len(rewrites) == 0 {
		return fragment, nil
	}

	root, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	sel := goquery.NewDocumentFromNode(root).Selection
	for _, rw := range rewrites {
		rw(sel)
	}

	out, err := sel.Html()
	if err != nil {
		return "", fmt.Errorf("rendering fragment: %w", err)
	}
	return out, nil
}

// Chain resolves filter names into a single result filter suitable for the engine.
// An unknown name is an error; no names yields nil.
func Chain(names []string) (func(embed.Result) error, error) {
	if len(names) == 0 {
		return nil, nil
	}

	rewrites := make([]Rewrite, 0, len(names))
	for _, name := range names {
		rw, ok := registry[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown filter %q (available: %s)", name, strings.Join(Names(), ", "))
		}
		rewrites = append(rewrites, rw)
	}

	return func(r embed.Result) error {
		out, err := Apply(r.HTML(), rewrites...)
		if err != nil {
			return err
		}
		r.SetHTML(out)
		return nil
	}, nil
}

// parseFragment parses s in a body context so leading scripts stay in place,
// returning a detached container holding the fragment's nodes.
func parseFragment(s string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), context)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}
