package embed

import (
	"fmt"
	"html"
)

// Result is the decoded embed data: "html" plus whatever fields the provider returned
// (title, type, width, thumbnail_url, ...).
type Result map[string]any

// HTML returns the "html" entry, or "" if it is missing or not a string.
func (r Result) HTML() string {
	s, _ := r["html"].(string)
	return s
}

// SetHTML replaces the "html" entry.
func (r Result) SetHTML(markup string) {
	r["html"] = markup
}

// String returns field as a string if it is one.
func (r Result) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// LinkMarkup is the fallback markup for a URL: an anchor using it as both href and text.
func LinkMarkup(rawURL string) string {
	escaped := html.EscapeString(rawURL)
	return fmt.Sprintf(`<a href="%s">%s</a>`, escaped, escaped)
}

// Normalize guarantees a usable "html" entry on a decoded result.
// Photo embeds without html get an img tag; anything else falls back to the link markup.
func (r Result) Normalize(rawURL string) {
	if r.HTML() != "" {
		return
	}
	if r.String("type") == "photo" && r.String("url") != "" {
		alt := r.String("title")
		r.SetHTML(fmt.Sprintf(`<img src="%s" alt="%s">`, html.EscapeString(r.String("url")), html.EscapeString(alt)))
		return
	}
	r.SetHTML(LinkMarkup(rawURL))
}
