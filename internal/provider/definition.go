package provider

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"urlembed/internal/httputil"
)

// Definition describes a provider declaratively, as found in the config file.
// An APIURL makes it an oEmbed provider; otherwise Template renders static markup.
type Definition struct {
	Name      string            `toml:"name" json:"name"`
	Patterns  []string          `toml:"patterns" json:"patterns"`
	APIURL    string            `toml:"api_url" json:"api_url,omitempty"`
	Format    string            `toml:"format" json:"format,omitempty"`
	Template  string            `toml:"template" json:"template,omitempty"`
	Query     map[string]string `toml:"query" json:"query,omitempty"`
	TimeoutMs int               `toml:"timeout_ms" json:"timeout_ms,omitempty"`
}

// templateData is what a definition's Template is executed with.
type templateData struct {
	URL   string
	Match []string
}

// Validate checks the definition without building it.
func (d Definition) Validate() error {
	if err := httputil.ValidateName(d.Name); err != nil {
		return fmt.Errorf("provider name: %w", err)
	}
	if len(d.Patterns) == 0 {
		return fmt.Errorf("provider %q: at least one pattern is required", d.Name)
	}
	if d.APIURL == "" && d.Template == "" {
		return fmt.Errorf("provider %q: api_url or template is required", d.Name)
	}
	if d.APIURL != "" && d.Template != "" {
		return fmt.Errorf("provider %q: api_url and template are mutually exclusive", d.Name)
	}
	if d.TimeoutMs < 0 {
		return fmt.Errorf("provider %q: timeout_ms cannot be negative", d.Name)
	}
	_, err := d.Build()
	return err
}

// Build constructs the provider described by d.
func (d Definition) Build(opts ...Option) (*Generic, error) {
	if d.TimeoutMs > 0 {
		opts = append([]Option{WithTimeout(time.Duration(d.TimeoutMs) * time.Millisecond)}, opts...)
	}
	if len(d.Query) > 0 {
		opts = append([]Option{WithQueryParams(d.Query)}, opts...)
	}

	if d.APIURL != "" {
		return NewOEmbed(d.Name, d.APIURL, strings.ToLower(d.Format), d.Patterns, opts...)
	}

	tmpl, err := template.New(d.Name).Parse(d.Template)
	if err != nil {
		return nil, fmt.Errorf("provider %q: parsing template: %w", d.Name, err)
	}
	render := func(rawURL string, match []string) (string, error) {
		var b strings.Builder
		if err := tmpl.Execute(&b, templateData{URL: rawURL, Match: match}); err != nil {
			return "", err
		}
		return b.String(), nil
	}
	return NewStatic(d.Name, d.Patterns, render, opts...)
}

// Factory wraps d for registration alongside the defaults.
func (d Definition) Factory(opts ...Option) Factory {
	return Factory{
		Name: d.Name,
		New: func() (Provider, error) {
			return d.Build(opts...)
		},
	}
}
