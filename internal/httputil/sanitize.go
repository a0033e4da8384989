package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// validNamePattern matches provider names: lowercase letters, digits, underscores and hyphens.
var validNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidateURL checks that a URL is absolute, uses http or https, and has a host.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("only HTTP(S) URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateName checks that a provider name contains only safe characters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("name too long: %d characters", len(name))
	}
	if !validNamePattern.MatchString(name) {
		return fmt.Errorf("name contains invalid characters: %q", name)
	}
	return nil
}

// BuildURL merges params into the query string of base.
// Parameters already present on base are kept unless params overrides them.
func BuildURL(base string, params url.Values) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parsing base URL %q: %w", base, err)
	}

	q := u.Query()
	for k, vs := range params {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
