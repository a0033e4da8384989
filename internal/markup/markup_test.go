package markup

import (
	"strings"
	"testing"

	"urlembed/internal/embed"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		rewrites []Rewrite
		want     string
	}{
		{
			name:     "lazy iframe",
			fragment: `<iframe src="https://player.example.com/1"></iframe>`,
			rewrites: []Rewrite{LazyIframes},
			want:     `<iframe src="https://player.example.com/1" loading="lazy"></iframe>`,
		},
		{
			name:     "lazy keeps explicit policy",
			fragment: `<img src="https://i.example.com/a.jpg" loading="eager"/>`,
			rewrites: []Rewrite{LazyIframes},
			want:     `<img src="https://i.example.com/a.jpg" loading="eager"/>`,
		},
		{
			name:     "strip scripts",
			fragment: `<blockquote class="twitter-tweet">hi</blockquote><script async src="https://platform.twitter.com/widgets.js"></script>`,
			rewrites: []Rewrite{StripScripts},
			want:     `<blockquote class="twitter-tweet">hi</blockquote>`,
		},
		{
			name:     "leading script kept",
			fragment: `<script src="https://w.example.com/s.js"></script><iframe src="https://x.example.com/"></iframe>`,
			rewrites: []Rewrite{NoReferrer},
			want:     `<script src="https://w.example.com/s.js"></script><iframe src="https://x.example.com/" referrerpolicy="no-referrer"></iframe>`,
		},
		{
			name:     "no rewrites",
			fragment: `<b>unchanged</b >`,
			want:     `<b>unchanged</b >`,
		},
		{
			name:     "plain anchor",
			fragment: `<a href="https://www.example.com/">https://www.example.com/</a>`,
			rewrites: []Rewrite{LazyIframes, StripScripts},
			want:     `<a href="https://www.example.com/">https://www.example.com/</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.fragment, tt.rewrites...)
			if err != nil {
				t.Fatalf("Apply() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChain(t *testing.T) {
	filter, err := Chain([]string{"strip-scripts", " Lazy-Iframes "})
	if err != nil {
		t.Fatalf("Chain() error: %v", err)
	}

	r := embed.Result{"html": `<iframe src="https://p.example.com/"></iframe><script>x()</script>`}
	if err := filter(r); err != nil {
		t.Fatalf("filter error: %v", err)
	}
	if want := `<iframe src="https://p.example.com/" loading="lazy"></iframe>`; r.HTML() != want {
		t.Errorf("html = %q, want %q", r.HTML(), want)
	}
}

func TestChainEmpty(t *testing.T) {
	filter, err := Chain(nil)
	if err != nil || filter != nil {
		t.Errorf("Chain(nil) = %v, %v; want nil, nil", filter != nil, err)
	}
}

func TestChainUnknown(t *testing.T) {
	_, err := Chain([]string{"lazy-iframes", "minify"})
	if err == nil {
		t.Fatal("expected error for unknown filter")
	}
	if !strings.Contains(err.Error(), "minify") {
		t.Errorf("error = %v, want the unknown name", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	want := []string{"lazy-iframes", "no-referrer", "strip-scripts"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", names, want)
	}
}
