package provider

import (
	"context"
	"net/url"
	"testing"

	"urlembed/internal/embed"
)

func buildDefaults(t *testing.T) map[string]*Generic {
	t.Helper()
	out := make(map[string]*Generic)
	for _, f := range Defaults() {
		p, err := f.New()
		if err != nil {
			t.Fatalf("building default %q: %v", f.Name, err)
		}
		if p.Name() != f.Name {
			t.Errorf("factory %q built provider named %q", f.Name, p.Name())
		}
		if _, dup := out[f.Name]; dup {
			t.Errorf("duplicate default provider %q", f.Name)
		}
		out[f.Name] = p.(*Generic)
	}
	return out
}

func TestDefaultsMatchKnownURLs(t *testing.T) {
	providers := buildDefaults(t)

	tests := []struct {
		url      string
		provider string
	}{
		{"https://www.instagram.com/p/BCA0qkon9B1/?taken-by=mtv", "instagram"},
		{"https://soundcloud.com/newyorker/listen-to-craig-raine-read-bitch", "soundcloud"},
		{"https://www.youtube.com/watch?v=2LO4QL_i8is", "youtube"},
		{"https://youtu.be/2LO4QL_i8is", "youtube"},
		{"https://vimeo.com/156045670", "vimeo"},
		{"https://www.flickr.com/photos/sas999/25092061391/in/explore-2016-02-22/", "flickr"},
		{"http://www.dailymotion.com/video/x3lwpy7_the-worst-car", "dailymotion"},
		{"https://www.facebook.com/facebook/videos/10153231379946729/", "facebook_video"},
		{"https://www.facebook.com/MTV/posts/10153553500401701", "facebook_posts"},
		{"https://twitter.com/simpscreens/status/702025133951680512", "twitter"},
		{"http://imgur.com/gallery/KSMB2tI", "imgur"},
		{"https://play.spotify.com/track/0ivpUENLpheuPoa6VuY1ax", "spotify"},
		{"http://mtv.tumblr.com/post/139813756155/kanye-west", "tumblr"},
		{"https://videopress.com/v/kUJmAcSf", "videopress"},
		{"http://www.mtv.com/videos/misc/123456/some-clip", "old_mtv_video"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, ok := providers[tt.provider]
			if !ok {
				t.Fatalf("no default provider %q", tt.provider)
			}
			if !p.IsMatch(tt.url) {
				t.Errorf("%s should match %q", tt.provider, tt.url)
			}
		})
	}

	if providers["youtube"].IsMatch("http://www.example.com/foo") {
		t.Error("youtube should not match example.com")
	}
}

func TestVideopressReferrer(t *testing.T) {
	tests := []struct {
		name     string
		referrer string
		want     string
	}{
		{"configured", "www.mysite.com", "www.mysite.com"},
		{"fallback", "", DefaultReferrer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildDefaults(t)["videopress"]
			f := &stubFetcher{status: 200, body: `{"html":"x"}`}
			p.fetcher = f
			p.Configure(Options{Referrer: tt.referrer})

			if got := p.QueryParam("for"); got != tt.want {
				t.Errorf("for = %q, want %q", got, tt.want)
			}

			p.Resolve(context.Background(), newRequest(t, "https://videopress.com/v/kUJmAcSf", embed.Options{}))
			u, err := url.Parse(f.calls[0].URL)
			if err != nil {
				t.Fatalf("parsing API URL: %v", err)
			}
			if got := u.Query().Get("for"); got != tt.want {
				t.Errorf("API query for = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOldMTVVideo(t *testing.T) {
	p := buildDefaults(t)["old_mtv_video"]

	req := newRequest(t, "http://www.mtv.com/videos/misc/123456/some-clip", embed.Options{})
	p.Resolve(context.Background(), req)
	if req.Err != nil {
		t.Fatalf("Err = %v", req.Err)
	}
	want := `<iframe src="http://media.mtvnservices.com/embed/mgid:uma:video:mtv.com:123456" width="512" height="288" frameborder="0"></iframe>`
	if req.HTML() != want {
		t.Errorf("html = %q, want %q", req.HTML(), want)
	}

	bad := newRequest(t, "http://www.mtv.com/videos/misc/no-id", embed.Options{})
	p.Resolve(context.Background(), bad)
	if bad.Err == nil {
		t.Error("expected error for URL without a video id")
	}
	if bad.HTML() != embed.LinkMarkup("http://www.mtv.com/videos/misc/no-id") {
		t.Errorf("html = %q, want link markup", bad.HTML())
	}
}
