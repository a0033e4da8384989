package provider

import (
	"fmt"
	"regexp"
)

// oembedFactory builds a Factory for a plain oEmbed provider.
func oembedFactory(name, apiURL, format string, patterns []string, opts ...Option) Factory {
	return Factory{
		Name: name,
		New: func() (Provider, error) {
			return NewOEmbed(name, apiURL, format, patterns, opts...)
		},
	}
}

// Defaults returns the built-in provider set in registration order.
// Each call constructs fresh providers.
func Defaults() []Factory {
	return []Factory{
		oembedFactory("dailymotion", "https://www.dailymotion.com/services/oembed", FormatJSON, []string{
			`^http://dai\.ly/.*`,
			`^https?://(www\.)?dailymotion\.com/.*`,
		}),
		oembedFactory("imgur", "http://api.imgur.com/oembed", FormatJSON, []string{
			`^https?://(.+\.)?imgur\.com/.*`,
		}),
		oembedFactory("instagram", "https://api.instagram.com/oembed", FormatJSON, []string{
			`^https?://(www\.)?instagr(\.am|am\.com)/p/.*`,
		}),
		oembedFactory("spotify", "https://embed.spotify.com/oembed/", FormatJSON, []string{
			`^https?://(open|play)\.spotify\.com/.*`,
		}),
		oembedFactory("tumblr", "https://www.tumblr.com/oembed/1.0", FormatJSON, []string{
			`^https?://(.+)\.tumblr\.com/post/.*`,
		}),
		oembedFactory("twitter", "https://api.twitter.com/1/statuses/oembed.json", FormatJSON, []string{
			`^https?://(www\.)?twitter\.com/.+?/status(es)?/.*`,
		}),
		oembedFactory("videopress", "https://public-api.wordpress.com/oembed/1.0/", FormatJSON, []string{
			`^https?://videopress\.com/v/.*`,
		}, WithConfigure(configureReferrer)),
		oembedFactory("vimeo", "https://vimeo.com/api/oembed.json", FormatJSON, []string{
			`^https?://(.+\.)?vimeo\.com/.*`,
		}),
		oembedFactory("facebook_posts", "https://www.facebook.com/plugins/post/oembed.json/", FormatJSON, []string{
			`^https://www\.facebook\.com/[^/]+/posts/.*`,
			`^https://www\.facebook\.com/[^/]+/activity/.*`,
			`^https://www\.facebook\.com/photo\.php\?fbid=.*`,
			`^https://www\.facebook\.com/photos/.*`,
			`^https://www\.facebook\.com/permalink\.php\?story_fbid=.*`,
			`^https://www\.facebook\.com/media/set\?set=.*`,
			`^https://www\.facebook\.com/questions/.*`,
			`^https://www\.facebook\.com/notes/.*`,
		}),
		oembedFactory("facebook_video", "https://www.facebook.com/plugins/video/oembed.json/", FormatJSON, []string{
			`^https://www\.facebook\.com/[^/]+/videos/.*`,
			`^https://www\.facebook\.com/video\.php\?id=.*`,
			`^https://www\.facebook\.com/video\.php\?v=.*`,
		}),
		oembedFactory("flickr", "https://www.flickr.com/services/oembed/", FormatJSON, []string{
			`^https?://(www\.)?flickr\.com/.*`,
			`https?://flic\.kr/.*`,
		}),
		{
			Name: "old_mtv_video",
			New: func() (Provider, error) {
				return NewStatic("old_mtv_video", []string{`^http://www\.mtv\.com/videos/misc/.*`}, renderOldMTV)
			},
		},
		oembedFactory("soundcloud", "http://soundcloud.com/oembed", FormatJSON, []string{
			`^https?://(www\.)?soundcloud\.com/.*`,
		}),
		oembedFactory("youtube", "http://www.youtube.com/oembed", FormatJSON, []string{
			`^https?://(?:[-\w]+\.)?youtube\.com/watch.+$`,
			`^https?://(?:[-\w]+\.)?youtube\.com/v/.+$`,
			`^https?://youtu\.be/.+$`,
			`^https?://(?:[-\w]+\.)?youtube\.com/user/.+$`,
			`^https?://(?:[-\w]+\.)?youtube\.com/[^#?/]+#[^#?/]+/.+$`,
			`^https?://m\.youtube\.com/index.+$`,
			`^https?://(?:[-\w]+\.)?youtube\.com/profile.+$`,
			`^https?://(?:[-\w]+\.)?youtube\.com/view_play_list.+$`,
			`^https?://(?:[-\w]+\.)?youtube\.com/playlist.+$`,
		}),
	}
}

// DefaultReferrer is sent as the caller identity when none is configured.
const DefaultReferrer = "www.example.com"

// configureReferrer sets the "for" query parameter some APIs require to
// identify the embedding site.
func configureReferrer(g *Generic, opts Options) {
	referrer := opts.Referrer
	if referrer == "" {
		referrer = DefaultReferrer
	}
	g.SetQueryParam("for", referrer)
}

var mtvVideoID = regexp.MustCompile(`/videos/misc/([0-9]+)`)

func renderOldMTV(rawURL string, _ []string) (string, error) {
	m := mtvVideoID.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("no video id in %q", rawURL)
	}
	return fmt.Sprintf(`<iframe src="http://media.mtvnservices.com/embed/mgid:uma:video:mtv.com:%s" width="512" height="288" frameborder="0"></iframe>`, m[1]), nil
}
