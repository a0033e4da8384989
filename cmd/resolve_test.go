package cmd

import (
	"strings"
	"testing"
)

func TestReadURLs(t *testing.T) {
	input := `
# videos
https://www.youtube.com/watch?v=2LO4QL_i8is

  https://vimeo.com/156045670  
`
	urls, err := readURLs(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readURLs() error: %v", err)
	}
	want := []string{"https://www.youtube.com/watch?v=2LO4QL_i8is", "https://vimeo.com/156045670"}
	if len(urls) != len(want) {
		t.Fatalf("got %d URLs, want %d: %v", len(urls), len(want), urls)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestBuildRequests(t *testing.T) {
	reqs, invalid := buildRequests([]string{
		"https://www.example.com/video/12345",
		"not a url",
		"ftp://files.example.com/x",
		"https://www.thiswillfail.com/fail",
	})
	if invalid != 2 {
		t.Errorf("invalid = %d, want 2", invalid)
	}
	if len(reqs) != 2 {
		t.Fatalf("len(reqs) = %d, want 2", len(reqs))
	}
	if reqs[1].URL() != "https://www.thiswillfail.com/fail" {
		t.Errorf("reqs[1] = %q", reqs[1].URL())
	}
}
