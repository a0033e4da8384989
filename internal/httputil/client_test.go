package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchReturnsStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("User-Agent = %q, want test-agent", got)
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	resp, err := f.Fetch(context.Background(), FetchRequest{
		URL:    srv.URL + "/oembed",
		Header: http.Header{"User-Agent": {"test-agent"}},
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", resp.StatusCode)
	}
	if string(resp.Body) != "not found" {
		t.Errorf("Body = %q, want 'not found'", resp.Body)
	}
	if resp.RequestURI != srv.URL+"/oembed" {
		t.Errorf("RequestURI = %q, want %q", resp.RequestURI, srv.URL+"/oembed")
	}
}

func TestFetchRecordsRedirectTarget(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := NewFetcher(srv.Client()).Fetch(context.Background(), FetchRequest{URL: srv.URL + "/old"})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if resp.RequestURI != srv.URL+"/new" {
		t.Errorf("RequestURI = %q, want %q", resp.RequestURI, srv.URL+"/new")
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewFetcher(srv.Client()).Fetch(context.Background(), FetchRequest{
		URL:     srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	_, err := NewFetcher(nil).Fetch(context.Background(), FetchRequest{URL: "ftp://example.com"})
	if err == nil {
		t.Fatal("expected error for ftp URL")
	}
}
