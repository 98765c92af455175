package company

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockSSRFGuard はテスト用のSSRF検証モック。
type mockSSRFGuard struct {
	blockAll bool
}

func (m *mockSSRFGuard) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (m *mockSSRFGuard) ValidateURL(rawURL string) error {
	if m.blockAll {
		return fmt.Errorf("blocked by SSRF guard")
	}
	return nil
}

// PNG画像のヘッダー（最小限のテストデータ）
var pngData = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func newFinder() *IconFinder {
	return NewIconFinder(&mockSSRFGuard{}, 5*time.Second, 2*1024*1024)
}

// TestFindIconURL_LinkElement はlink要素からアイコンURLを検出することをテストする。
func TestFindIconURL_LinkElement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><link rel="icon" href="/assets/logo.png"></head><body></body></html>`)
		case "/assets/logo.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngData)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	iconURL, err := newFinder().FindIconURL(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("FindIconURL returned error: %v", err)
	}
	if iconURL != server.URL+"/assets/logo.png" {
		t.Errorf("expected %s/assets/logo.png, got %q", server.URL, iconURL)
	}
}

// TestFindIconURL_FaviconFallback はlink要素が無い場合に/favicon.icoへフォールバックすることをテストする。
func TestFindIconURL_FaviconFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><title>Acme</title></head><body></body></html>`)
		case "/favicon.ico":
			w.Header().Set("Content-Type", "image/x-icon")
			w.Write(pngData)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	iconURL, err := newFinder().FindIconURL(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("FindIconURL returned error: %v", err)
	}
	if iconURL != server.URL+"/favicon.ico" {
		t.Errorf("expected favicon fallback, got %q", iconURL)
	}
}

// TestFindIconURL_NoIcon はアイコンが存在しない場合に空文字列を返すことをテストする。
func TestFindIconURL_NoIcon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head></head><body></body></html>`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	iconURL, err := newFinder().FindIconURL(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("FindIconURL returned error: %v", err)
	}
	if iconURL != "" {
		t.Errorf("expected empty icon URL, got %q", iconURL)
	}
}

// TestFindIconURL_NonImageRejected はアイコンURLが画像以外を返す場合に採用しないことをテストする。
func TestFindIconURL_NonImageRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><head><link rel="icon" href="/logo"></head><body></body></html>`)
		case "/logo":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "not an image")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	iconURL, err := newFinder().FindIconURL(context.Background(), server.URL+"/")
	if err != nil {
		t.Fatalf("FindIconURL returned error: %v", err)
	}
	if iconURL != "" {
		t.Errorf("expected non-image candidate to be rejected, got %q", iconURL)
	}
}

// TestFindIconURL_SSRFBlocked はSSRFガードにブロックされた場合に空文字列を返すことをテストする。
func TestFindIconURL_SSRFBlocked(t *testing.T) {
	finder := NewIconFinder(&mockSSRFGuard{blockAll: true}, 5*time.Second, 2*1024*1024)

	iconURL, err := finder.FindIconURL(context.Background(), "http://169.254.169.254/")
	if err != nil {
		t.Fatalf("FindIconURL returned error: %v", err)
	}
	if iconURL != "" {
		t.Errorf("expected empty icon URL for blocked target, got %q", iconURL)
	}
}

// TestFindIconURL_EmptyURL は空URLに対して何もしないことをテストする。
func TestFindIconURL_EmptyURL(t *testing.T) {
	iconURL, err := newFinder().FindIconURL(context.Background(), "")
	if err != nil {
		t.Fatalf("FindIconURL returned error: %v", err)
	}
	if iconURL != "" {
		t.Errorf("expected empty result, got %q", iconURL)
	}
}

func TestParseIconLinkFromHTML(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"rel=icon",
			`<html><head><link rel="icon" href="/a.png"></head></html>`,
			"https://example.com/a.png",
		},
		{
			"rel=shortcut icon",
			`<html><head><link rel="shortcut icon" href="b.ico"></head></html>`,
			"https://example.com/b.ico",
		},
		{
			"rel=apple-touch-icon",
			`<html><head><link rel="apple-touch-icon" href="https://cdn.example.com/c.png"></head></html>`,
			"https://cdn.example.com/c.png",
		},
		{
			"rel=stylesheetは対象外",
			`<html><head><link rel="stylesheet" href="/style.css"></head></html>`,
			"",
		},
		{
			"body内のlinkは対象外",
			`<html><head></head><body><link rel="icon" href="/a.png"></body></html>`,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseIconLinkFromHTML([]byte(tt.html), "https://example.com/")
			if got != tt.want {
				t.Errorf("parseIconLinkFromHTML = %q, want %q", got, tt.want)
			}
		})
	}
}
