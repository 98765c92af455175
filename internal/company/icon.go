// Package company は企業プロフィール周辺の補助機能を提供する。
package company

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxHTMLSize は企業サイトHTMLの読み込み上限（1MB）。
const maxHTMLSize = 1 * 1024 * 1024

// SSRFValidator はSSRF検証のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// IconFinder は企業サイトからアイコンURLを探索する。
// サイトのHTMLのlink要素を解析し、見つからない場合は /favicon.ico を試す。
type IconFinder struct {
	ssrfGuard SSRFValidator
	timeout   time.Duration
	maxSize   int64
}

// NewIconFinder はIconFinderの新しいインスタンスを生成する。
func NewIconFinder(ssrfGuard SSRFValidator, timeout time.Duration, maxSize int64) *IconFinder {
	return &IconFinder{
		ssrfGuard: ssrfGuard,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// FindIconURL は企業サイトのアイコンURLを返す。
// 見つからない場合は空文字列を返す（エラーは通信失敗などに限る）。
func (f *IconFinder) FindIconURL(ctx context.Context, siteURL string) (string, error) {
	if siteURL == "" {
		return "", nil
	}
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(siteURL); err != nil {
			slog.Warn("アイコン探索: SSRFブロック", "url", siteURL, "error", err)
			return "", nil
		}
	}

	body, err := f.fetchHTML(ctx, siteURL)
	if err != nil {
		return "", err
	}

	if iconURL := parseIconLinkFromHTML(body, siteURL); iconURL != "" {
		if f.isImageURL(ctx, iconURL) {
			return iconURL, nil
		}
	}

	// link要素で見つからなければ /favicon.ico を試す
	fallback := guessDefaultIconURL(siteURL)
	if fallback != "" && f.isImageURL(ctx, fallback) {
		return fallback, nil
	}

	return "", nil
}

// fetchHTML は企業サイトのHTMLを上限付きで読み込む。
func (f *IconFinder) fetchHTML(ctx context.Context, siteURL string) ([]byte, error) {
	client := f.getHTTPClient()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "InternMatch/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("アイコン探索: HTTPステータス異常", "url", siteURL, "status", resp.StatusCode)
		return nil, nil
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxHTMLSize))
}

// isImageURL は候補URLが画像を返すかを確認する。
func (f *IconFinder) isImageURL(ctx context.Context, iconURL string) bool {
	if f.ssrfGuard != nil {
		if err := f.ssrfGuard.ValidateURL(iconURL); err != nil {
			return false
		}
	}

	client := f.getHTTPClient()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "InternMatch/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	// ボディは捨てるが、接続再利用のため上限まで読み切る
	io.Copy(io.Discard, io.LimitReader(resp.Body, f.maxSize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType := strings.TrimSpace(strings.ToLower(strings.SplitN(contentType, ";", 2)[0]))
	return strings.HasPrefix(mediaType, "image/")
}

// getHTTPClient はHTTPクライアントを取得する。
func (f *IconFinder) getHTTPClient() *http.Client {
	if f.ssrfGuard != nil {
		return f.ssrfGuard.NewSafeClient(f.timeout, f.maxSize)
	}
	return &http.Client{Timeout: f.timeout}
}

// iconRels はアイコンとして扱うlink要素のrel値。
var iconRels = map[string]bool{
	"icon":             true,
	"shortcut icon":    true,
	"apple-touch-icon": true,
}

// parseIconLinkFromHTML はHTMLのheadタグからアイコンのlink要素を検出する。
// 相対URLはbaseURLを基準に絶対URLに解決され、最初の候補を返す。
func parseIconLinkFromHTML(htmlBody []byte, baseURL string) string {
	baseU, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	inHead := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "head" {
				inHead = true
				continue
			}

			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return ""
			}

			if !inHead || tagName != "link" || !hasAttr {
				continue
			}

			var rel, href string
			for {
				key, val, more := tokenizer.TagAttr()
				switch strings.ToLower(string(key)) {
				case "rel":
					rel = strings.ToLower(strings.TrimSpace(string(val)))
				case "href":
					href = string(val)
				}
				if !more {
					break
				}
			}

			if !iconRels[rel] || href == "" {
				continue
			}

			if resolved := resolveURL(baseU, href); resolved != "" {
				return resolved
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "head" {
				return ""
			}
		}
	}
}

// guessDefaultIconURL はサイトURLからデフォルトのfavicon URLを推測する。
func guessDefaultIconURL(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}

	u.Path = "/favicon.ico"
	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

// resolveURL は相対URLをベースURLを基準に絶対URLに解決する。
func resolveURL(base *url.URL, rawRef string) string {
	ref, err := url.Parse(rawRef)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
