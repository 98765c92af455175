// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService はユーザー入力のHTMLをサニタイズし、
// XSS攻撃などのセキュリティリスクから閲覧者を保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグと属性のみを通過させる。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はユーザー入力のサニタイズ機能のインターフェースを定義する。
// 掲載の説明文とダイレクトメッセージの保存前に使用される。
type ContentSanitizerService interface {
	// SanitizeRichText は掲載説明文など書式付きテキストをサニタイズする。
	// 許可タグ（p, br, ul, ol, li, blockquote, strong, em, a）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// aタグにはtarget="_blank"とrel="noopener noreferrer"が自動付与される。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeRichText(rawHTML string) string

	// SanitizeText はメッセージ本文などプレーンテキスト入力から
	// すべてのHTMLタグを除去し、前後の空白を取り除いて返す。
	SanitizeText(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	richPolicy   *bluemonday.Policy
	strictPolicy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayのカスタムポリシーを構築する。
// ポリシーの内容:
//   - 書式付き: p, br, ul, ol, li, blockquote, strong, em, a(href) のみ許可
//   - script, iframe, style および全てのon*イベント属性は許可リスト外のため除去される
//   - aタグ: target="_blank" と rel="noreferrer noopener" を強制付与
//   - プレーン: 全タグ除去（StrictPolicy）
func NewContentSanitizer() *contentSanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "strong", "em",
	)
	rich.AllowAttrs("href").OnElements("a")
	rich.AllowRelativeURLs(false)
	rich.AllowURLSchemes("https", "http")
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.RequireNoReferrerOnLinks(true)

	return &contentSanitizer{
		richPolicy:   rich,
		strictPolicy: bluemonday.StrictPolicy(),
	}
}

// SanitizeRichText は書式付きテキストをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) SanitizeRichText(rawHTML string) string {
	return s.richPolicy.Sanitize(rawHTML)
}

// SanitizeText はすべてのHTMLタグを除去したプレーンテキストを返す。
func (s *contentSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(s.strictPolicy.Sanitize(raw))
}

// compile-time interface check
var _ ContentSanitizerService = (*contentSanitizer)(nil)
