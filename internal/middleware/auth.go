// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/moriyama/internmatch/internal/guard"
	"github.com/moriyama/internmatch/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// profileContextKey はリクエストコンテキストにプロフィールを格納するためのキー。
var profileContextKey = contextKey("profile")

// sessionIDContextKey はリクエストコンテキストにセッションIDを格納するためのキー。
var sessionIDContextKey = contextKey("session_id")

// CurrentUserResolver はセッションIDから現在のユーザーを解決するインターフェース。
// auth.Serviceの部分集合として定義する。
type CurrentUserResolver interface {
	CurrentUser(ctx context.Context, sessionID string) (*model.Profile, error)
}

// SessionIDFromRequest はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダーが無い、または形式が異なる場合は空文字列を返す。
func SessionIDFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// NewAuthMiddleware はBearerトークンからセッションを検証するミドルウェアを返す。
// 認証済みユーザーのプロフィールをリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewAuthMiddleware(resolver CurrentUserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := SessionIDFromRequest(r)
			if sessionID == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			profile, err := resolver.CurrentUser(r.Context(), sessionID)
			if err != nil {
				if apiErr, ok := err.(*model.APIError); ok {
					WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
					return
				}
				slog.Error("failed to resolve current user",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			ctx := context.WithValue(r.Context(), profileContextKey, profile)
			ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRoleMiddleware は指定役割のユーザーのみ通過させるミドルウェアを返す。
// 認証ミドルウェアの後に配置する。役割が一致しない場合は403と
// 本来のダッシュボードへのリダイレクト先を返す。
func NewRoleMiddleware(requiredRole model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, err := ProfileFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			decision := guard.Decide(guard.State{
				Authenticated: true,
				Role:          profile.Role,
			}, requiredRole)

			switch decision.Kind {
			case guard.Render:
				next.ServeHTTP(w, r)
			case guard.RedirectToRoleHome:
				w.Header().Set("Location", decision.RedirectTo)
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
			default:
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
			}
		})
	}
}

// ProfileFromContext はリクエストコンテキストからプロフィールを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func ProfileFromContext(ctx context.Context) (*model.Profile, error) {
	profile, ok := ctx.Value(profileContextKey).(*model.Profile)
	if !ok || profile == nil {
		return nil, fmt.Errorf("profile not found in context")
	}
	return profile, nil
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	profile, err := ProfileFromContext(ctx)
	if err != nil {
		return "", err
	}
	return profile.ID, nil
}

// SessionIDFromContext はリクエストコンテキストからセッションIDを取得する。
// ログアウト処理が破棄対象のセッションを特定するのに使う。
func SessionIDFromContext(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("session ID not found in context")
	}
	return sessionID, nil
}

// ContextWithProfile はコンテキストにプロフィールを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithProfile(ctx context.Context, profile *model.Profile) context.Context {
	return context.WithValue(ctx, profileContextKey, profile)
}
