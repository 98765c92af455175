package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/moriyama/internmatch/internal/metrics"
	"github.com/moriyama/internmatch/internal/middleware"
	"github.com/moriyama/internmatch/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserResolver      middleware.CurrentUserResolver
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// サービス
	AuthService        AuthServiceInterface
	ProfileService     ProfileServiceInterface
	InternshipService  InternshipServiceInterface
	ApplicationService ApplicationServiceInterface
	MessageService     MessageServiceInterface
	NotificationStore  NotificationStoreInterface

	// メトリクス（nilでもよい）
	Collector metrics.MetricsCollector
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → Metrics
//	（認証必須グループではさらに Auth → RateLimit(General)）
//
// 認証ルート（/auth/register, /auth/login）と公開検索は認証チェーンの外に配置し、
// 認証エンドポイントにはIP単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア。panic回復を最上位に置く
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Collector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Collector)
	profileHandler := NewProfileHandler(deps.ProfileService)
	internshipHandler := NewInternshipHandler(deps.InternshipService)
	applicationHandler := NewApplicationHandler(deps.ApplicationService, deps.Collector)
	messageHandler := NewMessageHandler(deps.MessageService)
	notificationHandler := NewNotificationHandler(deps.NotificationStore)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/auth", func(r chi.Router) {
		// 登録・ログインはIP単位レート制限の対象
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/register", authHandler.Register)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", authHandler.Login)

		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// 公開中の掲載検索は未ログインでも利用できる
	r.Get("/api/internships/search", internshipHandler.Search)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.UserResolver))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロフィール
		r.Route("/api/profiles", func(r chi.Router) {
			r.Get("/me", profileHandler.GetMine)
			r.Put("/me", profileHandler.Update)
			r.Get("/{id}", profileHandler.Get)
		})

		// 掲載
		r.Route("/api/internships", func(r chi.Router) {
			r.Get("/{id}", internshipHandler.Get)

			// 企業専用の操作
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewRoleMiddleware(model.RoleCompany))

				r.Post("/", internshipHandler.Create)
				r.Get("/mine", internshipHandler.ListMine)
				r.Put("/{id}", internshipHandler.Update)
				r.Post("/{id}/publish", internshipHandler.Publish)
				r.Post("/{id}/close", internshipHandler.Close)
				r.Get("/{id}/applications", applicationHandler.ListForListing)
			})
		})

		// 応募
		r.Route("/api/applications", func(r chi.Router) {
			// 学生専用の操作
			r.Group(func(r chi.Router) {
				r.Use(middleware.NewRoleMiddleware(model.RoleStudent))

				r.Post("/", applicationHandler.Apply)
				r.Get("/", applicationHandler.ListMine)
			})

			// 企業専用の操作
			r.With(middleware.NewRoleMiddleware(model.RoleCompany)).
				Put("/{id}/status", applicationHandler.UpdateStatus)
		})

		// メッセージ
		r.Route("/api/messages", func(r chi.Router) {
			r.Get("/", messageHandler.Conversations)
			r.Post("/", messageHandler.Send)
			r.Get("/{partnerId}", messageHandler.Conversation)
		})

		// 通知
		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Delete("/", notificationHandler.Clear)
			r.Post("/read-all", notificationHandler.MarkAllRead)
			r.Post("/{id}/read", notificationHandler.MarkRead)
		})
	})

	return r
}
