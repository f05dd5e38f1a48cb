package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/authgate/internal/metrics"
	"github.com/hitoshi/authgate/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// AuthService は認証ハンドラーとミドルウェアの両方が必要とするインターフェース。
type AuthService interface {
	AuthServiceInterface
	middleware.UserResolver
}

// ログイン必須の固定ページ。これ以外の公開アセットはStaticFallbackが配信する。
var gatedPages = []string{"/", "/index.html", "/feature1.html", "/feature2.html", "/feature3.html"}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	HealthChecker HealthChecker
	AuthService   AuthService
	AuthConfig    AuthHandlerConfig

	PublicDir string
	PackDir   string

	// 多層防御のグローバルポリシー
	InternalPrefixes []string

	Logger          *slog.Logger
	Metrics         *metrics.Collector
	MetricsRegistry *prometheus.Registry
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → MethodPolicy → AuthContext → Logging
//
// MethodPolicyはルートロジックに到達する前に内部パスと非許可メソッドを拒否する。
// AuthContextは全ルートに認証コンテキストを付与するのみで、強制は
// RequireUser / RequireSuperuserが行う。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewMethodPolicyMiddleware(middleware.MethodPolicyConfig{
		InternalPrefixes: deps.InternalPrefixes,
		PostAllowedPaths: []string{"/auth/jwt/login", "/auth/jwt/logout"},
	}))
	r.Use(middleware.NewAuthContextMiddleware(deps.AuthService, deps.AuthConfig.CookieName, deps.Metrics))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Metrics)
	pagesHandler := NewPagesHandler(deps.PublicDir)
	assetsHandler := NewAssetsHandler(deps.PackDir)

	// --- 認証エンドポイント ---
	r.Route("/auth/jwt", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// ブラウザナビゲーション用のログアウト
	r.Get("/api/logout", authHandler.LogoutRedirect)

	// --- スーパーユーザー専用API ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSuperuser())

		r.Get("/api/pack_assembly/pngs", assetsHandler.ListPNGs)
		r.Get("/api/pack_assembly/file/{name}", assetsHandler.GetFile)
	})

	// --- ログイン必須ページ ---
	// 匿名はログインページへリダイレクトする
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireUser(deps.AuthConfig.LoginPath))

		for _, page := range gatedPages {
			name := "index.html"
			if page != "/" {
				name = page[1:]
			}
			r.Get(page, pagesHandler.ServePage(name))
		}
	})

	// --- 公開ルート ---
	r.Get("/login.html", pagesHandler.ServePage("login.html"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	if deps.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsRegistry))
	}

	// 残りの公開アセット
	r.Handle("/*", pagesHandler.StaticFallback())

	return r
}
