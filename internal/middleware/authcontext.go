// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/authgate/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("auth_user")

// UserResolver はトークンからユーザーを解決するインターフェース。
// auth.Serviceの部分集合として定義する。
// 検証失敗・ユーザー不在・無効化済みは(nil, nil)を返すこと。
type UserResolver interface {
	ResolveToken(ctx context.Context, tokenString string) (*model.User, error)
}

// TokenObserver は拒否されたセッショントークンを記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type TokenObserver interface {
	RecordTokenRejected()
}

// NewAuthContextMiddleware はリクエストごとに認証コンテキストを解決するミドルウェアを返す。
// 解決は3段のパイプラインで行う:
//  1. Cookieからトークンを抽出（なければ匿名）
//  2. トークン検証（失敗は匿名と同一に扱い、リクエストをエラーにしない）
//  3. subjectをユーザーに解決（不在・無効化済みは匿名）
//
// 解決結果はリクエストを通過させたうえでコンテキストに付与する。
// アクセス要件の強制はRequireUser / RequireSuperuserが行う。
// observerが非nilの場合、Cookieは提示されたが解決できなかった回数を記録する。
func NewAuthContextMiddleware(resolver UserResolver, cookieName string, observer TokenObserver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.ResolveToken(r.Context(), cookie.Value)
			if err != nil {
				// ストア障害のみここに到達する。匿名として通すのではなく5xxで落とす。
				slog.Error("failed to resolve auth context",
					slog.String("error", err.Error()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				if observer != nil {
					observer.RecordTokenRejected()
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 匿名の場合はnilを返す。
func UserFromContext(ctx context.Context) *model.User {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok {
		return nil
	}
	return user
}

// ContextWithUser はコンテキストにユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireUser はログイン必須ページ用のミドルウェアを返す。
// 匿名の場合は副作用なしでログインページへリダイレクトする
// （ブラウザ向けゲートのため、素の401は返さない）。
func RequireUser(loginPath string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserFromContext(r.Context()) == nil {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperuser はスーパーユーザー専用APIルート用のミドルウェアを返す。
// スーパーユーザー未満は403で拒否する（API境界のためリダイレクトしない）。
func RequireSuperuser() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil || !user.IsSuperuser {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
