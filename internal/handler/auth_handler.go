// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/authgate/internal/middleware"
	"github.com/hitoshi/authgate/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, email, plaintext string) (string, error)
}

// LoginMetrics はログイン結果のメトリクス記録インターフェース。
type LoginMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthHandlerConfig は認証ハンドラーの設定。
// CookieMaxAgeはトークンの有効期間（秒）と常に一致させる。
// Cookieの寿命がトークンより長くなることは許可しない。
type AuthHandlerConfig struct {
	CookieName   string
	CookieMaxAge int
	CookieSecure bool
	LoginPath    string // 未認証時のリダイレクト先（例: /login.html）
}

// AuthHandler はログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics LoginMetrics
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, metrics LoginMetrics) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: metrics,
	}
}

// Login は資格情報を検証し、成功時にセッションCookieを設定する。
// POST /auth/jwt/login
// ボディはフォームエンコードのusername/password（usernameにはメールアドレスが入る）。
// 失敗時は要素を区別しない一般的なエラーのみを返す。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeLoginFailure(w)
		return
	}

	email := r.PostFormValue("username")
	plaintext := r.PostFormValue("password")

	tok, err := h.service.Login(r.Context(), email, plaintext)
	if err != nil {
		if !errors.Is(err, model.ErrInvalidCredentials) {
			slog.Error("login failed", slog.String("error", err.Error()))
			middleware.WriteInternalServerError(w)
			return
		}
		h.writeLoginFailure(w)
		return
	}

	h.setSessionCookie(w, tok, h.config.CookieMaxAge)
	if h.metrics != nil {
		h.metrics.RecordLoginSuccess()
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout はセッションCookieをクリアする。
// POST /auth/jwt/logout
// トークンはサーバー側に保存されないため、破棄するのはCookieのみ。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// LogoutRedirect はブラウザナビゲーション用のログアウト。
// GET /api/logout
// Cookieをクリアしたうえでログインページへリダイレクトする。
func (h *AuthHandler) LogoutRedirect(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -1)
	http.Redirect(w, r, h.config.LoginPath, http.StatusFound)
}

// setSessionCookie はセッションCookieを設定する。
// maxAgeに-1を渡すと即座に失効させる（ログアウト）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// writeLoginFailure は一般的な認証失敗レスポンスを書き込む。
func (h *AuthHandler) writeLoginFailure(w http.ResponseWriter) {
	if h.metrics != nil {
		h.metrics.RecordLoginFailure()
	}
	middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     model.ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	})
}
