package middleware

import "net/http"

// NewSecurityHeadersMiddleware は全レスポンスに固定のハードニングヘッダーを付与する
// ミドルウェアを返す。ゲートの判定結果（許可・リダイレクト・拒否）によらず一律に適用する。
// キャッシュ禁止・MIMEスニッフィング禁止・クロスオリジンのフレーミング拒否・
// リファラー抑制・インライン表示の強制を行う。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Disposition", "inline")
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			h.Set("Pragma", "no-cache")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			next.ServeHTTP(w, r)
		})
	}
}
