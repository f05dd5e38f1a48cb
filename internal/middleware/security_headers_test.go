package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// ゲートの判定結果によらず、固定のハードニングヘッダーが常に付与される
func TestSecurityHeadersMiddleware_SetsAllHeaders(t *testing.T) {
	mw := NewSecurityHeadersMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	want := map[string]string{
		"Content-Disposition":    "inline",
		"Cache-Control":          "no-store, no-cache, must-revalidate, max-age=0",
		"Pragma":                 "no-cache",
		"Referrer-Policy":        "no-referrer",
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "SAMEORIGIN",
	}

	for header, value := range want {
		if got := w.Result().Header.Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
}

// エラーレスポンスにも同じヘッダーが付く
func TestSecurityHeadersMiddleware_AppliesOnErrorResponses(t *testing.T) {
	mw := NewSecurityHeadersMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusForbidden)
	}))

	req := httptest.NewRequest(http.MethodGet, "/server/secret", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Result().Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
}
