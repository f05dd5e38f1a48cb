package middleware

import (
	"net/http"
	"strings"
)

// MethodPolicyConfig はグローバルメソッドポリシーの設定。
type MethodPolicyConfig struct {
	// InternalPrefixes は公開を禁止するパスのプレフィックス（例: /server/, /tools/）。
	InternalPrefixes []string
	// PostAllowedPaths はPOSTを許可する唯一の例外パス（ログイン・ログアウト）。
	PostAllowedPaths []string
}

// NewMethodPolicyMiddleware は多層防御のグローバルポリシーを適用するミドルウェアを返す。
// ルートロジックに到達する前に次の順で判定する:
//  1. 内部ディレクトリへのパスはメソッドを問わず403で拒否する。
//  2. GET/HEAD以外のメソッドは405で拒否する。
//     例外としてログイン・ログアウトのパスへのPOSTのみ許可する。
func NewMethodPolicyMiddleware(config MethodPolicyConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			for _, prefix := range config.InternalPrefixes {
				if strings.HasPrefix(path, prefix) {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
			}

			switch r.Method {
			case http.MethodGet, http.MethodHead:
				// 読み取り専用メソッドは常に許可
			case http.MethodPost:
				if !containsPath(config.PostAllowedPaths, path) {
					http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
					return
				}
			default:
				http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func containsPath(paths []string, path string) bool {
	for _, p := range paths {
		if p == path {
			return true
		}
	}
	return false
}
