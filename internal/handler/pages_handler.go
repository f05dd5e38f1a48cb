package handler

import (
	"net/http"
	"os"
	"path/filepath"
)

// PagesHandler は事前認証済み静的ページの配信ハンドラー。
// アクセス制御はルーター側のRequireUserミドルウェアが行い、
// ここでは配信のみを担当する。
type PagesHandler struct {
	publicDir string
}

// NewPagesHandler はPagesHandlerを生成する。
func NewPagesHandler(publicDir string) *PagesHandler {
	return &PagesHandler{publicDir: publicDir}
}

// ServePage は公開ディレクトリ直下の固定ファイルを配信するハンドラーを返す。
// nameはルーター側で決め打ちするため、パストラバーサルの余地はない。
// http.ServeFileの/index.htmlリダイレクトを避けるためServeContentを使う。
func (h *PagesHandler) ServePage(name string) http.HandlerFunc {
	path := filepath.Join(h.publicDir, name)
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := os.Open(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, name, info.ModTime(), f)
	}
}

// StaticFallback はゲート対象外の静的アセットを配信するハンドラーを返す。
func (h *PagesHandler) StaticFallback() http.Handler {
	return http.FileServer(http.Dir(h.publicDir))
}
