package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

// AssetsHandler はパック資材ファイルの一覧・取得API。
// スーパーユーザー専用ルートとしてマウントされる前提。
type AssetsHandler struct {
	packDir string
}

// NewAssetsHandler はAssetsHandlerを生成する。
func NewAssetsHandler(packDir string) *AssetsHandler {
	return &AssetsHandler{packDir: packDir}
}

// ListPNGs はパック資材ディレクトリ内のPNGファイルのURL一覧をJSONで返す。
// GET /api/pack_assembly/pngs
// ディレクトリが存在しない場合は空配列を返す。一覧はファイル名の辞書順。
func (h *AssetsHandler) ListPNGs(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.packDir)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, []string{})
			return
		}
		slog.Error("failed to read pack directory", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// os.ReadDirはファイル名順に返す
	urls := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ".png" {
			continue
		}
		urls = append(urls, "/api/pack_assembly/file/"+entry.Name())
	}

	writeJSON(w, urls)
}

// GetFile はパック資材ファイルを1件配信する。
// GET /api/pack_assembly/file/{name}
// パス区切り文字を含む名前は400、許可拡張子（.png / .xlsx）以外は403、
// 存在しないファイルは404を返す。
func (h *AssetsHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	// パストラバーサル防止
	if strings.ContainsAny(name, `/\`) || name == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".xlsx":
	default:
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	path := filepath.Join(h.packDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, path)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
