// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hitoshi/authgate/internal/model"
)

// insecureSecretPlaceholder は初期状態の署名シークレット。
// 本番モードでこの値のまま起動することは許可しない。
const insecureSecretPlaceholder = "CHANGE_ME_IN_PROD"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// 実行環境（development / production 等）
	AppEnv string

	// Auth
	JWTSecret    string
	CookieName   string
	CookieMaxAge int // Cookieとトークン共通の有効期間（秒）
	CookieSecure bool

	// 静的コンテンツ
	PublicDir       string
	PackAssemblyDir string

	// 公開禁止パスのプレフィックス
	InternalPrefixes []string

	// Server
	ServerPort string

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合、または本番モードで署名シークレットが
// プレースホルダーのままの場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.AppEnv = strings.ToLower(getEnvString("APP_ENV", "development"))
	cfg.JWTSecret = getEnvString("AUTH_JWT_SECRET", insecureSecretPlaceholder)

	// 本番モードではプレースホルダーのまま稼働させない（起動時に致命エラー）
	if cfg.IsProduction() && cfg.JWTSecret == insecureSecretPlaceholder {
		return nil, model.NewInsecureConfigError("AUTH_JWT_SECRET が初期値のままです")
	}

	cfg.CookieName = getEnvString("AUTH_COOKIE_NAME", "fastapiusersauth")
	cfg.CookieMaxAge = getEnvInt("AUTH_COOKIE_MAX_AGE", 7*24*60*60)
	cfg.CookieSecure = getEnvBool("AUTH_COOKIE_SECURE", true)

	cfg.PublicDir = getEnvString("PUBLIC_DIR", "public")
	cfg.PackAssemblyDir = getEnvString("PACK_ASSEMBLY_DIR", "Resources/PackAssembly")
	cfg.InternalPrefixes = getEnvList("INTERNAL_PREFIXES", []string{"/server/", "/tools/", "/dev_local/"})

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

// IsProduction は本番モードで稼働中かどうかを返す。
func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvBool は "0"、"false"、"no" のみをfalseとして扱う。
func getEnvBool(key string, defaultVal bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	switch v {
	case "0", "false", "no":
		return false
	default:
		return true
	}
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
