// Package app はアプリケーションの起動と各サブコマンドの実行を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/authgate/internal/auth"
	"github.com/hitoshi/authgate/internal/config"
	"github.com/hitoshi/authgate/internal/database"
	"github.com/hitoshi/authgate/internal/handler"
	"github.com/hitoshi/authgate/internal/logger"
	"github.com/hitoshi/authgate/internal/metrics"
	"github.com/hitoshi/authgate/internal/password"
	"github.com/hitoshi/authgate/internal/repository"
	"github.com/hitoshi/authgate/internal/token"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// 本番モードで署名シークレットが初期値のままの場合はここでエラーになる
// （安全でない状態でトラフィックを受け始めることはない）。
func Init(w io.Writer) (*config.Config, error) {
	// ログレベル確定前でもログを使えるよう、まずデフォルトで初期化する
	logger.SetupDefault(w, "info")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetupDefault(w, cfg.LogLevel)
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, rest := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandUsers:
		return runUsers(cfg, rest, os.Stdout)
	default:
		return runServe(cfg)
	}
}

// runServe はゲートサーバーモードで起動する。
// マイグレーションを適用し、全依存関係をワイヤリングしてHTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	slog.Info("starting auth gate",
		slog.String("port", cfg.ServerPort),
		slog.String("env", cfg.AppEnv),
		slog.Bool("cookie_secure", cfg.CookieSecure),
	)

	// 1. スキーマを最新化してからDB接続を確認する
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. コアサービスのワイヤリング
	userRepo := repository.NewPostgresUserRepo(db)
	hasher := password.NewBcryptHasher(0)
	tokenService := token.NewService(cfg.JWTSecret, time.Duration(cfg.CookieMaxAge)*time.Second)
	authService := auth.NewService(userRepo, hasher, tokenService)

	// 3. メトリクス
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		HealthChecker: db,
		AuthService:   authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieName:   cfg.CookieName,
			CookieMaxAge: cfg.CookieMaxAge,
			CookieSecure: cfg.CookieSecure,
			LoginPath:    "/login.html",
		},
		PublicDir:        cfg.PublicDir,
		PackDir:          cfg.PackAssemblyDir,
		InternalPrefixes: cfg.InternalPrefixes,
		Logger:           slog.Default(),
		Metrics:          collector,
		MetricsRegistry:  registry,
	})

	// 5. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("gate server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down gate server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("gate server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
