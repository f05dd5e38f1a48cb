package app

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/hitoshi/authgate/internal/accounts"
	"github.com/hitoshi/authgate/internal/config"
	"github.com/hitoshi/authgate/internal/database"
	"github.com/hitoshi/authgate/internal/password"
	"github.com/hitoshi/authgate/internal/repository"
)

// addOptions はusers addサブコマンドのオプション。
type addOptions struct {
	email    string
	password string
	admin    bool
	force    bool
}

// parseAddArgs はusers addの引数を解析する。
// 書式: users add <email> [--password pw] [--admin] [--force]
func parseAddArgs(args []string) (*addOptions, error) {
	fs := flag.NewFlagSet("users add", flag.ContinueOnError)
	opts := &addOptions{}
	fs.StringVar(&opts.password, "password", "", "パスワード（省略時はプロンプトで入力）")
	fs.BoolVar(&opts.admin, "admin", false, "スーパーユーザーとして作成する")
	fs.BoolVar(&opts.force, "force", false, "既存ユーザーを上書きする")

	if len(args) == 0 {
		return nil, fmt.Errorf("users add: メールアドレスを指定してください")
	}
	opts.email = strings.TrimSpace(args[0])
	if opts.email == "" || strings.HasPrefix(opts.email, "-") {
		return nil, fmt.Errorf("users add: メールアドレスを指定してください")
	}

	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	return opts, nil
}

// runUsers はオフラインのアカウント管理ツールを実行する。
// ネットワークゲートを経由せず、Credential Storeを直接操作する。
// 成否によらずDB接続を確実に閉じる。
func runUsers(cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: users <list|add|remove> [options]")
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	svc := accounts.NewService(
		repository.NewPostgresUserRepo(db),
		password.NewBcryptHasher(0),
	)
	ctx := context.Background()

	switch args[0] {
	case "list":
		return runUsersList(ctx, svc, out)
	case "add":
		opts, err := parseAddArgs(args[1:])
		if err != nil {
			return err
		}
		return runUsersAdd(ctx, svc, opts, out)
	case "remove":
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return fmt.Errorf("users remove: メールアドレスを指定してください")
		}
		return runUsersRemove(ctx, svc, strings.TrimSpace(args[1]), out)
	default:
		return fmt.Errorf("unknown users subcommand: %s", args[0])
	}
}

// runUsersList は登録済みメールアドレスの一覧を出力する。
func runUsersList(ctx context.Context, svc *accounts.Service, out io.Writer) error {
	emails, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		fmt.Fprintln(out, "No users configured.")
		return nil
	}
	for _, email := range emails {
		fmt.Fprintln(out, email)
	}
	return nil
}

// runUsersAdd はユーザーを作成（またはforce指定時に上書き）する。
func runUsersAdd(ctx context.Context, svc *accounts.Service, opts *addOptions, out io.Writer) error {
	plaintext := opts.password
	if plaintext == "" {
		var err error
		plaintext, err = promptPassword(opts.email)
		if err != nil {
			return err
		}
	}
	if plaintext == "" {
		return fmt.Errorf("パスワードを空にすることはできません")
	}

	user, overwritten, err := svc.CreateOrOverwrite(ctx, opts.email, plaintext, opts.admin, opts.force)
	if err != nil {
		return err
	}

	if overwritten {
		fmt.Fprintf(out, "User overwritten: %s (superuser=%t)\n", user.Email, user.IsSuperuser)
	} else {
		fmt.Fprintf(out, "User created: %s (superuser=%t)\n", user.Email, user.IsSuperuser)
	}
	return nil
}

// runUsersRemove はユーザーを削除する。
func runUsersRemove(ctx context.Context, svc *accounts.Service, email string, out io.Writer) error {
	if err := svc.Remove(ctx, email); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed user: %s\n", email)
	return nil
}

// promptPassword は端末からエコーなしでパスワードを2回入力させる。
func promptPassword(email string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", email)
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("パスワードが一致しません")
	}
	return string(first), nil
}
