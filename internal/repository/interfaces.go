// Package repository はデータ永続化層を提供する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/authgate/internal/model"
)

// ErrEmailTaken はメールアドレスの一意制約違反を表す。
var ErrEmailTaken = errors.New("email already taken")

// UserRepository はユーザー永続化のインターフェース。
// Userレコードの唯一の書き込み境界であり、各書き込みは単一トランザクションで行う。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Create はユーザーを作成する。メールアドレスが重複する場合はErrEmailTakenを返す。
	Create(ctx context.Context, user *model.User) error
	// Replace は同一メールアドレスの既存行を削除し、新しい行を同一トランザクションで
	// 作成する。並行する読み取りには旧行か新行のどちらかのみが見える。
	Replace(ctx context.Context, user *model.User) error
	// DeleteByEmail は指定メールアドレスの行を削除し、削除行数を返す。
	DeleteByEmail(ctx context.Context, email string) (int64, error)
	// ListEmails は全ユーザーのメールアドレスを辞書順で返す。
	ListEmails(ctx context.Context) ([]string, error)
	// UpdateHashedPassword は保存済みハッシュを更新する（再ハッシュ用）。
	UpdateHashedPassword(ctx context.Context, id, hashedPassword string) error
}
