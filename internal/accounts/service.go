// Package accounts はアカウント管理（作成・上書き・削除・一覧）のドメインロジックを提供する。
// オフライン管理ツールと初回起動時のブートストラップの両方から利用される。
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/password"
	"github.com/hitoshi/authgate/internal/repository"
)

// Service はアカウント管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	hasher   password.Hasher
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher password.Hasher) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// newUser はハッシュ化済みの新規ユーザーを組み立てる。IDは作成のたびに新規採番する。
func (s *Service) newUser(email, plaintext string, isSuperuser bool) (*model.User, error) {
	hashed, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	return &model.User{
		ID:             uuid.New().String(),
		Email:          strings.TrimSpace(email),
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    isSuperuser,
		IsVerified:     false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Create はユーザーを作成する。
// メールアドレス（大文字小文字を区別しない）が既に存在する場合はAlreadyExistsを返す。
func (s *Service) Create(ctx context.Context, email, plaintext string, isSuperuser bool) (*model.User, error) {
	user, err := s.newUser(email, plaintext, isSuperuser)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, model.NewAlreadyExistsError(user.Email)
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user created",
		slog.String("user_id", user.ID),
		slog.Bool("is_superuser", user.IsSuperuser),
	)
	return user, nil
}

// CreateOrOverwrite はユーザーを作成する。
// 既存の場合、forceがfalseならAlreadyExistsを返し、trueなら旧行を破棄して
// 新しい行を原子的に作成する。上書きは破壊的であり、旧IDは失われる
// （旧IDを参照する未失効トークンはID解決の失敗により自然に無効化される）。
// 戻り値のoverwrittenは上書きが発生した場合にtrue。
func (s *Service) CreateOrOverwrite(ctx context.Context, email, plaintext string, isSuperuser, force bool) (*model.User, bool, error) {
	user, err := s.Create(ctx, email, plaintext, isSuperuser)
	if err == nil {
		return user, false, nil
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAlreadyExists {
		return nil, false, err
	}
	if !force {
		return nil, false, err
	}

	user, err = s.newUser(email, plaintext, isSuperuser)
	if err != nil {
		return nil, false, err
	}
	if err := s.userRepo.Replace(ctx, user); err != nil {
		return nil, false, fmt.Errorf("ユーザーの上書きに失敗しました: %w", err)
	}

	slog.Info("user overwritten",
		slog.String("user_id", user.ID),
		slog.Bool("is_superuser", user.IsSuperuser),
	)
	return user, true, nil
}

// Remove は指定メールアドレスのユーザーを削除する。
// 該当行がない場合はNotFoundを返す（削除済みへの再実行もNotFound）。
func (s *Service) Remove(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	count, err := s.userRepo.DeleteByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}
	if count == 0 {
		return model.NewNotFoundError(email)
	}

	slog.Info("user removed", slog.Int64("count", count))
	return nil
}

// List は全ユーザーのメールアドレスを辞書順で返す。秘密情報は含まない。
func (s *Service) List(ctx context.Context) ([]string, error) {
	emails, err := s.userRepo.ListEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return emails, nil
}
