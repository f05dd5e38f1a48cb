// Package auth は認証処理（ログイン・トークン解決）を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/password"
	"github.com/hitoshi/authgate/internal/repository"
)

// TokenIssuer はトークン発行・検証のインターフェース。
// token.Serviceの部分集合として定義する。
type TokenIssuer interface {
	Issue(subject string) (string, error)
	Validate(tokenString string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   password.Hasher
	tokens   TokenIssuer
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, hasher password.Hasher, tokens TokenIssuer) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Login は資格情報を検証し、成功時にセッショントークンを発行する。
// ユーザー不在・パスワード不一致・無効化済みのいずれもErrInvalidCredentialsに揃える
// （どの要素が失敗したかを外部に漏らさない）。
// 古いパラメータのハッシュで照合に成功した場合はベストエフォートで再ハッシュする。
func (s *Service) Login(ctx context.Context, email, plaintext string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || plaintext == "" {
		return "", model.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.HashedPassword == "" {
		return "", model.ErrInvalidCredentials
	}

	match, needsRehash := s.hasher.Verify(plaintext, user.HashedPassword)
	if !match {
		return "", model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", model.ErrInvalidCredentials
	}

	// 再ハッシュ失敗は致命ではない（次回ログイン時に再試行される）
	if needsRehash {
		if rehashed, hashErr := s.hasher.Hash(plaintext); hashErr == nil {
			if updateErr := s.userRepo.UpdateHashedPassword(ctx, user.ID, rehashed); updateErr != nil {
				slog.Warn("failed to rehash password",
					slog.String("user_id", user.ID),
					slog.String("error", updateErr.Error()),
				)
			}
		}
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return tok, nil
}

// ResolveToken はトークンからユーザーを解決する3段パイプラインの後半2段を実行する。
// （トークン検証 → ID解決。Cookieからの抽出は呼び出し側のミドルウェアが行う。）
// 検証失敗・ユーザー不在・無効化済みのいずれもnilを返し、エラーにはしない。
// is_activeは毎リクエスト確認するため、無効化は次のリクエストから即座に効く。
func (s *Service) ResolveToken(ctx context.Context, tokenString string) (*model.User, error) {
	subject, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}

	return user, nil
}
