// Package token は署名付きセッショントークンの発行と検証を提供する。
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/authgate/internal/model"
)

// claims はトークンに埋め込む情報。subjectにUser.IDを保持する。
type claims struct {
	jwt.RegisteredClaims
}

// Service はHMAC署名付きJWTの発行・検証を行う。
// シークレットは生成時に注入し、プロセス生存中は不変として扱う。
// 発行・検証は純粋なCPU処理であり、共有状態を持たないため並行呼び出しに安全。
type Service struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(secret string, lifetime time.Duration) *Service {
	return &Service{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// NewServiceWithClock は時刻関数を差し替えたServiceを生成する。テスト用。
func NewServiceWithClock(secret string, lifetime time.Duration, now func() time.Time) *Service {
	return &Service{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      now,
	}
}

// Issue はsubject（ユーザーID）を埋め込んだ署名付きトークンを発行する。
// 有効期限は発行時刻 + lifetime の絶対時刻。
func (s *Service) Issue(subject string) (string, error) {
	now := s.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	})

	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate はトークンを検証し、subject（ユーザーID）を返す。
// 署名不正・ペイロード破損・期限切れはすべてmodel.ErrInvalidTokenに揃える
// （失敗理由を区別させないことでオラクル攻撃を防ぐ）。
// 検証アルゴリズムはHS256に固定し、トークン側のalgフィールドは信用しない。
// 有効期限は排他的に扱う: now == expires_at は期限切れ。
func (s *Service) Validate(tokenString string) (string, error) {
	c := &claims{}

	t, err := jwt.ParseWithClaims(tokenString, c,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !t.Valid {
		return "", model.ErrInvalidToken
	}

	// 境界時刻の扱いを排他的に固定する
	if c.ExpiresAt == nil || !s.now().Before(c.ExpiresAt.Time) {
		return "", model.ErrInvalidToken
	}
	if c.Subject == "" {
		return "", model.ErrInvalidToken
	}

	return c.Subject, nil
}

// Lifetime は発行するトークンの有効期間を返す。
// Session TransportのCookie有効期間はこの値と常に一致させること。
func (s *Service) Lifetime() time.Duration {
	return s.lifetime
}
