// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// 運用者向けの原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, account, validation, system
	Action   string // 対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInsecureConfig     = "INSECURE_CONFIG"
)

// ErrInvalidCredentials はログイン失敗を表すセンチネルエラー。
// ユーザー不在とパスワード不一致を区別しない（ユーザー列挙攻撃対策）。
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken はトークン検証失敗を表すセンチネルエラー。
// 署名不正・ペイロード破損・期限切れのいずれも区別しない。
var ErrInvalidToken = errors.New("invalid or expired token")

// NewAlreadyExistsError はメールアドレス重複エラーを生成する。
// 運用者が修正できるよう、衝突したメールアドレスを含める。
func NewAlreadyExistsError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyExists,
		Message:  fmt.Sprintf("ユーザーは既に存在します: %s", email),
		Category: "account",
		Action:   "上書きする場合は --force を指定してください。",
	}
}

// NewNotFoundError はユーザー不在エラーを生成する。
func NewNotFoundError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("ユーザーが見つかりません: %s", email),
		Category: "account",
		Action:   "メールアドレスを確認してください。",
	}
}

// NewInsecureConfigError は本番モードでの危険な設定を表す起動時エラーを生成する。
func NewInsecureConfigError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeInsecureConfig,
		Message:  fmt.Sprintf("安全でない設定のため起動できません: %s", detail),
		Category: "system",
		Action:   "環境変数を設定してから再起動してください。",
	}
}
