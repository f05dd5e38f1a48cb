// Package model はドメインモデルを定義する。
package model

import "time"

// User は認証対象のアカウントを表す。
// Emailはログイン識別子であり、表示名としても使用する（大文字小文字を区別しない）。
// HashedPasswordはパスワードハッシュのみを保持し、平文は一切保存しない。
type User struct {
	ID             string
	Email          string
	HashedPassword string
	IsActive       bool
	IsSuperuser    bool
	IsVerified     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
