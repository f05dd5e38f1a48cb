// Package password はパスワードの一方向ハッシュ化と検証を提供する。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はパスワードハッシュ化のインターフェース。
// 将来argon2等に差し替え可能にするための抽象化。
type Hasher interface {
	// Hash は平文パスワードをソルト付きハッシュに変換する。
	Hash(plaintext string) (string, error)
	// Verify は平文とハッシュを定数時間で照合する。
	// needsRehashは照合成功かつハッシュのパラメータが古い場合にtrueを返す。
	Verify(plaintext, hashed string) (match bool, needsRehash bool)
}

// BcryptHasher はbcryptによるHasher実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptHasherを生成する。
// costが範囲外の場合はbcrypt.DefaultCostを使用する。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash は平文パスワードをbcryptハッシュに変換する。
// ソルトはbcrypt内部で個別に生成される。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify は平文とハッシュを照合する。
// bcrypt.CompareHashAndPasswordは不一致位置によらず定数時間で比較する。
// 照合成功かつ保存時のコストが現在の設定より低い場合、needsRehashがtrueになる。
func (h *BcryptHasher) Verify(plaintext, hashed string) (match bool, needsRehash bool) {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)); err != nil {
		// 不一致・ハッシュ破損のいずれも照合失敗として扱う
		return false, false
	}

	storedCost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return true, false
	}
	return true, storedCost < h.cost
}

// compile-time interface check
var _ Hasher = (*BcryptHasher)(nil)
