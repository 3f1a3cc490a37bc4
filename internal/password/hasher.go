// Package password はパスワードのハッシュ化と照合を提供します。
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost は bcrypt の既定コストです。
const DefaultCost = 12

// Hasher は bcrypt によるソルト付き一方向ハッシュを扱います。
type Hasher struct {
	cost int
}

// NewHasher は指定コストの Hasher を作成します。範囲外のコストは DefaultCost に置き換えます。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文パスワードのハッシュを返します。
func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify は平文とハッシュが一致するかを返します。
// 不一致は (false, nil)、ハッシュ形式の不正などはエラーとして返します。
func (h *Hasher) Verify(plain, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
}
