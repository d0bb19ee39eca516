package auth

import (
	"errors"
	"fmt"

	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong は bcrypt の上限 (72 バイト) を超えるパスワードに対して返却されます。
var ErrPasswordTooLong = apperror.Wrap(apperror.KindValidation, bcrypt.ErrPasswordTooLong, "Password must be at most 72 bytes")

// PasswordHasher は bcrypt によるパスワードハッシュを提供します。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher は PasswordHasher を生成します。範囲外のコストは既定値に置き換えます。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードをハッシュ化します。
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(b), nil
}

// Compare はハッシュと平文が一致するかを返します。
func (h *PasswordHasher) Compare(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("auth: compare password: %w", err)
	}
}
