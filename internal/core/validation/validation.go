// Package validation は認証・社員入力に共通する形式チェックを提供します。
// 各関数は nil か、apperror.KindValidation のエラーを返します。
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
)

const (
	// MinPasswordLength はパスワードの最小文字数です。
	MinPasswordLength = 6
	// MaxPasswordBytes は bcrypt が扱えるパスワードの最大バイト数です。
	MaxPasswordBytes = 72
)

// Genders は許可される性別の値です。
var Genders = []string{"Male", "Female", "Other"}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateEmail はメールアドレスの必須・形式チェックを行います。
func ValidateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return apperror.Validation("Email is required")
	}
	if err := validate.Var(trimmed, "email"); err != nil {
		return apperror.Validation("Invalid email format")
	}
	return nil
}

// ValidatePassword はパスワードの必須・長さチェックを行います。
func ValidatePassword(password string) error {
	if password == "" {
		return apperror.Validation("Password is required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperror.Validation("Password must be at least 6 characters long")
	}
	if len(password) > MaxPasswordBytes {
		return apperror.Validation("Password must be at most 72 bytes")
	}
	return nil
}

// ValidateGender は指定された性別が許可値かを確認します。
// 値の有無の判定は呼び出し側で行います。
func ValidateGender(gender string) error {
	for _, g := range Genders {
		if gender == g {
			return nil
		}
	}
	return apperror.Validation("Gender must be one of: " + strings.Join(Genders, ", "))
}

// ValidateSignupInput はサインアップ入力を検証し、違反をすべて集約して返します。
func ValidateSignupInput(username, email, password string) error {
	var c apperror.Collector
	if IsBlank(username) {
		c.Add("Username is required")
	}
	c.Merge(ValidateEmail(email))
	c.Merge(ValidatePassword(password))
	return c.Err()
}

// ValidateLoginInput はログイン入力を検証します。
func ValidateLoginInput(usernameOrEmail, password string) error {
	var c apperror.Collector
	if IsBlank(usernameOrEmail) {
		c.Add("Username or email is required")
	}
	if IsBlank(password) {
		c.Add("Password is required")
	}
	return c.Err()
}

// IsBlank は空文字または空白のみの文字列かを判定します。
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
