package user

import "github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"

var (
	// ErrUserNotFound はユーザーが存在しない場合に返却されます。
	ErrUserNotFound = apperror.NotFound("User not found")
	// ErrUsernameAlreadyExists はユーザー名重複時に返却されます。
	ErrUsernameAlreadyExists = apperror.Conflict("Username already exists")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = apperror.Conflict("Email already exists")
	// ErrInvalidCredentials はログイン情報が一致しない場合に返却されます。
	ErrInvalidCredentials = apperror.Auth("Invalid username/email or password")
	// ErrAuthenticationRequired は Authorization ヘッダーが無い場合に返却されます。
	ErrAuthenticationRequired = apperror.Auth("Authentication required. Please provide a token.")
)
