package user

import "time"

// User はユーザーエンティティです。PasswordHash は外部へ返却しません。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
