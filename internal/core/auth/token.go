package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
)

// DefaultTokenTTL はトークンの既定の有効期間です。
const DefaultTokenTTL = 7 * 24 * time.Hour

const bearerPrefix = "Bearer "

var (
	// ErrMissingSecret は署名鍵が設定されていない場合に返却されます。
	ErrMissingSecret = errors.New("auth: signing secret must be set")
	// ErrInvalidToken は署名不正・期限切れ・形式不正のトークンに対して返却されます。
	ErrInvalidToken = apperror.Auth("Invalid or expired token")
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Identity はトークンに埋め込む利用者情報です。
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// Claims はセッショントークンのクレームです。
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager は HS256 で署名したセッショントークンの発行と検証を行います。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

// NewTokenManager は TokenManager を生成します。secret が空の場合はエラーを返します。
func NewTokenManager(secret []byte, ttl time.Duration, clock Clock) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if clock == nil {
		clock = realClock{}
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenManager{secret: key, ttl: ttl, clock: clock}, nil
}

// Generate は利用者情報を埋め込んだトークンを発行します。
func (m *TokenManager) Generate(id Identity) (string, error) {
	now := m.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   id.UserID,
		Username: id.Username,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたクレームを返します。
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindAuth, err, ErrInvalidToken.Error())
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken は Authorization ヘッダーの値からトークンを取り出します。
// "Bearer <token>" 形式と生のトークンの両方を受け付けます。
func BearerToken(header string) string {
	trimmed := strings.TrimSpace(header)
	if strings.HasPrefix(trimmed, bearerPrefix) {
		return strings.TrimSpace(trimmed[len(bearerPrefix):])
	}
	return trimmed
}
