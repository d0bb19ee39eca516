package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/auth"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/validation"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TokenIssuer はセッショントークンの発行と検証を行います。
type TokenIssuer interface {
	Generate(id auth.Identity) (string, error)
	Verify(token string) (*auth.Claims, error)
}

// PasswordHasher はパスワードのハッシュ化と照合を行います。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

// Service はユーザーに関するユースケースをまとめます。
type Service struct {
	repo   Repository
	tokens TokenIssuer
	hasher PasswordHasher
	clock  Clock
}

// UseCase はユーザーユースケースの公開インターフェースです。
type UseCase interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Authenticate(ctx context.Context, authorization string) (*User, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tokens TokenIssuer, hasher PasswordHasher, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, tokens: tokens, hasher: hasher, clock: clock}
}

// SignupInput はサインアップ時の入力です。
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput はログイン時の入力です。
type LoginInput struct {
	UsernameOrEmail string
	Password        string
}

// AuthResult は発行したトークンと対象ユーザーです。
type AuthResult struct {
	Token string
	User  *User
}

// Signup はユーザーを登録し、トークンを発行します。
func (s *Service) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if err := validation.ValidateSignupInput(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	email := normalizeEmail(in.Email)

	if err := s.ensureNotExists(ctx, username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	created, err := s.repo.Create(ctx, &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return s.issue(created)
}

// Login はユーザー名またはメールアドレスとパスワードで認証し、トークンを発行します。
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.ValidateLoginInput(in.UsernameOrEmail, in.Password); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(in.UsernameOrEmail)
	found, err := s.repo.FindByUsernameOrEmail(ctx, key, strings.ToLower(key))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Compare(found.PasswordHash, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(found)
}

// Authenticate は Authorization ヘッダーの値から呼び出し元のユーザーを解決します。
func (s *Service) Authenticate(ctx context.Context, authorization string) (*User, error) {
	token := auth.BearerToken(authorization)
	if token == "" {
		return nil, ErrAuthenticationRequired
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, authenticationFailed(err)
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, authenticationFailed(ErrUserNotFound)
	}

	found, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, authenticationFailed(err)
		}
		return nil, err
	}

	return found, nil
}

func (s *Service) issue(u *User) (*AuthResult, error) {
	token, err := s.tokens.Generate(auth.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	})
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *Service) ensureNotExists(ctx context.Context, username, email string) error {
	byName, err := s.repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if byName != nil {
		return ErrUsernameAlreadyExists
	}

	byEmail, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if byEmail != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func authenticationFailed(err error) error {
	return apperror.Wrap(apperror.KindAuth, err, "Authentication failed: "+err.Error())
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
