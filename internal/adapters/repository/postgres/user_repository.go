package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/user"
	pgdb "github.com/ogurasousui/codex-graphql-employee/internal/platform/db/postgres"
)

const (
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"

	usersUsernameKey = "users_username_key"
	usersEmailKey    = "users_email_key"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

// UserRepository は PostgreSQL を利用したユーザー永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create はユーザーを新規作成します。
// 一意制約違反は制約名に応じてユーザー名またはメールアドレスの重複エラーになります。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (username, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+userColumns+`
    `, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return created, nil
}

// FindByID はIDでユーザーを取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)
}

// FindByUsername はユーザー名でユーザーを取得します。
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE username = $1
         LIMIT 1
    `, username)
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)
}

// FindByUsernameOrEmail はユーザー名またはメールアドレスに一致するユーザーを取得します。
// 両方に一致する行がある場合はユーザー名の一致を優先します。
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	return r.findOne(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE username = $1 OR email = $2
         ORDER BY (username = $1) DESC
         LIMIT 1
    `, username, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, args ...any) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	found, err := scanUser(exec.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translatePgError(err)
	}
	return found, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id                   string
		username             string
		email                string
		passwordHash         string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &username, &email, &passwordHash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	return &user.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt.UTC(),
		UpdatedAt:    updatedAt.UTC(),
	}, nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			if pgErr.ConstraintName == usersUsernameKey {
				return user.ErrUsernameAlreadyExists
			}
			return user.ErrEmailAlreadyExists
		}
	}
	return err
}
