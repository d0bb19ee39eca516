package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/user"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

type stubRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

var userRowColumns = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func TestScanUser_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()
	updatedAt := createdAt.Add(time.Minute)

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 6 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "user-1"
		*(dest[1].(*string)) = "taro"
		*(dest[2].(*string)) = "taro@example.com"
		*(dest[3].(*string)) = "$2a$10$hash"
		*(dest[4].(*time.Time)) = createdAt
		*(dest[5].(*time.Time)) = updatedAt
		return nil
	}}

	u, err := scanUser(row)
	if err != nil {
		t.Fatalf("scanUser returned error: %v", err)
	}

	if u.ID != "user-1" || u.Username != "taro" || u.Email != "taro@example.com" || u.PasswordHash != "$2a$10$hash" {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestScanUser_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanUser(row)
	if !errors.Is(err, user.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTranslatePgError(t *testing.T) {
	t.Parallel()

	usernameErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersUsernameKey}
	if !errors.Is(translatePgError(usernameErr), user.ErrUsernameAlreadyExists) {
		t.Fatalf("expected username exists error mapping")
	}

	emailErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersEmailKey}
	if !errors.Is(translatePgError(emailErr), user.ErrEmailAlreadyExists) {
		t.Fatalf("expected email exists error mapping")
	}

	otherErr := errors.New("random")
	if translatePgError(otherErr) != otherErr {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestUserRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	query := regexp.QuoteMeta(`INSERT INTO users (username, email, password_hash, created_at, updated_at)`)
	mock.ExpectQuery(query).
		WithArgs("taro", "taro@example.com", "hash", now, now).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("8d0f9a4e-6c3b-4c53-9d0e-0f1f7c1a2b3c", "taro", "taro@example.com", "hash", now, now))

	created, err := repo.Create(context.Background(), &user.User{
		Username:     "taro",
		Email:        "taro@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != "8d0f9a4e-6c3b-4c53-9d0e-0f1f7c1a2b3c" {
		t.Fatalf("unexpected id %q", created.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("taro", "taro@example.com", "hash", now, now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: usersUsernameKey})

	_, err = repo.Create(context.Background(), &user.User{
		Username:     "taro",
		Email:        "taro@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if !errors.Is(err, user.ErrUsernameAlreadyExists) {
		t.Fatalf("expected ErrUsernameAlreadyExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_FindByUsernameOrEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)
	now := time.Now().UTC()

	query := regexp.QuoteMeta(`WHERE username = $1 OR email = $2`)
	mock.ExpectQuery(query).
		WithArgs("Taro@Example.com", "taro@example.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("user-1", "taro", "taro@example.com", "hash", now, now))
	mock.ExpectQuery(query).
		WithArgs("nobody", "nobody").
		WillReturnRows(pgxmock.NewRows(userRowColumns))

	found, err := repo.FindByUsernameOrEmail(context.Background(), "Taro@Example.com", "taro@example.com")
	if err != nil {
		t.Fatalf("FindByUsernameOrEmail returned error: %v", err)
	}
	if found.Username != "taro" {
		t.Fatalf("unexpected user %+v", found)
	}

	if _, err := repo.FindByUsernameOrEmail(context.Background(), "nobody", "nobody"); !errors.Is(err, user.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
