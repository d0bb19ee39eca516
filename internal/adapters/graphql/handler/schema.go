package handler

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/employee"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/user"
)

//go:embed schema.graphql
var schemaSDL string

// Resolver は Query と Mutation のルートリゾルバです。
type Resolver struct {
	users     user.UseCase
	employees employee.UseCase
	logger    *slog.Logger
}

// NewResolver は Resolver を生成します。
func NewResolver(users user.UseCase, employees employee.UseCase, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{users: users, employees: employees, logger: logger}
}

// NewSchema はスキーマを解析し、リゾルバを結び付けた実行可能スキーマを返します。
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, r, graphql.Logger(panicLogger{logger: r.logger}))
	if err != nil {
		return nil, fmt.Errorf("graphql: parse schema: %w", err)
	}
	return schema, nil
}

type panicLogger struct {
	logger *slog.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.ErrorContext(ctx, "graphql resolver panic", slog.Any("panic", value))
}

// authenticate は保護された操作の前に呼び出し元を解決します。
func (r *Resolver) authenticate(ctx context.Context) (*user.User, error) {
	u, err := r.users.Authenticate(ctx, authorizationFromContext(ctx))
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return u, nil
}
