package handler

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/user"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

type loginArgs struct {
	UsernameOrEmail string
	Password        string
}

type signupArgs struct {
	Username string
	Email    string
	Password string
}

// Login はログインしてトークンを発行します。
func (r *Resolver) Login(ctx context.Context, args loginArgs) (*authPayloadResolver, error) {
	res, err := r.users.Login(ctx, user.LoginInput{
		UsernameOrEmail: args.UsernameOrEmail,
		Password:        args.Password,
	})
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &authPayloadResolver{result: res}, nil
}

// Signup はユーザーを登録してトークンを発行します。
func (r *Resolver) Signup(ctx context.Context, args signupArgs) (*authPayloadResolver, error) {
	res, err := r.users.Signup(ctx, user.SignupInput{
		Username: args.Username,
		Email:    args.Email,
		Password: args.Password,
	})
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &authPayloadResolver{result: res}, nil
}

type authPayloadResolver struct {
	result *user.AuthResult
}

func (a *authPayloadResolver) Token() string {
	return a.result.Token
}

func (a *authPayloadResolver) User() *userResolver {
	return &userResolver{u: a.result.User}
}

type userResolver struct {
	u *user.User
}

func (u *userResolver) ID() graphql.ID { return graphql.ID(u.u.ID) }
func (u *userResolver) Username() string { return u.u.Username }
func (u *userResolver) Email() string { return u.u.Email }
func (u *userResolver) CreatedAt() string { return formatTimestamp(u.u.CreatedAt) }
func (u *userResolver) UpdatedAt() string { return formatTimestamp(u.u.UpdatedAt) }
