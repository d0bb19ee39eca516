package handler

import "context"

type authorizationContextKey struct{}

// WithAuthorization は Authorization ヘッダーの値をコンテキストに格納します。
func WithAuthorization(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, authorizationContextKey{}, header)
}

func authorizationFromContext(ctx context.Context) string {
	header, _ := ctx.Value(authorizationContextKey{}).(string)
	return header
}
