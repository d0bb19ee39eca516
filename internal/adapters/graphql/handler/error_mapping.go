package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
)

const internalErrorMessage = "internal server error"

var kindCodes = map[apperror.Kind]string{
	apperror.KindValidation: "BAD_USER_INPUT",
	apperror.KindAuth:       "UNAUTHENTICATED",
	apperror.KindConflict:   "CONFLICT",
	apperror.KindNotFound:   "NOT_FOUND",
	apperror.KindInternal:   "INTERNAL_SERVER_ERROR",
}

// gqlError は extensions.code を伴う GraphQL エラーです。
type gqlError struct {
	message string
	code    string
	err     error
}

func (e *gqlError) Error() string {
	return e.message
}

func (e *gqlError) Unwrap() error {
	return e.err
}

func (e *gqlError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

func (r *Resolver) toGraphQLError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var gqlErr *gqlError
	if errors.As(err, &gqlErr) {
		return gqlErr
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		r.logger.ErrorContext(ctx, "unexpected error", slog.Any("error", err))
		return &gqlError{message: internalErrorMessage, code: kindCodes[apperror.KindInternal], err: err}
	}

	code, ok := kindCodes[appErr.Kind]
	if !ok {
		code = kindCodes[apperror.KindInternal]
	}
	if appErr.Kind == apperror.KindInternal {
		r.logger.ErrorContext(ctx, "internal error", slog.Any("error", err))
	}
	return &gqlError{message: appErr.Error(), code: code, err: err}
}
