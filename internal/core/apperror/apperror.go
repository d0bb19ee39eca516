package apperror

import (
	"errors"
	"strings"
)

// Kind はエラーの分類を表します。
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// Error は分類付きのアプリケーションエラーです。
// Messages は利用者向けのメッセージで、複数ある場合は ", " で連結して表示します。
type Error struct {
	Kind     Kind
	Messages []string
	Err      error
}

// New は指定した分類のエラーを生成します。
func New(kind Kind, messages ...string) *Error {
	return &Error{Kind: kind, Messages: messages}
}

// Wrap は原因となるエラーを保持したまま分類付きエラーを生成します。
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Messages: []string{message}, Err: err}
}

// Validation は入力検証エラーを生成します。
func Validation(messages ...string) *Error { return New(KindValidation, messages...) }

// Auth は認証エラーを生成します。
func Auth(message string) *Error { return New(KindAuth, message) }

// Conflict は一意性違反エラーを生成します。
func Conflict(message string) *Error { return New(KindConflict, message) }

// NotFound は対象が存在しない場合のエラーを生成します。
func NotFound(message string) *Error { return New(KindNotFound, message) }

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return string(e.Kind)
	}
	return strings.Join(e.Messages, ", ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf は err の分類を返します。分類されていないエラーは KindInternal です。
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Collector は検証エラーのメッセージを集約します。
type Collector struct {
	messages []string
}

// Add はメッセージを追加します。
func (c *Collector) Add(message string) {
	c.messages = append(c.messages, message)
}

// Merge は err が分類付きエラーであればそのメッセージを、そうでなければ err.Error() を追加します。
func (c *Collector) Merge(err error) {
	if err == nil {
		return
	}
	var appErr *Error
	if errors.As(err, &appErr) && len(appErr.Messages) > 0 {
		c.messages = append(c.messages, appErr.Messages...)
		return
	}
	c.messages = append(c.messages, err.Error())
}

// Err は集約したメッセージを検証エラーとして返します。メッセージが無ければ nil です。
func (c *Collector) Err() error {
	if len(c.messages) == 0 {
		return nil
	}
	messages := make([]string, len(c.messages))
	copy(messages, c.messages)
	return Validation(messages...)
}
