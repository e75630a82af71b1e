package services

import (
	"errors"
	"fmt"
)

// 错误分类，控制器据此映射 HTTP 状态码
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Error 带分类的业务错误，Error() 只返回面向客户端的信息
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, format, args...)
}

func unauthorizedError(format string, args ...interface{}) error {
	return newError(ErrUnauthorized, format, args...)
}

func notFoundError(format string, args ...interface{}) error {
	return newError(ErrNotFound, format, args...)
}
