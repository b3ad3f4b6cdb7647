package util

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindForbidden         ErrorKind = "forbidden"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindConflict          ErrorKind = "conflict"
	KindNoQuestions       ErrorKind = "no_questions"
	KindRemoteUnavailable ErrorKind = "remote_unavailable"
)

// AppError 业务错误，Kind 决定 HTTP 状态码，Fields 为逐字段校验信息
type AppError struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

// FieldError 单个字段校验失败
func FieldError(field, message string) *AppError {
	return NewValidationError(message, map[string]string{field: message})
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func NewForbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

var ErrNoQuestions = &AppError{Kind: KindNoQuestions, Message: "No quiz questions found for this lesson"}

// KindOf 取错误分类，非 AppError 返回空
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

var (
	ErrInvalidCredentials = NewUnauthorized("Invalid email or password")
	ErrEmailRegistered    = NewConflict("Email is already registered")
)
