package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryCache     Category = "cache"
	CategorySnapshot  Category = "snapshot"
	CategoryConfig    Category = "config"
	CategoryTransport Category = "transport"
)

// CacheError is a structured error with a stable code and a fix suggestion.
type CacheError struct {
	// Code is a unique error identifier (e.g., "C001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *CacheError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a CacheError with the same non-empty code.
func (e *CacheError) Is(target error) bool {
	t, ok := target.(*CacheError)
	if !ok || t == nil {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithDetail returns a copy of e with an explanation of this occurrence.
// e itself is not modified, so package-level sentinels stay intact.
func (e *CacheError) WithDetail(format string, args ...any) *CacheError {
	c := *e
	c.Detail = fmt.Sprintf(format, args...)
	return &c
}

// WithSuggestion returns a copy of e with a fix suggestion.
func (e *CacheError) WithSuggestion(s string) *CacheError {
	c := *e
	c.Suggestion = s
	return &c
}

// Wrap returns a copy of e wrapping err.
func (e *CacheError) Wrap(err error) *CacheError {
	c := *e
	c.Wrapped = err
	return &c
}

// New creates a CacheError from a registered error code.
func New(code string) *CacheError {
	template, ok := GetTemplate(code)
	if !ok {
		return &CacheError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &CacheError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a CacheError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *CacheError {
	return &CacheError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a CacheError with the given code.
// An err that already is a CacheError is returned unchanged.
func FromError(err error, code string) *CacheError {
	if err == nil {
		return nil
	}
	var ce *CacheError
	if stderrors.As(err, &ce) {
		return ce
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first CacheError in err's chain, or "".
func CodeOf(err error) string {
	var ce *CacheError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// Is reports whether any error in err's chain matches target.
// It is errors.Is from the standard library.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// It is errors.As from the standard library.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
