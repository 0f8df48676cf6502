package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind string

const (
	KindConfig     Kind = "config"
	KindLLM        Kind = "llm"
	KindTool       Kind = "tool"
	KindValidation Kind = "validation"
	KindFile       Kind = "file"
)

// Error is the base error type shared by every subsystem.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the kind of err, or the empty string for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Config(format string, args ...any) *Error     { return New(KindConfig, format, args...) }
func LLM(format string, args ...any) *Error        { return New(KindLLM, format, args...) }
func Tool(format string, args ...any) *Error       { return New(KindTool, format, args...) }
func Validation(format string, args ...any) *Error { return New(KindValidation, format, args...) }
func File(format string, args ...any) *Error       { return New(KindFile, format, args...) }
