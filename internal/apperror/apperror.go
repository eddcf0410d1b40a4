package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindProvider     Kind = "provider"
	KindParse        Kind = "parse"
	KindInternal     Kind = "internal"
)

// Error carries a Kind so transports can map failures without string matching.
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

// Is matches sentinels by kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func E(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Provider(message string, cause error) error {
	return &Error{Kind: KindProvider, Message: message, Cause: cause}
}

func Internal(message string, cause error) error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns KindInternal for errors that were never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrSessionNotFound     = &Error{Kind: KindNotFound, Message: "chat session not found"}
	ErrSessionForbidden    = &Error{Kind: KindUnauthorized, Message: "chat session belongs to another user"}
	ErrDocumentNotFound    = &Error{Kind: KindNotFound, Message: "document not found"}
	ErrDocumentForbidden   = &Error{Kind: KindUnauthorized, Message: "document belongs to another user"}
	ErrUnsupportedFileType = &Error{Kind: KindValidation, Message: "unsupported file type"}
	ErrEmptyContent        = &Error{Kind: KindValidation, Message: "content is empty"}
	ErrDimensionMismatch   = &Error{Kind: KindProvider, Message: "embedding dimension mismatch"}
	ErrEmptyModelResponse  = &Error{Kind: KindProvider, Message: "model returned an empty response"}
)
