package apperr

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindNotFound       Kind = "NOT_FOUND"
	KindTransientFetch Kind = "TRANSIENT_FETCH"
	KindAuthentication Kind = "AUTHENTICATION"
	KindStorage        Kind = "STORAGE"
)

// Error is a classified failure carrying the stack of the place it was raised.
type Error struct {
	Kind    Kind
	Message string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *Error {
	var stack []byte
	var stackErr *goerrors.Error
	switch {
	case err == nil:
		stack = goerrors.New(message).Stack()
	case errors.As(err, &stackErr):
		stack = stackErr.Stack()
	default:
		stack = goerrors.Wrap(err, 2).Stack()
	}

	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func Validation(message string, err error) *Error {
	return New(KindValidation, message, err)
}

func NotFound(message string, err error) *Error {
	return New(KindNotFound, message, err)
}

func TransientFetch(message string, err error) *Error {
	return New(KindTransientFetch, message, err)
}

func Authentication(message string, err error) *Error {
	return New(KindAuthentication, message, err)
}

func Storage(message string, err error) *Error {
	return New(KindStorage, message, err)
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
