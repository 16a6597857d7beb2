package ragErrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInvalidInput              Kind = "invalid_input"
	KindEmbedderUnavailable       Kind = "embedder_unavailable"
	KindEmbedderContractViolation Kind = "embedder_contract_violation"
	KindIndexUnavailable          Kind = "index_unavailable"
)

// sentinels for errors.Is
var (
	ErrInvalidInput              = &Error{Kind: KindInvalidInput}
	ErrEmbedderUnavailable       = &Error{Kind: KindEmbedderUnavailable}
	ErrEmbedderContractViolation = &Error{Kind: KindEmbedderContractViolation}
	ErrIndexUnavailable          = &Error{Kind: KindIndexUnavailable}
)

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrInvalidInput) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == "" && t.Err == nil
}

func New(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func InvalidInput(op string, format string, args ...any) *Error {
	return New(KindInvalidInput, op, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// EnsureKind keeps an already typed error and wraps anything else as kind.
func EnsureKind(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return Wrap(kind, op, err)
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindEmbedderUnavailable, KindIndexUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
