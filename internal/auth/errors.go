package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies an authentication or profile write failure. The
// string values are the service error codes.
type ErrorKind string

const (
	KindUserNotFound    ErrorKind = "auth/user-not-found"
	KindWrongPassword   ErrorKind = "auth/wrong-password"
	KindInvalidEmail    ErrorKind = "auth/invalid-email"
	KindTooManyRequests ErrorKind = "auth/too-many-requests"
	KindNetworkFailure  ErrorKind = "auth/network-request-failed"
	KindEmailInUse      ErrorKind = "auth/email-already-in-use"
	KindWeakPassword    ErrorKind = "auth/weak-password"
	KindUnknown         ErrorKind = "auth/unknown"
)

// Error is returned by Service implementations.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("auth: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error with a formatted cause.
func Errorf(op string, kind ErrorKind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf classifies any error. Canceled or timed out requests count as
// network failures; anything unclassified is KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var authErr *Error
	if errors.As(err, &authErr) && authErr.Kind != "" {
		return authErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetworkFailure
	}
	return KindUnknown
}
