package domain

import (
	"errors"
	"time"
)

// ErrorKind is the tag every gateway failure is normalized to
type ErrorKind string

const (
	KindValidation         ErrorKind = "ValidationError"
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindNotFound           ErrorKind = "NotFound"
	KindConflict           ErrorKind = "Conflict"
	KindFederatedAuth      ErrorKind = "FederatedAuthError"
	KindInvalidCode        ErrorKind = "InvalidCode"
	KindRateLimited        ErrorKind = "RateLimited"
	KindSignatureInvalid   ErrorKind = "SignatureInvalid"
	KindOrderMismatch      ErrorKind = "OrderMismatch"
	KindUnauthenticated    ErrorKind = "Unauthenticated"
	KindForbidden          ErrorKind = "Forbidden"
	KindNetwork            ErrorKind = "NetworkError"
	KindServer             ErrorKind = "ServerError"
	KindSuperseded         ErrorKind = "Superseded"
	KindCheckoutInProgress ErrorKind = "CheckoutInProgress"
	KindUnknown            ErrorKind = "Unknown"
)

// Local input errors
var (
	ErrValidation = errors.New("invalid input")
)

// Identity errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("account not found")
	ErrConflict           = errors.New("account already registered")
	ErrFederatedAuth      = errors.New("federated login rejected")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrRateLimited        = errors.New("too many requests")
	ErrUnauthenticated    = errors.New("session expired or invalid")
	ErrForbidden          = errors.New("access forbidden")
)

// Payment errors
var (
	ErrSignatureInvalid   = errors.New("payment signature invalid")
	ErrOrderMismatch      = errors.New("payment order mismatch")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// Transport errors
var (
	ErrNetwork = errors.New("network error")
	ErrServer  = errors.New("server error")
)

// ErrSuperseded marks a result discarded because a more recent action won
var ErrSuperseded = errors.New("superseded by a more recent action")

var sentinelByKind = map[ErrorKind]error{
	KindValidation:         ErrValidation,
	KindInvalidCredentials: ErrInvalidCredentials,
	KindNotFound:           ErrNotFound,
	KindConflict:           ErrConflict,
	KindFederatedAuth:      ErrFederatedAuth,
	KindInvalidCode:        ErrInvalidCode,
	KindRateLimited:        ErrRateLimited,
	KindSignatureInvalid:   ErrSignatureInvalid,
	KindOrderMismatch:      ErrOrderMismatch,
	KindUnauthenticated:    ErrUnauthenticated,
	KindForbidden:          ErrForbidden,
	KindNetwork:            ErrNetwork,
	KindServer:             ErrServer,
	KindSuperseded:         ErrSuperseded,
	KindCheckoutInProgress: ErrCheckoutInProgress,
}

// Error is a classified failure. errors.Is matches it against the kind's sentinel
// and against the wrapped cause, if any.
type Error struct {
	Kind       ErrorKind
	Message    string
	Status     int
	RetryAfter time.Duration
	Err        error
}

// NewError creates a classified error with a human-readable message
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError classifies an underlying error
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		if s, ok := sentinelByKind[e.Kind]; ok {
			msg = s.Error()
		}
	}
	if msg == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinelByKind[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the tag of err. Plain sentinels are recognised too.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	for kind, sentinel := range sentinelByKind {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}

// UserMessage returns the text shown in a transient notification
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	if s, ok := sentinelByKind[KindOf(err)]; ok {
		return s.Error()
	}
	return "something went wrong, please try again"
}

// IsUnauthenticated reports whether err demands a forced logout
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}
