// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

// Kind classifies a domain failure. Each kind maps to exactly one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindConflict
	KindInvalidState
	KindQuotaExceeded
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindQuotaExceeded:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Business rule codes surfaced in APIError.Code.
const (
	CodeAlreadyOpenToday           = "AlreadyOpenToday"
	CodePendingClosureFromPriorDay = "PendingClosureFromPriorDay"
	CodeAlreadyCancelled           = "AlreadyCancelled"
	CodeOperatorAlreadyBound       = "OperatorAlreadyBound"
	CodeDuplicateDrawerName        = "DuplicateDrawerName"
	CodeInvalidPaymentMethod       = "InvalidPaymentMethod"
	CodeOrderAlreadyLinked         = "OrderAlreadyLinked"
	CodeDuplicateOperatorCode      = "DuplicateOperatorCode"
	CodeInvalidStatus              = "InvalidStatus"
	CodeInsufficientPayment        = "InsufficientPayment"
	CodeInvalidState               = "InvalidState"
	CodeQuotaExceeded              = "QuotaExceeded"
)

// Error is a classified domain error returned by the service layer.
// Handlers translate it into an APIError with the matching status.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Response builds the client-facing envelope.
func (e *Error) Response() *APIError {
	return &APIError{Detail: e.Message, Code: e.Code}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Code: CodeInvalidState, Message: msg}
}

func QuotaExceeded(msg string) *Error {
	return &Error{Kind: KindQuotaExceeded, Code: CodeQuotaExceeded, Message: msg}
}

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

// As extracts a domain error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a domain error of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// HasCode reports whether err is a domain error carrying code.
func HasCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
