package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Canonical error codes surfaced by the generation pipeline.
const (
	CodeInvalidInput           = "INVALID_INPUT"
	CodeSchemaValidationFailed = "SCHEMA_VALIDATION_FAILED"
	CodeUpstreamError          = "UPSTREAM_ERROR"
	CodeUpstreamTimeout        = "UPSTREAM_TIMEOUT"
	CodeCircuitOpen            = "CIRCUIT_OPEN"
	CodeRateLimited            = "RATE_LIMITED"
	CodeQuotaExceeded          = "QUOTA_EXCEEDED"
	CodeNotFound               = "NOT_FOUND"
	CodePreconditionFailed     = "PRECONDITION_FAILED"
	CodeInternal               = "INTERNAL_ERROR"
)

type Error struct {
	Status       int
	Code         string
	Retryable    bool
	RecoveryHint string
	Details      map[string]any
	Err          error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, retryable bool, err error) *Error {
	return &Error{Status: status, Code: code, Retryable: retryable, Err: err}
}

func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

func (e *Error) WithHint(hint string) *Error {
	e.RecoveryHint = hint
	return e
}

func InvalidInput(err error) *Error {
	return New(http.StatusUnprocessableEntity, CodeInvalidInput, false, err)
}

func SchemaValidationFailed(err error) *Error {
	return New(http.StatusBadGateway, CodeSchemaValidationFailed, false, err).
		WithHint("Try a narrower request and regenerate.")
}

func Upstream(err error) *Error {
	return New(http.StatusBadGateway, CodeUpstreamError, true, err).
		WithHint("Retry in a few seconds.")
}

func UpstreamTimeout(err error) *Error {
	return New(http.StatusGatewayTimeout, CodeUpstreamTimeout, true, err).
		WithHint("Retry in a few seconds.")
}

func CircuitOpen(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeCircuitOpen, true, err).
		WithHint("The model provider is degraded; retry after the cool-down.")
}

func RateLimited(err error) *Error {
	return New(http.StatusTooManyRequests, CodeRateLimited, true, err).
		WithHint("Slow down and retry shortly.")
}

func QuotaExceeded(err error) *Error {
	return New(http.StatusTooManyRequests, CodeQuotaExceeded, false, err).
		WithHint("Daily quota reached; retry tomorrow.")
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, false, err)
}

func PreconditionFailed(err error) *Error {
	return New(http.StatusConflict, CodePreconditionFailed, false, err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, true, err).
		WithHint("Retry the request. If this continues, contact support.")
}

// From extracts an *Error from err, wrapping unknown errors as INTERNAL_ERROR.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Is reports whether err carries the given canonical code.
func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
