package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes failure semantics across the write and read paths.
type ErrorCode string

const (
	CodeValidation                ErrorCode = "validation"
	CodeNotFound                  ErrorCode = "not_found"
	CodeConflict                  ErrorCode = "conflict"
	CodeClassificationUnavailable ErrorCode = "classification_unavailable"
	CodePersistence               ErrorCode = "persistence"
	CodeRetryable                 ErrorCode = "retryable"
	CodeInternal                  ErrorCode = "internal"
)

// Validation rule names. They are part of the API surface.
const (
	RuleInvalidDisease  = "invalid_disease"
	RuleInvalidBid      = "invalid_bid"
	RuleBidTooLow       = "bid_too_low"
	RuleAlreadyOwned    = "already_owned_by_bidder"
	RuleUnknownCompany  = "unknown_company"
	RuleInvalidLink     = "invalid_link"
	RuleStalePrice      = "stale_price"
	RuleInvalidDuration = "invalid_duration"
	RuleInvalidPrice    = "invalid_price"
)

// Error is the canonical error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Rule    string
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error with the given code.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// ValidationError is a user-correctable failure naming the violated rule.
func ValidationError(op, rule, message string, details map[string]any) error {
	return &Error{
		Code:    CodeValidation,
		Op:      strings.TrimSpace(op),
		Rule:    rule,
		Message: strings.TrimSpace(message),
		Details: details,
	}
}

func NotFound(op, message string) error {
	return NewError(CodeNotFound, op, message, nil)
}

func ClassificationServiceError(op string, cause error) error {
	msg := "classification service unavailable"
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	return NewError(CodeClassificationUnavailable, op, msg, cause)
}

func PersistenceError(op string, cause error) error {
	return Wrap(CodePersistence, op, cause)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// CodeOf extracts the error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// RuleOf extracts the validation rule when available.
func RuleOf(err error) string {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Rule
}

// As is a convenience for handlers that need the full record.
func As(err error) (*Error, bool) {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return nil, false
	}
	return aggErr, true
}
