// Package apierr carries an HTTP status and a machine readable code for errors
// raised by handlers before a request reaches the services.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeInvalidRequest marks malformed bodies and missing parameters.
const CodeInvalidRequest = "invalid_request"

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return fmt.Sprintf("api error (%d)", e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// BadRequest wraps err as a 400 invalid_request.
func BadRequest(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidRequest, err)
}

// Missing reports a required field or parameter that was not supplied.
func Missing(field string) *Error {
	return BadRequest(errors.New(field + " is required"))
}
