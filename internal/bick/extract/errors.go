package extract

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an acquisition failure for the HTTP boundary.
type Code string

const (
	CodeInvalidURL          Code = "INVALID_URL"
	CodeUnsupportedPlatform Code = "UNSUPPORTED_PLATFORM"
	CodeVideoUnavailable    Code = "VIDEO_UNAVAILABLE"
	CodeExtractionFailed    Code = "EXTRACTION_FAILED"
)

// Error is the typed acquisition failure. Boundary validation codes
// (invalid url, unsupported platform) are terminal and must never be
// enqueued for retry.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func newError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the code onto the boundary's response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidURL, CodeUnsupportedPlatform:
		return http.StatusBadRequest
	case CodeVideoUnavailable:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// AsError unwraps err into an acquisition *Error when one is in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
