package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
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

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, msg string) *Error {
	return New(http.StatusBadRequest, code, errors.New(msg))
}

func Unauthorized(code string, msg string) *Error {
	return New(http.StatusUnauthorized, code, errors.New(msg))
}

func NotFound(code string, msg string) *Error {
	return New(http.StatusNotFound, code, errors.New(msg))
}

func Conflict(code string, msg string) *Error {
	return New(http.StatusConflict, code, errors.New(msg))
}

// StatusAndCode unwraps err to an *Error; anything else maps to 500/internal_error.
func StatusAndCode(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := apiErr.Code
		if code == "" {
			code = "internal_error"
		}
		return status, code
	}
	return http.StatusInternalServerError, "internal_error"
}
