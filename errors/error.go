package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is a coded error shared across packages. Code ranges are owned by
// the package that declares them.
type Error struct {
	Code       int64  `json:"code"`
	Message    string `json:"message"`
	Cause      error  `json:"-"`
	Details    any    `json:"details,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
}

func NewError(code int64, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

func (e *Error) WithStatusCode(statusCode int) *Error {
	e.StatusCode = statusCode
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) GetCode() int64 {
	return e.Code
}

func (e *Error) GetMessage() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) GetDetails() any {
	return e.Details
}

func (e *Error) GetStatusCode() int {
	return e.StatusCode
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (int64, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// HasCode reports whether err's chain carries one of the given codes.
func HasCode(err error, codes ...int64) bool {
	code, ok := CodeOf(err)
	if !ok {
		return false
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
