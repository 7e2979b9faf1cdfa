package errors

import "fmt"

// HTTPError is an error that carries the HTTP status to answer with.
type HTTPError struct {
	StatusCode int
	Code       int
	Message    string
}

// NewHTTPError creates an HTTPError whose application code equals the status.
func NewHTTPError(status int, msg string) *HTTPError {
	return &HTTPError{StatusCode: status, Code: status, Message: msg}
}

// NewHTTPErrorWithCode creates an HTTPError with a distinct application code.
func NewHTTPErrorWithCode(status, code int, msg string) *HTTPError {
	return &HTTPError{StatusCode: status, Code: code, Message: msg}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
