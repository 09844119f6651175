package client

import "fmt"

// RequestError is returned for any failure to obtain a usable response:
// network failure, non-2xx status, or a malformed JSON body. Message is the
// human-readable text shown to the user; for HTTP errors it is the
// server-supplied detail when one is available.
type RequestError struct {
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// newRequestError wraps cause, using its message as the displayed text.
func newRequestError(cause error) *RequestError {
	return &RequestError{Message: cause.Error(), Err: cause}
}

// statusError is the fallback message for an HTTP error without a usable detail.
func statusError(status int) *RequestError {
	return &RequestError{Message: fmt.Sprintf("HTTP error! status: %d", status)}
}
