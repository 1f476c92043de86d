package webshell

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when a request exceeds the client timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrInvalidUTF8 is returned when a response body is not UTF-8.
	ErrInvalidUTF8 = errors.New("response contains invalid UTF-8 data")
)

// HTTPError is a response with status >= 400.
type HTTPError struct {
	Code   int
	Reason string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error %d: %s", e.Code, e.Reason)
}

// URLError is a transport failure: refused connection, DNS, TLS.
type URLError struct {
	Err error
}

func (e *URLError) Error() string { return "url error: " + e.Err.Error() }
func (e *URLError) Unwrap() error { return e.Err }

// Describe renders err as the one-line message shown at the prompt.
func Describe(err error) string {
	var (
		herr *HTTPError
		uerr *URLError
	)
	switch {
	case errors.As(err, &herr):
		return fmt.Sprintf("HTTP Error %d: %s", herr.Code, herr.Reason)
	case errors.Is(err, ErrTimeout):
		return "Request timed out"
	case errors.Is(err, ErrInvalidUTF8):
		return "Error: Response contains invalid UTF-8 data"
	case errors.As(err, &uerr):
		return fmt.Sprintf("URL Error: %v", uerr.Err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
