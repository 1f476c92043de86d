// Package errors holds the error values shared across rshell: sentinels
// for lifecycle conditions, NetworkError for socket failures and
// ConfigError for rejected settings.
package errors

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	ErrServerClosed   = errors.New("server closed")
	ErrSessionClosed  = errors.New("session closed")
	ErrCommandTimeout = errors.New("command timed out")
	ErrEmptyCommand   = errors.New("empty command")
)

// NetworkError is a failed socket operation.  Retryable is set when the
// condition is expected to clear on its own (descriptor exhaustion, an
// aborted handshake, a timeout).
type NetworkError struct {
	Op        string // "listen", "accept", ...
	Addr      string
	Err       error
	Retryable bool
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConfigError is a setting that failed validation.  Field is the flag
// name; Hint, when set, is printed on its own line.
type ConfigError struct {
	Field   string
	Value   interface{} // nil when the value is missing
	Message string
	Hint    string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// Wrap builds a NetworkError and classifies err.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err, Retryable: transient(err)}
}

// IsRetryable reports whether err is a transient socket condition.  A
// NetworkError answers from its own flag.
func IsRetryable(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return transient(err)
}

// transientErrnos are the accept(2) failures that clear without
// intervention.
var transientErrnos = []syscall.Errno{
	syscall.ECONNABORTED,
	syscall.EINTR,
	syscall.EMFILE,
	syscall.ENFILE,
	syscall.ENOBUFS,
	syscall.ENOMEM,
}

func transient(err error) bool {
	if err == nil {
		return false
	}
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
