package util

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// DefaultBufSize is the receive buffer used for a single command read.
const DefaultBufSize = 4096

// IsClosedConn reports whether err is one of the errors expected when
// a peer hangs up or a listener/connection is closed during shutdown.
func IsClosedConn(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
