// Package session represents a single client connection: its identity,
// its socket, and the working-directory context commands run in.
//
// Capabilities operate on sessions rather than raw connections, so the
// shell loop does not care whether the directory is shared with other
// clients or private to this one.
package session

import (
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	rerrors "rshell/internal/errors"
	"rshell/internal/metrics"
	"rshell/internal/workdir"
	"rshell/util"
)

// Session encapsulates the runtime context for a single connection.
type Session struct {
	ID      string
	Peer    string
	Conn    net.Conn
	Dir     workdir.Dir
	Logger  *util.Logger
	Metrics *metrics.Collector

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New creates a Session bound to conn.  The logger gets session and
// peer fields; metrics may be nil.
func New(conn net.Conn, dir workdir.Dir, logger *util.Logger, m *metrics.Collector) *Session {
	id := uuid.NewString()
	peer := util.PeerString(conn.RemoteAddr())
	return &Session{
		ID:      id,
		Peer:    peer,
		Conn:    conn,
		Dir:     dir,
		Logger:  logger.With("session", id[:8]).With("peer", peer),
		Metrics: m,
	}
}

// Send writes text to the peer in a single write.  After Close it
// returns ErrSessionClosed.
func (s *Session) Send(text string) error {
	if s.closed.Load() {
		return rerrors.ErrSessionClosed
	}
	n, err := io.WriteString(s.Conn, text)
	s.Metrics.BytesSent(int64(n))
	return err
}

// Receive performs one read of at most util.DefaultBufSize bytes and
// decodes it as UTF-8, replacing invalid sequences with U+FFFD.  A
// zero-byte read is reported as io.EOF.  After Close it returns
// ErrSessionClosed.
func (s *Session) Receive() (string, error) {
	if s.closed.Load() {
		return "", rerrors.ErrSessionClosed
	}
	buf := util.GetBuf()
	defer util.PutBuf(buf)

	n, err := s.Conn.Read(*buf)
	s.Metrics.BytesReceived(int64(n))
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return "", err
	}
	return strings.ToValidUTF8(string((*buf)[:n]), "�"), nil
}

// Close closes the connection.  It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.Conn.Close()
	})
	return s.closeErr
}
