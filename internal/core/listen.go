package core

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"rshell/config"
	"rshell/internal/capability"
	rerrors "rshell/internal/errors"
	"rshell/internal/metrics"
	"rshell/internal/retry"
	"rshell/internal/session"
	"rshell/internal/workdir"
	"rshell/util"
)

// ListenMode accepts TCP connections and runs the capability on each
// one in its own goroutine.  The accept loop never waits on a session.
type ListenMode struct {
	Address     string // "host:port"
	Backlog     int    // logged only; net.Listen uses the kernel default
	GracePeriod time.Duration
	Capability  capability.Capability
	Logger      *util.Logger
	Metrics     *metrics.Collector

	// NewDir supplies the working directory for a new session.
	// Defaults to the shared process directory.
	NewDir func() (workdir.Dir, error)

	// Backoff paces retries after accept errors.  Defaults to
	// retry.AcceptBackoff().
	Backoff *retry.Backoff

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// Run binds the listener and serves until ctx is cancelled.
func (m *ListenMode) Run(ctx context.Context) error {
	ln, err := m.Listen(ctx)
	if err != nil {
		return err
	}
	return m.Serve(ctx, ln)
}

// Listen binds m.Address with address reuse.
func (m *ListenMode) Listen(ctx context.Context) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	ln, err := lc.Listen(ctx, "tcp", m.Address)
	if err != nil {
		return nil, rerrors.Wrap("listen", m.Address, err)
	}
	m.Logger.Info("remote shell server listening on %s", ln.Addr())
	m.Logger.Verbose("backlog hint %d (kernel default applies)", m.Backlog)
	return ln, nil
}

// Serve accepts connections on ln until ctx is cancelled, then closes
// open sessions and waits up to GracePeriod for them to finish.
func (m *ListenMode) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	m.Logger.Info("waiting for connections")

	failures := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				m.drain()
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				m.drain()
				return rerrors.ErrServerClosed
			}

			// Both kinds are retried; only the log level differs.
			failures++
			nerr := rerrors.Wrap("accept", ln.Addr().String(), err)
			if nerr.Retryable {
				m.Logger.Warn("socket error: %v", nerr)
			} else {
				m.Logger.Error("socket error: %v", nerr)
			}
			m.Metrics.RecordError(nerr.Error())
			if werr := m.backoff().Wait(ctx, failures); werr != nil {
				m.drain()
				return nil
			}
			continue
		}
		failures = 0

		m.track(conn)
		m.wg.Add(1)
		go m.serveConn(ctx, conn)
	}
}

// ── sessions ─────────────────────────────────────────────────────────

func (m *ListenMode) serveConn(ctx context.Context, conn net.Conn) {
	defer m.wg.Done()
	defer m.untrack(conn)
	defer conn.Close()

	peer := util.PeerString(conn.RemoteAddr())
	m.Logger.Info("connection from %s", peer)

	dir, err := m.newDir()
	if err != nil {
		m.Logger.Error("session setup for %s: %v", peer, err)
		m.Metrics.RecordError(err.Error())
		return
	}

	sess := session.New(conn, dir, m.Logger, m.Metrics)
	m.Metrics.SessionOpened()
	defer m.Metrics.SessionClosed()

	if err := m.Capability.Handle(ctx, sess); err != nil {
		if util.IsClosedConn(err) || errors.Is(err, rerrors.ErrSessionClosed) {
			sess.Logger.Verbose("connection lost: %v", err)
		} else {
			sess.Logger.Warn("session error: %v", err)
			m.Metrics.RecordError(err.Error())
		}
	}
	sess.Close()
	m.Logger.Info("client %s disconnected", peer)
}

func (m *ListenMode) newDir() (workdir.Dir, error) {
	if m.NewDir != nil {
		return m.NewDir()
	}
	return workdir.Process{}, nil
}

func (m *ListenMode) backoff() *retry.Backoff {
	if m.Backoff != nil {
		return m.Backoff
	}
	return retry.AcceptBackoff()
}

func (m *ListenMode) track(conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conns == nil {
		m.conns = make(map[net.Conn]struct{})
	}
	m.conns[conn] = struct{}{}
}

func (m *ListenMode) untrack(conn net.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, conn)
}

// ActiveConns reports the number of sessions still being served.
func (m *ListenMode) ActiveConns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// drain closes every open session connection and waits for the
// session goroutines, giving up after GracePeriod.
func (m *ListenMode) drain() {
	m.mu.Lock()
	open := len(m.conns)
	for c := range m.conns {
		c.Close()
	}
	m.mu.Unlock()

	if open > 0 {
		m.Logger.Verbose("closing %d open session(s)", open)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	grace := m.GracePeriod
	if grace <= 0 {
		grace = config.DefaultGracePeriod
	}
	select {
	case <-done:
	case <-time.After(grace):
		m.Logger.Warn("sessions still running after %s; exiting anyway", grace)
	}
	m.Logger.Info("server stopped")
}
