// Package capability defines what happens over an accepted connection.
// Each Capability encapsulates a single behaviour and operates on a
// Session rather than a raw net.Conn, which keeps capabilities
// testable and decoupled from transport details.
package capability

import (
	"context"

	"rshell/internal/session"
)

// Capability handles a single connection according to a specific
// behaviour.  The server's only implementation is Shell.
type Capability interface {
	// Handle runs the capability against the given session.
	// It blocks until the session ends.  A nil error means the session
	// ended normally (exit, blank input, or the peer hanging up).
	Handle(ctx context.Context, sess *session.Session) error
}
