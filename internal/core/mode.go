// Package core is the orchestration layer.  It composes the shell
// capability, session state and accept loop into a runnable server
// and provides a builder that assembles it from a Config.
//
// Architecture layers (bottom → top):
//
//	executor/workdir  →  session  →  capability  →  core  →  cmd (CLI)
package core

import "context"

// Mode is a long-running component owned by the supervisor.  It runs
// until ctx is cancelled and returns nil on a clean shutdown.
type Mode interface {
	Run(ctx context.Context) error
}
