package config

import (
	"runtime"
	"time"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultHost binds every interface.
	DefaultHost = "0.0.0.0"

	// DefaultPort is the historical rshell port.
	DefaultPort = 4444

	// DefaultBacklog is the pending-connection hint logged at startup.
	DefaultBacklog = 5

	// DefaultGracePeriod is how long shutdown waits for sessions to
	// finish after their connections are closed.
	DefaultGracePeriod = 5 * time.Second

	// DefaultRequestTimeout bounds a single webshell HTTP request.
	DefaultRequestTimeout = 30 * time.Second

	// EnvPrefix is prepended to every environment variable name.
	EnvPrefix = "RSHELL_"
)

// Working-directory scopes.
const (
	// ScopeShared uses the process-wide working directory, so a cd in
	// one session is visible to every other session.
	ScopeShared = "shared"

	// ScopeIsolated gives every session its own working directory.
	ScopeIsolated = "isolated"
)

// DefaultShell returns the interpreter used to run commands.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return "cmd.exe"
	}
	return "/bin/sh"
}
