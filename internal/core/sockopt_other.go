//go:build !unix

package core

import "syscall"

// SO_REUSEADDR on Windows allows port hijacking; leave the default.
func reuseAddr(_, _ string, _ syscall.RawConn) error { return nil }
