// Package workdir holds the working-directory context that commands
// and cd are resolved against.
//
// Two scopes exist.  Process wraps the real process working directory,
// so every session observes every other session's cd; this mirrors the
// historical behaviour of the server and is racy across sessions.
// Isolated keeps a private path per session and never touches the
// process state.
package workdir

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// Dir is a working-directory context.
type Dir interface {
	// Path returns the current absolute directory.
	Path() (string, error)

	// Change moves to target, resolved against the current directory
	// when relative, and returns the new absolute directory.  On error
	// the directory is unchanged.
	Change(target string) (string, error)
}

// Home returns the invoking user's home directory.
func Home() (string, error) {
	return os.UserHomeDir()
}

// ── Process scope ────────────────────────────────────────────────────

// Process is the process-wide working directory.  All values share the
// same underlying state; the zero value is ready to use.
type Process struct{}

// procMu keeps Chdir and the Getwd that reports its result together.
// It does not serialize commands against cd.
var procMu sync.Mutex

// Path returns os.Getwd.
func (Process) Path() (string, error) {
	procMu.Lock()
	defer procMu.Unlock()
	return os.Getwd()
}

// Change calls os.Chdir and reports the resulting directory.
func (Process) Change(target string) (string, error) {
	procMu.Lock()
	defer procMu.Unlock()

	if err := os.Chdir(target); err != nil {
		return "", err
	}
	return os.Getwd()
}

// ── Isolated scope ───────────────────────────────────────────────────

// Isolated is a per-session working directory.  It is safe for
// concurrent use, though a session only ever touches its own.
type Isolated struct {
	mu   sync.RWMutex
	path string
}

// NewIsolated starts at dir, or at the process working directory when
// dir is empty.  The stored path has symlinks resolved.
func NewIsolated(dir string) (*Isolated, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &Isolated{path: resolved}, nil
}

// Path returns the session's directory.
func (d *Isolated) Path() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.path, nil
}

// Change validates target the way chdir(2) would and records the
// physical path, with symlinks resolved.
// Errors are *os.PathError with Op "chdir" so they read the same as
// the process scope's.
func (d *Isolated) Change(target string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// No lexical cleaning: "link/.." must leave through the link's
	// target, as chdir(2) does.
	next := target
	if !filepath.IsAbs(next) {
		next = d.path + string(filepath.Separator) + next
	}

	fi, err := os.Stat(next)
	if err != nil {
		return "", &os.PathError{Op: "chdir", Path: target, Err: underlying(err)}
	}
	if !fi.IsDir() {
		return "", &os.PathError{Op: "chdir", Path: target, Err: syscall.ENOTDIR}
	}
	// chdir needs search permission; opening the directory is the
	// portable approximation.
	f, err := os.Open(next)
	if err != nil {
		return "", &os.PathError{Op: "chdir", Path: target, Err: underlying(err)}
	}
	f.Close()

	resolved, err := filepath.EvalSymlinks(next)
	if err != nil {
		return "", &os.PathError{Op: "chdir", Path: target, Err: underlying(err)}
	}
	d.path = resolved
	return d.path, nil
}

func underlying(err error) error {
	if pe, ok := err.(*os.PathError); ok {
		return pe.Err
	}
	return err
}
