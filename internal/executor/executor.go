// Package executor runs a single command line through the host shell
// and captures its merged output.
//
// The command string is shell-interpreted on purpose: the server is a
// remote shell and the peer is trusted.  Metacharacters, pipes and
// redirections all reach the interpreter unchanged.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	rerrors "rshell/internal/errors"
)

const waitDelay = 500 * time.Millisecond

// Result is the outcome of one command.
type Result struct {
	Output   string
	ExitCode int
}

// Text is what the session sends back: the captured output, or a
// synthetic line naming the exit code when there was none.
func (r Result) Text() string {
	if r.Output != "" {
		return r.Output
	}
	return fmt.Sprintf("Command executed (exit code: %d)\n", r.ExitCode)
}

// Executor runs commands with a fixed interpreter.
type Executor struct {
	// Shell is the interpreter path.  cmd.exe gets /C, anything else -c.
	Shell string

	// Timeout bounds one command.  Zero means wait forever.
	Timeout time.Duration
}

// New returns an Executor for shell with the given timeout.
func New(shell string, timeout time.Duration) *Executor {
	return &Executor{Shell: shell, Timeout: timeout}
}

// Run executes command in dir and blocks until the child exits.  A
// non-zero exit status is reported in Result, not as an error; errors
// mean the command could not be run at all or hit the timeout.
// Cancelling ctx kills the child.
func (e *Executor) Run(ctx context.Context, dir, command string) (Result, error) {
	if strings.TrimSpace(command) == "" {
		return Result{}, rerrors.ErrEmptyCommand
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.Shell, e.flag(), command)
	cmd.Dir = dir
	// Grandchildren may keep the output pipe open after the shell is
	// killed; stop waiting for them shortly after.
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		// ErrWaitDelay: the shell exited 0 but left a child holding
		// the pipe.
		return Result{Output: out.String()}, nil
	}

	if e.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{Output: out.String(), ExitCode: -1},
			fmt.Errorf("%w after %s", rerrors.ErrCommandTimeout, e.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{Output: out.String(), ExitCode: exitErr.ExitCode()}, nil
	}
	return Result{}, err
}

func (e *Executor) flag() string {
	if strings.EqualFold(filepath.Base(e.Shell), "cmd.exe") || strings.EqualFold(e.Shell, "cmd") {
		return "/C"
	}
	return "-c"
}
