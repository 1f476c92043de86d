package capability

import (
	"context"
	"errors"
	"fmt"
	"strings"

	rerrors "rshell/internal/errors"
	"rshell/internal/executor"
	"rshell/internal/session"
	"rshell/internal/workdir"
	"rshell/util"
)

const (
	separatorWidth = 50
	goodbye        = "Goodbye!\n"
)

// Runner executes one command line in a directory.  *executor.Executor
// satisfies it.
type Runner interface {
	Run(ctx context.Context, dir, command string) (executor.Result, error)
}

// Shell is the interactive command loop: greet, then prompt, read,
// dispatch and reply until the client leaves.
type Shell struct {
	Runner Runner
}

// NewShell returns a Shell that runs commands with r.
func NewShell(r Runner) *Shell {
	return &Shell{Runner: r}
}

// Handle drives the session until exit/quit, blank input, or a
// transport error.  Errors from individual commands are reported to
// the client and never end the loop.
func (s *Shell) Handle(ctx context.Context, sess *session.Session) error {
	if err := sess.Send(Banner(sess.Peer)); err != nil {
		return err
	}

	for {
		if err := sess.Send(Prompt(sess.Dir)); err != nil {
			return err
		}

		line, err := sess.Receive()
		if err != nil {
			if util.IsClosedConn(err) || errors.Is(err, rerrors.ErrSessionClosed) {
				return nil
			}
			return err
		}

		command := strings.TrimSpace(line)
		if command == "" {
			// Blank input ends the session, same as a hang-up.
			sess.Logger.Verbose("blank input, closing session")
			return nil
		}
		if isExit(command) {
			return sess.Send(goodbye)
		}

		reply := s.dispatch(ctx, sess, command)
		if !strings.HasSuffix(reply, "\n") {
			reply += "\n"
		}
		if err := sess.Send(reply); err != nil {
			return err
		}
	}
}

// Banner is the one-time greeting sent on connect.
func Banner(peer string) string {
	return fmt.Sprintf("Remote Shell Server - Connected from %s\n", peer) +
		"Type 'exit' to disconnect\n" +
		strings.Repeat("=", separatorWidth) + "\n"
}

// Prompt renders "<cwd>$ ".  An unknown directory yields a bare "$ ".
func Prompt(dir workdir.Dir) string {
	wd, err := dir.Path()
	if err != nil {
		return "$ "
	}
	return wd + "$ "
}

func isExit(command string) bool {
	return strings.EqualFold(command, "exit") || strings.EqualFold(command, "quit")
}

// parseCd reports whether command is a directory change and returns
// its trimmed argument.  Bare "cd" has an empty argument.
func parseCd(command string) (string, bool) {
	if command == "cd" {
		return "", true
	}
	if strings.HasPrefix(command, "cd ") {
		return strings.TrimSpace(command[3:]), true
	}
	return "", false
}

// dispatch turns one command into reply text.  Panics are converted
// like any other dispatch failure so a single command can never take
// the session down.
func (s *Shell) dispatch(ctx context.Context, sess *session.Session, command string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			sess.Logger.Error("panic while dispatching %q: %v", command, r)
			sess.Metrics.RecordError(fmt.Sprint(r))
			reply = fmt.Sprintf("Error executing command: %v\n", r)
		}
	}()

	if target, ok := parseCd(command); ok {
		text, err := s.changeDir(sess, target)
		if err != nil {
			return fmt.Sprintf("Error executing command: %v\n", err)
		}
		return text
	}

	dir, err := sess.Dir.Path()
	if err != nil {
		return fmt.Sprintf("Error executing command: %v\n", err)
	}

	sess.Logger.Debug("exec %q in %s", command, dir)
	res, err := s.Runner.Run(ctx, dir, command)
	sess.Metrics.CommandExecuted(err != nil || res.ExitCode != 0)
	if err != nil {
		sess.Logger.Verbose("command %q failed: %v", command, err)
		sess.Metrics.RecordError(err.Error())
		return fmt.Sprintf("Error executing command: %v\n", err)
	}
	return res.Text()
}

// changeDir handles cd.  A bad target is an ordinary reply; only a
// failed home-directory lookup is returned as an error.
func (s *Shell) changeDir(sess *session.Session, target string) (string, error) {
	if target == "" {
		home, err := workdir.Home()
		if err != nil {
			return "", err
		}
		target = home
	}

	wd, err := sess.Dir.Change(target)
	if err != nil {
		sess.Logger.Verbose("cd %s: %v", target, err)
		return fmt.Sprintf("Error changing directory: %v\n", err), nil
	}

	sess.Metrics.DirectoryChanged()
	sess.Logger.Debug("cwd now %s", wd)
	return fmt.Sprintf("Changed directory to: %s\n", wd), nil
}
