package webshell

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompt is shown before every command.
const Prompt = "> "

// Console reads command lines and receives output.
type Console interface {
	io.Writer
	// ReadLine shows the prompt and returns the next line without its
	// terminator.  io.EOF means the user is done.
	ReadLine() (string, error)
}

// lineConsole is a Console over plain streams (pipes, files).
type lineConsole struct {
	io.Writer
	in *bufio.Reader
}

// NewConsole returns a Console that prints the prompt to out and reads
// lines from in.
func NewConsole(in io.Reader, out io.Writer) Console {
	return &lineConsole{Writer: out, in: bufio.NewReader(in)}
}

func (c *lineConsole) ReadLine() (string, error) {
	if _, err := io.WriteString(c.Writer, Prompt); err != nil {
		return "", err
	}
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// OpenTerminal puts in into raw mode and returns a line-editing
// Console on it.  Ctrl-C and Ctrl-D on an empty line both end input.
// The returned func restores the terminal.
func OpenTerminal(in *os.File, out io.Writer) (Console, func() error, error) {
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, err
	}
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, Prompt)
	return t, func() error { return term.Restore(fd, state) }, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
