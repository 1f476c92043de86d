package webshell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sender delivers one command and returns the response body.
// *Client satisfies it.
type Sender interface {
	Send(ctx context.Context, command string) (string, error)
}

// Run prints the session header and loops reading commands from con
// until exit/quit, end of input, or ctx cancellation.  Request
// failures are printed and never end the loop.
func Run(ctx context.Context, target Target, s Sender, con Console) error {
	fmt.Fprintf(con, "WebShell connecting to %s:%d\n", target.Host, target.Port)
	fmt.Fprintf(con, "Prefix: %s\n", target.Prefix)
	fmt.Fprintf(con, "Suffix: %s\n", target.Suffix)
	fmt.Fprintf(con, "Type 'exit' or 'quit' to terminate\n\n")

	lines := readLines(ctx, con)
	for {
		var (
			line string
			err  error
		)
		select {
		case <-ctx.Done():
			fmt.Fprint(con, "\nGoodbye!\n")
			return nil
		case r := <-lines.next():
			line, err = r.line, r.err
		}
		if err != nil {
			fmt.Fprint(con, "\nGoodbye!\n")
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		command := strings.TrimSpace(line)
		if strings.EqualFold(command, "exit") || strings.EqualFold(command, "quit") {
			fmt.Fprint(con, "Goodbye!\n")
			return nil
		}
		if command == "" {
			continue
		}

		body, err := s.Send(ctx, command)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprint(con, "\nGoodbye!\n")
				return nil
			}
			fmt.Fprintln(con, Describe(err))
			continue
		}
		fmt.Fprintln(con, body)
	}
}

type readResult struct {
	line string
	err  error
}

// lineReader reads one line per request so the prompt is never shown
// before the previous response has been printed.
type lineReader struct {
	ctx  context.Context
	req  chan struct{}
	resp chan readResult
}

func readLines(ctx context.Context, con Console) *lineReader {
	r := &lineReader{
		ctx:  ctx,
		req:  make(chan struct{}),
		resp: make(chan readResult, 1),
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.req:
			}
			line, err := con.ReadLine()
			r.resp <- readResult{line, err}
			if err != nil {
				return
			}
		}
	}()
	return r
}

// next asks for a line and returns the channel it will arrive on.
func (r *lineReader) next() <-chan readResult {
	select {
	case r.req <- struct{}{}:
	case <-r.ctx.Done():
	}
	return r.resp
}
