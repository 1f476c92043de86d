package webshell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "WebShell connecting to example:8080\n" +
	"Prefix: cmd?c=\n" +
	"Suffix: &x\n" +
	"Type 'exit' or 'quit' to terminate\n\n"

var target = Target{Host: "example", Port: 8080, Prefix: "cmd?c=", Suffix: "&x"}

type senderFunc func(ctx context.Context, command string) (string, error)

func (f senderFunc) Send(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}

func echoSender(sent *[]string) Sender {
	return senderFunc(func(_ context.Context, command string) (string, error) {
		*sent = append(*sent, command)
		return "ran " + command, nil
	})
}

// syncBuffer is a bytes.Buffer safe for the reader goroutine and Run
// to write concurrently.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func runScript(t *testing.T, input string, s Sender) string {
	t.Helper()
	out := &syncBuffer{}
	err := Run(context.Background(), target, s, NewConsole(strings.NewReader(input), out))
	require.NoError(t, err)
	return out.String()
}

func TestRun_ExitAndBlankLines(t *testing.T) {
	var sent []string
	out := runScript(t, "   \nls -la\n  EXIT  \nnever\n", echoSender(&sent))

	assert.Equal(t, header+"> > ran ls -la\n> Goodbye!\n", out)
	assert.Equal(t, []string{"ls -la"}, sent)
}

func TestRun_Quit(t *testing.T) {
	out := runScript(t, "quit\r\n", echoSender(new([]string)))
	assert.Equal(t, header+"> Goodbye!\n", out)
}

func TestRun_EOF(t *testing.T) {
	var sent []string
	out := runScript(t, "id", echoSender(&sent))

	assert.Equal(t, header+"> ran id\n> \nGoodbye!\n", out)
	assert.Equal(t, []string{"id"}, sent)
}

func TestRun_ErrorsDoNotEndLoop(t *testing.T) {
	calls := 0
	s := senderFunc(func(context.Context, string) (string, error) {
		calls++
		switch calls {
		case 1:
			return "", &HTTPError{Code: 404, Reason: "Not Found"}
		case 2:
			return "", ErrTimeout
		case 3:
			return "", ErrInvalidUTF8
		default:
			return "ok", nil
		}
	})
	out := runScript(t, "a\nb\nc\nd\n", s)

	assert.Equal(t, header+
		"> HTTP Error 404: Not Found\n"+
		"> Request timed out\n"+
		"> Error: Response contains invalid UTF-8 data\n"+
		"> ok\n"+
		"> \nGoodbye!\n", out)
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	out := &syncBuffer{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, target, echoSender(new([]string)), NewConsole(pr, out))
	}()

	require.Eventually(t, func() bool {
		return strings.HasSuffix(out.String(), "> ")
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, strings.HasSuffix(out.String(), "> \nGoodbye!\n"))
}

func TestRun_AgainstServer(t *testing.T) {
	_, tgt := newServer(t)

	out := &syncBuffer{}
	err := Run(context.Background(), tgt, NewClient(tgt, 0, nil),
		NewConsole(strings.NewReader("exec/cat a b\nnowhere\nexit\n"), out))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "> uri=/exec/cat%20a%20b\n")
	assert.Contains(t, out.String(), "> HTTP Error 404: Not Found\n")
	assert.True(t, strings.HasSuffix(out.String(), "> Goodbye!\n"))
}
