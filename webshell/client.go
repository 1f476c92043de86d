package webshell

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	"rshell/config"
	"rshell/util"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = config.DefaultRequestTimeout

// Client sends commands to a Target over HTTP.
type Client struct {
	Target Target
	Logger *util.Logger

	http *resty.Client
}

// NewClient returns a Client with the given per-request timeout
// (DefaultTimeout when zero).
func NewClient(target Target, timeout time.Duration, logger *util.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = util.Nop()
	}
	return &Client{
		Target: target,
		Logger: logger,
		http: resty.New().
			SetTimeout(timeout).
			SetLogger(restyLogger{logger}),
	}
}

// Send issues a GET for command and returns the response body.
func (c *Client) Send(ctx context.Context, command string) (string, error) {
	u := c.Target.URL(command)
	c.Logger.Info("GET %s", u)

	resp, err := c.http.R().SetContext(ctx).Get(u)
	if err != nil {
		return "", classify(ctx, err)
	}

	c.Logger.Verbose("%s (%d bytes)", resp.Status(), len(resp.Body()))
	if resp.StatusCode() >= http.StatusBadRequest {
		return "", &HTTPError{Code: resp.StatusCode(), Reason: reason(resp)}
	}
	if !utf8.Valid(resp.Body()) {
		return "", ErrInvalidUTF8
	}
	return string(resp.Body()), nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return ErrTimeout
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &URLError{Err: uerr.Err}
	}
	return &URLError{Err: err}
}

// reason returns the server's reason phrase, falling back to the
// standard text for the code.
func reason(resp *resty.Response) string {
	code := strconv.Itoa(resp.StatusCode())
	if r := strings.TrimSpace(strings.TrimPrefix(resp.Status(), code)); r != "" {
		return r
	}
	return http.StatusText(resp.StatusCode())
}

// restyLogger routes resty's internal warnings through util.Logger.
type restyLogger struct{ l *util.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug(format, v...) }
