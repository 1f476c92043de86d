// Package config defines the runtime configuration for the rshell
// server and provides helpers for loading it from the environment and
// from a YAML file.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	rerrors "rshell/internal/errors"
)

// Config holds every tuneable for a server process.
type Config struct {
	// ── Listener ─────────────────────────────────────────────────────
	Host    string `yaml:"host" env:"HOST"`
	Port    int    `yaml:"port" env:"PORT"` // 0 picks a free port
	Backlog int    `yaml:"backlog" env:"BACKLOG"`

	// ── Execution ────────────────────────────────────────────────────
	Shell       string        `yaml:"shell" env:"SHELL"`
	CwdScope    string        `yaml:"cwd_scope" env:"CWD_SCOPE"`
	ExecTimeout time.Duration `yaml:"exec_timeout" env:"EXEC_TIMEOUT"` // 0 = none

	// ── Lifecycle ────────────────────────────────────────────────────
	StatusAddr  string        `yaml:"status_addr" env:"STATUS_ADDR"`
	GracePeriod time.Duration `yaml:"grace_period" env:"GRACE_PERIOD"`

	// ── Output ───────────────────────────────────────────────────────
	Verbose int `yaml:"verbose" env:"VERBOSE"`

	// ConfigFile is the optional YAML file merged under env and flags.
	ConfigFile string `yaml:"-" env:"CONFIG"`
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		Backlog:     DefaultBacklog,
		Shell:       DefaultShell(),
		CwdScope:    ScopeShared,
		GracePeriod: DefaultGracePeriod,
		Verbose:     1,
	}
}

// Address returns the listen address as host:port.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ── Host/port parser ─────────────────────────────────────────────────

// ParseHostPort splits "host:port" at the first colon and validates the
// port.  It is used by the webshell client for its server argument.
func ParseHostPort(spec string) (host string, port int, err error) {
	host, portStr, ok := strings.Cut(spec, ":")
	if !ok {
		return "", 0, fmt.Errorf("server must be in format host:port")
	}
	port, err = strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port number")
	}
	if port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("port must be between 1 and 65535")
	}
	return host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &rerrors.ConfigError{
			Field:   "host",
			Message: "bind address is required",
			Hint:    "use 0.0.0.0 to listen on every interface",
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return &rerrors.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 0-65535",
			Hint:    "use 0 to pick any free port",
		}
	}
	if c.Backlog < 1 {
		return &rerrors.ConfigError{Field: "backlog", Value: c.Backlog, Message: "must be at least 1"}
	}
	if strings.TrimSpace(c.Shell) == "" {
		return &rerrors.ConfigError{
			Field:   "shell",
			Message: "a shell interpreter is required",
			Hint:    "try --shell " + DefaultShell(),
		}
	}
	switch c.CwdScope {
	case ScopeShared, ScopeIsolated:
	default:
		return &rerrors.ConfigError{
			Field:   "cwd-scope",
			Value:   c.CwdScope,
			Message: "unknown working-directory scope",
			Hint:    "use " + ScopeShared + " or " + ScopeIsolated,
		}
	}
	if c.ExecTimeout < 0 {
		return &rerrors.ConfigError{Field: "exec-timeout", Value: c.ExecTimeout, Message: "must not be negative"}
	}
	if c.GracePeriod < 0 {
		return &rerrors.ConfigError{Field: "grace-period", Value: c.GracePeriod, Message: "must not be negative"}
	}
	if c.StatusAddr != "" {
		if _, _, err := net.SplitHostPort(c.StatusAddr); err != nil {
			return &rerrors.ConfigError{
				Field:   "status-addr",
				Value:   c.StatusAddr,
				Message: err.Error(),
				Hint:    "expected host:port, e.g. 127.0.0.1:9090",
			}
		}
	}
	return nil
}
