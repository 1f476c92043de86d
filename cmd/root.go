// Package cmd wires up the CLI flags and runs the shell server.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"rshell/config"
	"rshell/internal/core"
	"rshell/internal/metrics"
	"rshell/internal/status"
	"rshell/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X rshell/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// options holds raw flag values.  Only flags the user actually set are
// applied on top of the file and environment.
type options struct {
	flags      config.Config
	configPath string
	quiet      bool
	dryRun     bool
	version    bool
	help       bool
}

// Execute parses args and runs the server until ctx is cancelled.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts := &options{}
	fs := newFlagSet(opts, stderr)

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.help {
		printUsage(fs, stderr)
		return nil
	}
	if opts.version {
		fmt.Fprintf(stdout, "rshell %s\n", version)
		return nil
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q (use --help for usage)", fs.Arg(0))
	}

	cfg, err := resolveConfig(fs, opts)
	if err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.dryRun {
		fmt.Fprintf(stdout, "configuration OK: listen %s, shell %s, cwd scope %s\n",
			cfg.Address(), cfg.Shell, cfg.CwdScope)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	if cfg.ConfigFile != "" {
		logger.Verbose("loaded config from %s", cfg.ConfigFile)
	}
	m := metrics.New()

	server, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		logger.Info("received interrupt signal, shutting down")
	})
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Run(groupCtx)
	})
	if cfg.StatusAddr != "" {
		st := &status.Server{Addr: cfg.StatusAddr, Metrics: m, Logger: logger}
		group.Go(func() error {
			return st.Run(groupCtx)
		})
	}
	return group.Wait()
}

// ── helpers ──────────────────────────────────────────────────────────

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	d := config.Default()
	fs := flag.NewFlagSet("rshell", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── listener ─────────────────────────────────────────────────
	fs.StringVarP(&opts.flags.Host, "host", "H", d.Host, "Bind address")
	fs.IntVarP(&opts.flags.Port, "port", "p", d.Port, "Listen port (0 picks a free port)")
	fs.IntVar(&opts.flags.Backlog, "backlog", d.Backlog, "Listen backlog hint")

	// ── execution ────────────────────────────────────────────────
	fs.StringVar(&opts.flags.Shell, "shell", d.Shell, "Shell used to run commands")
	fs.StringVar(&opts.flags.CwdScope, "cwd-scope", d.CwdScope,
		"Working directory scope: shared (process-wide) or isolated (per session)")
	fs.DurationVar(&opts.flags.ExecTimeout, "exec-timeout", 0, "Per-command timeout (0 = none)")

	// ── lifecycle ────────────────────────────────────────────────
	fs.StringVar(&opts.flags.StatusAddr, "status-addr", "", "Serve /healthz and /metrics on this address")
	fs.DurationVar(&opts.flags.GracePeriod, "grace-period", d.GracePeriod, "Time to wait for sessions on shutdown")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file (env "+config.EnvPrefix+"CONFIG)")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&opts.flags.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "Only log errors")

	fs.BoolVar(&opts.dryRun, "dry-run", false, "Validate configuration and exit")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs, stderr) }
	return fs
}

// resolveConfig layers defaults, the YAML file, RSHELL_* variables and
// explicitly set flags, in that order.
func resolveConfig(fs *flag.FlagSet, opts *options) (*config.Config, error) {
	cfg := config.Default()

	path := config.ConfigPathFromEnv()
	if fs.Changed("config") {
		path = opts.configPath
	}
	if path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := config.LoadFromEnv(cfg); err != nil {
		return nil, err
	}

	f := &opts.flags
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "host":
			cfg.Host = f.Host
		case "port":
			cfg.Port = f.Port
		case "backlog":
			cfg.Backlog = f.Backlog
		case "shell":
			cfg.Shell = f.Shell
		case "cwd-scope":
			cfg.CwdScope = f.CwdScope
		case "exec-timeout":
			cfg.ExecTimeout = f.ExecTimeout
		case "status-addr":
			cfg.StatusAddr = f.StatusAddr
		case "grace-period":
			cfg.GracePeriod = f.GracePeriod
		case "verbose":
			// -v counts up from the normal level.
			cfg.Verbose = int(util.LogNormal) + f.Verbose
		}
	})
	if opts.quiet {
		cfg.Verbose = int(util.LogQuiet)
	}
	return cfg, nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `rshell – Remote Shell Server v%s

Accepts TCP connections and runs each line a client sends through the
system shell, replying with the combined output.  There is no
authentication or encryption: bind it only where every peer is trusted.

Usage:
  rshell [options]

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  rshell                                      Listen on 0.0.0.0:4444
  rshell -H 127.0.0.1 -p 9000                 Loopback only
  rshell --cwd-scope isolated                 Per-session directories
  rshell --status-addr 127.0.0.1:8080         Expose /healthz and /metrics
  nc localhost 4444                           Connect a client
`)
}
