package core

import (
	"rshell/config"
	"rshell/internal/capability"
	"rshell/internal/executor"
	"rshell/internal/metrics"
	"rshell/internal/workdir"
	"rshell/util"
)

// Build assembles the server from a validated configuration.
func Build(cfg *config.Config, logger *util.Logger, m *metrics.Collector) (*ListenMode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &ListenMode{
		Address:     cfg.Address(),
		Backlog:     cfg.Backlog,
		GracePeriod: cfg.GracePeriod,
		Capability:  capability.NewShell(executor.New(cfg.Shell, cfg.ExecTimeout)),
		Logger:      logger,
		Metrics:     m,
		NewDir:      dirFactory(cfg.CwdScope),
	}, nil
}

// dirFactory maps the working-directory scope to a per-session
// constructor.
func dirFactory(scope string) func() (workdir.Dir, error) {
	if scope == config.ScopeIsolated {
		return func() (workdir.Dir, error) {
			return workdir.NewIsolated("")
		}
	}
	return func() (workdir.Dir, error) {
		return workdir.Process{}, nil
	}
}
