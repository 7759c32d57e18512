package runner

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/platform/logger"
)

// waitDelay is how long output pipes may stay open after a process was killed.
const waitDelay = 5 * time.Second

// LocalRunner runs the build and the renderer as child processes of the server.
type LocalRunner struct {
	cfg Config
	log logger.Logger
}

// NewLocalRunner creates a LocalRunner.
func NewLocalRunner(cfg Config, log logger.Logger) *LocalRunner {
	return &LocalRunner{cfg: cfg, log: log}
}

// Name implements ports.BuildRunner.
func (r *LocalRunner) Name() string {
	return "local"
}

// Build runs the build command inside dir.
func (r *LocalRunner) Build(ctx context.Context, dir string) error {
	fields := strings.Fields(r.cfg.BuildCommand)
	if len(fields) == 0 {
		return &domain.StageError{Stage: domain.StageBuild, Err: fmt.Errorf("%w: %w", domain.ErrBuildFailed, errEmptyCommand)}
	}

	r.log.Info("Started building renderer", logger.WithField("command", r.cfg.BuildCommand))
	if _, err := r.exec(ctx, domain.StageBuild, dir, fields[0], fields[1:]); err != nil {
		return err
	}

	r.log.Info("Build finished")
	return nil
}

// Run executes command with args inside dir. A relative command is resolved against dir.
func (r *LocalRunner) Run(ctx context.Context, dir, command string, args []string) (string, error) {
	if command == "" {
		return "", &domain.StageError{Stage: domain.StageRun, Err: fmt.Errorf("%w: %w", domain.ErrRunFailed, errEmptyCommand)}
	}
	if !filepath.IsAbs(command) {
		command = filepath.Join(dir, command)
	}

	r.log.Info("Running renderer",
		logger.WithField("command", command),
		logger.WithField("args", strings.Join(args, " ")))

	output, err := r.exec(ctx, domain.StageRun, dir, command, args)
	if err != nil {
		return output, err
	}

	r.log.Info("Run finished")
	return output, nil
}

// Version returns the version printed by the build tool.
func (r *LocalRunner) Version(ctx context.Context) (string, error) {
	fields := strings.Fields(r.cfg.BuildCommand)
	if len(fields) == 0 {
		return "", errEmptyCommand
	}

	out, err := exec.CommandContext(ctx, fields[0], "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get %s version: %w", fields[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

// exec runs name until it exits or the timeout kills it.
func (r *LocalRunner) exec(ctx context.Context, stage domain.Stage, dir, name string, args []string) (string, error) {
	ctx, cancel := r.cfg.withTimeout(ctx)
	defer cancel()

	out := newOutputWriter(r.log)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	if err := cmd.Run(); err != nil {
		return out.String(), stageFailure(ctx, stage, out.String(), err)
	}
	return out.String(), nil
}
