package runner

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"
	"github.com/melih/mapserver/internal/platform/logger"
)

// ContainerConfig configures the containerized runner.
type ContainerConfig struct {
	Config
	// Image runs the build and the renderer. With Dockerfile set it is built from the repository first.
	Image      string
	Dockerfile string
	// MountPath is where the repository is mounted inside the container.
	MountPath string
}

// ContainerRunner builds and runs the renderer in throwaway containers with the
// repository bind mounted.
type ContainerRunner struct {
	cfg    ContainerConfig
	engine ports.ContainerEngine
	log    logger.Logger
}

// NewContainerRunner creates a ContainerRunner.
func NewContainerRunner(cfg ContainerConfig, engine ports.ContainerEngine, log logger.Logger) *ContainerRunner {
	if cfg.MountPath == "" {
		cfg.MountPath = "/repo"
	}
	return &ContainerRunner{cfg: cfg, engine: engine, log: log}
}

// Name implements ports.BuildRunner.
func (r *ContainerRunner) Name() string {
	return "container"
}

// Version returns the container engine version.
func (r *ContainerRunner) Version(ctx context.Context) (string, error) {
	return r.engine.Version(ctx)
}

// Build prepares the runner image if needed and runs the build command in a container.
func (r *ContainerRunner) Build(ctx context.Context, dir string) error {
	ctx, cancel := r.cfg.withTimeout(ctx)
	defer cancel()

	if r.cfg.Dockerfile != "" {
		r.log.Info("Building runner image",
			logger.WithField("image", r.cfg.Image),
			logger.WithField("dockerfile", r.cfg.Dockerfile))
		output, err := r.engine.BuildImage(ctx, dir, r.cfg.Dockerfile, r.cfg.Image)
		if err != nil {
			return stageFailure(ctx, domain.StageBuild, output, err)
		}
	}

	command := strings.Fields(r.cfg.BuildCommand)
	if len(command) == 0 {
		return &domain.StageError{Stage: domain.StageBuild, Err: fmt.Errorf("%w: %w", domain.ErrBuildFailed, errEmptyCommand)}
	}

	r.log.Info("Started building renderer in container", logger.WithField("command", r.cfg.BuildCommand))
	if _, err := r.run(ctx, domain.StageBuild, dir, command); err != nil {
		return err
	}

	r.log.Info("Build finished")
	return nil
}

// Run executes command in a container. A relative command is resolved against the mount path.
func (r *ContainerRunner) Run(ctx context.Context, dir, command string, args []string) (string, error) {
	ctx, cancel := r.cfg.withTimeout(ctx)
	defer cancel()

	if command == "" {
		return "", &domain.StageError{Stage: domain.StageRun, Err: fmt.Errorf("%w: %w", domain.ErrRunFailed, errEmptyCommand)}
	}

	executable := filepath.ToSlash(command)
	if !path.IsAbs(executable) {
		executable = path.Join(r.cfg.MountPath, executable)
	}

	r.log.Info("Running renderer in container",
		logger.WithField("command", executable),
		logger.WithField("args", strings.Join(args, " ")))

	return r.run(ctx, domain.StageRun, dir, append([]string{executable}, args...))
}

func (r *ContainerRunner) run(ctx context.Context, stage domain.Stage, dir string, command []string) (string, error) {
	result, err := r.engine.RunContainer(ctx, domain.ContainerSpec{
		Image:      r.cfg.Image,
		Command:    command,
		WorkingDir: r.cfg.MountPath,
		Mounts:     map[string]string{dir: r.cfg.MountPath},
	})
	if err != nil {
		return result.Output, stageFailure(ctx, stage, result.Output, err)
	}
	if result.ExitCode != 0 {
		return result.Output, stageFailure(ctx, stage, result.Output, fmt.Errorf("container exited with code %d", result.ExitCode))
	}

	r.log.Debug("Container finished",
		logger.WithField("container", result.ID),
		logger.WithField("duration", result.Duration))
	return result.Output, nil
}
