package processing

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"
	"github.com/melih/mapserver/internal/platform/logger"
)

// failureKeywords mark a renderer run as failed even when it exits with code 0.
var failureKeywords = []string{"error", "exception", "fatal"}

// UpdaterConfig holds the renderer layout inside the repository.
type UpdaterConfig struct {
	RelativeOutputPath   string
	RendererProject      string
	RendererCommand      string
	RendererOptions      []string
	RelativeMapFilesPath string
	MapFiles             FileMatcher
}

// MapUpdater runs sync, build, render and import for one request inside one work directory.
type MapUpdater struct {
	cfg      UpdaterConfig
	syncer   ports.SourceSyncer
	runner   ports.BuildRunner
	importer ports.ResultImporter
	log      logger.Logger
}

// NewMapUpdater creates a MapUpdater.
func NewMapUpdater(cfg UpdaterConfig, syncer ports.SourceSyncer, runner ports.BuildRunner, importer ports.ResultImporter, log logger.Logger) *MapUpdater {
	return &MapUpdater{
		cfg:      cfg,
		syncer:   syncer,
		runner:   runner,
		importer: importer,
		log:      log,
	}
}

// Update brings dir to the requested ref, renders the requested maps and imports them.
// The first failing step ends the run with a *domain.StageError.
func (u *MapUpdater) Update(ctx context.Context, dir *domain.WorkDirectory, req domain.BuildRequest) (domain.BuildResult, error) {
	ref := NormalizeRef(req.Ref)
	log := u.log.With(logger.WithField("ref", ref), logger.WithField("request", req.ID))

	log.Info("Syncing repository", logger.WithField("dir", dir.Path), logger.WithField("last_ref", dir.LastRef))
	repoDir, err := u.syncer.Sync(ctx, dir.Path, ref, req.RepositoryURL)
	if err != nil {
		return domain.BuildResult{}, domain.NewStageError(domain.StageSync, ref, domain.ErrSync, err)
	}
	dir.LastRef = ref

	maps := req.MapFiles
	if req.SyncAll {
		found, err := u.cfg.MapFiles.Discover(repoDir)
		if err != nil {
			return domain.BuildResult{}, domain.NewStageError(domain.StageSync, ref, domain.ErrSync, err)
		}
		maps = BaseNames(found)
		log.Info(fmt.Sprintf("Discovered %d map files", len(maps)))
	}

	log.Info("Building renderer")
	if err := u.runner.Build(ctx, repoDir); err != nil {
		return domain.BuildResult{}, domain.NewStageError(domain.StageBuild, ref, domain.ErrBuildFailed, err)
	}

	command := u.RendererCommand()
	args := append(slices.Clone(u.cfg.RendererOptions), maps...)
	log.Info("Running renderer", logger.WithField("command", command), logger.WithField("maps", len(maps)))

	output, err := u.runner.Run(ctx, repoDir, command, args)
	if err != nil {
		return domain.BuildResult{}, domain.NewStageError(domain.StageRun, ref, domain.ErrRunFailed, err)
	}
	if line, failed := ScanRendererOutput(output); failed {
		return domain.BuildResult{}, &domain.StageError{
			Stage:  domain.StageRun,
			Ref:    ref,
			Output: output,
			Err:    fmt.Errorf("%w: renderer reported %q", domain.ErrRunFailed, line),
		}
	}

	outputPath := filepath.Join(repoDir, u.cfg.RelativeMapFilesPath)
	ids, err := u.importer.Import(ctx, outputPath, ref, req.ForceTiled)
	if err != nil {
		return domain.BuildResult{}, domain.NewStageError(domain.StageImport, ref, domain.ErrImport, err)
	}

	log.Info(fmt.Sprintf("Imported %d maps", len(ids)))
	return domain.BuildResult{Ref: ref, MapIDs: ids}, nil
}

// RendererCommand returns the renderer executable path relative to the repository.
func (u *MapUpdater) RendererCommand() string {
	return filepath.Join(u.cfg.RelativeOutputPath, u.cfg.RendererProject, u.cfg.RendererCommand)
}

// NormalizeRef strips source qualifiers such as "owner:" and "refs/heads/" from ref.
func NormalizeRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.TrimPrefix(ref, "refs/heads/")
}

// ScanRendererOutput returns the first output line containing a failure keyword.
// The renderer exit code is unreliable, so this is a best effort second signal.
func ScanRendererOutput(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		lower := strings.ToLower(line)
		for _, keyword := range failureKeywords {
			if strings.Contains(lower, keyword) {
				return strings.TrimSpace(line), true
			}
		}
	}
	return "", false
}
