package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/mapserver/internal/adapters/docker"
	"github.com/melih/mapserver/internal/adapters/git"
	"github.com/melih/mapserver/internal/adapters/github"
	"github.com/melih/mapserver/internal/adapters/http"
	"github.com/melih/mapserver/internal/adapters/importer"
	"github.com/melih/mapserver/internal/adapters/jobs"
	"github.com/melih/mapserver/internal/adapters/objectstore"
	"github.com/melih/mapserver/internal/adapters/postgres"
	"github.com/melih/mapserver/internal/adapters/reporting"
	"github.com/melih/mapserver/internal/adapters/runner"
	"github.com/melih/mapserver/internal/adapters/tiling"
	"github.com/melih/mapserver/internal/config"
	"github.com/melih/mapserver/internal/core/ports"
	"github.com/melih/mapserver/internal/core/processing"
	"github.com/melih/mapserver/internal/platform/logger"
)

const version = "1.0.0"

const prerequisiteTimeout = 10 * time.Second

// services holds every adapter shared by the commands.
type services struct {
	cfg      *config.Config
	log      logger.Logger
	db       *sql.DB
	docker   *docker.Adapter
	queue    *processing.Queue
	pool     *processing.DirectoryPool
	runner   ports.BuildRunner
	maps     *postgres.MapStore
	images   ports.ImageStore
	importer *importer.Importer
	updater  *processing.MapUpdater
	reporter ports.ErrorReporter
	// host and notifier stay nil without a GitHub token.
	host     ports.CodeHost
	notifier http.PullRequestNotifier
}

func newServices(ctx context.Context, cfg *config.Config, log logger.Logger) (_ *services, err error) {
	svc := &services{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			svc.Close()
		}
	}()

	// Database
	svc.db, err = postgres.Open(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		PingTimeout:     cfg.Database.PingTimeout,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = postgres.Migrate(ctx, svc.db); err != nil {
		return nil, err
	}
	svc.maps = postgres.NewMapStore(svc.db)

	// GitHub
	if cfg.GitHub.Token != "" {
		var client *github.Client
		client, err = github.NewClient(github.Config{
			Token:   cfg.GitHub.Token,
			BaseURL: cfg.GitHub.BaseURL,
		}, log)
		if err != nil {
			return nil, err
		}
		svc.host = client
		svc.notifier = processing.NewPullRequestNotifier(client, postgres.NewCommentStore(svc.db), svc.maps, cfg.Server.PublicURL, log)
	}

	// Image storage
	svc.images, err = newImageStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Processing
	if err = os.MkdirAll(cfg.Processing.TargetDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", cfg.Processing.TargetDirectory, err)
	}
	svc.pool, err = processing.NewDirectoryPool(cfg.Processing.TargetDirectory, cfg.Processing.DirectoryPoolSize, log)
	if err != nil {
		return nil, err
	}
	svc.queue = processing.NewQueue(cfg.Processing.QueueSize)

	// Build runner
	runnerCfg := runner.Config{
		BuildCommand: cfg.Build.BuildCommand,
		Timeout:      cfg.Build.ProcessTimeout,
	}
	switch cfg.Build.Runner {
	case config.RunnerContainer:
		svc.docker, err = docker.NewAdapter(cfg.Container.DockerHost)
		if err != nil {
			return nil, err
		}
		svc.runner = runner.NewContainerRunner(runner.ContainerConfig{
			Config:     runnerCfg,
			Image:      cfg.Container.Image,
			Dockerfile: cfg.Container.Dockerfile,
			MountPath:  cfg.Container.MountPath,
		}, svc.docker, log)
	default:
		svc.runner = runner.NewLocalRunner(runnerCfg, log)
	}

	// Importer
	if cfg.Files.TemporaryFilesPath != "" {
		if err = os.MkdirAll(cfg.Files.TemporaryFilesPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", cfg.Files.TemporaryFilesPath, err)
		}
	}
	svc.importer = importer.New(importer.Config{
		MapDataFile:       cfg.Build.MapDataFile,
		TileSize:          cfg.Tiling.TileSize,
		TilingThreshold:   cfg.Tiling.Threshold,
		AllowedExtensions: cfg.Files.AllowedExtensions,
		CleanOutput:       cfg.Build.CleanOutputAfterImport,
		TempDir:           cfg.Files.TemporaryFilesPath,
	}, svc.maps, svc.images, tiling.NewTiler(log), log)

	syncer := git.NewSyncer(git.Config{
		RepositoryURL: cfg.Git.RepositoryURL,
		Branch:        cfg.Git.Branch,
	}, log)

	svc.updater = processing.NewMapUpdater(processing.UpdaterConfig{
		RelativeOutputPath:   cfg.Build.RelativeOutputPath,
		RendererProject:      cfg.Build.RendererProject,
		RendererCommand:      cfg.Build.RendererCommand,
		RendererOptions:      cfg.Build.RendererArgs(),
		RelativeMapFilesPath: cfg.Build.RelativeMapFilesPath,
		MapFiles:             mapFileMatcher(cfg),
	}, syncer, svc.runner, svc.importer, log)

	// A nil interface disables reporting, a typed nil pointer would not.
	if cfg.Reporting.WebhookURL != "" {
		svc.reporter = reporting.NewWebhookReporter(cfg.Reporting.WebhookURL, cfg.Reporting.Timeout, log)
	}

	return svc, nil
}

func newImageStore(ctx context.Context, cfg *config.Config) (ports.ImageStore, error) {
	if cfg.Storage.Backend == config.StorageMinio {
		store, err := objectstore.NewMinioStore(ctx, objectstore.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio storage: %w", err)
		}
		return store, nil
	}

	store, err := objectstore.NewLocalStore(cfg.Files.GridImagesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}
	return store, nil
}

func mapFileMatcher(cfg *config.Config) processing.FileMatcher {
	return processing.FileMatcher{
		Include: cfg.Git.MapFilePatterns,
		Exclude: cfg.Git.MapFileExcludePatterns,
	}
}

// checkPrerequisites verifies everything a pipeline needs before work is accepted.
func (s *services) checkPrerequisites(ctx context.Context) error {
	s.log.Info("Checking configuration")
	if s.cfg.Git.RepositoryURL == "" {
		return errors.New("git.repository_url is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, prerequisiteTimeout)
	defer cancel()

	runnerVersion, err := s.runner.Version(ctx)
	if err != nil {
		return fmt.Errorf("%s runner is not usable: %w", s.runner.Name(), err)
	}
	s.log.Info("Build runner ready",
		logger.WithField("runner", s.runner.Name()),
		logger.WithField("version", runnerVersion))
	return nil
}

func (s *services) orchestrator() *processing.Orchestrator {
	return processing.NewOrchestrator(s.queue, s.pool, s.updater, s.reporter, s.cfg.Processing.DrainTimeout, s.log)
}

func (s *services) scheduler(buildsEnabled bool) (*jobs.Scheduler, error) {
	scheduler := jobs.NewScheduler(s.log)

	if buildsEnabled {
		syncMaps := jobs.NewSyncMaps(s.cfg.Git.Branch, s.cfg.Jobs.SyncMaps, s.queue, s.log)
		if err := scheduler.Add("sync-maps", s.cfg.Jobs.SyncSchedule, func(ctx context.Context) {
			syncMaps.Run(ctx)
		}); err != nil {
			return nil, err
		}
	}

	cleanup := jobs.NewClearJunkFiles(s.pool.Root(), s.cfg.Processing.JunkFilePatterns, s.log)
	if err := scheduler.Add("clear-junk-files", s.cfg.Jobs.CleanupSchedule, func(ctx context.Context) {
		if _, err := cleanup.Run(ctx); err != nil {
			s.log.Error("Failed to clear junk files", logger.WithError(err))
		}
	}); err != nil {
		return nil, err
	}

	return scheduler, nil
}

func (s *services) app(buildsEnabled bool) *fiber.App {
	cfg := s.cfg

	handlers := http.Handlers{
		Management: http.NewManagementHandler(http.Information{
			Version:             version,
			AutomatedBuilds:     buildsEnabled,
			CleanRendererOutput: cfg.Build.CleanOutputAfterImport,
			RendererOptions:     cfg.Build.RendererOptions,
			DirectoryPoolSize:   cfg.Processing.DirectoryPoolSize,
			ProcessQueueSize:    cfg.Processing.QueueSize,
			RepositoryURL:       cfg.Git.RepositoryURL,
			Branch:              cfg.Git.Branch,
			MapFilePatterns:     cfg.Git.MapFilePatterns,
		}, s.runner, s.queue, s.pool, s.maps),
		Maps: http.NewMapHandler(s.maps, s.images, s.importer, http.MapConfig{
			PublicURL: cfg.Server.PublicURL,
			UploadDir: cfg.Files.TemporaryFilesPath,
		}, s.log),
		Images: http.NewImageHandler(s.maps, s.images, cfg.Files.AllowedExtensions),
		Webhooks: http.NewWebhookHandler(http.WebhookConfig{
			Enabled:  buildsEnabled && cfg.Server.WebhookSecret != "",
			Secret:   cfg.Server.WebhookSecret,
			Branch:   cfg.Git.Branch,
			MapFiles: mapFileMatcher(cfg),
			CodeChanges: processing.FileMatcher{
				Include: cfg.Git.CodeChangePatterns,
			},
			BlockOnCodeChanges: cfg.Git.DontRunWithCodeChanges,
			RunOnPullRequests:  cfg.GitHub.RunOnPullRequests,
		}, s.queue, s.host, s.notifier, s.log),
	}
	if buildsEnabled {
		handlers.Builds = http.NewBuildHandler(s.queue, cfg.Git.Branch, s.log)
	}

	return http.NewApp(handlers, http.RouterConfig{
		APIKey:        cfg.Server.APIKey,
		RateLimit:     cfg.Server.RateLimitCount,
		RateWindow:    cfg.Server.RateLimitWindow,
		ImageCacheTTL: cfg.Server.ImageCacheTTL,
	}, s.log)
}

// Close releases the database and docker clients.
func (s *services) Close() {
	if s.docker != nil {
		if err := s.docker.Close(); err != nil {
			s.log.Warn("Failed to close docker client", logger.WithError(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warn("Failed to close database", logger.WithError(err))
		}
	}
}
