package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/melih/mapserver/internal/config"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/processing"
	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mapserver",
		Short:         "Renders map images from a repository and serves them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (default ./mapserver.yaml)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API, the build orchestrator and the scheduled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, newLogger(cfg))
		},
	}
}

func serve(parent context.Context, cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Initialize Adapters (Infrastructure)
	svc, err := newServices(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	buildsEnabled := cfg.Build.Enabled
	log.Info(fmt.Sprintf("Automatic build features are %s", enabledString(buildsEnabled)))
	if buildsEnabled {
		if err := svc.checkPrerequisites(ctx); err != nil {
			return err
		}
	}

	// 2. Start the orchestrator consuming the queue
	orchestratorDone := make(chan struct{})
	if buildsEnabled {
		orchestrator := svc.orchestrator()
		go func() {
			defer close(orchestratorDone)
			_ = orchestrator.Run(ctx)
		}()
	} else {
		close(orchestratorDone)
	}

	// 3. Schedule background jobs
	scheduler, err := svc.scheduler(buildsEnabled)
	if err != nil {
		return err
	}
	scheduler.Start()

	// 4. Start Server
	app := svc.app(buildsEnabled)
	listenErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", logger.WithField("listen", cfg.Server.Listen))
		listenErr <- app.Listen(cfg.Server.Listen)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown requested")
	case err = <-listenErr:
		log.Error("Server failed", logger.WithError(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(parent), shutdownTimeout)
	defer cancel()

	if shutdownErr := app.ShutdownWithContext(shutdownCtx); shutdownErr != nil {
		log.Warn("Server shutdown incomplete", logger.WithError(shutdownErr))
	}

	// The orchestrator applies its own drain timeout to in-flight pipelines.
	<-orchestratorDone

	if stopErr := scheduler.Stop(shutdownCtx); stopErr != nil {
		log.Warn("Scheduled jobs still running at shutdown", logger.WithError(stopErr))
	}

	log.Info("Server stopped")
	return err
}

func newSyncCmd() *cobra.Command {
	var (
		ref        string
		forceTiled bool
	)

	cmd := &cobra.Command{
		Use:   "sync [map files...]",
		Short: "Render and import maps once, every discovered map when none are given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if ref == "" {
				ref = cfg.Git.Branch
			}
			result, err := syncOnce(cmd.Context(), cfg, newLogger(cfg), ref, args, forceTiled)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d maps for %s\n", len(result.MapIDs), result.Ref)
			return err
		},
	}

	cmd.Flags().StringVarP(&ref, "ref", "r", "", "Git ref to render (default git.branch)")
	cmd.Flags().BoolVar(&forceTiled, "force-tiled", false, "Tile every grid image")

	return cmd
}

// syncOnce runs a single request through the orchestrator and returns its outcome.
func syncOnce(parent context.Context, cfg *config.Config, log logger.Logger, ref string, maps []string, forceTiled bool) (domain.BuildResult, error) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newServices(ctx, cfg, log)
	if err != nil {
		return domain.BuildResult{}, err
	}
	defer svc.Close()

	if err := svc.checkPrerequisites(ctx); err != nil {
		return domain.BuildResult{}, err
	}

	runCtx, finish := context.WithCancel(ctx)
	defer finish()

	var (
		result    domain.BuildResult
		resultErr = domain.ErrShutdown
	)
	req := domain.NewBuildRequest(processing.NormalizeRef(ref), maps, func(r domain.BuildResult, err error) {
		result, resultErr = r, err
		finish()
	})
	req.SyncAll = len(maps) == 0
	req.ForceTiled = forceTiled

	if !svc.queue.TryEnqueue(req) {
		return domain.BuildResult{}, domain.ErrQueueFull
	}

	// The completion callback stops the orchestrator once the request finished.
	_ = svc.orchestrator().Run(runCtx)

	return result, resultErr
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
