package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/melih/mapserver/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Processing.DirectoryPoolSize)
	assert.Equal(t, 6, cfg.Processing.QueueSize)
	assert.Equal(t, config.RunnerLocal, cfg.Build.Runner)
	assert.Equal(t, 10*time.Minute, cfg.Build.ProcessTimeout)
	assert.Equal(t, []string{"--format", "webp", "--viewer", "-f"}, cfg.Build.RendererArgs())
	assert.Equal(t, []string{"Resources/Maps/*.yml"}, cfg.Git.MapFilePatterns)
	assert.Equal(t, "master", cfg.Git.Branch)
	assert.Equal(t, 256, cfg.Tiling.TileSize)
	assert.Equal(t, ":3000", cfg.Server.Listen)
	assert.Equal(t, config.StorageLocal, cfg.Storage.Backend)
	assert.Equal(t, 100, cfg.Server.RateLimitCount)
	assert.Equal(t, time.Minute, cfg.Server.RateLimitWindow)
	assert.False(t, cfg.GitHub.RunOnPullRequests)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapserver.yaml")
	content := `
processing:
  directory_pool_size: 5
  queue_size: 12
build:
  runner: container
  process_timeout: 90s
git:
  branch: stable
  map_file_patterns:
    - "Resources/Maps/**/*.yml"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("MAPSERVER_PROCESSING_QUEUE_SIZE", "20")
	t.Setenv("MAPSERVER_SERVER_API_KEY", "secret")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Processing.DirectoryPoolSize)
	assert.Equal(t, 20, cfg.Processing.QueueSize)
	assert.Equal(t, config.RunnerContainer, cfg.Build.Runner)
	assert.Equal(t, 90*time.Second, cfg.Build.ProcessTimeout)
	assert.Equal(t, "stable", cfg.Git.Branch)
	assert.Equal(t, []string{"Resources/Maps/**/*.yml"}, cfg.Git.MapFilePatterns)
	assert.Equal(t, "secret", cfg.Server.APIKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"pool size", func(c *config.Config) { c.Processing.DirectoryPoolSize = 0 }},
		{"queue size", func(c *config.Config) { c.Processing.QueueSize = -1 }},
		{"target directory", func(c *config.Config) { c.Processing.TargetDirectory = "" }},
		{"runner", func(c *config.Config) { c.Build.Runner = "kubernetes" }},
		{"timeout", func(c *config.Config) { c.Build.ProcessTimeout = 0 }},
		{"storage", func(c *config.Config) { c.Storage.Backend = "s3" }},
		{"tile size", func(c *config.Config) { c.Tiling.TileSize = 128 }},
		{"rate limit window", func(c *config.Config) { c.Server.RateLimitWindow = 0 }},
	}

	t.Chdir(t.TempDir())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestYAML_MasksSecrets(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.APIKey = "top-secret"
	cfg.GitHub.Token = "ghp_token"

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "top-secret")
	assert.NotContains(t, string(out), "ghp_token")
	assert.Contains(t, string(out), "********")
	assert.Contains(t, string(out), "queue_size: 6")
	assert.Equal(t, "top-secret", cfg.Server.APIKey)
}
