package jobs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/melih/mapserver/internal/adapters/jobs"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/processing"
	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncMaps_EnqueuesConfiguredMaps(t *testing.T) {
	queue := processing.NewQueue(1)
	job := jobs.NewSyncMaps("master", []string{"box.yml"}, queue, logger.Nop())

	require.True(t, job.Run(context.Background()))
	assert.False(t, job.Run(context.Background()), "a full queue rejects the request")

	req, err := queue.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "master", req.Ref)
	assert.Equal(t, []string{"box.yml"}, req.MapFiles)
	assert.False(t, req.SyncAll)
	assert.NotNil(t, req.OnCompletion)
}

func TestSyncMaps_SyncAllWithoutMaps(t *testing.T) {
	queue := processing.NewQueue(1)
	job := jobs.NewSyncMaps("master", nil, queue, logger.Nop())
	job.ForceTiled = true

	require.True(t, job.Run(context.Background()))
	req, err := queue.Dequeue(context.Background())
	require.NoError(t, err)
	assert.True(t, req.SyncAll)
	assert.True(t, req.ForceTiled)

	// The completion callback only logs.
	req.OnCompletion(domain.BuildResult{Ref: "master"}, nil)
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestClearJunkFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "crash.dmp"))
	touch(t, filepath.Join(root, "a", "repo", "bin", "deep.dmp"))
	touch(t, filepath.Join(root, "b", "build.tmp"))
	touch(t, filepath.Join(root, "b", "keep.yml"))
	// Files directly in the root are not inside a work directory.
	touch(t, filepath.Join(root, "root.dmp"))

	deleted, err := jobs.NewClearJunkFiles(root, []string{"*.dmp", "*.tmp"}, logger.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	assert.NoFileExists(t, filepath.Join(root, "a", "repo", "bin", "deep.dmp"))
	assert.FileExists(t, filepath.Join(root, "b", "keep.yml"))
	assert.FileExists(t, filepath.Join(root, "root.dmp"))
}

func TestClearJunkFiles_MissingRoot(t *testing.T) {
	deleted, err := jobs.NewClearJunkFiles(filepath.Join(t.TempDir(), "none"), []string{"*.dmp"}, logger.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestScheduler(t *testing.T) {
	scheduler := jobs.NewScheduler(logger.Nop())

	require.NoError(t, scheduler.Add("disabled", "", func(context.Context) {}))
	assert.Error(t, scheduler.Add("broken", "not a schedule", func(context.Context) {}))

	var runs atomic.Int32
	require.NoError(t, scheduler.Add("sync", "@every 1s", func(context.Context) { runs.Add(1) }))
	assert.Equal(t, 1, scheduler.Len())

	scheduler.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, scheduler.Stop(ctx))
}
