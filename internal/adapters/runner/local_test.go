package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/melih/mapserver/internal/adapters/runner"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
}

func TestLocalRunner_Build(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name    string
		command string
		timeout time.Duration
		want    error
	}{
		{"success", "true", time.Second, nil},
		{"exit code", "false", time.Second, domain.ErrBuildFailed},
		{"timeout", "sleep 5", 50 * time.Millisecond, domain.ErrBuildTimeout},
		{"empty", "", time.Second, domain.ErrBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runner.NewLocalRunner(runner.Config{BuildCommand: tt.command, Timeout: tt.timeout}, logger.Nop())

			started := time.Now()
			err := r.Build(context.Background(), t.TempDir())
			if tt.want == nil {
				require.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.want)
			var stageErr *domain.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, domain.StageBuild, stageErr.Stage)
			assert.Less(t, time.Since(started), 4*time.Second, "process was not killed")
		})
	}
}

func TestLocalRunner_RunCapturesOutput(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	writeScript(t, dir, "bin/render.sh", `echo "rendering $@"; echo "warning on stderr" >&2`)

	r := runner.NewLocalRunner(runner.Config{Timeout: time.Second}, logger.Nop())
	output, err := r.Run(context.Background(), dir, "bin/render.sh", []string{"--format", "webp", "box.yml"})
	require.NoError(t, err)
	assert.Contains(t, output, "rendering --format webp box.yml")
	assert.Contains(t, output, "warning on stderr")
}

func TestLocalRunner_RunFailureKeepsOutput(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	writeScript(t, dir, "render.sh", `echo "map box.yml failed"; exit 2`)

	r := runner.NewLocalRunner(runner.Config{Timeout: time.Second}, logger.Nop())
	output, err := r.Run(context.Background(), dir, "render.sh", nil)
	assert.ErrorIs(t, err, domain.ErrRunFailed)
	assert.Contains(t, output, "map box.yml failed")

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageRun, stageErr.Stage)
	assert.Contains(t, stageErr.Output, "map box.yml failed")
}

func TestLocalRunner_RunCanceled(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	writeScript(t, dir, "render.sh", "exec sleep 5")

	r := runner.NewLocalRunner(runner.Config{Timeout: time.Minute}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	started := time.Now()
	_, err := r.Run(ctx, dir, "render.sh", nil)
	assert.ErrorIs(t, err, domain.ErrRunTimeout)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(started), 4*time.Second)
}

func TestLocalRunner_TimeoutKillsChildProcesses(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	writeScript(t, dir, "render.sh", "(sleep 1; echo late > late.txt) &\nexec sleep 5")

	r := runner.NewLocalRunner(runner.Config{Timeout: 100 * time.Millisecond}, logger.Nop())

	started := time.Now()
	_, err := r.Run(context.Background(), dir, "render.sh", nil)
	assert.ErrorIs(t, err, domain.ErrRunTimeout)
	assert.Less(t, time.Since(started), time.Second, "output pipe held open by a child")

	time.Sleep(1500 * time.Millisecond)
	assert.NoFileExists(t, filepath.Join(dir, "late.txt"))
}
