package processing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports/mocks"
	"github.com/melih/mapserver/internal/core/processing"
	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type updaterMocks struct {
	syncer   *mocks.MockSourceSyncer
	runner   *mocks.MockBuildRunner
	importer *mocks.MockResultImporter
}

func newUpdater(t *testing.T) (*processing.MapUpdater, updaterMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := updaterMocks{
		syncer:   mocks.NewMockSourceSyncer(ctrl),
		runner:   mocks.NewMockBuildRunner(ctrl),
		importer: mocks.NewMockResultImporter(ctrl),
	}
	cfg := processing.UpdaterConfig{
		RelativeOutputPath:   "bin",
		RendererProject:      "Content.MapRenderer",
		RendererCommand:      "Content.MapRenderer",
		RendererOptions:      []string{"--format", "webp"},
		RelativeMapFilesPath: "Resources/MapImages",
		MapFiles: processing.FileMatcher{
			Include: []string{"Resources/Maps/*.yml"},
			Exclude: []string{"Resources/Maps/test*.yml"},
		},
	}
	return processing.NewMapUpdater(cfg, m.syncer, m.runner, m.importer, logger.Nop()), m
}

func TestMapUpdater_Success(t *testing.T) {
	updater, m := newUpdater(t)
	ctx := context.Background()
	dir := &domain.WorkDirectory{Path: "/work/1"}
	repoDir := "/work/1/space-station-14"
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	req := domain.NewBuildRequest("owner:feature", []string{"box.yml", "bagel.yml"}, nil)
	req.ForceTiled = true

	gomock.InOrder(
		m.syncer.EXPECT().Sync(ctx, dir.Path, "feature", "").Return(repoDir, nil),
		m.runner.EXPECT().Build(ctx, repoDir).Return(nil),
		m.runner.EXPECT().Run(ctx, repoDir,
			filepath.Join("bin", "Content.MapRenderer", "Content.MapRenderer"),
			[]string{"--format", "webp", "box.yml", "bagel.yml"}).Return("Rendered 2 maps", nil),
		m.importer.EXPECT().Import(ctx, filepath.Join(repoDir, "Resources/MapImages"), "feature", true).Return(ids, nil),
	)

	result, err := updater.Update(ctx, dir, req)
	require.NoError(t, err)
	assert.Equal(t, "feature", result.Ref)
	assert.Equal(t, ids, result.MapIDs)
	assert.Equal(t, "feature", dir.LastRef)
}

func TestMapUpdater_SyncFailureStopsPipeline(t *testing.T) {
	updater, m := newUpdater(t)
	dir := &domain.WorkDirectory{Path: "/work/1", LastRef: "old"}

	m.syncer.EXPECT().Sync(gomock.Any(), gomock.Any(), "master", "").Return("", errors.New("network unreachable"))

	_, err := updater.Update(context.Background(), dir, request("master"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSync)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageSync, stageErr.Stage)
	assert.Equal(t, "master", stageErr.Ref)
	assert.Equal(t, "old", dir.LastRef)
}

func TestMapUpdater_BuildFailures(t *testing.T) {
	tests := []struct {
		name     string
		buildErr error
		wantKind error
	}{
		{"exit code", errors.New("exit status 1"), domain.ErrBuildFailed},
		{"timeout", &domain.StageError{Stage: domain.StageBuild, Err: domain.ErrBuildTimeout}, domain.ErrBuildTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updater, m := newUpdater(t)
			m.syncer.EXPECT().Sync(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/repo", nil)
			m.runner.EXPECT().Build(gomock.Any(), "/repo").Return(tt.buildErr)

			_, err := updater.Update(context.Background(), &domain.WorkDirectory{Path: "/work"}, request("master"))
			assert.ErrorIs(t, err, tt.wantKind)

			var stageErr *domain.StageError
			require.ErrorAs(t, err, &stageErr)
			assert.Equal(t, domain.StageBuild, stageErr.Stage)
			assert.Equal(t, "master", stageErr.Ref)
		})
	}
}

func TestMapUpdater_RendererOutputKeyword(t *testing.T) {
	updater, m := newUpdater(t)
	output := "Loading map box.yml\nUnhandled Exception: System.NullReferenceException\n"

	m.syncer.EXPECT().Sync(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/repo", nil)
	m.runner.EXPECT().Build(gomock.Any(), "/repo").Return(nil)
	m.runner.EXPECT().Run(gomock.Any(), "/repo", gomock.Any(), gomock.Any()).Return(output, nil)

	_, err := updater.Update(context.Background(), &domain.WorkDirectory{Path: "/work"}, request("master"))
	assert.ErrorIs(t, err, domain.ErrRunFailed)

	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, domain.StageRun, stageErr.Stage)
	assert.Equal(t, output, stageErr.Output)
}

func TestMapUpdater_ImportFailure(t *testing.T) {
	updater, m := newUpdater(t)

	m.syncer.EXPECT().Sync(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("/repo", nil)
	m.runner.EXPECT().Build(gomock.Any(), gomock.Any()).Return(nil)
	m.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil)
	m.importer.EXPECT().Import(gomock.Any(), gomock.Any(), "master", false).Return(nil, errors.New("disk full"))

	_, err := updater.Update(context.Background(), &domain.WorkDirectory{Path: "/work"}, request("master"))
	assert.ErrorIs(t, err, domain.ErrImport)
}

func TestMapUpdater_SyncAllDiscoversMaps(t *testing.T) {
	updater, m := newUpdater(t)
	repoDir := t.TempDir()
	maps := filepath.Join(repoDir, "Resources", "Maps")
	require.NoError(t, os.MkdirAll(maps, 0o755))
	for _, name := range []string{"saltern.yml", "box.yml", "testmap.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(maps, name), nil, 0o644))
	}

	req := domain.NewBuildRequest("master", nil, nil)
	req.SyncAll = true

	m.syncer.EXPECT().Sync(gomock.Any(), gomock.Any(), "master", "").Return(repoDir, nil)
	m.runner.EXPECT().Build(gomock.Any(), repoDir).Return(nil)
	m.runner.EXPECT().Run(gomock.Any(), repoDir, gomock.Any(),
		[]string{"--format", "webp", "box.yml", "saltern.yml"}).Return("", nil)
	m.importer.EXPECT().Import(gomock.Any(), gomock.Any(), "master", false).Return([]uuid.UUID{}, nil)

	_, err := updater.Update(context.Background(), &domain.WorkDirectory{Path: "/work"}, req)
	require.NoError(t, err)
}

func TestNormalizeRef(t *testing.T) {
	tests := map[string]string{
		"master":                       "master",
		"refs/heads/master":            "master",
		"owner:feature":                "feature",
		"pull/12/head:feature":         "feature",
		"owner:refs/heads/feature/one": "feature/one",
		" stable ":                     "stable",
	}
	for in, want := range tests {
		assert.Equal(t, want, processing.NormalizeRef(in), in)
	}
}

func TestScanRendererOutput(t *testing.T) {
	tests := []struct {
		output string
		failed bool
		line   string
	}{
		{"Rendered map box\nDone", false, ""},
		{"", false, ""},
		{"step 1\n  ERROR: could not load prototype  \n", true, "ERROR: could not load prototype"},
		{"Fatal crash", true, "Fatal crash"},
		{"System.Exception: boom", true, "System.Exception: boom"},
		{"0 errors reported", true, "0 errors reported"},
	}
	for _, tt := range tests {
		line, failed := processing.ScanRendererOutput(tt.output)
		assert.Equal(t, tt.failed, failed, tt.output)
		assert.Equal(t, tt.line, line, tt.output)
	}
}
