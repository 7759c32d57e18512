package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/melih/mapserver/internal/adapters/git"
	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type origin struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
}

func newOrigin(t *testing.T) *origin {
	t.Helper()
	// Local clones go through git-upload-pack.
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := filepath.Join(t.TempDir(), "space-station.git")
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return &origin{t: t, dir: dir, repo: repo}
}

func (o *origin) commit(name, content string) plumbing.Hash {
	o.t.Helper()
	require.NoError(o.t, os.MkdirAll(filepath.Dir(filepath.Join(o.dir, name)), 0o755))
	require.NoError(o.t, os.WriteFile(filepath.Join(o.dir, name), []byte(content), 0o644))

	wt, err := o.repo.Worktree()
	require.NoError(o.t, err)
	_, err = wt.Add(name)
	require.NoError(o.t, err)

	hash, err := wt.Commit("update "+name, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Map Server", Email: "maps@example.com", When: time.Now()},
	})
	require.NoError(o.t, err)
	return hash
}

func (o *origin) branch(name string) {
	o.t.Helper()
	wt, err := o.repo.Worktree()
	require.NoError(o.t, err)
	require.NoError(o.t, wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}))
}

func (o *origin) head() string {
	o.t.Helper()
	head, err := o.repo.Head()
	require.NoError(o.t, err)
	return head.Name().Short()
}

func TestSyncer_ClonesThenChecksOutBranches(t *testing.T) {
	src := newOrigin(t)
	first := src.commit("Resources/Maps/box.yml", "box")
	defaultBranch := src.head()

	src.branch("feature")
	second := src.commit("Resources/Maps/bagel.yml", "bagel")

	workDir := t.TempDir()
	syncer := git.NewSyncer(git.Config{RepositoryURL: src.dir}, logger.Nop())

	repoDir, err := syncer.Sync(context.Background(), workDir, defaultBranch, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "space-station"), repoDir)
	assert.FileExists(t, filepath.Join(repoDir, "Resources/Maps/box.yml"))
	assert.NoFileExists(t, filepath.Join(repoDir, "Resources/Maps/bagel.yml"))

	commit, err := git.HeadCommit(repoDir)
	require.NoError(t, err)
	assert.Equal(t, first.String(), commit)

	// The second sync reuses the clone.
	repoDir, err = syncer.Sync(context.Background(), workDir, "feature", "")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(repoDir, "Resources/Maps/bagel.yml"))

	commit, err = git.HeadCommit(repoDir)
	require.NoError(t, err)
	assert.Equal(t, second.String(), commit)
}

func TestSyncer_FetchesNewCommits(t *testing.T) {
	src := newOrigin(t)
	src.commit("README.md", "v1")
	branch := src.head()

	workDir := t.TempDir()
	syncer := git.NewSyncer(git.Config{RepositoryURL: src.dir, Branch: branch}, logger.Nop())

	_, err := syncer.Sync(context.Background(), workDir, "", "")
	require.NoError(t, err)

	latest := src.commit("README.md", "v2")
	repoDir, err := syncer.Sync(context.Background(), workDir, "", "")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(repoDir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(content))

	commit, err := git.HeadCommit(repoDir)
	require.NoError(t, err)
	assert.Equal(t, latest.String(), commit)
}

func TestSyncer_SwitchesRepositoryWithSameName(t *testing.T) {
	upstream := newOrigin(t)
	upstream.commit("README.md", "upstream")
	upstream.branch("feature")
	upstream.commit("Resources/Maps/box.yml", "upstream-feature")
	upstream.branch("upstream-only")

	fork := newOrigin(t)
	fork.commit("README.md", "fork")
	fork.branch("feature")
	forkHead := fork.commit("Resources/Maps/box.yml", "fork-feature")

	workDir := t.TempDir()
	syncer := git.NewSyncer(git.Config{RepositoryURL: upstream.dir}, logger.Nop())

	_, err := syncer.Sync(context.Background(), workDir, "feature", "")
	require.NoError(t, err)

	repoDir, err := syncer.Sync(context.Background(), workDir, "feature", fork.dir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(repoDir, "Resources/Maps/box.yml"))
	require.NoError(t, err)
	assert.Equal(t, "fork-feature", string(content))

	commit, err := git.HeadCommit(repoDir)
	require.NoError(t, err)
	assert.Equal(t, forkHead.String(), commit)

	// Branches of the previous repository are gone.
	_, err = syncer.Sync(context.Background(), workDir, "upstream-only", fork.dir)
	assert.ErrorContains(t, err, "unknown ref")

	// Switching back fetches the upstream again.
	repoDir, err = syncer.Sync(context.Background(), workDir, "feature", "")
	require.NoError(t, err)
	content, err = os.ReadFile(filepath.Join(repoDir, "Resources/Maps/box.yml"))
	require.NoError(t, err)
	assert.Equal(t, "upstream-feature", string(content))
}

func TestSyncer_UnknownRef(t *testing.T) {
	src := newOrigin(t)
	src.commit("README.md", "v1")

	syncer := git.NewSyncer(git.Config{RepositoryURL: src.dir}, logger.Nop())
	_, err := syncer.Sync(context.Background(), t.TempDir(), "does-not-exist", "")
	assert.ErrorContains(t, err, "unknown ref")
}

func TestSyncer_RequiresRepository(t *testing.T) {
	syncer := git.NewSyncer(git.Config{}, logger.Nop())
	_, err := syncer.Sync(context.Background(), t.TempDir(), "master", "")
	assert.Error(t, err)
}

func TestRepositoryName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/space-wizards/space-station-14.git", "space-station-14"},
		{"https://github.com/space-wizards/space-station-14", "space-station-14"},
		{"https://github.com/space-wizards/space-station-14/", "space-station-14"},
		{"/srv/git/maps.git", "maps"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, git.RepositoryName(tt.url))
		})
	}
}
