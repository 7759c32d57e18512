// Package git keeps working copies of the map repository in sync using go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/melih/mapserver/internal/platform/logger"
)

const remoteName = "origin"

var remoteRefSpec = config.RefSpec("+refs/heads/*:refs/remotes/" + remoteName + "/*")

// Config holds the repository defaults used when a request does not name its own.
type Config struct {
	RepositoryURL string
	Branch        string
}

// Syncer implements ports.SourceSyncer.
type Syncer struct {
	cfg Config
	log logger.Logger
}

// NewSyncer creates a Syncer.
func NewSyncer(cfg Config, log logger.Logger) *Syncer {
	if cfg.Branch == "" {
		cfg.Branch = "master"
	}
	return &Syncer{cfg: cfg, log: log}
}

// Sync clones the repository below workDir on first use, then fetches and force checks out ref.
// Submodules are initialized and updated after every checkout.
func (s *Syncer) Sync(ctx context.Context, workDir, ref, repositoryURL string) (string, error) {
	if repositoryURL == "" {
		repositoryURL = s.cfg.RepositoryURL
	}
	if repositoryURL == "" {
		return "", errors.New("no repository url configured")
	}
	if ref == "" {
		ref = s.cfg.Branch
	}

	repoDir := filepath.Join(workDir, RepositoryName(repositoryURL))
	log := s.log.With(logger.WithField("ref", ref), logger.WithField("repository", repositoryURL))
	progress := newProgressWriter(log)

	repo, err := git.PlainOpen(repoDir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		log.Info("Cloning repository", logger.WithField("dir", repoDir))
		repo, err = git.PlainCloneContext(ctx, repoDir, false, &git.CloneOptions{
			URL:               repositoryURL,
			RemoteName:        remoteName,
			Progress:          progress,
			RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
		})
		if err != nil {
			_ = os.RemoveAll(repoDir)
			return "", fmt.Errorf("failed to clone repo: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to open repo: %w", err)
	} else if err := useRemote(repo, repositoryURL); err != nil {
		return "", err
	}

	log.Info("Fetching repository")
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{remoteRefSpec},
		Tags:       git.AllTags,
		Force:      true,
		Progress:   progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "", fmt.Errorf("failed to fetch: %w", err)
	}

	hash, err := resolve(repo, ref)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return "", fmt.Errorf("failed to checkout %s: %w", ref, err)
	}

	submodules, err := worktree.Submodules()
	if err != nil {
		return "", fmt.Errorf("failed to list submodules: %w", err)
	}
	if len(submodules) > 0 {
		err = submodules.UpdateContext(ctx, &git.SubmoduleUpdateOptions{
			Init:              true,
			RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
		})
		if err != nil {
			return "", fmt.Errorf("failed to update submodules: %w", err)
		}
	}

	log.Info("Repository synced", logger.WithField("commit", hash.String()))
	return repoDir, nil
}

// HeadCommit returns the commit hash checked out in repoDir.
func HeadCommit(repoDir string) (string, error) {
	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return "", fmt.Errorf("failed to open repo: %w", err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// RepositoryName derives the checkout directory name from a repository url.
func RepositoryName(repositoryURL string) string {
	name := path.Base(strings.TrimRight(filepath.ToSlash(repositoryURL), "/"))
	return strings.TrimSuffix(name, ".git")
}

// useRemote points origin at repositoryURL. When the checkout came from another
// repository with the same name, the refs fetched from it are dropped so they can
// not resolve for the new remote.
func useRemote(repo *git.Repository, repositoryURL string) error {
	remote, err := repo.Remote(remoteName)
	if err == nil && slices.Contains(remote.Config().URLs, repositoryURL) {
		return nil
	}
	if err != nil && !errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("failed to read remote: %w", err)
	}
	if err == nil {
		if err := repo.DeleteRemote(remoteName); err != nil {
			return fmt.Errorf("failed to remove remote: %w", err)
		}
	}

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name:  remoteName,
		URLs:  []string{repositoryURL},
		Fetch: []config.RefSpec{remoteRefSpec},
	})
	if err != nil {
		return fmt.Errorf("failed to create remote: %w", err)
	}

	refs, err := repo.References()
	if err != nil {
		return fmt.Errorf("failed to list references: %w", err)
	}
	var stale []plumbing.ReferenceName
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		if strings.HasPrefix(name.String(), "refs/remotes/"+remoteName+"/") || name.IsTag() {
			stale = append(stale, name)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list references: %w", err)
	}
	for _, name := range stale {
		if err := repo.Storer.RemoveReference(name); err != nil {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// resolve looks ref up as a remote branch first, then as a tag, then as any revision.
func resolve(repo *git.Repository, ref string) (plumbing.Hash, error) {
	candidates := []string{
		"refs/remotes/" + remoteName + "/" + ref,
		"refs/tags/" + ref,
		ref,
	}
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err == nil {
			return *hash, nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("unknown ref %q", ref)
}
