package ports

import "context"

//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

// SourceSyncer brings a working copy of the map repository to a given ref.
type SourceSyncer interface {
	// Sync clones the repository into workDir if needed, otherwise fetches and checks out ref.
	// An empty repositoryURL selects the configured default. It returns the repository path.
	Sync(ctx context.Context, workDir, ref, repositoryURL string) (string, error)
}
