package ports

import (
	"context"

	"github.com/melih/mapserver/internal/core/domain"
)

//go:generate mockgen -source=codehost.go -destination=mocks/mock_codehost.go -package=mocks

// CodeHost is the forge hosting the map repository.
type CodeHost interface {
	// ChangedFiles lists the paths changed between two commits or refs of owner/repo.
	ChangedFiles(ctx context.Context, owner, repo, base, head string) ([]string, error)
	// CreateComment comments on an issue or pull request and returns the comment id.
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error)
	UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error
}

// CommentStore remembers which comment belongs to which pull request.
// FindComment returns domain.ErrNotFound for pull requests without a comment.
type CommentStore interface {
	FindComment(ctx context.Context, owner, repo string, number int) (*domain.PullRequestComment, error)
	SaveComment(ctx context.Context, comment domain.PullRequestComment) error
}
