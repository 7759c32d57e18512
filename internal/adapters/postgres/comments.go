package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/melih/mapserver/internal/core/domain"
)

// CommentStore implements ports.CommentStore.
type CommentStore struct {
	db *sql.DB
}

func NewCommentStore(db *sql.DB) *CommentStore {
	if db == nil {
		return nil
	}
	return &CommentStore{db: db}
}

func (s *CommentStore) FindComment(ctx context.Context, owner, repo string, number int) (*domain.PullRequestComment, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("comment store not initialized")
	}
	comment := domain.PullRequestComment{Owner: owner, Repository: repo, IssueNumber: number}
	err := s.db.QueryRowContext(ctx,
		`SELECT comment_id FROM pull_request_comments
		 WHERE owner = $1 AND repository = $2 AND issue_number = $3`,
		owner, repo, number,
	).Scan(&comment.CommentID)
	if err != nil {
		return nil, handleNotFound(err)
	}
	return &comment, nil
}

// SaveComment stores comment, replacing the comment id of an already known pull request.
func (s *CommentStore) SaveComment(ctx context.Context, comment domain.PullRequestComment) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("comment store not initialized")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pull_request_comments (owner, repository, issue_number, comment_id)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (owner, repository, issue_number) DO UPDATE SET comment_id = EXCLUDED.comment_id`,
		comment.Owner, comment.Repository, comment.IssueNumber, comment.CommentID,
	)
	if err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}
