package domain

import "fmt"

// PullRequest identifies a pull request of the map repository and the branch it renders.
type PullRequest struct {
	Owner      string
	Repository string
	Number     int
	BaseRef    string
	// HeadLabel is the "user:branch" form the compare API accepts.
	HeadLabel string
	HeadRef   string
	// CloneURL points to the repository holding the head branch, which may be a fork.
	CloneURL string
}

// BuildRef returns the ref a pull request build is queued under.
func (pr PullRequest) BuildRef() string {
	return fmt.Sprintf("pull/%d/head:%s", pr.Number, pr.HeadRef)
}

// PullRequestComment remembers the comment the server keeps updated on a pull request.
type PullRequestComment struct {
	Owner       string
	Repository  string
	IssueNumber int
	CommentID   int64
}
