// Package github talks to the GitHub REST API for changed files and pull request comments.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	gogithub "github.com/google/go-github/v66/github"
	"github.com/melih/mapserver/internal/platform/logger"
)

const comparePageSize = 100

// Config selects the API endpoint and credentials.
type Config struct {
	Token string
	// BaseURL overrides https://api.github.com/, e.g. for GitHub Enterprise.
	BaseURL string
}

// Client implements ports.CodeHost.
type Client struct {
	api *gogithub.Client
	log logger.Logger
}

func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	api := gogithub.NewClient(nil)
	if cfg.Token != "" {
		api = api.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid github base url: %w", err)
		}
		api.BaseURL = base
	}
	return &Client{api: api, log: log}, nil
}

// ChangedFiles returns every file changed between base and head, following the
// pages of the compare API.
func (c *Client) ChangedFiles(ctx context.Context, owner, repo, base, head string) ([]string, error) {
	opts := &gogithub.ListOptions{PerPage: comparePageSize}
	var files []string
	for {
		comparison, resp, err := c.api.Repositories.CompareCommits(ctx, owner, repo, base, head, opts)
		if err != nil {
			return nil, fmt.Errorf("compare %s...%s: %w", base, head, err)
		}
		for _, file := range comparison.Files {
			files = append(files, file.GetFilename())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	c.log.Debug("Compared commits",
		logger.WithField("repository", owner+"/"+repo),
		logger.WithField("base", base),
		logger.WithField("head", head),
		logger.WithField("files", len(files)))
	return files, nil
}

func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) (int64, error) {
	comment, _, err := c.api.Issues.CreateComment(ctx, owner, repo, number, &gogithub.IssueComment{
		Body: gogithub.String(body),
	})
	if err != nil {
		return 0, fmt.Errorf("create comment on %s/%s#%d: %w", owner, repo, number, err)
	}
	return comment.GetID(), nil
}

func (c *Client) UpdateComment(ctx context.Context, owner, repo string, commentID int64, body string) error {
	_, _, err := c.api.Issues.EditComment(ctx, owner, repo, commentID, &gogithub.IssueComment{
		Body: gogithub.String(body),
	})
	if err != nil {
		return fmt.Errorf("update comment %d on %s/%s: %w", commentID, owner, repo, err)
	}
	return nil
}
