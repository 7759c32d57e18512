package processing

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"
	"github.com/melih/mapserver/internal/platform/logger"
)

const defaultNotifyTimeout = 30 * time.Second

var (
	generatingComment = template.Must(template.New("generating").Parse(
		"Generating map previews for this pull request:\n" +
			"{{range .Files}}- `{{.}}`\n{{end}}"))

	mapsComment = template.Must(template.New("maps").Parse(
		"### Map previews\n" +
			"{{range .Images}}\n**{{.Name}}**\n\n![{{.Name}}]({{.URL}})\n{{else}}\nNo maps were rendered.\n{{end}}"))

	failedComment = template.Must(template.New("failed").Parse(
		"Generating map previews failed{{with .Stage}} while running {{.}}{{end}}: `{{.Error}}`\n"))
)

// MapImage is one map preview linked from a pull request comment.
type MapImage struct {
	Name string
	URL  string
}

// PullRequestNotifier keeps one comment per pull request up to date with its map previews.
type PullRequestNotifier struct {
	host      ports.CodeHost
	comments  ports.CommentStore
	maps      ports.MapStore
	publicURL string
	timeout   time.Duration
	log       logger.Logger
}

// NewPullRequestNotifier creates a notifier linking grid images below publicURL.
func NewPullRequestNotifier(host ports.CodeHost, comments ports.CommentStore, maps ports.MapStore, publicURL string, log logger.Logger) *PullRequestNotifier {
	return &PullRequestNotifier{
		host:      host,
		comments:  comments,
		maps:      maps,
		publicURL: strings.TrimRight(publicURL, "/"),
		timeout:   defaultNotifyTimeout,
		log:       log,
	}
}

// Started comments the files being rendered unless the pull request already has a comment.
func (n *PullRequestNotifier) Started(ctx context.Context, pr domain.PullRequest, files []string) error {
	_, err := n.comments.FindComment(ctx, pr.Owner, pr.Repository, pr.Number)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	body, err := render(generatingComment, map[string]any{"Files": files})
	if err != nil {
		return err
	}
	return n.create(ctx, pr, body)
}

// Completed returns the completion callback of a pull request build.
func (n *PullRequestNotifier) Completed(pr domain.PullRequest) domain.CompletionFunc {
	return func(result domain.BuildResult, err error) {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.Finish(ctx, pr, result, err); err != nil {
			n.log.Error("Failed to update pull request comment",
				logger.WithField("pull_request", fmt.Sprintf("%s/%s#%d", pr.Owner, pr.Repository, pr.Number)),
				logger.WithError(err))
		}
	}
}

// Finish creates or updates the pull request comment with the outcome of its build.
func (n *PullRequestNotifier) Finish(ctx context.Context, pr domain.PullRequest, result domain.BuildResult, buildErr error) error {
	var (
		body string
		err  error
	)
	if buildErr != nil {
		model := map[string]any{"Error": buildErr.Error()}
		var stageErr *domain.StageError
		if errors.As(buildErr, &stageErr) {
			model["Stage"] = string(stageErr.Stage)
		}
		body, err = render(failedComment, model)
	} else {
		var images []MapImage
		images, err = n.images(ctx, result)
		if err != nil {
			return err
		}
		body, err = render(mapsComment, map[string]any{"Images": images})
	}
	if err != nil {
		return err
	}

	comment, err := n.comments.FindComment(ctx, pr.Owner, pr.Repository, pr.Number)
	if errors.Is(err, domain.ErrNotFound) {
		return n.create(ctx, pr, body)
	}
	if err != nil {
		return err
	}
	return n.host.UpdateComment(ctx, pr.Owner, pr.Repository, comment.CommentID, body)
}

// images links the largest grid of every rendered map.
func (n *PullRequestNotifier) images(ctx context.Context, result domain.BuildResult) ([]MapImage, error) {
	images := make([]MapImage, 0, len(result.MapIDs))
	for _, id := range result.MapIDs {
		m, err := n.maps.GetMap(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load map %s: %w", id, err)
		}
		if len(m.Grids) == 0 {
			continue
		}
		largest := slices.MaxFunc(m.Grids, func(a, b domain.Grid) int {
			return cmp.Compare(a.Extent.Size(), b.Extent.Size())
		})
		images = append(images, MapImage{
			Name: m.DisplayName,
			URL:  fmt.Sprintf("%s/api/v1/images/grid/%s/%d", n.publicURL, m.MapGUID, largest.GridID),
		})
	}
	return images, nil
}

func (n *PullRequestNotifier) create(ctx context.Context, pr domain.PullRequest, body string) error {
	id, err := n.host.CreateComment(ctx, pr.Owner, pr.Repository, pr.Number, body)
	if err != nil {
		return err
	}
	return n.comments.SaveComment(ctx, domain.PullRequestComment{
		Owner:       pr.Owner,
		Repository:  pr.Repository,
		IssueNumber: pr.Number,
		CommentID:   id,
	})
}

func render(tmpl *template.Template, model any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, model); err != nil {
		return "", fmt.Errorf("render %s comment: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
