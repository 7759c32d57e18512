package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"
	"github.com/melih/mapserver/internal/core/processing"
	"github.com/melih/mapserver/internal/platform/logger"
)

const (
	githubEventHeader     = "X-GitHub-Event"
	githubSignatureHeader = "X-Hub-Signature-256"
	signaturePrefix       = "sha256="
	branchRefPrefix       = "refs/heads/"
	// GitHub lists at most this many commits in a push payload.
	maxPushCommits = 20
)

// WebhookConfig controls which pushes and pull requests trigger a build.
type WebhookConfig struct {
	Enabled bool
	Secret  string
	Branch  string
	// MapFiles selects the changed files that are rendered.
	MapFiles processing.FileMatcher
	// CodeChanges blocks builds for pushes touching code when BlockOnCodeChanges is set.
	CodeChanges        processing.FileMatcher
	BlockOnCodeChanges bool
	RunOnPullRequests  bool
}

// PullRequestNotifier reports pull request builds back to the pull request.
type PullRequestNotifier interface {
	Started(ctx context.Context, pr domain.PullRequest, files []string) error
	Completed(pr domain.PullRequest) domain.CompletionFunc
}

// WebhookHandler turns GitHub push and pull request events into build requests.
type WebhookHandler struct {
	cfg      WebhookConfig
	queue    Enqueuer
	host     ports.CodeHost
	notifier PullRequestNotifier
	log      logger.Logger
}

// NewWebhookHandler creates the handler. Without a code host push payloads are
// read as they are and pull requests are ignored; notifier may be nil.
func NewWebhookHandler(cfg WebhookConfig, queue Enqueuer, host ports.CodeHost, notifier PullRequestNotifier, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, queue: queue, host: host, notifier: notifier, log: log}
}

type repository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	CloneURL string `json:"clone_url"`
}

// PushEvent is the subset of the GitHub push payload the server reads.
type PushEvent struct {
	Ref        string     `json:"ref"`
	Before     string     `json:"before"`
	After      string     `json:"after"`
	Repository repository `json:"repository"`
	Commits    []struct {
		Added    []string `json:"added"`
		Modified []string `json:"modified"`
		Removed  []string `json:"removed"`
	} `json:"commits"`
}

// PullRequestEvent is the subset of the GitHub pull_request payload the server reads.
type PullRequestEvent struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int `json:"number"`
		Head   struct {
			Ref   string     `json:"ref"`
			Label string     `json:"label"`
			Repo  repository `json:"repo"`
		} `json:"head"`
		Base struct {
			Ref  string     `json:"ref"`
			Repo repository `json:"repo"`
		} `json:"base"`
	} `json:"pull_request"`
}

// Handle verifies the signature and dispatches the event by its type.
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	if !h.cfg.Enabled {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Automated building features are disabled",
		})
	}

	event := c.Get(githubEventHeader)
	if event == "" || !VerifySignature(h.cfg.Secret, c.Body(), c.Get(githubSignatureHeader)) {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	switch event {
	case "push":
		return h.push(c)
	case "pull_request":
		return h.pullRequest(c)
	default:
		return c.JSON(fiber.Map{"queued": false})
	}
}

func (h *WebhookHandler) push(c *fiber.Ctx) error {
	var payload PushEvent
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid push payload",
		})
	}
	if payload.Ref != branchRefPrefix+h.cfg.Branch {
		return c.JSON(fiber.Map{"queued": false})
	}

	changed, complete := h.pushedFiles(c.UserContext(), payload)
	files, syncAll := h.mapFiles(changed, complete)
	if len(files) == 0 && !syncAll {
		return c.JSON(fiber.Map{"queued": false})
	}

	req := domain.NewBuildRequest(h.cfg.Branch, files, nil)
	req.SyncAll = syncAll
	if !h.queue.TryEnqueue(req) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": domain.ErrQueueFull.Error(),
		})
	}

	h.log.Info("Push queued a build",
		logger.WithField("request", req.ID),
		logger.WithField("after", payload.After),
		logger.WithField("maps", strings.Join(files, ",")))
	return c.JSON(fiber.Map{"queued": true, "id": req.ID, "maps": files, "syncAll": syncAll})
}

func (h *WebhookHandler) pullRequest(c *fiber.Ctx) error {
	if !h.cfg.RunOnPullRequests || h.host == nil {
		return c.JSON(fiber.Map{"queued": false})
	}

	var payload PullRequestEvent
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid pull request payload",
		})
	}
	if payload.Action != "opened" && payload.Action != "synchronize" {
		return c.JSON(fiber.Map{"queued": false})
	}

	head, base := payload.PullRequest.Head, payload.PullRequest.Base
	pr := domain.PullRequest{
		Owner:      base.Repo.Owner.Login,
		Repository: base.Repo.Name,
		Number:     payload.PullRequest.Number,
		BaseRef:    base.Ref,
		HeadLabel:  head.Label,
		HeadRef:    path.Base(head.Ref),
		CloneURL:   head.Repo.CloneURL,
	}

	changed, err := h.host.ChangedFiles(c.UserContext(), pr.Owner, pr.Repository, pr.BaseRef, pr.HeadLabel)
	if err != nil {
		h.log.Error("Failed to list pull request changes",
			logger.WithField("pull_request", pr.Number),
			logger.WithError(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to list changed files",
		})
	}
	files, syncAll := h.mapFiles(changed, true)
	if len(files) == 0 && !syncAll {
		return c.JSON(fiber.Map{"queued": false})
	}

	var onCompletion domain.CompletionFunc
	if h.notifier != nil {
		onCompletion = h.notifier.Completed(pr)
	}
	req := domain.NewBuildRequest(pr.BuildRef(), files, onCompletion)
	req.RepositoryURL = pr.CloneURL
	req.SyncAll = syncAll
	if !h.queue.TryEnqueue(req) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": domain.ErrQueueFull.Error(),
		})
	}

	if h.notifier != nil {
		if err := h.notifier.Started(c.UserContext(), pr, files); err != nil {
			h.log.Warn("Failed to comment on pull request",
				logger.WithField("pull_request", pr.Number),
				logger.WithError(err))
		}
	}

	h.log.Info("Pull request queued a build",
		logger.WithField("request", req.ID),
		logger.WithField("pull_request", pr.Number),
		logger.WithField("maps", strings.Join(files, ",")))
	return c.JSON(fiber.Map{"queued": true, "id": req.ID, "maps": files, "syncAll": syncAll})
}

// pushedFiles lists the files a push added or modified. The code host compare API
// is asked when available; otherwise the commit list of the payload is used, which
// is incomplete once it reaches the GitHub limit.
func (h *WebhookHandler) pushedFiles(ctx context.Context, payload PushEvent) ([]string, bool) {
	if h.host != nil && !isZeroCommit(payload.Before) && payload.Repository.Name != "" {
		files, err := h.host.ChangedFiles(ctx, payload.Repository.Owner.Login, payload.Repository.Name, payload.Before, payload.After)
		if err == nil {
			return files, true
		}
		h.log.Warn("Failed to compare pushed commits", logger.WithError(err))
	}

	seen := make(map[string]struct{})
	var changed []string
	for _, commit := range payload.Commits {
		for _, file := range append(commit.Added, commit.Modified...) {
			if _, ok := seen[file]; !ok {
				seen[file] = struct{}{}
				changed = append(changed, file)
			}
		}
	}
	return changed, len(payload.Commits) < maxPushCommits
}

// mapFiles returns the base names of the changed map files, or nothing when the
// change also touches code and such changes are blocked. Without map file patterns,
// or when changed is incomplete, every map is synced.
func (h *WebhookHandler) mapFiles(changed []string, complete bool) ([]string, bool) {
	if len(changed) == 0 {
		return nil, false
	}
	if h.cfg.BlockOnCodeChanges && len(h.cfg.CodeChanges.Filter(changed)) > 0 {
		h.log.Info("Change touches code, skipping map build")
		return nil, false
	}
	if !complete {
		h.log.Info("Commit list is truncated, syncing every map")
		return nil, true
	}
	if len(h.cfg.MapFiles.Include) == 0 {
		return nil, true
	}

	maps := h.cfg.MapFiles.Filter(changed)
	names := make([]string, 0, len(maps))
	for _, file := range maps {
		names = append(names, path.Base(file))
	}
	return names, false
}

func isZeroCommit(sha string) bool {
	return strings.Trim(sha, "0") == ""
}

// VerifySignature checks a GitHub "sha256=<hex>" HMAC signature of body. An empty
// secret never verifies.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || len(body) == 0 {
		return false
	}
	if !strings.HasPrefix(strings.ToLower(signature), signaturePrefix) {
		return false
	}
	expected, err := hex.DecodeString(signature[len(signaturePrefix):])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}
