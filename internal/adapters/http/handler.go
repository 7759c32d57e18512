// Package http exposes the map server REST API with fiber.
package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/processing"
	"github.com/melih/mapserver/internal/platform/logger"
)

// Enqueuer admits build requests without blocking.
type Enqueuer interface {
	TryEnqueue(req domain.BuildRequest) bool
	Depth() int
	Capacity() int
}

// BuildHandler schedules renderer builds.
type BuildHandler struct {
	queue         Enqueuer
	defaultBranch string
	log           logger.Logger
}

func NewBuildHandler(queue Enqueuer, defaultBranch string, log logger.Logger) *BuildHandler {
	return &BuildHandler{queue: queue, defaultBranch: defaultBranch, log: log}
}

type ScheduleBuildRequest struct {
	Ref           string   `json:"ref"`
	Maps          []string `json:"maps"`
	RepositoryURL string   `json:"repositoryUrl"`
	SyncAll       bool     `json:"syncAll"`
	ForceTiled    bool     `json:"forceTiled"`
}

// ScheduleBuild queues a build. Acceptance only means the request was queued, the
// outcome is logged once the pipeline finishes.
func (h *BuildHandler) ScheduleBuild(c *fiber.Ctx) error {
	var body ScheduleBuildRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	maps := make([]string, 0, len(body.Maps))
	for _, name := range body.Maps {
		if name = strings.TrimSpace(name); name != "" {
			maps = append(maps, name)
		}
	}
	if len(maps) == 0 && !body.SyncAll {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one map file is required unless syncAll is set",
		})
	}

	ref := strings.TrimSpace(body.Ref)
	if ref == "" {
		ref = h.defaultBranch
	}

	req := domain.NewBuildRequest(processing.NormalizeRef(ref), maps, h.logCompletion)
	req.RepositoryURL = body.RepositoryURL
	req.SyncAll = body.SyncAll
	req.ForceTiled = body.ForceTiled

	if !h.queue.TryEnqueue(req) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": domain.ErrQueueFull.Error(),
		})
	}

	h.log.Info("Build queued", logger.WithField("request", req.ID), logger.WithField("ref", req.Ref))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"queued": true,
		"id":     req.ID,
		"ref":    req.Ref,
	})
}

func (h *BuildHandler) logCompletion(result domain.BuildResult, err error) {
	if err != nil {
		return
	}
	h.log.Info("Build finished", logger.WithField("ref", result.Ref), logger.WithField("maps", len(result.MapIDs)))
}

// statusFor maps store errors to response codes.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
