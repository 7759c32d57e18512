package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"
)

// PoolStats reports work directory usage.
type PoolStats interface {
	Stats() domain.PoolState
}

// Information describes the static setup of the server.
type Information struct {
	Version             string   `json:"version"`
	Runner              string   `json:"runner"`
	RunnerVersion       string   `json:"runnerVersion,omitempty"`
	AutomatedBuilds     bool     `json:"automatedBuilds"`
	CleanRendererOutput bool     `json:"cleanRendererOutput"`
	RendererOptions     string   `json:"rendererOptions"`
	DirectoryPoolSize   int      `json:"directoryPoolSize"`
	ProcessQueueSize    int      `json:"processQueueSize"`
	RepositoryURL       string   `json:"repositoryUrl"`
	Branch              string   `json:"branch"`
	MapFilePatterns     []string `json:"mapFilePatterns"`
}

// Statistics is the live state of the server.
type Statistics struct {
	Maps       int              `json:"maps"`
	Grids      int              `json:"grids"`
	Tiles      int              `json:"tiles"`
	QueuedWork int              `json:"queuedWork"`
	Pool       domain.PoolState `json:"pool"`
}

// ManagementHandler serves server information and statistics.
type ManagementHandler struct {
	info   Information
	runner ports.BuildRunner
	queue  Enqueuer
	pool   PoolStats
	maps   ports.MapStore
}

func NewManagementHandler(info Information, runner ports.BuildRunner, queue Enqueuer, pool PoolStats, maps ports.MapStore) *ManagementHandler {
	return &ManagementHandler{info: info, runner: runner, queue: queue, pool: pool, maps: maps}
}

func (h *ManagementHandler) GetInformation(c *fiber.Ctx) error {
	info := h.info
	if h.runner != nil {
		info.Runner = h.runner.Name()
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()
		if version, err := h.runner.Version(ctx); err == nil {
			info.RunnerVersion = version
		}
	}
	return c.JSON(info)
}

func (h *ManagementHandler) GetStatistics(c *fiber.Ctx) error {
	stored, err := h.maps.Statistics(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(Statistics{
		Maps:       stored.Maps,
		Grids:      stored.Grids,
		Tiles:      stored.Tiles,
		QueuedWork: h.queue.Depth(),
		Pool:       h.pool.Stats(),
	})
}
