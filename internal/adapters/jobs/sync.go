package jobs

import (
	"context"

	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/platform/logger"
)

// Enqueuer admits build requests without blocking.
type Enqueuer interface {
	TryEnqueue(req domain.BuildRequest) bool
}

// SyncMaps periodically rebuilds the configured maps of a branch.
type SyncMaps struct {
	Ref        string
	Maps       []string
	ForceTiled bool
	queue      Enqueuer
	log        logger.Logger
}

// NewSyncMaps creates the job. Without maps every map of the repository is rebuilt.
func NewSyncMaps(ref string, maps []string, queue Enqueuer, log logger.Logger) *SyncMaps {
	return &SyncMaps{Ref: ref, Maps: maps, queue: queue, log: log}
}

// Run enqueues one build request and reports whether it was accepted.
func (j *SyncMaps) Run(_ context.Context) bool {
	req := domain.NewBuildRequest(j.Ref, j.Maps, j.logCompletion)
	req.SyncAll = len(j.Maps) == 0
	req.ForceTiled = j.ForceTiled

	if !j.queue.TryEnqueue(req) {
		j.log.Error("Failed to start map sync process. Process queue is full.", logger.WithField("ref", j.Ref))
		return false
	}
	j.log.Info("Scheduled map sync", logger.WithField("ref", j.Ref), logger.WithField("request", req.ID))
	return true
}

func (j *SyncMaps) logCompletion(result domain.BuildResult, err error) {
	if err != nil {
		return
	}
	j.log.Debug("Finished processing maps",
		logger.WithField("ref", result.Ref),
		logger.WithField("maps", len(result.MapIDs)))
}
