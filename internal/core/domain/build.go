package domain

import (
	"time"

	"github.com/google/uuid"
)

// CompletionFunc receives the outcome of an accepted build request.
// Exactly one of result or err is meaningful.
type CompletionFunc func(result BuildResult, err error)

// BuildRequest describes which ref and which map files to render.
// It is immutable once enqueued.
type BuildRequest struct {
	ID            string
	Ref           string
	MapFiles      []string
	RepositoryURL string
	SyncAll       bool
	ForceTiled    bool
	EnqueuedAt    time.Time
	OnCompletion  CompletionFunc
}

// NewBuildRequest creates a request with a fresh id. The map file slice is copied.
func NewBuildRequest(ref string, mapFiles []string, onCompletion CompletionFunc) BuildRequest {
	files := make([]string, len(mapFiles))
	copy(files, mapFiles)

	return BuildRequest{
		ID:           uuid.NewString(),
		Ref:          ref,
		MapFiles:     files,
		EnqueuedAt:   time.Now(),
		OnCompletion: onCompletion,
	}
}

// BuildResult is the outcome of a successful pipeline run.
type BuildResult struct {
	Ref    string      `json:"ref"`
	MapIDs []uuid.UUID `json:"mapIds"`
}
