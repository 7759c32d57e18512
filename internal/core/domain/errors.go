package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when the admission queue rejects a request.
	ErrQueueFull = errors.New("process queue is full")

	// ErrAcquireCanceled is returned when waiting for a work directory was canceled.
	ErrAcquireCanceled = errors.New("work directory acquire canceled")

	// ErrUnknownDirectory is returned when releasing a directory the pool did not hand out.
	ErrUnknownDirectory = errors.New("directory is not owned by this pool")

	// ErrSync is returned when the source repository could not be synced.
	ErrSync = errors.New("source sync failed")

	// ErrBuildTimeout is returned when the renderer build exceeded its timeout.
	ErrBuildTimeout = errors.New("build timed out")

	// ErrBuildFailed is returned when the renderer build exited with a non-zero code.
	ErrBuildFailed = errors.New("build failed")

	// ErrRunTimeout is returned when the renderer run exceeded its timeout.
	ErrRunTimeout = errors.New("renderer run timed out")

	// ErrRunFailed is returned when the renderer exited non-zero or logged a failure keyword.
	ErrRunFailed = errors.New("renderer run failed")

	// ErrImport is returned when renderer output could not be imported.
	ErrImport = errors.New("result import failed")

	// ErrInvalidTileSize is returned when a tile size is below the minimum.
	ErrInvalidTileSize = errors.New("invalid tile size")

	// ErrInvalidImagePath is returned when a source image path has no extension.
	ErrInvalidImagePath = errors.New("invalid image path")

	// ErrShutdown is delivered to requests still queued when the orchestrator stops.
	ErrShutdown = errors.New("orchestrator is shutting down")

	// ErrPipelinePanic is returned when a pipeline step panicked.
	ErrPipelinePanic = errors.New("pipeline panicked")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// Stage names a step of the build pipeline.
type Stage string

const (
	StageSync   Stage = "sync"
	StageBuild  Stage = "build"
	StageRun    Stage = "run"
	StageImport Stage = "import"
)

// StageError carries the context needed to diagnose a failed pipeline step.
type StageError struct {
	Stage  Stage
	Ref    string
	Output string
	Err    error
}

func (e *StageError) Error() string {
	if e.Ref == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Ref, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err as a failure of stage, tagged with the kind sentinel
// unless err already carries a pipeline error kind.
// If err already is a StageError it is returned with its ref filled in.
func NewStageError(stage Stage, ref string, kind error, err error) error {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		if stageErr.Ref == "" {
			stageErr.Ref = ref
		}
		return err
	}
	if hasKind(err) {
		return &StageError{Stage: stage, Ref: ref, Err: err}
	}
	return &StageError{Stage: stage, Ref: ref, Err: fmt.Errorf("%w: %w", kind, err)}
}

var stageKinds = []error{
	ErrSync,
	ErrBuildTimeout,
	ErrBuildFailed,
	ErrRunTimeout,
	ErrRunFailed,
	ErrImport,
}

func hasKind(err error) bool {
	for _, kind := range stageKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
