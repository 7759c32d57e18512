package processing

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"
	"github.com/melih/mapserver/internal/platform/logger"
)

const maxLoggedOutput = 4096

// Pipeline processes one request inside an acquired work directory.
type Pipeline interface {
	Update(ctx context.Context, dir *domain.WorkDirectory, req domain.BuildRequest) (domain.BuildResult, error)
}

// Orchestrator consumes the queue and runs one pipeline per request, concurrently
// up to the pool capacity.
type Orchestrator struct {
	queue        *Queue
	pool         *DirectoryPool
	pipeline     Pipeline
	reporter     ports.ErrorReporter
	log          logger.Logger
	drainTimeout time.Duration
}

// NewOrchestrator creates an Orchestrator. reporter may be nil.
// In-flight pipelines get drainTimeout to finish after shutdown before they are
// canceled; zero waits for them indefinitely.
func NewOrchestrator(queue *Queue, pool *DirectoryPool, pipeline Pipeline, reporter ports.ErrorReporter, drainTimeout time.Duration, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		queue:        queue,
		pool:         pool,
		pipeline:     pipeline,
		reporter:     reporter,
		log:          log,
		drainTimeout: drainTimeout,
	}
}

// Run blocks until ctx is canceled and every dispatched pipeline has returned.
// Requests still queued at that point complete with domain.ErrShutdown.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.log.Info("Orchestrator started",
		logger.WithField("queue_size", o.queue.Capacity()),
		logger.WithField("pool_size", o.pool.Capacity()))

	// Pipelines outlive ctx so they can drain; cancelTasks ends them.
	taskCtx, cancelTasks := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelTasks()

	tasks := NewSafeGroup(o.log)

	for {
		req, err := o.queue.Dequeue(ctx)
		if err != nil {
			break
		}

		dir, err := o.pool.Acquire(ctx)
		if err != nil {
			o.log.Error("Failed to acquire work directory",
				logger.WithField("ref", req.Ref),
				logger.WithError(err))
			o.complete(req, domain.BuildResult{}, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		tasks.Go(func() error {
			o.process(taskCtx, dir, req)
			return nil
		})
	}

	for _, req := range o.queue.Drain() {
		o.complete(req, domain.BuildResult{}, domain.ErrShutdown)
	}

	o.log.Info("Waiting for in-flight pipelines", logger.WithField("pool", o.pool.Stats()))
	o.drain(tasks, cancelTasks)
	o.log.Info("Orchestrator stopped")
	return nil
}

func (o *Orchestrator) drain(tasks *SafeGroup, cancelTasks context.CancelFunc) {
	done := make(chan struct{})
	go func() {
		_ = tasks.Wait()
		close(done)
	}()

	if o.drainTimeout <= 0 {
		<-done
		return
	}

	timer := time.NewTimer(o.drainTimeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		o.log.Warn("Drain timeout exceeded, canceling in-flight pipelines",
			logger.WithField("timeout", o.drainTimeout))
		cancelTasks()
		<-done
	}
}

func (o *Orchestrator) process(ctx context.Context, dir *domain.WorkDirectory, req domain.BuildRequest) {
	started := time.Now()

	result, err := o.runPipeline(ctx, dir, req)
	if err != nil {
		o.fail(ctx, req, err)
	} else {
		o.log.Info("Finished processing maps",
			logger.WithField("ref", result.Ref),
			logger.WithField("maps", len(result.MapIDs)),
			logger.WithField("duration", time.Since(started).Round(time.Millisecond)))
	}

	o.complete(req, result, err)
}

// runPipeline always releases dir, even when the pipeline panics.
func (o *Orchestrator) runPipeline(ctx context.Context, dir *domain.WorkDirectory, req domain.BuildRequest) (result domain.BuildResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Pipeline panic recovered",
				logger.WithField("panic", r),
				logger.WithField("stack_trace", string(debug.Stack())))
			result = domain.BuildResult{}
			err = fmt.Errorf("%w: %v", domain.ErrPipelinePanic, r)
		}

		if releaseErr := o.pool.Release(dir); releaseErr != nil {
			o.log.Error("Failed to release work directory", logger.WithError(releaseErr))
		}
	}()

	return o.pipeline.Update(ctx, dir, req)
}

func (o *Orchestrator) fail(ctx context.Context, req domain.BuildRequest, err error) {
	fields := []logger.Field{
		logger.WithField("ref", req.Ref),
		logger.WithField("request", req.ID),
		logger.WithError(err),
	}

	var stageErr *domain.StageError
	if errors.As(err, &stageErr) {
		fields = append(fields, logger.WithField("stage", stageErr.Stage))
		if stageErr.Output != "" {
			fields = append(fields, logger.WithField("output", tail(stageErr.Output, maxLoggedOutput)))
		}
	}

	o.log.Error("An error occurred while processing queued request", fields...)

	if o.reporter != nil {
		o.reporter.Report(ctx, req, err)
	}
}

// complete invokes the request callback once. A panicking callback is logged and ignored.
func (o *Orchestrator) complete(req domain.BuildRequest, result domain.BuildResult, err error) {
	if req.OnCompletion == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Completion callback panicked",
				logger.WithField("ref", req.Ref),
				logger.WithField("panic", r))
		}
	}()

	req.OnCompletion(result, err)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
