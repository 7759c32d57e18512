// Package runner builds and runs the map renderer as local processes or containers.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/platform/logger"
)

// Config is shared by both runners.
type Config struct {
	// BuildCommand is split on whitespace, e.g. "dotnet build -c Release".
	BuildCommand string
	// Timeout bounds every build and every run separately.
	Timeout time.Duration
}

func (c Config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// stageFailure classifies the end of a process. A done context always wins over the
// exit status since the process was killed because of it.
func stageFailure(ctx context.Context, stage domain.Stage, output string, err error) error {
	timeoutKind, failedKind := domain.ErrBuildTimeout, domain.ErrBuildFailed
	if stage == domain.StageRun {
		timeoutKind, failedKind = domain.ErrRunTimeout, domain.ErrRunFailed
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &domain.StageError{Stage: stage, Output: output, Err: fmt.Errorf("%w: %w", timeoutKind, ctxErr)}
	}
	return &domain.StageError{Stage: stage, Output: output, Err: fmt.Errorf("%w: %w", failedKind, err)}
}

// outputWriter collects process output and logs it line by line at debug level.
type outputWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	partial []byte
	log     logger.Logger
}

func newOutputWriter(log logger.Logger) *outputWriter {
	return &outputWriter{log: log}
}

func (w *outputWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	w.partial = append(w.partial, p...)
	for {
		i := bytes.IndexByte(w.partial, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimRight(string(w.partial[:i]), "\r"); line != "" {
			w.log.Debug(line)
		}
		w.partial = w.partial[i+1:]
	}
	return len(p), nil
}

func (w *outputWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

var errEmptyCommand = errors.New("empty command")
