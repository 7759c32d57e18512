package ports

import (
	"context"

	"github.com/melih/mapserver/internal/core/domain"
)

//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks

// ErrorReporter forwards pipeline failures to an external error tracker.
type ErrorReporter interface {
	Report(ctx context.Context, req domain.BuildRequest, err error)
}
