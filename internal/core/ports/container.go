package ports

import (
	"context"

	"github.com/melih/mapserver/internal/core/domain"
)

//go:generate mockgen -source=container.go -destination=mocks/mock_container.go -package=mocks

// ContainerEngine defines the container operations the containerized runner needs.
// This interface allows us to switch between Docker and Podman without changing the runner.
type ContainerEngine interface {
	// BuildImage builds contextDir with dockerfile into an image tagged tag and returns the build log.
	BuildImage(ctx context.Context, contextDir, dockerfile, tag string) (string, error)
	// RunContainer runs spec to completion and removes the container afterwards.
	RunContainer(ctx context.Context, spec domain.ContainerSpec) (domain.ContainerResult, error)
	// Version returns the engine server version.
	Version(ctx context.Context) (string, error)
}
