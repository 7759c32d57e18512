package ports

import "context"

//go:generate mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks

// BuildRunner builds the renderer project and executes it.
// Implementations run either as local processes or inside containers.
type BuildRunner interface {
	// Build compiles the renderer project inside dir.
	Build(ctx context.Context, dir string) error
	// Run executes command inside dir and returns its combined output.
	Run(ctx context.Context, dir, command string, args []string) (string, error)
	// Name identifies the runner for the management endpoint.
	Name() string
	// Version reports the toolchain or engine version the runner uses.
	Version(ctx context.Context) (string, error)
}
