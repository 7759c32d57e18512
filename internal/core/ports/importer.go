package ports

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=importer.go -destination=mocks/mock_importer.go -package=mocks

// ResultImporter persists the maps found in a renderer output directory.
type ResultImporter interface {
	// Import returns the ids of the maps that were created or updated.
	Import(ctx context.Context, outputPath, ref string, forceTiled bool) ([]uuid.UUID, error)
}
