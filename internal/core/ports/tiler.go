package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
)

//go:generate mockgen -source=tiler.go -destination=mocks/mock_tiler.go -package=mocks

// Tiler cuts a grid image into fixed size tiles written below targetPath.
type Tiler interface {
	TileImage(ctx context.Context, mapGUID uuid.UUID, gridID int, sourcePath, targetPath string, tileSize int) ([]domain.Tile, error)
}
