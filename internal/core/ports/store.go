package ports

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// MapStore persists maps, their grids and tiles.
// Lookups of missing records return domain.ErrNotFound.
type MapStore interface {
	FindMap(ctx context.Context, ref, mapID string) (*domain.Map, error)
	GetMap(ctx context.Context, mapGUID uuid.UUID) (*domain.Map, error)
	ListMaps(ctx context.Context, ref string) ([]domain.Map, error)
	// SaveMap inserts or updates record and replaces its grids.
	SaveMap(ctx context.Context, record *domain.Map) error
	// ReplaceTiles deletes the tiles of a map grid and inserts tiles in one transaction.
	ReplaceTiles(ctx context.Context, mapGUID uuid.UUID, gridID int, tiles []domain.Tile) error
	GetTile(ctx context.Context, mapGUID uuid.UUID, gridID, x, y int) (*domain.Tile, error)
	// DeleteMap removes a map with its grids and tiles.
	DeleteMap(ctx context.Context, mapGUID uuid.UUID) error
	Statistics(ctx context.Context) (domain.StoreStatistics, error)
}

// ImageStore stores grid and tile images by key.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get returns domain.ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// DeletePrefix removes every object whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
