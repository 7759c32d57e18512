package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
)

// ReplaceTiles swaps the tiles of one map grid in a single transaction.
func (s *MapStore) ReplaceTiles(ctx context.Context, mapGUID uuid.UUID, gridID int, tiles []domain.Tile) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("map store not initialized")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tiles WHERE map_guid = $1 AND grid_id = $2`, mapGUID, gridID); err != nil {
		return fmt.Errorf("delete tiles: %w", err)
	}

	for _, tile := range tiles {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO tiles (map_guid, grid_id, x, y, size, path, preview)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			mapGUID, gridID, tile.X, tile.Y, tile.Size, tile.ImagePath, tile.Preview,
		)
		if err != nil {
			return fmt.Errorf("insert tile %d,%d: %w", tile.X, tile.Y, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *MapStore) GetTile(ctx context.Context, mapGUID uuid.UUID, gridID, x, y int) (*domain.Tile, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("map store not initialized")
	}
	tile := domain.Tile{MapGUID: mapGUID, GridID: gridID, X: x, Y: y}
	err := s.db.QueryRowContext(ctx,
		`SELECT size, path, preview FROM tiles
		 WHERE map_guid = $1 AND grid_id = $2 AND x = $3 AND y = $4`,
		mapGUID, gridID, x, y,
	).Scan(&tile.Size, &tile.ImagePath, &tile.Preview)
	if err != nil {
		return nil, handleNotFound(err)
	}
	return &tile, nil
}
