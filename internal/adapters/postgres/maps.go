package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
)

const mapColumns = `map_guid, git_ref, map_id, display_name, attribution, parallax_layers, last_updated`

const gridColumns = `g.id, g.map_guid, g.grid_id, g.tiled, g.tile_size, g.offset_x, g.offset_y,
	g.extent_ax, g.extent_ay, g.extent_bx, g.extent_by, g.path`

// MapStore implements ports.MapStore.
type MapStore struct {
	db *sql.DB
}

func NewMapStore(db *sql.DB) *MapStore {
	if db == nil {
		return nil
	}
	return &MapStore{db: db}
}

func (s *MapStore) FindMap(ctx context.Context, ref, mapID string) (*domain.Map, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("map store not initialized")
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mapColumns+` FROM maps WHERE git_ref = $1 AND map_id = $2`,
		strings.TrimSpace(ref), strings.TrimSpace(mapID))
	return s.loadMap(ctx, row)
}

func (s *MapStore) GetMap(ctx context.Context, mapGUID uuid.UUID) (*domain.Map, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("map store not initialized")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+mapColumns+` FROM maps WHERE map_guid = $1`, mapGUID)
	return s.loadMap(ctx, row)
}

func (s *MapStore) loadMap(ctx context.Context, row *sql.Row) (*domain.Map, error) {
	m, err := scanMap(row)
	if err != nil {
		return nil, handleNotFound(err)
	}

	grids, err := queryGrids(ctx, s.db, `SELECT `+gridColumns+` FROM grids g WHERE g.map_guid = $1 ORDER BY g.grid_id`, m.MapGUID)
	if err != nil {
		return nil, err
	}
	m.Grids = grids[m.MapGUID]
	return &m, nil
}

// ListMaps returns the maps of ref, or of every ref when ref is empty.
func (s *MapStore) ListMaps(ctx context.Context, ref string) ([]domain.Map, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("map store not initialized")
	}

	query, args := buildMapListQuery(ref)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	maps := make([]domain.Map, 0)
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan map: %w", err)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}

	gridQuery, gridArgs := buildGridListQuery(ref)
	grids, err := queryGrids(ctx, s.db, gridQuery, gridArgs...)
	if err != nil {
		return nil, err
	}
	for i := range maps {
		maps[i].Grids = grids[maps[i].MapGUID]
	}
	return maps, nil
}

// SaveMap upserts record by ref and map id and replaces its grids.
// record.MapGUID is set to the stored id.
func (s *MapStore) SaveMap(ctx context.Context, record *domain.Map) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("map store not initialized")
	}
	if strings.TrimSpace(record.GitRef) == "" || strings.TrimSpace(record.MapID) == "" {
		return fmt.Errorf("map ref and id are required")
	}
	if record.MapGUID == uuid.Nil {
		record.MapGUID = uuid.New()
	}
	record.LastUpdated = normalizeTime(record.LastUpdated)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO maps (`+mapColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (git_ref, map_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			attribution = EXCLUDED.attribution,
			parallax_layers = EXCLUDED.parallax_layers,
			last_updated = EXCLUDED.last_updated
		 RETURNING map_guid`,
		record.MapGUID,
		strings.TrimSpace(record.GitRef),
		strings.TrimSpace(record.MapID),
		record.DisplayName,
		nullString(record.Attribution),
		encodeLayers(record.ParallaxLayers),
		record.LastUpdated,
	).Scan(&record.MapGUID)
	if err != nil {
		return fmt.Errorf("upsert map: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM grids WHERE map_guid = $1`, record.MapGUID); err != nil {
		return fmt.Errorf("delete grids: %w", err)
	}
	for i := range record.Grids {
		grid := &record.Grids[i]
		if grid.ID == uuid.Nil {
			grid.ID = uuid.New()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO grids (
				id, map_guid, grid_id, tiled, tile_size, offset_x, offset_y,
				extent_ax, extent_ay, extent_bx, extent_by, path
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			grid.ID, record.MapGUID, grid.GridID, grid.Tiled, grid.TileSize,
			grid.Offset.X, grid.Offset.Y,
			grid.Extent.A.X, grid.Extent.A.Y, grid.Extent.B.X, grid.Extent.B.Y,
			grid.Path,
		)
		if err != nil {
			return fmt.Errorf("insert grid %d: %w", grid.GridID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteMap removes a map. Grids and tiles go with it through the foreign keys.
func (s *MapStore) DeleteMap(ctx context.Context, mapGUID uuid.UUID) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("map store not initialized")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM maps WHERE map_guid = $1`, mapGUID)
	if err != nil {
		return fmt.Errorf("delete map: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *MapStore) Statistics(ctx context.Context) (domain.StoreStatistics, error) {
	if s == nil || s.db == nil {
		return domain.StoreStatistics{}, fmt.Errorf("map store not initialized")
	}
	var stats domain.StoreStatistics
	err := s.db.QueryRowContext(ctx,
		`SELECT
			(SELECT count(*) FROM maps),
			(SELECT count(*) FROM grids),
			(SELECT count(*) FROM tiles)`,
	).Scan(&stats.Maps, &stats.Grids, &stats.Tiles)
	if err != nil {
		return domain.StoreStatistics{}, fmt.Errorf("statistics: %w", err)
	}
	return stats, nil
}

func buildMapListQuery(ref string) (string, []any) {
	query := `SELECT ` + mapColumns + ` FROM maps`
	args := make([]any, 0, 1)
	if ref = strings.TrimSpace(ref); ref != "" {
		args = append(args, ref)
		query += fmt.Sprintf(" WHERE git_ref = $%d", len(args))
	}
	query += " ORDER BY git_ref, map_id"
	return query, args
}

func buildGridListQuery(ref string) (string, []any) {
	query := `SELECT ` + gridColumns + ` FROM grids g`
	args := make([]any, 0, 1)
	if ref = strings.TrimSpace(ref); ref != "" {
		args = append(args, ref)
		query += fmt.Sprintf(" JOIN maps m ON m.map_guid = g.map_guid WHERE m.git_ref = $%d", len(args))
	}
	query += " ORDER BY g.map_guid, g.grid_id"
	return query, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMap(row scanner) (domain.Map, error) {
	var (
		m           domain.Map
		attribution sql.NullString
		layers      []byte
	)
	if err := row.Scan(&m.MapGUID, &m.GitRef, &m.MapID, &m.DisplayName, &attribution, &layers, &m.LastUpdated); err != nil {
		return domain.Map{}, err
	}
	m.Attribution = attribution.String
	m.ParallaxLayers = layers
	m.Grids = []domain.Grid{}
	return m, nil
}

func queryGrids(ctx context.Context, db DB, query string, args ...any) (map[uuid.UUID][]domain.Grid, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list grids: %w", err)
	}
	defer rows.Close()

	grids := make(map[uuid.UUID][]domain.Grid)
	for rows.Next() {
		var (
			grid    domain.Grid
			mapGUID uuid.UUID
		)
		err := rows.Scan(&grid.ID, &mapGUID, &grid.GridID, &grid.Tiled, &grid.TileSize,
			&grid.Offset.X, &grid.Offset.Y,
			&grid.Extent.A.X, &grid.Extent.A.Y, &grid.Extent.B.X, &grid.Extent.B.Y,
			&grid.Path)
		if err != nil {
			return nil, fmt.Errorf("scan grid: %w", err)
		}
		grids[mapGUID] = append(grids[mapGUID], grid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grids: %w", err)
	}
	return grids, nil
}
