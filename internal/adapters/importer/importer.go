// Package importer turns renderer output into stored maps, grid images and tiles.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"
	"github.com/melih/mapserver/internal/platform/logger"

	_ "golang.org/x/image/webp"
)

// Config controls how renderer output is imported.
type Config struct {
	// MapDataFile is the metadata file name expected in every map directory.
	MapDataFile string
	TileSize    int
	// TilingThreshold tiles grid images at least this wide or high. Zero disables it.
	TilingThreshold int
	// AllowedExtensions limits the grid image types accepted. Empty allows all.
	AllowedExtensions []string
	// CleanOutput removes the imported output once every map was stored.
	CleanOutput bool
	// TempDir holds tiles until they are uploaded. Empty uses the system default.
	TempDir string
}

// Importer implements ports.ResultImporter.
type Importer struct {
	cfg    Config
	maps   ports.MapStore
	images ports.ImageStore
	tiler  ports.Tiler
	log    logger.Logger
}

// New creates an Importer.
func New(cfg Config, maps ports.MapStore, images ports.ImageStore, tiler ports.Tiler, log logger.Logger) *Importer {
	if cfg.MapDataFile == "" {
		cfg.MapDataFile = "map.json"
	}
	if cfg.TileSize <= 0 {
		cfg.TileSize = 256
	}
	return &Importer{cfg: cfg, maps: maps, images: images, tiler: tiler, log: log}
}

// Import stores every map found in a direct subdirectory of outputPath holding a map data file.
// It returns the guids of the created or updated maps.
func (i *Importer) Import(ctx context.Context, outputPath, ref string, forceTiled bool) ([]uuid.UUID, error) {
	entries, err := os.ReadDir(outputPath)
	if err != nil {
		return nil, fmt.Errorf("map import path not found: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return ids, err
		}

		dataPath := filepath.Join(outputPath, entry.Name(), i.cfg.MapDataFile)
		data, err := readRendererData(dataPath)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return ids, err
		}

		id, err := i.importMap(ctx, outputPath, ref, data, forceTiled)
		if err != nil {
			return ids, fmt.Errorf("import map %s: %w", data.ID, err)
		}
		ids = append(ids, id)
	}

	if i.cfg.CleanOutput {
		if err := clearDirectory(outputPath); err != nil {
			i.log.Warn("Failed to clean renderer output", logger.WithField("path", outputPath), logger.WithError(err))
		}
	}
	return ids, nil
}

// ImportMap stores one map whose grid image urls are relative to dir.
func (i *Importer) ImportMap(ctx context.Context, dir, ref string, data domain.RendererData, forceTiled bool) (uuid.UUID, error) {
	if data.ID == "" {
		return uuid.Nil, errors.New("map data has no id")
	}
	return i.importMap(ctx, dir, ref, data, forceTiled)
}

func (i *Importer) importMap(ctx context.Context, outputPath, ref string, data domain.RendererData, forceTiled bool) (uuid.UUID, error) {
	record, err := i.maps.FindMap(ctx, ref, data.ID)
	if errors.Is(err, domain.ErrNotFound) {
		record = &domain.Map{MapGUID: uuid.New()}
	} else if err != nil {
		return uuid.Nil, err
	}

	record.GitRef = ref
	record.MapID = data.ID
	record.DisplayName = data.Name
	record.Attribution = data.Attributions
	record.ParallaxLayers = data.ParallaxLayers
	record.LastUpdated = time.Now().UTC()
	previous := make([]int, 0, len(record.Grids))
	for _, grid := range record.Grids {
		previous = append(previous, grid.GridID)
	}
	record.Grids = make([]domain.Grid, 0, len(data.Grids))

	prefix := path.Join(ref, record.MapGUID.String())
	if err := i.images.DeletePrefix(ctx, prefix); err != nil {
		return uuid.Nil, fmt.Errorf("failed to clear previous images: %w", err)
	}

	tiles := make(map[int][]domain.Tile)
	for _, gridData := range data.Grids {
		imagePath := filepath.Join(outputPath, filepath.FromSlash(gridData.URL))
		extension := strings.ToLower(filepath.Ext(imagePath))
		if !i.allowed(extension) {
			return uuid.Nil, fmt.Errorf("grid image type %q not allowed", extension)
		}

		grid := domain.Grid{
			ID:       uuid.New(),
			GridID:   gridData.GridID,
			Tiled:    gridData.Tiled || forceTiled,
			TileSize: i.cfg.TileSize,
			Offset:   gridData.Offset,
			Extent:   gridData.Extent.Area(),
			Path:     path.Join(prefix, strconv.Itoa(gridData.GridID)+extension),
		}
		if !grid.Tiled && i.exceedsThreshold(imagePath) {
			grid.Tiled = true
		}

		if err := i.upload(ctx, grid.Path, imagePath); err != nil {
			return uuid.Nil, err
		}

		if grid.Tiled {
			gridTiles, err := i.tile(ctx, record.MapGUID, grid, imagePath, prefix)
			if err != nil {
				return uuid.Nil, err
			}
			tiles[grid.GridID] = gridTiles
		}
		record.Grids = append(record.Grids, grid)
	}

	if err := i.maps.SaveMap(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("failed to save map: %w", err)
	}
	for gridID, gridTiles := range tiles {
		if err := i.maps.ReplaceTiles(ctx, record.MapGUID, gridID, gridTiles); err != nil {
			return uuid.Nil, fmt.Errorf("failed to save tiles of grid %d: %w", gridID, err)
		}
	}
	// Tile objects of the old import are gone, so are their rows.
	for _, gridID := range previous {
		if _, ok := tiles[gridID]; ok {
			continue
		}
		if err := i.maps.ReplaceTiles(ctx, record.MapGUID, gridID, nil); err != nil {
			return uuid.Nil, fmt.Errorf("failed to clear tiles of grid %d: %w", gridID, err)
		}
	}

	i.log.Info("Imported map",
		logger.WithField("map", record.MapID),
		logger.WithField("guid", record.MapGUID),
		logger.WithField("grids", len(record.Grids)))
	return record.MapGUID, nil
}

// tile cuts the grid image into a temporary directory and uploads every tile.
func (i *Importer) tile(ctx context.Context, mapGUID uuid.UUID, grid domain.Grid, imagePath, prefix string) ([]domain.Tile, error) {
	target, err := os.MkdirTemp(i.cfg.TempDir, "tiles-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create tile directory: %w", err)
	}
	defer os.RemoveAll(target)

	tiles, err := i.tiler.TileImage(ctx, mapGUID, grid.GridID, imagePath, target, grid.TileSize)
	if err != nil {
		return nil, fmt.Errorf("failed to tile grid %d: %w", grid.GridID, err)
	}

	tilePrefix := path.Join(prefix, "tiles", strconv.Itoa(grid.GridID))
	for n := range tiles {
		key := path.Join(tilePrefix, filepath.Base(tiles[n].ImagePath))
		if err := i.upload(ctx, key, tiles[n].ImagePath); err != nil {
			return nil, err
		}
		tiles[n].ImagePath = key
	}
	return tiles, nil
}

func (i *Importer) upload(ctx context.Context, key, source string) error {
	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}
	if err := i.images.Put(ctx, key, file, info.Size(), domain.ImageContentType(source)); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (i *Importer) allowed(extension string) bool {
	if len(i.cfg.AllowedExtensions) == 0 {
		return true
	}
	return slices.ContainsFunc(i.cfg.AllowedExtensions, func(allowed string) bool {
		return strings.EqualFold("."+strings.TrimPrefix(allowed, "."), extension)
	})
}

func (i *Importer) exceedsThreshold(imagePath string) bool {
	if i.cfg.TilingThreshold <= 0 {
		return false
	}
	file, err := os.Open(imagePath)
	if err != nil {
		return false
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		i.log.Warn("Failed to read image size", logger.WithField("path", imagePath), logger.WithError(err))
		return false
	}
	return cfg.Width >= i.cfg.TilingThreshold || cfg.Height >= i.cfg.TilingThreshold
}

func readRendererData(dataPath string) (domain.RendererData, error) {
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return domain.RendererData{}, err
	}
	var data domain.RendererData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.RendererData{}, fmt.Errorf("invalid map data %s: %w", dataPath, err)
	}
	if data.ID == "" {
		return domain.RendererData{}, fmt.Errorf("map data %s has no id", dataPath)
	}
	return data, nil
}

// clearDirectory removes the contents of dir but keeps dir itself.
func clearDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var errs []error
	for _, entry := range entries {
		errs = append(errs, os.RemoveAll(filepath.Join(dir, entry.Name())))
	}
	return errors.Join(errs...)
}
