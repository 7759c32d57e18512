// Package tiling cuts large grid images into uniform tiles with low fidelity previews.
package tiling

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/platform/logger"

	// Register the renderer's default output format with image.Decode.
	_ "golang.org/x/image/webp"
)

const (
	// MinTileSize is the smallest tile edge accepted.
	MinTileSize = 256

	previewDivisor = 8
	previewQuality = 10
)

// Tiler implements ports.Tiler.
type Tiler struct {
	log logger.Logger
}

// NewTiler creates a Tiler.
func NewTiler(log logger.Logger) *Tiler {
	return &Tiler{log: log}
}

// TileImage splits sourcePath into tileSize squares, row by row, written to targetPath.
// Edge tiles are padded with transparency so every tile is tileSize x tileSize.
func (t *Tiler) TileImage(ctx context.Context, mapGUID uuid.UUID, gridID int, sourcePath, targetPath string, tileSize int) ([]domain.Tile, error) {
	if tileSize < MinTileSize {
		return nil, fmt.Errorf("%w: %d is smaller than minimum tile size %d", domain.ErrInvalidTileSize, tileSize, MinTileSize)
	}

	extension := filepath.Ext(sourcePath)
	if extension == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidImagePath, sourcePath)
	}
	// There is no webp encoder, tiles of webp images are stored as png.
	if _, err := imaging.FormatFromExtension(extension); err != nil {
		extension = ".png"
	}

	if err := os.MkdirAll(targetPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tile directory: %w", err)
	}

	src, err := imaging.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	columns, rows := Steps(src.Bounds().Dx(), src.Bounds().Dy(), tileSize)
	tiles := make([]domain.Tile, 0, columns*rows)

	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			tile, err := t.cut(src, x, y, tileSize, targetPath, extension)
			if err != nil {
				return nil, err
			}
			tile.MapGUID = mapGUID
			tile.GridID = gridID
			tiles = append(tiles, tile)
		}
	}

	t.log.Debug("Tiled image",
		logger.WithField("source", sourcePath),
		logger.WithField("grid", gridID),
		logger.WithField("tiles", len(tiles)))
	return tiles, nil
}

func (t *Tiler) cut(src image.Image, x, y, size int, targetPath, extension string) (domain.Tile, error) {
	bounds := src.Bounds()
	origin := image.Pt(bounds.Min.X+size*x, bounds.Min.Y+size*y)
	crop := imaging.Crop(src, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(size, size))})

	canvas := imaging.New(size, size, color.Transparent)
	canvas = imaging.Paste(canvas, crop, image.Pt(0, 0))

	path := filepath.Join(targetPath, "tile_"+uuid.NewString()+extension)
	if err := imaging.Save(canvas, path); err != nil {
		return domain.Tile{}, fmt.Errorf("failed to save tile %d,%d: %w", x, y, err)
	}

	preview, err := Preview(canvas)
	if err != nil {
		return domain.Tile{}, err
	}

	return domain.Tile{
		X:         x,
		Y:         y,
		Size:      size,
		ImagePath: path,
		Preview:   preview,
	}, nil
}

// Steps returns the number of tile columns and rows needed to cover a width x height image.
func Steps(width, height, tileSize int) (columns, rows int) {
	return ceilDiv(width, tileSize), ceilDiv(height, tileSize)
}

// Preview pixelates img down to an eighth of its size and encodes it as a low quality jpeg.
func Preview(img image.Image) ([]byte, error) {
	width := max(img.Bounds().Dx()/previewDivisor, 1)
	height := max(img.Bounds().Dy()/previewDivisor, 1)
	small := imaging.Resize(img, width, height, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, small, imaging.JPEG, imaging.JPEGQuality(previewQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
