package tiling_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/adapters/tiling"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, width, height int) string {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 40, G: 120, B: 200, A: 255})
	path := filepath.Join(t.TempDir(), "grid.png")
	require.NoError(t, imaging.Save(img, path))
	return path
}

func TestSteps(t *testing.T) {
	columns, rows := tiling.Steps(4352, 2560, 256)
	assert.Equal(t, 17, columns)
	assert.Equal(t, 10, rows)
	assert.Equal(t, 170, columns*rows)

	columns, rows = tiling.Steps(257, 256, 256)
	assert.Equal(t, 2, columns)
	assert.Equal(t, 1, rows)
}

func TestTileImage_UniformTiles(t *testing.T) {
	source := writeImage(t, 300, 260)
	target := t.TempDir()
	mapGUID := uuid.New()

	tiles, err := tiling.NewTiler(logger.Nop()).TileImage(context.Background(), mapGUID, 3, source, target, 256)
	require.NoError(t, err)
	require.Len(t, tiles, 4)

	// Row major order.
	coords := [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i, tile := range tiles {
		assert.Equal(t, coords[i][0], tile.X)
		assert.Equal(t, coords[i][1], tile.Y)
		assert.Equal(t, mapGUID, tile.MapGUID)
		assert.Equal(t, 3, tile.GridID)
		assert.Equal(t, 256, tile.Size)
		assert.True(t, strings.HasPrefix(filepath.Base(tile.ImagePath), "tile_"))
		assert.Equal(t, ".png", filepath.Ext(tile.ImagePath))

		img, err := imaging.Open(tile.ImagePath)
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
		assert.Equal(t, 256, img.Bounds().Dy())

		preview, err := jpeg.DecodeConfig(bytes.NewReader(tile.Preview))
		require.NoError(t, err)
		assert.Equal(t, 32, preview.Width)
		assert.Equal(t, 32, preview.Height)
	}
}

func TestTileImage_PadsEdgeTilesTopLeft(t *testing.T) {
	source := writeImage(t, 300, 260)

	tiles, err := tiling.NewTiler(logger.Nop()).TileImage(context.Background(), uuid.New(), 0, source, t.TempDir(), 256)
	require.NoError(t, err)

	corner, err := imaging.Open(tiles[3].ImagePath)
	require.NoError(t, err)

	// The bottom right tile holds a 44x4 crop anchored at its origin.
	_, _, _, inside := corner.At(10, 2).RGBA()
	_, _, _, outside := corner.At(100, 100).RGBA()
	assert.NotZero(t, inside)
	assert.Zero(t, outside)
}

func TestTileImage_LargeGrid(t *testing.T) {
	if testing.Short() {
		t.Skip("large image")
	}
	source := writeImage(t, 4352, 2560)

	tiles, err := tiling.NewTiler(logger.Nop()).TileImage(context.Background(), uuid.New(), 1, source, t.TempDir(), 256)
	require.NoError(t, err)
	assert.Len(t, tiles, 170)

	last := tiles[len(tiles)-1]
	assert.Equal(t, 16, last.X)
	assert.Equal(t, 9, last.Y)
}

func TestTileImage_Validation(t *testing.T) {
	tiler := tiling.NewTiler(logger.Nop())

	_, err := tiler.TileImage(context.Background(), uuid.New(), 0, "grid.png", t.TempDir(), 128)
	assert.ErrorIs(t, err, domain.ErrInvalidTileSize)

	_, err = tiler.TileImage(context.Background(), uuid.New(), 0, "grid", t.TempDir(), 256)
	assert.ErrorIs(t, err, domain.ErrInvalidImagePath)
}

func TestTileImage_Canceled(t *testing.T) {
	source := writeImage(t, 512, 512)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tiling.NewTiler(logger.Nop()).TileImage(ctx, uuid.New(), 0, source, t.TempDir(), 256)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreview_TinyImage(t *testing.T) {
	preview, err := tiling.Preview(image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(preview))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Width)
}
