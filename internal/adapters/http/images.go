package http

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"

	_ "golang.org/x/image/webp"
)

// minImageWidth is the smallest width a grid image can be scaled down to.
const minImageWidth = 32

const cacheControl = "public, max-age=3600"

// uploadPrefix keeps uploaded images apart from rendered grids.
const uploadPrefix = "uploads"

// ImageHandler streams grid images, tiles and uploaded images out of the image store.
type ImageHandler struct {
	maps       ports.MapStore
	images     ports.ImageStore
	extensions []string
}

// NewImageHandler creates the handler. Uploads are limited to allowedExtensions
// unless it is empty.
func NewImageHandler(maps ports.MapStore, images ports.ImageStore, allowedExtensions []string) *ImageHandler {
	return &ImageHandler{maps: maps, images: images, extensions: allowedExtensions}
}

// GetGridImage sends a grid image. The optional width query parameter scales it down.
func (h *ImageHandler) GetGridImage(c *fiber.Ctx) error {
	width, err := h.width(c)
	if err != nil || width < 0 {
		return err
	}

	grid, _, err := h.grid(c)
	if err != nil || grid == nil {
		return err
	}
	return h.send(c, grid.Path, width)
}

// GetFile sends an uploaded image. The optional width query parameter scales it down.
func (h *ImageHandler) GetFile(c *fiber.Ctx) error {
	width, err := h.width(c)
	if err != nil || width < 0 {
		return err
	}
	key, ok := uploadKey(c.Params("*"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid image path",
		})
	}
	return h.send(c, key, width)
}

// UploadImage stores the file form field below the upload prefix. Without a path
// a unique file name is generated.
func (h *ImageHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "The file field is required",
		})
	}
	extension := strings.ToLower(path.Ext(file.Filename))
	if !h.allowed(extension) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Image type %q not allowed", extension),
		})
	}

	name := c.Params("*")
	if name == "" {
		name = "upload_" + uuid.NewString() + extension
	}
	key, ok := uploadKey(name)
	if !ok || !strings.EqualFold(path.Ext(key), extension) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid image path",
		})
	}

	reader, err := file.Open()
	if err != nil {
		return errorResponse(c, err)
	}
	defer reader.Close()
	if err := h.images.Put(c.UserContext(), key, reader, file.Size, domain.ImageContentType(key)); err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"path": strings.TrimPrefix(key, uploadPrefix+"/"),
	})
}

// width reads the width query parameter. A negative width means the response was
// already written, zero means unscaled.
func (h *ImageHandler) width(c *fiber.Ctx) (int, error) {
	width := c.QueryInt("width", 0)
	if c.Query("width") != "" && width < minImageWidth {
		return -1, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Width can't be smaller than %d pixel", minImageWidth),
		})
	}
	return width, nil
}

// send streams the image stored under key, scaled down to width when it is set.
func (h *ImageHandler) send(c *fiber.Ctx, key string, width int) error {
	reader, err := h.images.Get(c.UserContext(), key)
	if err != nil {
		return errorResponse(c, err)
	}
	if width == 0 {
		return h.stream(c, key, reader)
	}
	defer reader.Close()

	src, _, err := image.Decode(reader)
	if err != nil {
		return errorResponse(c, fmt.Errorf("failed to decode image: %w", err))
	}
	if width < src.Bounds().Dx() {
		src = imaging.Resize(src, width, 0, imaging.Lanczos)
	}

	// Scaled images are always sent as png since webp can not be encoded.
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, src, imaging.PNG); err != nil {
		return errorResponse(c, fmt.Errorf("failed to encode image: %w", err))
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, cacheControl)
	return c.Send(buf.Bytes())
}

// GetTile sends one tile of a tiled grid.
func (h *ImageHandler) GetTile(c *fiber.Ctx) error {
	tile, err := h.tile(c)
	if err != nil || tile == nil {
		return err
	}

	reader, err := h.images.Get(c.UserContext(), tile.ImagePath)
	if err != nil {
		return errorResponse(c, err)
	}
	return h.stream(c, tile.ImagePath, reader)
}

// GetTilePreview sends the low fidelity jpeg placeholder of a tile.
func (h *ImageHandler) GetTilePreview(c *fiber.Ctx) error {
	tile, err := h.tile(c)
	if err != nil || tile == nil {
		return err
	}
	if len(tile.Preview) == 0 {
		return c.SendStatus(fiber.StatusNotFound)
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, cacheControl)
	return c.Send(tile.Preview)
}

// tile resolves the tile addressed by the route. A nil tile with a nil error means
// the response was already written.
func (h *ImageHandler) tile(c *fiber.Ctx) (*domain.Tile, error) {
	grid, mapGUID, err := h.grid(c)
	if err != nil || grid == nil {
		return nil, err
	}
	if !grid.Tiled {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Grid image with id %d doesn't support image tiling", grid.GridID),
		})
	}

	x, errX := strconv.Atoi(c.Params("x"))
	y, errY := strconv.Atoi(c.Params("y"))
	if errX != nil || errY != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tile coordinates",
		})
	}

	tile, err := h.maps.GetTile(c.UserContext(), mapGUID, grid.GridID, x, y)
	if err != nil {
		return nil, errorResponse(c, err)
	}
	return tile, nil
}

// grid resolves the map grid addressed by the route, either by map guid or by ref
// and map id. A nil grid means the response was already written.
func (h *ImageHandler) grid(c *fiber.Ctx) (*domain.Grid, uuid.UUID, error) {
	gridID, err := strconv.Atoi(c.Params("gridId"))
	if err != nil {
		return nil, uuid.Nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid grid id",
		})
	}

	var m *domain.Map
	if c.Params("mapGuid") == "" {
		m, err = h.maps.FindMap(c.UserContext(), c.Params("ref"), strings.ToLower(c.Params("mapId")))
	} else {
		mapGUID, parseErr := uuid.Parse(c.Params("mapGuid"))
		if parseErr != nil {
			return nil, uuid.Nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid map guid",
			})
		}
		m, err = h.maps.GetMap(c.UserContext(), mapGUID)
	}
	if err != nil {
		return nil, uuid.Nil, errorResponse(c, err)
	}
	for i := range m.Grids {
		if m.Grids[i].GridID == gridID {
			return &m.Grids[i], m.MapGUID, nil
		}
	}
	return nil, uuid.Nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fmt.Sprintf("Grid %d not found", gridID),
	})
}

func (h *ImageHandler) stream(c *fiber.Ctx, key string, reader io.ReadCloser) error {
	c.Set(fiber.HeaderContentType, domain.ImageContentType(key))
	c.Set(fiber.HeaderCacheControl, cacheControl)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", path.Base(key)))
	// Fiber closes the stream once the body was written.
	return c.SendStream(reader)
}

func (h *ImageHandler) allowed(extension string) bool {
	if extension == "" {
		return false
	}
	if len(h.extensions) == 0 {
		return true
	}
	return slices.ContainsFunc(h.extensions, func(allowed string) bool {
		return strings.EqualFold("."+strings.TrimPrefix(allowed, "."), extension)
	})
}

// uploadKey maps a client supplied path to its store key. Paths escaping the
// upload prefix are rejected.
func uploadKey(name string) (string, bool) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", false
	}
	return uploadPrefix + clean, true
}
