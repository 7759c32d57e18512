package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/core/ports"
	"github.com/melih/mapserver/internal/platform/logger"
)

// MapImporter stores one uploaded map with its grid images.
type MapImporter interface {
	ImportMap(ctx context.Context, dir, ref string, data domain.RendererData, forceTiled bool) (uuid.UUID, error)
}

// MapConfig configures the map endpoints.
type MapConfig struct {
	// PublicURL prefixes the grid image links.
	PublicURL string
	// UploadDir holds uploaded grid images until they are imported.
	UploadDir string
}

// MapHandler serves and manages stored maps.
type MapHandler struct {
	maps      ports.MapStore
	images    ports.ImageStore
	importer  MapImporter
	publicURL string
	uploadDir string
	log       logger.Logger
}

func NewMapHandler(maps ports.MapStore, images ports.ImageStore, importer MapImporter, cfg MapConfig, log logger.Logger) *MapHandler {
	return &MapHandler{
		maps:      maps,
		images:    images,
		importer:  importer,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		uploadDir: cfg.UploadDir,
		log:       log,
	}
}

// MapResponse is a map with links to its grid images.
type MapResponse struct {
	domain.Map
	Grids []GridResponse `json:"grids"`
}

type GridResponse struct {
	domain.Grid
	URL string `json:"url"`
}

// ListMaps returns every map, or the maps of the ref query parameter.
func (h *MapHandler) ListMaps(c *fiber.Ctx) error {
	maps, err := h.maps.ListMaps(c.UserContext(), c.Query("ref"))
	if err != nil {
		return errorResponse(c, err)
	}

	response := make([]MapResponse, 0, len(maps))
	for _, m := range maps {
		response = append(response, h.response(m))
	}
	return c.JSON(response)
}

func (h *MapHandler) GetMap(c *fiber.Ctx) error {
	m, err := h.lookup(c)
	if err != nil || m == nil {
		return err
	}
	return c.JSON(h.response(*m))
}

func (h *MapHandler) GetMapByRef(c *fiber.Ctx) error {
	return h.GetMap(c)
}

// PutMap creates or replaces the map addressed by ref and map id from a multipart
// form holding the map data and one image per grid.
func (h *MapHandler) PutMap(c *fiber.Ctx) error {
	ref, mapID := c.Params("ref"), strings.ToLower(c.Params("mapId"))
	data, dir, err := h.parseUpload(c)
	if err != nil || data == nil {
		return err
	}
	defer os.RemoveAll(dir)
	if data.ID != mapID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "The id provided in the path and the map id don't match",
		})
	}

	status := fiber.StatusOK
	if _, err := h.maps.FindMap(c.UserContext(), ref, mapID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return errorResponse(c, err)
		}
		status = fiber.StatusCreated
	}
	return h.store(c, dir, ref, *data, status)
}

// PostMap creates a new map. The ref is read from the gitRef form field.
func (h *MapHandler) PostMap(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.FormValue("gitRef"))
	if ref == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "gitRef is required",
		})
	}
	data, dir, err := h.parseUpload(c)
	if err != nil || data == nil {
		return err
	}
	defer os.RemoveAll(dir)

	if _, err := h.maps.FindMap(c.UserContext(), ref, data.ID); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("Map %s already exists for %s", data.ID, ref),
		})
	} else if !errors.Is(err, domain.ErrNotFound) {
		return errorResponse(c, err)
	}
	return h.store(c, dir, ref, *data, fiber.StatusCreated)
}

// DeleteMap removes a map with its grid images and tiles.
func (h *MapHandler) DeleteMap(c *fiber.Ctx) error {
	m, err := h.lookup(c)
	if err != nil || m == nil {
		return err
	}

	if err := h.images.DeletePrefix(c.UserContext(), path.Join(m.GitRef, m.MapGUID.String())); err != nil {
		return errorResponse(c, err)
	}
	if err := h.maps.DeleteMap(c.UserContext(), m.MapGUID); err != nil {
		return errorResponse(c, err)
	}

	h.log.Info("Deleted map", logger.WithField("map", m.MapID), logger.WithField("ref", m.GitRef))
	return c.SendStatus(fiber.StatusNoContent)
}

// parseUpload reads the map data and saves the grid images of a multipart upload
// into a fresh directory below the upload dir, which the caller removes. A nil
// result means the response was already written.
func (h *MapHandler) parseUpload(c *fiber.Ctx) (*domain.RendererData, string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, "", c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Expected a multipart form",
		})
	}

	var data domain.RendererData
	values := form.Value["map"]
	if len(values) != 1 || json.Unmarshal([]byte(values[0]), &data) != nil || data.ID == "" {
		return nil, "", c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "The map field must hold the map data with an id",
		})
	}
	data.ID = strings.ToLower(data.ID)

	files := form.File["images"]
	if len(files) != len(data.Grids) {
		return nil, "", c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Amount of uploaded images doesn't match the amount of grids",
		})
	}

	grids := make(map[int]int, len(data.Grids))
	for i, grid := range data.Grids {
		grids[grid.GridID] = i
	}
	for _, file := range files {
		gridID, err := gridIDOf(file.Filename)
		if _, ok := grids[gridID]; err != nil || !ok {
			return nil, "", c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("At least one filename doesn't match any grid id: %s", file.Filename),
			})
		}
	}

	dir, err := os.MkdirTemp(h.uploadDir, "upload-*")
	if err != nil {
		return nil, "", errorResponse(c, fmt.Errorf("failed to create upload directory: %w", err))
	}
	for _, file := range files {
		gridID, _ := gridIDOf(file.Filename)
		name := strconv.Itoa(gridID) + strings.ToLower(filepath.Ext(file.Filename))
		if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
			os.RemoveAll(dir)
			return nil, "", errorResponse(c, fmt.Errorf("failed to save %s: %w", name, err))
		}
		data.Grids[grids[gridID]].URL = name
	}
	return &data, dir, nil
}

// gridIDOf parses upload names of the form "<gridId>.<ext>".
func gridIDOf(filename string) (int, error) {
	base := filepath.Base(filename)
	return strconv.Atoi(strings.TrimSuffix(base, filepath.Ext(base)))
}

func (h *MapHandler) store(c *fiber.Ctx, dir, ref string, data domain.RendererData, status int) error {
	id, err := h.importer.ImportMap(c.UserContext(), dir, ref, data, c.QueryBool("forceTiled"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	m, err := h.maps.GetMap(c.UserContext(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(status).JSON(h.response(*m))
}

// lookup resolves the map addressed by either the mapGuid or the ref and mapId
// route parameters. A nil map means the response was already written.
func (h *MapHandler) lookup(c *fiber.Ctx) (*domain.Map, error) {
	if c.Params("mapGuid") == "" {
		m, err := h.maps.FindMap(c.UserContext(), c.Params("ref"), strings.ToLower(c.Params("mapId")))
		if err != nil {
			return nil, errorResponse(c, err)
		}
		return m, nil
	}

	mapGUID, err := uuid.Parse(c.Params("mapGuid"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid map guid",
		})
	}
	m, err := h.maps.GetMap(c.UserContext(), mapGUID)
	if err != nil {
		return nil, errorResponse(c, err)
	}
	return m, nil
}

func (h *MapHandler) response(m domain.Map) MapResponse {
	grids := make([]GridResponse, 0, len(m.Grids))
	for _, grid := range m.Grids {
		grids = append(grids, GridResponse{
			Grid: grid,
			URL:  fmt.Sprintf("%s/api/v1/images/grid/%s/%d", h.publicURL, m.MapGUID, grid.GridID),
		})
	}
	return MapResponse{Map: m, Grids: grids}
}
