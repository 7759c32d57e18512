package domain

import (
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Area is an axis aligned rectangle spanned by A and B.
type Area struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// Map is a rendered map for a specific git ref.
type Map struct {
	MapGUID        uuid.UUID       `json:"mapGuid"`
	GitRef         string          `json:"gitRef"`
	MapID          string          `json:"id"`
	DisplayName    string          `json:"displayName"`
	Attribution    string          `json:"attribution,omitempty"`
	Grids          []Grid          `json:"grids"`
	ParallaxLayers json.RawMessage `json:"parallaxLayers,omitempty"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

// Size returns the surface covered by the area.
func (a Area) Size() float64 {
	return math.Abs(a.B.X-a.A.X) * math.Abs(a.B.Y-a.A.Y)
}

// Grid is one rendered grid image of a map.
type Grid struct {
	ID       uuid.UUID `json:"id"`
	GridID   int       `json:"gridId"`
	Tiled    bool      `json:"tiled"`
	TileSize int       `json:"tileSize"`
	Offset   Point     `json:"offset"`
	Extent   Area      `json:"extent"`
	Path     string    `json:"-"`
}

// Tile is one fixed size fragment of a tiled grid image.
type Tile struct {
	MapGUID   uuid.UUID
	GridID    int
	X         int
	Y         int
	Size      int
	ImagePath string
	Preview   []byte
}

// RendererData is the metadata file the map renderer writes next to each map's images.
type RendererData struct {
	ID             string          `json:"Id"`
	Name           string          `json:"Name"`
	Attributions   string          `json:"Attributions"`
	Grids          []RendererGrid  `json:"Grids"`
	ParallaxLayers json.RawMessage `json:"ParallaxLayers"`
}

// RendererGrid is the per-grid section of RendererData.
type RendererGrid struct {
	GridID int          `json:"GridId"`
	Tiled  bool         `json:"Tiled"`
	Offset Point        `json:"Offset"`
	Extent RendererArea `json:"Extent"`
	URL    string       `json:"Url"`
}

// RendererArea is the flat rectangle encoding used by the renderer.
type RendererArea struct {
	X1 float64 `json:"X1"`
	Y1 float64 `json:"Y1"`
	X2 float64 `json:"X2"`
	Y2 float64 `json:"Y2"`
}

// Area converts the renderer encoding into an Area.
func (a RendererArea) Area() Area {
	return Area{
		A: Point{X: a.X1, Y: a.Y1},
		B: Point{X: a.X2, Y: a.Y2},
	}
}

// ImageContentType returns the mime type used to store and serve an image file.
func ImageContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
