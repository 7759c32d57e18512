package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/melih/mapserver/internal/platform/logger"
)

// Handlers groups everything the router serves.
type Handlers struct {
	Builds     *BuildHandler
	Management *ManagementHandler
	Maps       *MapHandler
	Images     *ImageHandler
	Webhooks   *WebhookHandler
}

// RouterConfig configures authentication, rate limiting and caching.
type RouterConfig struct {
	// APIKey protects mutating endpoints except the signed webhook. Empty disables it.
	APIKey string
	// RateLimit allows this many requests per host and RateWindow. Zero disables it.
	RateLimit  int
	RateWindow time.Duration
	// ImageCacheTTL keeps image and tile responses in memory. Zero disables it.
	ImageCacheTTL time.Duration
}

// NewApp creates the fiber app and registers every route below /api/v1.
// A nil Builds handler leaves build scheduling unrouted.
func NewApp(h Handlers, cfg RouterConfig, log logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "mapserver",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.RateLimit > 0 {
		app.Use(rateLimiter(cfg.RateLimit, cfg.RateWindow))
	}

	requireKey := RequireAPIKey(cfg.APIKey)
	cached := imageCache(cfg.ImageCacheTTL)

	api := app.Group("/api")
	v1 := api.Group("/v1")

	if h.Builds != nil {
		v1.Post("/builds", requireKey, h.Builds.ScheduleBuild)
	}

	management := v1.Group("/management")
	management.Get("/information", h.Management.GetInformation)
	management.Get("/statistics", h.Management.GetStatistics)

	maps := v1.Group("/maps")
	maps.Get("/", h.Maps.ListMaps)
	maps.Post("/", requireKey, h.Maps.PostMap)
	maps.Get("/:mapGuid", h.Maps.GetMap)
	maps.Delete("/:mapGuid", requireKey, h.Maps.DeleteMap)
	maps.Get("/:ref/:mapId", h.Maps.GetMapByRef)
	maps.Put("/:ref/:mapId", requireKey, h.Maps.PutMap)
	maps.Delete("/:ref/:mapId", requireKey, h.Maps.DeleteMap)

	tiles := v1.Group("/tiles", cached)
	tiles.Get("/:mapGuid/:gridId/:x/:y", h.Images.GetTile)
	tiles.Get("/:mapGuid/:gridId/:x/:y/preview", h.Images.GetTilePreview)

	images := v1.Group("/images", cached)
	images.Get("/grid/:mapGuid/:gridId", h.Images.GetGridImage)
	images.Get("/grid/:ref/:mapId/:gridId", h.Images.GetGridImage)
	images.Get("/file/*", h.Images.GetFile)
	images.Post("/upload/*", requireKey, h.Images.UploadImage)

	v1.Post("/webhooks/push", h.Webhooks.Handle)
	v1.Post("/webhooks/github", h.Webhooks.Handle)

	return app
}

// rateLimiter allows max requests per host within each fixed window.
func rateLimiter(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.FixedWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Hostname()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		},
	})
}

// imageCache caches GET responses by their full url, query included.
func imageCache(ttl time.Duration) fiber.Handler {
	if ttl <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return cache.New(cache.Config{
		Expiration:   ttl,
		CacheControl: true,
		CacheHeader:  "X-Cache",
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.OriginalURL()
		},
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet
		},
	})
}

func errorHandler(log logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("Request failed",
				logger.WithField("path", c.Path()),
				logger.WithField("request_id", c.Locals("requestid")),
				logger.WithError(err))
		}
		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
