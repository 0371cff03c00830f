package detectionHandler

import (
	detectionService "FaceBlur/internal/api/detection/service"
	"FaceBlur/internal/middleware"
	websocketPkg "FaceBlur/pkg/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	hub              websocketPkg.IHub
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
	hub websocketPkg.IHub,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		hub:              hub,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Post("/videos", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.SubmitVideo)

	jobs := srv.Group("/jobs")
	jobs.Post("", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.StartDetection)
	jobs.Get("", h.middleware.NewTokenMiddleware, h.ListJobs)
	jobs.Get("/:jobId", h.GetJob)
	jobs.Get("/:jobId/faces", h.GetFaces)
	jobs.Use("/:jobId/ws", wsMiddleware)
	jobs.Get("/:jobId/ws", websocket.New(h.handleProgressWebSocket))
}
