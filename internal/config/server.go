package config

import (
	"fmt"
	"os"
	"time"

	"FaceBlur/database/migrations"
	"FaceBlur/database/postgres"
	detectionHandler "FaceBlur/internal/api/detection/handler"
	detectionRepository "FaceBlur/internal/api/detection/repository"
	detectionService "FaceBlur/internal/api/detection/service"
	"FaceBlur/internal/middleware"
	"FaceBlur/pkg/redis"
	"FaceBlur/pkg/rekognition"
	"FaceBlur/pkg/s3"
	"FaceBlur/pkg/utils"
	websocketPkg "FaceBlur/pkg/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ServerOption func(*Server) error

type Server struct {
	engine            *fiber.App
	db                *sqlx.DB
	log               *logrus.Logger
	middleware        middleware.Middleware
	validator         *validator.Validate
	utils             utils.IUtils
	handlers          []handler
	redisServer       redis.IRedis
	s3Client          s3.ItfS3
	rekognitionClient rekognition.IRekognition
	progressHub       websocketPkg.IHub
	detectionConfig   detectionService.Config
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.progressHub == nil {
		server.progressHub = websocketPkg.NewHub(0)
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := migrations.Up(ctx, db); err != nil {
			_ = db.Close()
			if s.log != nil {
				s.log.Errorf("Failed to apply database migrations: %v", err)
			}
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}

		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithProgressHub(hub websocketPkg.IHub) ServerOption {
	return func(s *Server) error {
		s.progressHub = hub
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithRekognitionClient() ServerOption {
	return func(s *Server) error {
		client, err := rekognition.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize Rekognition client: %v", err)
			}
			return fmt.Errorf("failed to create Rekognition client: %w", err)
		}
		s.rekognitionClient = client
		return nil
	}
}

func WithDetectionConfig() ServerOption {
	return func(s *Server) error {
		cfg, err := NewDetectionConfig()
		if err != nil {
			return fmt.Errorf("failed to load detection config: %w", err)
		}
		s.detectionConfig = cfg
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Detection
	detectionRepo := detectionRepository.New(s.db, s.log)
	detectionServices := detectionService.NewDetectionService(
		s.log,
		detectionRepo,
		s.rekognitionClient,
		s.s3Client,
		s.redisServer,
		s.progressHub,
		s.utils,
		s.detectionConfig,
	)
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, detectionServices, s.progressHub)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, detectionHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) Shutdown() error {
	if err := s.engine.Shutdown(); err != nil {
		return err
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
