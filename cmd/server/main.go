package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mesyatsya/converter/internal/config"
	"github.com/mesyatsya/converter/internal/handler"
	"github.com/mesyatsya/converter/internal/media"
	"github.com/mesyatsya/converter/internal/middleware"
	"github.com/mesyatsya/converter/internal/registry"
	"github.com/mesyatsya/converter/internal/service"
	"github.com/mesyatsya/converter/internal/worker"
	ws "github.com/mesyatsya/converter/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Working directories
	if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}
	if err := os.MkdirAll(cfg.Storage.ConvertedDir, 0o755); err != nil {
		log.Fatalf("Failed to create converted dir: %v", err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// External tools
	prober := media.NewFFprobe(cfg.FFmpeg.FFprobeBin, cfg.FFmpeg.ProbeTimeout)
	transcoder := media.NewFFmpeg(cfg.FFmpeg.FFmpegBin, cfg.FFmpeg.TranscodeTimeout)

	// Job registry and worker pool
	jobs := registry.New()
	runner := worker.NewRunner(jobs, transcoder, hub)
	pool := worker.NewPool(cfg.Worker.Count, cfg.Worker.QueueSize, runner)

	// Services
	fileValidator := media.NewValidator(media.DefaultExtensions)
	convertService := service.NewConvertService(jobs, prober, pool, fileValidator,
		cfg.Storage.UploadDir, cfg.Storage.ConvertedDir)

	// Session cookie for the browser flow
	session := middleware.NewSessionManager(cfg.Session.Secret)

	// Handlers
	bodyLimit := cfg.Server.BodyLimitMB * 1024 * 1024
	convertHandler := handler.NewConvertHandler(convertService, validate, session, int64(bodyLimit))

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    bodyLimit,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api")
	api.Get("/formats", convertHandler.Formats)
	api.Get("/jobs/current", convertHandler.Current)

	convert := api.Group("/convert")
	convert.Post("/", convertHandler.Start)
	convert.Get("/:taskId", convertHandler.Job)
	convert.Get("/:taskId/status", convertHandler.Status)
	convert.Get("/:taskId/download", convertHandler.Download)
	convert.Delete("/:taskId", convertHandler.Cleanup)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:taskId", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("taskId"))
	}))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		pool.Shutdown()
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
