package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/clydeeshun94/vinogram-motherhen/config"
	"github.com/clydeeshun94/vinogram-motherhen/handlers"
	"github.com/clydeeshun94/vinogram-motherhen/logger"
	"github.com/clydeeshun94/vinogram-motherhen/repository/memory"
	"github.com/clydeeshun94/vinogram-motherhen/services/jobs"
	"github.com/clydeeshun94/vinogram-motherhen/tools"
)

func main() {
	// Optional .env for local development; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logConfig, err := logger.Init(cfg.LogDir, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if cfg.Tools.AutoInstall {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if err := tools.Install(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to install yt-dlp: %v", err)
		}
		cancel()
		logrus.Info("yt-dlp is available")
	}

	runner := tools.NewCommandRunner()
	downloader := tools.NewYtdlpDownloader(cfg.Tools)
	prober := tools.NewFFprober(cfg.Tools, runner)
	encoder := tools.NewFFmpegEncoder(cfg.Tools, runner)

	repo := memory.NewRepository()
	jobService := jobs.NewService(repo, downloader, prober, encoder, cfg)

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		BodyLimit:             cfg.MaxUploadBytes,
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: !cfg.Debug,
		AppName:               "vinogram-motherhen " + cfg.Version,
	})

	setupMiddleware(app, cfg, logConfig)
	setupRoutes(app, jobService, cfg)

	// Graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		logrus.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			logrus.WithError(err).Error("Server shutdown error")
		}
	}()

	serverAddr := ":" + cfg.ServerPort
	if cfg.Debug {
		logrus.Infof("Server starting on http://localhost%s", serverAddr)
	}

	if err := app.Listen(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
}

func setupRoutes(app *fiber.App, jobService jobs.Service, cfg *config.Config) {
	downloads := handlers.NewDownloadHandler(jobService)
	compressor := handlers.NewCompressorHandler(jobService, cfg)
	health := handlers.NewHealthHandler(cfg)

	app.Post("/api/downloads", downloads.Create)
	app.Get("/api/downloads", downloads.List)
	app.Get("/api/downloads/:id", downloads.Get)
	app.Delete("/api/downloads/:id", downloads.Delete)
	app.Get("/download/:id", downloads.ServeFile)

	app.Post("/api/compressor/compress", compressor.Compress)
	app.Get("/api/compressor/download/:id", compressor.ServeFile)

	app.Get("/health", health.Check)

	// Frontend
	app.Static("/", cfg.StaticDir)
}

func setupMiddleware(app *fiber.App, cfg *config.Config, logConfig *fiberLogger.Config) {
	if cfg.Middleware.EnableRecover {
		app.Use(recover.New(recover.Config{
			EnableStackTrace: cfg.Debug,
		}))
	}

	if cfg.Middleware.EnableRequestID {
		app.Use(requestid.New(requestid.Config{
			Header: "X-Request-ID",
			Generator: func() string {
				return uuid.New().String()
			},
		}))
	}

	if cfg.Middleware.EnableLogger {
		app.Use(fiberLogger.New(*logConfig))
	}

	if cfg.Middleware.EnableTimeout {
		app.Use(timeout.New(func(c *fiber.Ctx) error {
			return c.Next()
		}, cfg.RequestTimeout))
	}

	if cfg.Middleware.EnableCORS && cfg.CORS.Enabled {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowMethods:     strings.Join(cfg.CORS.AllowedMethods, ","),
			AllowHeaders:     strings.Join(cfg.CORS.AllowedHeaders, ","),
			ExposeHeaders:    strings.Join(cfg.CORS.ExposedHeaders, ","),
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}

	if cfg.Middleware.EnableRateLimit && cfg.RateLimit.Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.RequestsPerMinute,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}))
	}

	if cfg.Middleware.EnableCompress {
		app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}

	if cfg.Middleware.EnableETag {
		app.Use(etag.New())
	}
}
