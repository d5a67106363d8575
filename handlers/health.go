package handlers

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clydeeshun94/vinogram-motherhen/config"
)

type HealthHandler struct {
	cfg       *config.Config
	startTime time.Time
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		cfg:       cfg,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.cfg.Version,
		"uptime":    time.Since(h.startTime).String(),
	}

	if h.cfg.Debug {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		status["memory"] = fiber.Map{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
	}

	return c.JSON(status)
}
