package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/models"
	"github.com/clydeeshun94/vinogram-motherhen/services/jobs"
)

const (
	defaultFormat  = "mp4"
	defaultQuality = "medium"
)

type DownloadHandler struct {
	service jobs.Service
	logger  *logrus.Logger
}

func NewDownloadHandler(service jobs.Service) *DownloadHandler {
	return &DownloadHandler{
		service: service,
		logger:  logrus.StandardLogger(),
	}
}

func (h *DownloadHandler) Create(c *fiber.Ctx) error {
	const op = "DownloadHandler.Create"

	var req jobs.DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "invalid request body")
	}
	if req.URL == "" {
		return errors.InvalidInput(op, nil, "url is required")
	}
	if req.Format == "" {
		req.Format = defaultFormat
	}
	if req.Quality == "" {
		req.Quality = defaultQuality
	}

	job, err := h.service.CreateDownload(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"data":    models.NewJobResponse(job),
	})
}

func (h *DownloadHandler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.Context())
	if err != nil {
		return err
	}

	responses := make([]*models.JobResponse, 0, len(list))
	for _, job := range list {
		responses = append(responses, models.NewJobResponse(job))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    responses,
	})
}

func (h *DownloadHandler) Get(c *fiber.Ctx) error {
	const op = "DownloadHandler.Get"

	id := c.Params("id")
	if id == "" {
		return errors.InvalidInput(op, nil, "id is required")
	}

	job, err := h.service.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewJobResponse(job),
	})
}

func (h *DownloadHandler) Delete(c *fiber.Ctx) error {
	const op = "DownloadHandler.Delete"

	id := c.Params("id")
	if id == "" {
		return errors.InvalidInput(op, nil, "id is required")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

// ServeFile streams a completed download with a human-friendly filename.
func (h *DownloadHandler) ServeFile(c *fiber.Ctx) error {
	const op = "DownloadHandler.ServeFile"

	id := c.Params("id")
	if id == "" {
		return errors.InvalidInput(op, nil, "id is required")
	}

	path, job, err := h.service.Artifact(c.Context(), id)
	if err != nil {
		return err
	}

	name := sanitizeFilename(job.Title)
	if name == "" {
		name = job.ID
	}
	if job.FileExt != "" {
		name += "." + job.FileExt
	}

	c.Set(fiber.HeaderContentType, contentTypeFor(job.FileExt))
	return c.Download(path, name)
}

// sanitizeFilename keeps the title readable while stripping anything that
// could escape the Content-Disposition value or the filesystem.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.TrimSpace(b.String())
}

func contentTypeFor(ext string) string {
	if ext == "mp3" {
		return "audio/mpeg"
	}
	return "video/mp4"
}
