package handlers

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/clydeeshun94/vinogram-motherhen/config"
	"github.com/clydeeshun94/vinogram-motherhen/errors"
	"github.com/clydeeshun94/vinogram-motherhen/models"
	"github.com/clydeeshun94/vinogram-motherhen/services/jobs"
)

type CompressorHandler struct {
	service jobs.Service
	cfg     *config.Config
	logger  *logrus.Logger
}

func NewCompressorHandler(service jobs.Service, cfg *config.Config) *CompressorHandler {
	return &CompressorHandler{
		service: service,
		cfg:     cfg,
		logger:  logrus.StandardLogger(),
	}
}

// Compress stages the uploaded file, runs the compression synchronously and
// returns the finished job. The staging directory is removed regardless of
// outcome; only the compressed output survives.
func (h *CompressorHandler) Compress(c *fiber.Ctx) error {
	const op = "CompressorHandler.Compress"

	file, err := c.FormFile("video")
	if err != nil {
		return errors.InvalidInput(op, err, "video file is required")
	}

	level := c.FormValue("compression_level", "medium")

	targetSizeMB := 0
	if raw := c.FormValue("target_size"); raw != "" {
		targetSizeMB, err = strconv.Atoi(raw)
		if err != nil {
			return errors.InvalidInput(op, err, "target_size must be a whole number of megabytes")
		}
	}

	stagingDir, err := os.MkdirTemp(h.cfg.UploadTmpDir, "upload-")
	if err != nil {
		return errors.Internal(op, err, "failed to stage upload")
	}
	defer os.RemoveAll(stagingDir)

	inputPath := filepath.Join(stagingDir, sanitizeFilename(filepath.Base(file.Filename)))
	if err := c.SaveFile(file, inputPath); err != nil {
		return errors.Internal(op, err, "failed to store upload")
	}

	h.logger.WithFields(logrus.Fields{
		"filename":    file.Filename,
		"size":        file.Size,
		"level":       level,
		"target_size": targetSizeMB,
	}).Info("compression request received")

	job, err := h.service.Compress(c.Context(), jobs.CompressRequest{
		InputPath:    inputPath,
		InputName:    file.Filename,
		Level:        level,
		TargetSizeMB: targetSizeMB,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewJobResponse(job),
	})
}

func (h *CompressorHandler) ServeFile(c *fiber.Ctx) error {
	const op = "CompressorHandler.ServeFile"

	id := c.Params("id")
	if id == "" {
		return errors.InvalidInput(op, nil, "id is required")
	}

	path, job, err := h.service.Artifact(c.Context(), id)
	if err != nil {
		return err
	}

	name := "compressed_" + sanitizeFilename(filepath.Base(job.InputName))
	if name == "compressed_" {
		name = "compressed_" + job.ID + ".mp4"
	}

	c.Set(fiber.HeaderContentType, "video/mp4")
	return c.Download(path, name)
}
