package handlers

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/clydeeshun94/vinogram-motherhen/errors"
)

// ErrorHandler is the app-wide fiber error handler. AppError carries its own
// status code; anything else is a 500 with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var appErr *errors.AppError
	var fiberErr *fiber.Error
	switch {
	case stderrors.As(err, &appErr):
		code = appErr.Code
		message = appErr.Message
	case stderrors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	logrus.WithFields(logrus.Fields{
		"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		"path":       c.Path(),
		"method":     c.Method(),
		"status":     code,
		"error":      err,
	}).Error("request error")

	return c.Status(code).JSON(fiber.Map{
		"success":    false,
		"error":      message,
		"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
	})
}
