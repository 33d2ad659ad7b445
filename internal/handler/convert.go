package handler

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/mesyatsya/converter/internal/middleware"
	"github.com/mesyatsya/converter/internal/model"
	"github.com/mesyatsya/converter/internal/service"
	"github.com/mesyatsya/converter/pkg/response"
)

type ConvertHandler struct {
	service   *service.ConvertService
	validator *validator.Validate
	session   *middleware.SessionManager
	maxUpload int64
}

func NewConvertHandler(svc *service.ConvertService, v *validator.Validate, session *middleware.SessionManager, maxUpload int64) *ConvertHandler {
	return &ConvertHandler{
		service:   svc,
		validator: v,
		session:   session,
		maxUpload: maxUpload,
	}
}

// Formats handles GET /api/formats
func (h *ConvertHandler) Formats(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"formats": h.service.Formats()})
}

// Start handles POST /api/convert
func (h *ConvertHandler) Start(c *fiber.Ctx) error {
	req := model.ConvertRequest{Format: c.FormValue("format", "mp4")}
	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Unsupported output format", fiber.Map{
			"format": req.Format,
		})
	}

	file, err := c.FormFile("file")
	if err != nil || file.Filename == "" {
		return response.ValidationError(c, "File is required", nil)
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		return response.ValidationError(c, "File too large", fiber.Map{
			"maxSize":  h.maxUpload,
			"fileSize": file.Size,
		})
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open uploaded file")
	}
	defer f.Close()

	result, err := h.service.StartConversion(c.Context(), f, file.Filename, req.Format)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoFile):
			return response.ValidationError(c, "File is required", nil)
		case errors.Is(err, service.ErrUnsupportedFormat):
			return response.ValidationError(c, "Unsupported output format", nil)
		case errors.Is(err, service.ErrDisallowedExtension):
			return response.ValidationError(c, "File type not allowed. Supported: MP4, AVI, MOV, MKV, WEBM", nil)
		default:
			return response.ServiceError(c, err.Error())
		}
	}

	if err := h.session.Issue(c, result.TaskID); err != nil {
		log.Printf("failed to issue session cookie: %v", err)
	}

	return response.Created(c, result)
}

// Status handles GET /api/convert/:taskId/status
func (h *ConvertHandler) Status(c *fiber.Ctx) error {
	status, err := h.service.Status(c.Params("taskId"))
	if err != nil {
		return response.NotFound(c, "Task not found")
	}
	return response.OK(c, status)
}

// Job handles GET /api/convert/:taskId
func (h *ConvertHandler) Job(c *fiber.Ctx) error {
	job, err := h.service.Job(c.Params("taskId"))
	if err != nil {
		return response.NotFound(c, "Task not found")
	}
	return response.OK(c, job)
}

// Download handles GET /api/convert/:taskId/download
func (h *ConvertHandler) Download(c *fiber.Ctx) error {
	path, filename, err := h.service.Download(c.Params("taskId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			return response.NotFound(c, "Task not found")
		case errors.Is(err, service.ErrConversionNotFinished):
			return response.JobFailed(c, "Conversion not finished")
		default:
			return response.NotFound(c, "Output file not found")
		}
	}
	return c.Download(path, filename)
}

// Cleanup handles DELETE /api/convert/:taskId
func (h *ConvertHandler) Cleanup(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	if err := h.service.Cleanup(taskID); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			return response.NotFound(c, "Task not found")
		}
		return response.ServiceError(c, err.Error())
	}
	h.session.Clear(c)
	return response.OK(c, model.CleanupResponse{Success: true, TaskID: taskID})
}

// Current handles GET /api/jobs/current
func (h *ConvertHandler) Current(c *fiber.Ctx) error {
	taskID, ok := h.session.CurrentTask(c)
	if !ok {
		return response.NotFound(c, "No active conversion")
	}
	job, err := h.service.Job(taskID)
	if err != nil {
		return response.NotFound(c, "Task not found")
	}
	return response.OK(c, job)
}
