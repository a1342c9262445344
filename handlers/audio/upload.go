package audio

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/mentor-hub-api/handlers"
	"github.com/sahilchouksey/mentor-hub-api/services"
	"github.com/sahilchouksey/mentor-hub-api/utils/response"
)

// UploadHandler stores audio files for audio tracks
type UploadHandler struct {
	uploads *services.UploadService
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads *services.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload handles POST /api/admin/audio/upload (multipart field "file")
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return handlers.RespondError(c, services.NewValidationError("file", "file is required"))
	}

	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := h.uploads.UploadAudio(c.UserContext(), header.Filename, header.Size, file)
	if err != nil {
		return handlers.RespondError(c, err)
	}
	return response.Created(c, "File uploaded successfully", result)
}
