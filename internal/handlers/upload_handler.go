package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type UploadHandler struct {
	intakeService services.ResumeIntakeService
	previewChars  int
}

func NewUploadHandler(intakeService services.ResumeIntakeService, previewChars int) *UploadHandler {
	return &UploadHandler{
		intakeService: intakeService,
		previewChars:  previewChars,
	}
}

// HandleUpload handles POST /api/v1/upload
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded. Please upload a PDF, image or DOCX as 'resume'.",
		})
	}

	resume, err := h.intakeService.Ingest(c.UserContext(), file)
	if err != nil {
		return c.Status(uploadErrorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(newUploadResponse(resume, h.previewChars))
}

func newUploadResponse(resume *models.Resume, previewChars int) models.UploadResponse {
	response := models.UploadResponse{
		ID:               resume.ID.String(),
		OriginalName:     resume.OriginalFileName,
		FileType:         string(resume.FileType),
		ExtractionMethod: string(resume.ExtractionMethod),
		PageCount:        resume.PageCount,
		Preview:          services.Preview(resume.ExtractedText, previewChars),
	}
	if !resume.HasText() {
		response.Error = services.ExtractionFailedMessage
	}
	return response
}

func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrUnsupportedFileType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, services.ErrFileTooLarge):
		return fiber.StatusRequestEntityTooLarge
	default:
		return fiber.StatusInternalServerError
	}
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrUnsupportedFileType):
		return "Unsupported file type. Please upload a PDF, JPG, JPEG, PNG or DOCX file."
	case errors.Is(err, services.ErrFileTooLarge):
		return fmt.Sprintf("File too large: %v", err)
	default:
		return "Something went wrong while processing the file. Please try again."
	}
}
