package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
	"alfredoptarigan/resume-analyzer/internal/views"
)

const pageTitle = "AI Resume Analyzer"

// WebHandler serves the browser form. Analyses started here run within the request.
type WebHandler struct {
	intakeService   services.ResumeIntakeService
	analyzerService services.AnalyzerService
	resumeRepo      repositories.ResumeRepository
	analysisRepo    repositories.AnalysisRepository
	previewChars    int
}

func NewWebHandler(
	intakeService services.ResumeIntakeService,
	analyzerService services.AnalyzerService,
	resumeRepo repositories.ResumeRepository,
	analysisRepo repositories.AnalysisRepository,
	previewChars int,
) *WebHandler {
	return &WebHandler{
		intakeService:   intakeService,
		analyzerService: analyzerService,
		resumeRepo:      resumeRepo,
		analysisRepo:    analysisRepo,
		previewChars:    previewChars,
	}
}

// HandleIndex handles GET /
func (h *WebHandler) HandleIndex(c *fiber.Ctx) error {
	return h.renderIndex(c, fiber.StatusOK, "", "")
}

// HandleUpload handles POST /upload
func (h *WebHandler) HandleUpload(c *fiber.Ctx) error {
	jobDescription := c.FormValue("job_description")

	file, err := c.FormFile("resume")
	if err != nil {
		return h.renderIndex(c, fiber.StatusBadRequest, "Please choose a resume file to upload.", jobDescription)
	}

	resume, err := h.intakeService.Ingest(c.UserContext(), file)
	if err != nil {
		log.Printf("❌ Upload of %s failed: %v", file.Filename, err)
		return h.renderIndex(c, uploadErrorStatus(err), uploadErrorMessage(err), jobDescription)
	}

	data := fiber.Map{
		"Title":          pageTitle,
		"Resume":         resume,
		"Preview":        services.Preview(resume.ExtractedText, h.previewChars),
		"JobDescription": jobDescription,
	}
	if !resume.HasText() {
		data["ExtractionMessage"] = services.ExtractionFailedMessage
	}

	return c.Render("preview", data, views.Layout)
}

// HandleAnalyze handles POST /resumes/:id/analyze
func (h *WebHandler) HandleAnalyze(c *fiber.Ctx) error {
	resumeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.renderIndex(c, fiber.StatusBadRequest, "Invalid resume ID.", "")
	}

	resume, err := h.resumeRepo.FindByID(resumeID)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, repositories.ErrNotFound) {
			status = fiber.StatusNotFound
		}
		return h.renderIndex(c, status, "Resume not found. Please upload it again.", "")
	}

	// Created as processing so the worker's poller never picks it up.
	analysis := newAnalysis(resume.ID, c.FormValue("job_description"), models.StatusProcessing)
	if err := h.analysisRepo.Create(analysis); err != nil {
		log.Printf("❌ Failed to create analysis: %v", err)
		return h.renderIndex(c, fiber.StatusInternalServerError, "Failed to start the analysis. Please try again.", analysis.JobDescription)
	}

	if err := h.analyzerService.ProcessAnalysis(c.UserContext(), analysis.ID); err != nil {
		log.Printf("⚠️  Analysis %s did not complete: %v", analysis.ID, err)
	}

	stored, err := h.analysisRepo.FindByID(analysis.ID)
	if err != nil {
		log.Printf("❌ Failed to reload analysis %s: %v", analysis.ID, err)
		return h.renderIndex(c, fiber.StatusInternalServerError, "Failed to load the analysis. Please try again.", analysis.JobDescription)
	}

	return c.Render("result", resultView(resume, stored), views.Layout)
}

func resultView(resume *models.Resume, analysis *models.Analysis) fiber.Map {
	data := fiber.Map{
		"Title":    pageTitle,
		"Resume":   resume,
		"Analysis": analysis,
	}

	switch {
	case analysis.Status == models.StatusCompleted && analysis.Feedback != nil:
		data["Feedback"] = *analysis.Feedback
	case analysis.ErrorMessage != nil:
		data["ErrorMessage"] = *analysis.ErrorMessage
	default:
		data["ErrorMessage"] = "The analysis did not finish. Please try again."
	}

	return data
}

func (h *WebHandler) renderIndex(c *fiber.Ctx, status int, message, jobDescription string) error {
	return c.Status(status).Render("index", fiber.Map{
		"Title":          pageTitle,
		"Error":          message,
		"JobDescription": jobDescription,
	}, views.Layout)
}
