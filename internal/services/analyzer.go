package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

var (
	// ErrNoResumeText short-circuits an analysis before the model is called.
	ErrNoResumeText = errors.New("no text could be extracted from the file")
	// ErrAnalysisNotQueued means another runner already claimed the analysis.
	ErrAnalysisNotQueued = errors.New("analysis is not queued")
)

const (
	NoTextMessage         = "No text could be extracted from the file."
	saveFailedMessage     = "Failed to save the analysis results."
	analysisFailedMessage = "Gemini AI analysis failed: %v"
)

// UserMessage renders an analysis error the way it is shown in place of feedback.
func UserMessage(err error) string {
	if errors.Is(err, ErrNoResumeText) {
		return NoTextMessage
	}
	return fmt.Sprintf(analysisFailedMessage, err)
}

type AnalysisOutput struct {
	Feedback    string
	Model       string
	PromptChars int
}

type AnalyzerService interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (*AnalysisOutput, error)
	// RunAnalysis claims a queued analysis and processes it.
	RunAnalysis(ctx context.Context, analysisID uuid.UUID) error
	// ProcessAnalysis runs an analysis the caller created in the processing state.
	ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error
}

type analyzerService struct {
	analysisRepo  repositories.AnalysisRepository
	resumeRepo    repositories.ResumeRepository
	geminiService GeminiService
	retriever     ContextRetriever
	publisher     EventPublisher
	promptBuilder *PromptBuilder
	maxRetries    int
}

// NewAnalyzerService wires the analysis pipeline. retriever may be nil when
// reference retrieval is disabled.
func NewAnalyzerService(
	analysisRepo repositories.AnalysisRepository,
	resumeRepo repositories.ResumeRepository,
	geminiService GeminiService,
	retriever ContextRetriever,
	publisher EventPublisher,
	maxRetries int,
) AnalyzerService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &analyzerService{
		analysisRepo:  analysisRepo,
		resumeRepo:    resumeRepo,
		geminiService: geminiService,
		retriever:     retriever,
		publisher:     publisher,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

func (a *analyzerService) Analyze(ctx context.Context, resumeText, jobDescription string) (*AnalysisOutput, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrNoResumeText
	}

	var reference string
	if a.retriever != nil {
		query := a.promptBuilder.BuildRetrievalQuery(resumeText, jobDescription)
		retrieved, err := a.retriever.Retrieve(ctx, query)
		if err != nil {
			log.Printf("⚠️  Warning: Failed to retrieve reference context: %v", err)
		} else {
			reference = retrieved
		}
	}

	prompt := a.promptBuilder.BuildResumeAnalysisPrompt(resumeText, jobDescription, reference)
	log.Printf("📝 Resume analysis prompt length: %d characters", len(prompt))

	response, err := a.geminiService.GenerateTextWithRetry(ctx, prompt, a.maxRetries)
	if err != nil {
		return nil, err
	}

	return &AnalysisOutput{
		Feedback:    strings.TrimSpace(response),
		Model:       a.geminiService.ModelName(),
		PromptChars: len(prompt),
	}, nil
}

func (a *analyzerService) RunAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	claimed, err := a.analysisRepo.Claim(analysisID)
	if err != nil {
		return fmt.Errorf("failed to claim analysis: %w", err)
	}
	if !claimed {
		return fmt.Errorf("analysis %s: %w", analysisID, ErrAnalysisNotQueued)
	}

	return a.ProcessAnalysis(ctx, analysisID)
}

func (a *analyzerService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	analysis, err := a.analysisRepo.FindByID(analysisID)
	if err != nil {
		return fmt.Errorf("failed to get analysis: %w", err)
	}
	a.publish(ctx, analysis, models.StatusProcessing, "analysis started")

	log.Printf("🔄 Starting analysis %s for resume %s", analysisID, analysis.ResumeID)

	resume, err := a.resumeRepo.FindByID(analysis.ResumeID)
	if err != nil {
		a.fail(ctx, analysis, "Resume not found")
		return fmt.Errorf("failed to get resume: %w", err)
	}

	output, err := a.Analyze(ctx, resume.ExtractedText, analysis.JobDescription)
	if err != nil {
		a.fail(ctx, analysis, UserMessage(err))
		return fmt.Errorf("failed to analyze resume: %w", err)
	}

	if err := a.analysisRepo.UpdateResult(analysisID, &repositories.AnalysisUpdateData{
		Feedback:    output.Feedback,
		Model:       output.Model,
		PromptChars: output.PromptChars,
	}); err != nil {
		a.fail(ctx, analysis, saveFailedMessage)
		return fmt.Errorf("failed to save results: %w", err)
	}
	a.publish(ctx, analysis, models.StatusCompleted, "analysis completed")

	log.Printf("✅ Analysis %s completed", analysisID)
	return nil
}

func (a *analyzerService) fail(ctx context.Context, analysis *models.Analysis, message string) {
	if err := a.analysisRepo.UpdateError(analysis.ID, message); err != nil {
		log.Printf("❌ Failed to record error for analysis %s: %v", analysis.ID, err)
	}
	a.publish(ctx, analysis, models.StatusFailed, message)
}

func (a *analyzerService) publish(ctx context.Context, analysis *models.Analysis, status models.AnalysisStatus, message string) {
	event := models.AnalysisEvent{
		AnalysisID: analysis.ID,
		ResumeID:   analysis.ResumeID,
		Status:     status,
		Message:    message,
		Timestamp:  time.Now(),
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Printf("⚠️  Failed to publish %s event for analysis %s: %v", status, analysis.ID, err)
	}
}
