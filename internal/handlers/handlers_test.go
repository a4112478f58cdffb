package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
	"alfredoptarigan/resume-analyzer/internal/views"
)

type mockIntake struct {
	mock.Mock
}

func (m *mockIntake) Ingest(ctx context.Context, file *multipart.FileHeader) (*models.Resume, error) {
	args := m.Called(ctx, file)
	if r, ok := args.Get(0).(*models.Resume); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) Start(ctx context.Context) { m.Called(ctx) }
func (m *mockWorker) Stop()                     { m.Called() }
func (m *mockWorker) EnqueueJob(id uuid.UUID)   { m.Called(id) }

type memoryResumes struct {
	mu      sync.Mutex
	resumes map[uuid.UUID]*models.Resume
}

func (r *memoryResumes) Create(resume *models.Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumes[resume.ID] = resume
	return nil
}

func (r *memoryResumes) FindByID(id uuid.UUID) (*models.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if resume, ok := r.resumes[id]; ok {
		return resume, nil
	}
	return nil, fmt.Errorf("resume %s: %w", id, repositories.ErrNotFound)
}

func (r *memoryResumes) SetArchiveKey(uuid.UUID, string) error { return nil }

type memoryAnalyses struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]*models.Analysis
}

func (r *memoryAnalyses) Create(a *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.ID] = a
	return nil
}

func (r *memoryAnalyses) FindByID(id uuid.UUID) (*models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.analyses[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("analysis %s: %w", id, repositories.ErrNotFound)
}

func (r *memoryAnalyses) Claim(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok || a.Status != models.StatusQueued {
		return false, nil
	}
	a.Status = models.StatusProcessing
	return true, nil
}

func (r *memoryAnalyses) UpdateResult(id uuid.UUID, data *repositories.AnalysisUpdateData) error {
	a, err := r.FindByID(id)
	if err != nil {
		return err
	}
	feedback := data.Feedback
	a.Status = models.StatusCompleted
	a.Feedback = &feedback
	a.Model = data.Model
	return nil
}

func (r *memoryAnalyses) UpdateError(id uuid.UUID, msg string) error {
	a, err := r.FindByID(id)
	if err != nil {
		return err
	}
	a.Status = models.StatusFailed
	a.ErrorMessage = &msg
	return nil
}

func (r *memoryAnalyses) FindPendingJobs(int) ([]models.Analysis, error) { return nil, nil }

// scriptedAnalyzer completes or fails every analysis with a fixed outcome.
type scriptedAnalyzer struct {
	analyses *memoryAnalyses
	feedback string
	err      error
	jobs     []string
	// statuses records the status each analysis had when processing began.
	statuses []models.AnalysisStatus
}

func (s *scriptedAnalyzer) Analyze(context.Context, string, string) (*services.AnalysisOutput, error) {
	return nil, nil
}

func (s *scriptedAnalyzer) RunAnalysis(ctx context.Context, id uuid.UUID) error {
	claimed, err := s.analyses.Claim(id)
	if err != nil {
		return err
	}
	if !claimed {
		return services.ErrAnalysisNotQueued
	}
	return s.ProcessAnalysis(ctx, id)
}

func (s *scriptedAnalyzer) ProcessAnalysis(_ context.Context, id uuid.UUID) error {
	a, err := s.analyses.FindByID(id)
	if err != nil {
		return err
	}
	s.statuses = append(s.statuses, a.Status)
	s.jobs = append(s.jobs, a.JobDescription)
	if s.err != nil {
		_ = s.analyses.UpdateError(id, services.UserMessage(s.err))
		return s.err
	}
	return s.analyses.UpdateResult(id, &repositories.AnalysisUpdateData{Feedback: s.feedback, Model: "gemini-2.5-pro"})
}

type testApp struct {
	app      *fiber.App
	intake   *mockIntake
	worker   *mockWorker
	resumes  *memoryResumes
	analyses *memoryAnalyses
	analyzer *scriptedAnalyzer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	engine, err := views.NewEngine()
	require.NoError(t, err)

	ta := &testApp{
		intake:   &mockIntake{},
		worker:   &mockWorker{},
		resumes:  &memoryResumes{resumes: make(map[uuid.UUID]*models.Resume)},
		analyses: &memoryAnalyses{analyses: make(map[uuid.UUID]*models.Analysis)},
	}
	ta.analyzer = &scriptedAnalyzer{analyses: ta.analyses, feedback: "## Strengths\n- Solid Go experience"}

	app := fiber.New(fiber.Config{Views: engine})

	web := NewWebHandler(ta.intake, ta.analyzer, ta.resumes, ta.analyses, 10)
	app.Get("/", web.HandleIndex)
	app.Post("/upload", web.HandleUpload)
	app.Post("/resumes/:id/analyze", web.HandleAnalyze)

	api := app.Group("/api/v1")
	api.Post("/upload", NewUploadHandler(ta.intake, 10).HandleUpload)
	api.Post("/analyze", NewAnalyzeHandler(ta.analyses, ta.resumes, ta.worker).HandleAnalyze)
	api.Get("/result/:id", NewResultHandler(ta.analyses).HandleGetResult)

	ta.app = app
	return ta
}

func (ta *testApp) do(t *testing.T, req *http.Request) (int, string) {
	t.Helper()
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func multipartRequest(t *testing.T, target, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("resume", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(t *testing.T, target string, payload any) *http.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedResume(ta *testApp, text string) *models.Resume {
	resume := &models.Resume{
		ID:               uuid.New(),
		OriginalFileName: "jane.pdf",
		FileType:         models.FileTypePDF,
		ExtractedText:    text,
		ExtractionMethod: models.ExtractionDirect,
		PageCount:        1,
	}
	_ = ta.resumes.Create(resume)
	return resume
}
