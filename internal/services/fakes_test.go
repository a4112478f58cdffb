package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/ocr"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeEngine struct {
	mu        sync.Mutex
	calls     []ocr.Input
	recognize func(in ocr.Input) (string, error)
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, in ocr.Input) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.mu.Unlock()
	if f.recognize == nil {
		return "", nil
	}
	return f.recognize(in)
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePDFParser struct {
	content   *PDFContent
	textErr   error
	images    []PageImage
	imagesErr error
}

func (f *fakePDFParser) ExtractText(filePath string) (*PDFContent, error) {
	if f.textErr != nil {
		return nil, f.textErr
	}
	c := *f.content
	c.FilePath = filePath
	return &c, nil
}

func (f *fakePDFParser) ExtractPageImages(string) ([]PageImage, error) {
	return f.images, f.imagesErr
}

type fakeRenderer struct {
	pages []ocr.Page
	err   error
	calls int
}

func (f *fakeRenderer) RenderPages(context.Context, string, int) ([]ocr.Page, error) {
	f.calls++
	return f.pages, f.err
}

func grayPage(number int) ocr.Page {
	return ocr.Page{Number: number, Image: image.NewGray(image.Rect(0, 0, 20, 20))}
}

type fakeDocxParser struct {
	text string
	err  error
}

func (f *fakeDocxParser) ExtractText(string) (string, error) { return f.text, f.err }

type fakeGemini struct {
	mu       sync.Mutex
	prompts  []string
	response string
	err      error
}

func (f *fakeGemini) ModelName() string { return "gemini-test" }

func (f *fakeGemini) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeGemini) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, maxRetries int) (string, error) {
	return generateWithRetry(ctx, f.GenerateText, prompt, maxRetries)
}

func (f *fakeGemini) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeResumeRepo struct {
	mu      sync.Mutex
	resumes map[uuid.UUID]*models.Resume
	err     error
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{resumes: make(map[uuid.UUID]*models.Resume)}
}

func (r *fakeResumeRepo) Create(resume *models.Resume) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *resume
	r.resumes[resume.ID] = &c
	return nil
}

func (r *fakeResumeRepo) FindByID(id uuid.UUID) (*models.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[id]
	if !ok {
		return nil, fmt.Errorf("resume %s: %w", id, repositories.ErrNotFound)
	}
	c := *resume
	return &c, nil
}

func (r *fakeResumeRepo) SetArchiveKey(id uuid.UUID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.resumes[id]
	if !ok {
		return repositories.ErrNotFound
	}
	resume.ArchiveKey = &key
	return nil
}

type fakeAnalysisRepo struct {
	mu       sync.Mutex
	analyses map[uuid.UUID]*models.Analysis
	statuses []models.AnalysisStatus
	// resultErr, when set, makes UpdateResult fail.
	resultErr error
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{analyses: make(map[uuid.UUID]*models.Analysis)}
}

func (r *fakeAnalysisRepo) Create(analysis *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *analysis
	r.analyses[analysis.ID] = &c
	return nil
}

func (r *fakeAnalysisRepo) FindByID(id uuid.UUID) (*models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return nil, fmt.Errorf("analysis %s: %w", id, repositories.ErrNotFound)
	}
	c := *a
	return &c, nil
}

func (r *fakeAnalysisRepo) Claim(id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok || a.Status != models.StatusQueued {
		return false, nil
	}
	a.Status = models.StatusProcessing
	r.statuses = append(r.statuses, a.Status)
	return true, nil
}

func (r *fakeAnalysisRepo) UpdateResult(id uuid.UUID, data *repositories.AnalysisUpdateData) error {
	if r.resultErr != nil {
		return r.resultErr
	}
	return r.with(id, func(a *models.Analysis) {
		feedback := data.Feedback
		a.Status = models.StatusCompleted
		a.Feedback = &feedback
		a.Model = data.Model
		a.PromptChars = data.PromptChars
	})
}

func (r *fakeAnalysisRepo) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.with(id, func(a *models.Analysis) {
		a.Status = models.StatusFailed
		a.ErrorMessage = &errorMsg
	})
}

func (r *fakeAnalysisRepo) FindPendingJobs(limit int) ([]models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []models.Analysis
	for _, a := range r.analyses {
		if a.Status == models.StatusQueued && len(pending) < limit {
			pending = append(pending, *a)
		}
	}
	return pending, nil
}

func (r *fakeAnalysisRepo) with(id uuid.UUID, fn func(a *models.Analysis)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(a)
	a.UpdatedAt = time.Now()
	r.statuses = append(r.statuses, a.Status)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.AnalysisEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.AnalysisEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) statuses() []models.AnalysisStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.AnalysisStatus, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Status)
	}
	return out
}

type stubRetriever struct {
	text    string
	err     error
	queries []string
}

func (s *stubRetriever) Retrieve(_ context.Context, query string) (string, error) {
	s.queries = append(s.queries, query)
	return s.text, s.err
}
