package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

func TestWebIndex(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/upload"`)
	assert.Contains(t, body, `name="resume"`)
	assert.Contains(t, body, `name="job_description"`)
	assert.Contains(t, body, "AI Resume Analyzer")
}

func TestWebUpload_ShowsPreview(t *testing.T) {
	ta := newTestApp(t)
	resume := &models.Resume{
		ID:               uuid.New(),
		OriginalFileName: "jane.pdf",
		FileType:         models.FileTypePDF,
		ExtractedText:    "Jane Doe <script>alert(1)</script>",
		ExtractionMethod: models.ExtractionDirect,
		PageCount:        1,
	}
	ta.intake.On("Ingest", mock.Anything, mock.Anything).Return(resume, nil)

	status, body := ta.do(t, multipartRequest(t, "/upload", "jane.pdf", []byte("%PDF"), map[string]string{
		"job_description": "Data engineer",
	}))

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Extracted Text Preview")
	assert.Contains(t, body, "Jane Doe &lt;")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, fmt.Sprintf(`action="/resumes/%s/analyze"`, resume.ID))
	assert.Contains(t, body, "Data engineer")
	assert.NotContains(t, body, services.ExtractionFailedMessage)
}

func TestWebUpload_NoTextShowsMessage(t *testing.T) {
	ta := newTestApp(t)
	resume := &models.Resume{ID: uuid.New(), OriginalFileName: "blurry.jpg", FileType: models.FileTypeImage, ExtractionMethod: models.ExtractionNone}
	ta.intake.On("Ingest", mock.Anything, mock.Anything).Return(resume, nil)

	status, body := ta.do(t, multipartRequest(t, "/upload", "blurry.jpg", []byte("jpg"), nil))

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, services.ExtractionFailedMessage)
	assert.NotContains(t, body, "Extracted Text Preview")
	assert.Contains(t, body, "Analyze Resume")
}

func TestWebUpload_RejectsUnsupportedFile(t *testing.T) {
	ta := newTestApp(t)
	ta.intake.On("Ingest", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: .txt", services.ErrUnsupportedFileType))

	status, body := ta.do(t, multipartRequest(t, "/upload", "notes.txt", []byte("x"), map[string]string{
		"job_description": "keep me",
	}))

	assert.Equal(t, http.StatusUnsupportedMediaType, status)
	assert.Contains(t, body, "Unsupported file type")
	assert.Contains(t, body, "keep me")
}

func TestWebUpload_MissingFile(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, multipartRequest(t, "/upload", "", nil, map[string]string{"job_description": ""}))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "Please choose a resume file")
}

func TestWebAnalyze_RendersMarkdownFeedback(t *testing.T) {
	ta := newTestApp(t)
	resume := seedResume(ta, "Jane Doe")

	status, body := ta.do(t, formRequest("/resumes/"+resume.ID.String()+"/analyze", url.Values{
		"job_description": {"Site reliability engineer"},
	}))

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Analysis Report")
	assert.Contains(t, body, "<h2>Strengths</h2>")
	assert.Contains(t, body, "<li>Solid Go experience</li>")
	assert.Contains(t, body, "gemini-2.5-pro")
	assert.Equal(t, []string{"Site reliability engineer"}, ta.analyzer.jobs)
}

func TestWebAnalyze_IsNotVisibleToTheWorker(t *testing.T) {
	ta := newTestApp(t)
	resume := seedResume(ta, "Jane Doe")

	status, _ := ta.do(t, formRequest("/resumes/"+resume.ID.String()+"/analyze", url.Values{
		"job_description": {"  Go developer\n"},
	}))

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []models.AnalysisStatus{models.StatusProcessing}, ta.analyzer.statuses)
	assert.Equal(t, []string{"  Go developer\n"}, ta.analyzer.jobs)

	for id := range ta.analyses.analyses {
		claimed, err := ta.analyses.Claim(id)
		require.NoError(t, err)
		assert.False(t, claimed, "a completed browser analysis cannot be claimed again")
	}
}

func TestWebAnalyze_ShowsFailureMessage(t *testing.T) {
	ta := newTestApp(t)
	ta.analyzer.err = errors.New("API key invalid")
	resume := seedResume(ta, "Jane Doe")

	status, body := ta.do(t, formRequest("/resumes/"+resume.ID.String()+"/analyze", url.Values{}))

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Gemini AI analysis failed: API key invalid")
	assert.NotContains(t, body, "Analysis Report")
}

func TestWebAnalyze_NoTextMessage(t *testing.T) {
	ta := newTestApp(t)
	ta.analyzer.err = services.ErrNoResumeText
	resume := seedResume(ta, "")

	status, body := ta.do(t, formRequest("/resumes/"+resume.ID.String()+"/analyze", url.Values{}))

	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, services.NoTextMessage)
}

func TestWebAnalyze_UnknownResume(t *testing.T) {
	ta := newTestApp(t)

	status, _ := ta.do(t, formRequest("/resumes/"+uuid.NewString()+"/analyze", url.Values{}))
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ta.do(t, formRequest("/resumes/nope/analyze", url.Values{}))
	assert.Equal(t, http.StatusBadRequest, status)
}
