package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

var ErrFileTooLarge = errors.New("file too large")

// ExtractionFailedMessage is shown in place of the preview when a file yields no text.
const ExtractionFailedMessage = "Could not extract text from the file. Try uploading a clearer image or PDF."

// ResumeIntakeService validates an upload, extracts its text and persists the resume.
// Extraction failures are recorded on the resume rather than returned.
type ResumeIntakeService interface {
	Ingest(ctx context.Context, file *multipart.FileHeader) (*models.Resume, error)
}

type resumeIntakeService struct {
	resumeRepo     repositories.ResumeRepository
	storageService StorageService
	extractor      TextExtractor
	archive        ArchiveService
	maxFileSize    int64
}

func NewResumeIntakeService(
	resumeRepo repositories.ResumeRepository,
	storageService StorageService,
	extractor TextExtractor,
	archive ArchiveService,
	maxFileSize int64,
) ResumeIntakeService {
	if archive == nil {
		archive = noopArchiveService{}
	}
	return &resumeIntakeService{
		resumeRepo:     resumeRepo,
		storageService: storageService,
		extractor:      extractor,
		archive:        archive,
		maxFileSize:    maxFileSize,
	}
}

func (s *resumeIntakeService) Ingest(ctx context.Context, file *multipart.FileHeader) (*models.Resume, error) {
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: max size is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}

	fileType, contentType, err := DetectFileType(file.Filename)
	if err != nil {
		return nil, err
	}

	filename, filePath, err := s.storageService.SaveFile(file, fileType)
	if err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	defer func() {
		if err := s.storageService.DeleteFile(filename); err != nil {
			log.Printf("⚠️  Failed to remove temporary upload %s: %v", filename, err)
		}
	}()

	log.Printf("📄 Extracting text from %s (%s)", file.Filename, fileType)
	result, extractErr := s.extractor.Extract(ctx, filePath, fileType)
	if result == nil {
		result = &ExtractionResult{Method: models.ExtractionNone}
	}

	resume := &models.Resume{
		ID:               uuid.New(),
		OriginalFileName: file.Filename,
		FileType:         fileType,
		ContentType:      contentType,
		SizeBytes:        file.Size,
		ExtractedText:    result.Text,
		ExtractionMethod: result.Method,
		PageCount:        result.PageCount,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if extractErr != nil {
		log.Printf("⚠️  Extraction failed for %s: %v", file.Filename, extractErr)
		msg := extractErr.Error()
		resume.ExtractionError = &msg
	}

	if err := s.resumeRepo.Create(resume); err != nil {
		return nil, err
	}

	s.archiveUpload(ctx, resume, file)

	return resume, nil
}

func (s *resumeIntakeService) archiveUpload(ctx context.Context, resume *models.Resume, file *multipart.FileHeader) {
	if !s.archive.Enabled() {
		return
	}

	src, err := file.Open()
	if err != nil {
		log.Printf("⚠️  Failed to reopen upload for archiving: %v", err)
		return
	}
	defer src.Close()

	name := resume.ID.String() + strings.ToLower(filepath.Ext(file.Filename))
	key, err := s.archive.Archive(ctx, name, resume.ContentType, src)
	if err != nil {
		log.Printf("⚠️  Failed to archive resume %s: %v", resume.ID, err)
		return
	}

	if err := s.resumeRepo.SetArchiveKey(resume.ID, key); err != nil {
		log.Printf("⚠️  Failed to record archive key for resume %s: %v", resume.ID, err)
		return
	}
	resume.ArchiveKey = &key
	log.Printf("✅ Resume %s archived as %s", resume.ID, key)
}

// Preview returns the first n runes of the extracted text.
func Preview(text string, n int) string {
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
