package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

var supportedExtensions = map[string]struct {
	fileType    models.FileType
	contentType string
}{
	".pdf":  {models.FileTypePDF, "application/pdf"},
	".jpg":  {models.FileTypeImage, "image/jpeg"},
	".jpeg": {models.FileTypeImage, "image/jpeg"},
	".png":  {models.FileTypeImage, "image/png"},
	".docx": {models.FileTypeDocx, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

// DetectFileType maps an upload's file name to the extraction path that handles it.
func DetectFileType(filename string) (models.FileType, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	info, ok := supportedExtensions[ext]
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	return info.fileType, info.contentType, nil
}

// StorageService writes uploads to a scratch directory for the duration of a request.
type StorageService interface {
	SaveFile(file *multipart.FileHeader, fileType models.FileType) (string, string, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveFile stores the upload under a unique name so concurrent requests never share a path.
func (s *storageService) SaveFile(file *multipart.FileHeader, fileType models.FileType) (string, string, error) {
	if _, _, err := DetectFileType(file.Filename); err != nil {
		return "", "", err
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))

	uniqueFilename := fmt.Sprintf("%s_%s%s", fileType, uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(filePath)
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return uniqueFilename, filePath, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filepath.Base(filename))
}

func (s *storageService) DeleteFile(filename string) error {
	filePath := s.GetFilePath(filename)
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
