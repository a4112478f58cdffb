package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
	FileTypeDocx  FileType = "docx"
)

type ExtractionMethod string

const (
	ExtractionDirect ExtractionMethod = "direct"
	ExtractionOCR    ExtractionMethod = "ocr"
	ExtractionDocx   ExtractionMethod = "docx"
	ExtractionNone   ExtractionMethod = "none"
)

// Resume is an uploaded resume after text extraction. The uploaded bytes are not kept locally.
type Resume struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OriginalFileName string           `gorm:"type:text" json:"original_filename"`
	FileType         FileType         `gorm:"type:text;not null" json:"file_type"`
	ContentType      string           `gorm:"type:text" json:"content_type"`
	SizeBytes        int64            `json:"size_bytes"`
	ExtractedText    string           `gorm:"type:text" json:"extracted_text"`
	ExtractionMethod ExtractionMethod `gorm:"type:text;not null;default:'none'" json:"extraction_method"`
	PageCount        int              `json:"page_count"`
	ExtractionError  *string          `gorm:"type:text" json:"extraction_error,omitempty"`
	ArchiveKey       *string          `gorm:"type:text" json:"archive_key,omitempty"`
	CreatedAt        time.Time        `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (r *Resume) TableName() string {
	return "resumes"
}

// HasText reports whether extraction produced anything worth analyzing.
func (r *Resume) HasText() bool {
	return strings.TrimSpace(r.ExtractedText) != ""
}
