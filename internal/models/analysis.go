package models

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisStatus string

const (
	StatusQueued     AnalysisStatus = "queued"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

type Analysis struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ResumeID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"resume_id"`
	JobDescription string         `gorm:"type:text" json:"job_description"`
	Model          string         `gorm:"type:text" json:"model"`
	Status         AnalysisStatus `gorm:"not null;default:'queued'" json:"status"`
	Feedback       *string        `gorm:"type:text" json:"feedback,omitempty"`
	ErrorMessage   *string        `gorm:"type:text" json:"error_message,omitempty"`
	PromptChars    int            `json:"prompt_chars"`
	CreatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Resume Resume `gorm:"foreignKey:ResumeID" json:"-"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// AnalysisEvent is published whenever an analysis changes status.
type AnalysisEvent struct {
	AnalysisID uuid.UUID      `json:"analysis_id"`
	ResumeID   uuid.UUID      `json:"resume_id"`
	Status     AnalysisStatus `json:"status"`
	Message    string         `json:"message"`
	Timestamp  time.Time      `json:"timestamp"`
}
