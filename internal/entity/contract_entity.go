package entity

import (
	"time"

	"github.com/google/uuid"
)

// Analysis lifecycle of one uploaded contract. done and error are terminal
// for a run; a fresh analysis request starts the cycle again.
const (
	AnalysisStatusPending   = "pending"
	AnalysisStatusAnalyzing = "analyzing"
	AnalysisStatusDone      = "done"
	AnalysisStatusError     = "error"
)

type Contract struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId          uuid.UUID `gorm:"type:uuid;index"`
	JobTitle        string
	YearsExperience int
	FileName        string
	FilePath        string
	MediaType       string
	Status          string
	ErrorReason     string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
	DeletedAt       *time.Time
	IsDeleted       bool
}
