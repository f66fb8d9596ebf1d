package dto

import (
	"time"

	"ai-contract-review-be/pkg/analysis"

	"github.com/google/uuid"
)

// UploadContractRequest carries the multipart form fields. The file part
// itself is read from the request separately.
type UploadContractRequest struct {
	JobTitle        string `form:"job_title" validate:"required,min=2"`
	YearsExperience int    `form:"years_experience" validate:"min=0,max=60"`
}

type UploadContractResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ContractListItemResponse struct {
	Id              uuid.UUID  `json:"id"`
	FileName        string     `json:"file_name"`
	JobTitle        string     `json:"job_title"`
	YearsExperience int        `json:"years_experience"`
	Status          string     `json:"status"`
	OverallScore    *int       `json:"overall_score,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

type AnalysisResponse struct {
	Summary             string                         `json:"summary"`
	OverallScore        int                            `json:"overall_score"`
	FlaggedClauses      []analysis.FlaggedClause       `json:"flagged_clauses"`
	NegotiationMessages []analysis.NegotiationMessage  `json:"negotiation_messages"`
	CreatedAt           time.Time                      `json:"created_at"`
}

type ShowContractResponse struct {
	Id              uuid.UUID         `json:"id"`
	FileName        string            `json:"file_name"`
	FilePath        string            `json:"file_path"`
	MediaType       string            `json:"media_type"`
	JobTitle        string            `json:"job_title"`
	YearsExperience int               `json:"years_experience"`
	Status          string            `json:"status"`
	ErrorReason     string            `json:"error_reason,omitempty"`
	Analysis        *AnalysisResponse `json:"analysis,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       *time.Time        `json:"updated_at"`
}

type RequestAnalysisResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

// PublishAnalyzeContractMessage is the job payload handed to the analysis
// consumer over the in-process pubsub.
type PublishAnalyzeContractMessage struct {
	ContractId uuid.UUID `json:"contract_id"`
}
