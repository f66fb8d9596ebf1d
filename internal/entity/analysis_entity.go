package entity

import (
	"time"

	"github.com/google/uuid"

	"ai-contract-review-be/pkg/analysis"
)

// Analysis is one structured risk assessment produced by a successful
// pipeline run. Immutable once persisted; a re-analysis replaces it.
type Analysis struct {
	Id                  uuid.UUID
	ContractId          uuid.UUID
	Summary             string
	OverallScore        int
	FlaggedClauses      []analysis.FlaggedClause
	NegotiationMessages []analysis.NegotiationMessage
	CreatedAt           time.Time
}

// AnalysisChunk is a top-ranked contract passage kept with its run for
// auditability: which excerpts the assessment was grounded on and how they
// scored. Embeddings are not reused across runs.
type AnalysisChunk struct {
	Id             uuid.UUID
	AnalysisId     uuid.UUID
	ChunkIndex     int
	Document       string
	Score          float64
	EmbeddingValue []float32
	CreatedAt      time.Time
}
