package contract

import (
	"context"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AnalysisChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.AnalysisChunk) error
	DeleteByAnalysisId(ctx context.Context, analysisId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalysisChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
