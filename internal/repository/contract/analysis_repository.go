package contract

import (
	"context"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AnalysisRepository interface {
	Create(ctx context.Context, a *entity.Analysis) error
	DeleteByContractId(ctx context.Context, contractId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analysis, error)
	// FindLatestByContractId returns the most recent analysis, or nil when
	// the contract has never been analyzed.
	FindLatestByContractId(ctx context.Context, contractId uuid.UUID) (*entity.Analysis, error)
}
