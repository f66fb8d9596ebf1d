package contract

import (
	"context"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ContractRepository interface {
	Create(ctx context.Context, c *entity.Contract) error
	Update(ctx context.Context, c *entity.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contract, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contract, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// UpdateStatus moves a contract between lifecycle states. Terminal
	// states (done, error) are never overwritten.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// SetError marks the contract failed and records the reason.
	SetError(ctx context.Context, id uuid.UUID, reason string) error
}
