package implementation

import (
	"context"
	"errors"
	"time"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/mapper"
	"ai-contract-review-be/internal/model"
	"ai-contract-review-be/internal/repository/contract"
	"ai-contract-review-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContractRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ContractMapper
}

func NewContractRepository(db *gorm.DB) contract.ContractRepository {
	return &ContractRepositoryImpl{
		db:     db,
		mapper: mapper.NewContractMapper(),
	}
}

func (r *ContractRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ContractRepositoryImpl) Create(ctx context.Context, c *entity.Contract) error {
	m := r.mapper.ToModel(c)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*c = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContractRepositoryImpl) Update(ctx context.Context, c *entity.Contract) error {
	m := r.mapper.ToModel(c)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*c = *r.mapper.ToEntity(m)
	return nil
}

func (r *ContractRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Contract{}, id).Error
}

func (r *ContractRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Contract, error) {
	var m model.Contract
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ContractRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Contract, error) {
	var models []*model.Contract
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ContractRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Contract{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContractRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	// Terminal states stay as-is even if a stale worker reports late.
	return r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("id = ? AND status NOT IN ?", id, []string{entity.AnalysisStatusDone, entity.AnalysisStatusError}).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *ContractRepositoryImpl) SetError(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("id = ? AND status NOT IN ?", id, []string{entity.AnalysisStatusDone, entity.AnalysisStatusError}).
		Updates(map[string]interface{}{
			"status":       entity.AnalysisStatusError,
			"error_reason": reason,
			"updated_at":   time.Now(),
		}).Error
}
